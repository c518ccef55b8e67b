package vmconfig

import (
	"path/filepath"
)

// Settings holds the substitutable parameters of a VM. Every field is
// referenced from profile templates by its key (e.g. $MEM).
type Settings struct {
	MAC     string
	Bridge  string
	IP      string
	Port    string
	VNC     string
	BIOS    string
	Cores   string
	Mem     string
	Slots   string
	MaxMem  string
	Hotplug string
	Block   string
	MemDir  string
	Name    string
	Disk    string
}

// Keys lists every settings key in the order used for dumps and for the
// generated configuration file.
var Keys = []string{
	"MAC", "BRIDGE", "IP", "PORT", "VNC", "BIOS", "CORES", "MEM",
	"SLOTS", "MAXMEM", "HOTPLUG", "BLOCK", "MEMDIR", "NAME", "DISK",
}

// pathKeys get a leading ~ expanded after load.
var pathKeys = map[string]bool{"BIOS": true, "MEMDIR": true, "DISK": true}

func (s *Settings) field(key string) *string {
	switch key {
	case "MAC":
		return &s.MAC
	case "BRIDGE":
		return &s.Bridge
	case "IP":
		return &s.IP
	case "PORT":
		return &s.Port
	case "VNC":
		return &s.VNC
	case "BIOS":
		return &s.BIOS
	case "CORES":
		return &s.Cores
	case "MEM":
		return &s.Mem
	case "SLOTS":
		return &s.Slots
	case "MAXMEM":
		return &s.MaxMem
	case "HOTPLUG":
		return &s.Hotplug
	case "BLOCK":
		return &s.Block
	case "MEMDIR":
		return &s.MemDir
	case "NAME":
		return &s.Name
	case "DISK":
		return &s.Disk
	}
	return nil
}

// Get returns the value of key and whether key is a known setting.
func (s Settings) Get(key string) (string, bool) {
	p := s.field(key)
	if p == nil {
		return "", false
	}
	return *p, true
}

// IsKey reports whether key names a setting.
func IsKey(key string) bool {
	var s Settings
	return s.field(key) != nil
}

// Environ returns the settings as KEY=value pairs in key order.
func (s Settings) Environ() []string {
	env := make([]string, 0, len(Keys))
	for _, k := range Keys {
		v, _ := s.Get(k)
		env = append(env, k+"="+v)
	}
	return env
}

// Defaults returns the built-in settings for a VM living in cwd on hostOS.
func Defaults(cwd, hostOS string) Settings {
	name := filepath.Base(cwd)
	return Settings{
		MAC:     "52:54:00:12:34:56",
		Bridge:  "br0",
		IP:      "",
		Port:    "10022",
		VNC:     "0",
		BIOS:    defaultFirmware(hostOS),
		Cores:   "2",
		Mem:     "4G",
		Slots:   "4",
		MaxMem:  "16G",
		Hotplug: "8G",
		Block:   "128M",
		MemDir:  "/dev/shm",
		Name:    name,
		Disk:    DiskFor(name),
	}
}

// DiskFor returns the default disk image file for a VM name.
func DiskFor(name string) string {
	return name + ".qcow2"
}

func defaultFirmware(hostOS string) string {
	if hostOS == "darwin" {
		return "/opt/homebrew/share/qemu/edk2-aarch64-code.fd"
	}
	return "/usr/share/OVMF/OVMF_CODE.fd"
}
