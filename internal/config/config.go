package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config represents the qvm tool settings from ~/.qvm/config.yaml and
// QVM_* environment variables
type Config struct {
	// ConfigFile overrides the per-directory VM configuration file (QVM_CONFIG)
	ConfigFile string `mapstructure:"config_file"`
	Debug      bool   `mapstructure:"debug"`
	SSH        SSH    `mapstructure:"ssh"`
	QEMU       QEMU   `mapstructure:"qemu"`
	Stop       Stop   `mapstructure:"stop"`
}

// SSH contains guest login settings
type SSH struct {
	User        string   `mapstructure:"user"`
	Identity    string   `mapstructure:"identity"`
	Options     []string `mapstructure:"options"`
	StopCommand string   `mapstructure:"stop_command"`
}

// QEMU contains the external binaries
type QEMU struct {
	// Binary is the virtualization process name matched by status/kill.
	// Empty selects the host default.
	Binary string `mapstructure:"binary"`
	Img    string `mapstructure:"img"`
}

// Stop contains settings for `stop --wait`
type Stop struct {
	WaitTimeout  time.Duration `mapstructure:"wait_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// BinaryFor returns the virtualization binary for hostOS
func (q *QEMU) BinaryFor(hostOS string) string {
	if q.Binary != "" {
		return q.Binary
	}
	return DefaultBinary(hostOS)
}

// DefaultBinary returns the QEMU system emulator used on hostOS
func DefaultBinary(hostOS string) string {
	if hostOS == "darwin" {
		return "qemu-system-aarch64"
	}
	return "qemu-system-x86_64"
}

// Load loads the configuration from ~/.qvm/config.yaml or returns defaults
func Load() (*Config, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configDir)
}

// LoadFrom loads config.yaml from configDir
func LoadFrom(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// Set defaults
	setDefaults(v)

	// QVM_SSH_USER overrides ssh.user and so on
	v.SetEnvPrefix("qvm")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("config_file", "QVM_CONFIG")

	// Try to read config file, but don't fail if it doesn't exist
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			return nil, err
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand ~ in paths
	cfg.SSH.Identity = expandPath(cfg.SSH.Identity)
	cfg.ConfigFile = expandPath(cfg.ConfigFile)

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("config_file", "")
	v.SetDefault("debug", false)

	// Guest login; an empty user defers to ssh's own defaults
	v.SetDefault("ssh.user", "")
	v.SetDefault("ssh.identity", "")
	v.SetDefault("ssh.options", []string{})
	v.SetDefault("ssh.stop_command", "sudo poweroff")

	v.SetDefault("qemu.binary", "")
	v.SetDefault("qemu.img", "qemu-img")

	v.SetDefault("stop.wait_timeout", "60s")
	v.SetDefault("stop.poll_interval", "1s")
}

// expandPath expands ~ to the home directory, keeping the input on failure
func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// ConfigDir returns the qvm configuration directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".qvm"), nil
}
