package vmconfig

import "github.com/samber/lo"

// Starter profiles written by Generate. Templates are shell command lines;
// settings are referenced as $KEY and expanded at launch time.

var linuxProfiles = map[string]string{
	"default": `qemu-system-x86_64 -name $NAME \
  -machine q35,accel=kvm -cpu host -smp $CORES \
  -m $MEM,slots=$SLOTS,maxmem=$MAXMEM \
  -drive file=$DISK,if=virtio,format=qcow2 \
  -netdev user,id=net0,hostfwd=tcp::$PORT-:22 \
  -device virtio-net-pci,netdev=net0,mac=$MAC \
  -vnc :$VNC`,
	"bridge": `qemu-system-x86_64 -name $NAME \
  -machine q35,accel=kvm -cpu host -smp $CORES \
  -m $MEM,slots=$SLOTS,maxmem=$MAXMEM \
  -drive file=$DISK,if=virtio,format=qcow2 \
  -netdev bridge,id=net0,br=$BRIDGE \
  -device virtio-net-pci,netdev=net0,mac=$MAC \
  -vnc :$VNC`,
	"daemon": `qemu-system-x86_64 -name $NAME \
  -machine q35,accel=kvm -cpu host -smp $CORES \
  -m $MEM,slots=$SLOTS,maxmem=$MAXMEM \
  -drive file=$DISK,if=virtio,format=qcow2 \
  -netdev user,id=net0,hostfwd=tcp::$PORT-:22 \
  -device virtio-net-pci,netdev=net0,mac=$MAC \
  -vnc :$VNC -daemonize`,
	"uefi": `qemu-system-x86_64 -name $NAME \
  -machine q35,accel=kvm -cpu host -smp $CORES \
  -drive if=pflash,format=raw,readonly=on,file=$BIOS \
  -m $MEM,slots=$SLOTS,maxmem=$MAXMEM \
  -drive file=$DISK,if=virtio,format=qcow2 \
  -netdev user,id=net0,hostfwd=tcp::$PORT-:22 \
  -device virtio-net-pci,netdev=net0,mac=$MAC \
  -vnc :$VNC`,
	"hotplug": `qemu-system-x86_64 -name $NAME \
  -machine q35,accel=kvm -cpu host -smp $CORES \
  -m $MEM,slots=$SLOTS,maxmem=$MAXMEM \
  -object memory-backend-file,id=vmem0,size=$HOTPLUG,mem-path=$MEMDIR/$NAME.mem,share=on \
  -device virtio-mem-pci,id=vm0,memdev=vmem0,block-size=$BLOCK,requested-size=0 \
  -drive file=$DISK,if=virtio,format=qcow2 \
  -netdev user,id=net0,hostfwd=tcp::$PORT-:22 \
  -device virtio-net-pci,netdev=net0,mac=$MAC \
  -vnc :$VNC`,
}

var darwinProfiles = map[string]string{
	"default": `qemu-system-aarch64 -name $NAME \
  -machine virt,accel=hvf,highmem=on -cpu host -smp $CORES \
  -bios $BIOS \
  -m $MEM,slots=$SLOTS,maxmem=$MAXMEM \
  -drive file=$DISK,if=virtio,format=qcow2 \
  -netdev user,id=net0,hostfwd=tcp::$PORT-:22 \
  -device virtio-net-pci,netdev=net0,mac=$MAC \
  -device ramfb -device qemu-xhci -device usb-kbd -device usb-tablet \
  -vnc :$VNC`,
	"bridge": `qemu-system-aarch64 -name $NAME \
  -machine virt,accel=hvf,highmem=on -cpu host -smp $CORES \
  -bios $BIOS \
  -m $MEM,slots=$SLOTS,maxmem=$MAXMEM \
  -drive file=$DISK,if=virtio,format=qcow2 \
  -netdev vmnet-bridged,id=net0,ifname=$BRIDGE \
  -device virtio-net-pci,netdev=net0,mac=$MAC \
  -device ramfb -device qemu-xhci -device usb-kbd -device usb-tablet \
  -vnc :$VNC`,
	"daemon": `qemu-system-aarch64 -name $NAME \
  -machine virt,accel=hvf,highmem=on -cpu host -smp $CORES \
  -bios $BIOS \
  -m $MEM,slots=$SLOTS,maxmem=$MAXMEM \
  -drive file=$DISK,if=virtio,format=qcow2 \
  -netdev user,id=net0,hostfwd=tcp::$PORT-:22 \
  -device virtio-net-pci,netdev=net0,mac=$MAC \
  -vnc :$VNC -daemonize`,
}

// StarterProfiles returns a copy of the built-in profile set for hostOS.
// Hosts other than darwin get the linux set.
func StarterProfiles(hostOS string) map[string]string {
	src := linuxProfiles
	if hostOS == "darwin" {
		src = darwinProfiles
	}
	return lo.Assign(src)
}
