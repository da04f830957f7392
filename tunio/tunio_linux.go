package tunio

import (
	"bytes"
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/nerfbridge/nerfbridge/util/ip"
)

// CLI-only device creation: brings up a nerfN interface with a single
// point-to-point local address. Not imported by the transport core -
// spec.md §1 scopes OS-level VNI setup to an external initializer; this
// exists so cmd/nerfbridge can run standalone without a pre-opened fd.

const (
	tunDevice    = "/dev/net/tun"
	ifnameSize   = 16
	tunifaceName = "nerf%d"
)

type ifreqFlags struct {
	IfrnName  [ifnameSize]byte
	IfruFlags uint16
}

type linuxDevice struct {
	tunf   *os.File
	ifname string
}

func ioctl(fd int, request, argp uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), request, argp)
	if errno != 0 {
		return fmt.Errorf("ioctl failed with '%s'", errno)
	}
	return nil
}

func fromZeroTerm(s []byte) string {
	return string(bytes.TrimRight(s, "\000"))
}

func (d *linuxDevice) Read(p []byte) (int, error) {
	return d.tunf.Read(p)
}

func (d *linuxDevice) Write(p []byte) error {
	cnt, err := d.tunf.Write(p)
	if err != nil {
		return fmt.Errorf("tun write fail, %s", err.Error())
	}
	if cnt != len(p) {
		return fmt.Errorf("tun send %d out of %d bytes", cnt, len(p))
	}
	return nil
}

func (d *linuxDevice) Close() error {
	return d.tunf.Close()
}

// OpenLinux creates a new nerfN device, assigns it localAddr/prefixLen,
// and brings it up. Returns the open Device and the kernel-assigned
// interface name.
func OpenLinux(localAddr ip.IP4, prefixLen uint, mtu int) (Device, string, error) {
	tunfd, err := unix.Open(tunDevice, os.O_RDWR, 0600)
	if err != nil {
		return nil, "", err
	}

	dev := &linuxDevice{tunf: os.NewFile(uintptr(tunfd), "tun")}

	var ifr ifreqFlags
	copy(ifr.IfrnName[:len(ifr.IfrnName)-1], []byte(tunifaceName+"\000"))
	ifr.IfruFlags = syscall.IFF_TUN | syscall.IFF_NO_PI

	if err := ioctl(int(dev.tunf.Fd()), syscall.TUNSETIFF, uintptr(unsafe.Pointer(&ifr))); err != nil {
		return nil, "", err
	}

	dev.ifname = fromZeroTerm(ifr.IfrnName[:ifnameSize])
	if err := configureIface(dev.ifname, localAddr, prefixLen, mtu); err != nil {
		return nil, "", err
	}

	return dev, dev.ifname, nil
}

func configureIface(ifname string, addr ip.IP4, prefixLen uint, mtu int) error {
	iface, err := netlink.LinkByName(ifname)
	if err != nil {
		return fmt.Errorf("failed to lookup interface %v", ifname)
	}

	ipn := ip.IP4Net{IP: addr, PrefixLen: prefixLen}
	if err := netlink.AddrAdd(iface, &netlink.Addr{IPNet: ipn.ToIPNet(), Label: ""}); err != nil {
		return fmt.Errorf("failed to add IP address %v to %v: %v", ipn.String(), ifname, err)
	}

	if err := netlink.LinkSetMTU(iface, mtu); err != nil {
		return fmt.Errorf("failed to set MTU for %v: %v", ifname, err)
	}

	if err := netlink.LinkSetUp(iface); err != nil {
		return fmt.Errorf("failed to set interface %v to UP state: %v", ifname, err)
	}

	return nil
}
