// Package tunio wraps the host's TUN file descriptor for the transport
// core. The core never creates or configures the device itself (spec.md
// §1 scopes that to an external initializer) - it only reads and writes
// whole datagrams against an already-open descriptor.
package tunio

import (
	"fmt"
	"os"
)

// Device is the byte-stream file descriptor the core consumes: reads
// yield exactly one IP datagram per call, writes accept one datagram per
// call (spec.md §6).
type Device interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) error
	Close() error
}

type fdDevice struct {
	f *os.File
}

// FromFD wraps an already-open TUN file descriptor (spec.md's
// tunnel_fd: i32 configuration field) as a Device.
func FromFD(fd int32) Device {
	return &fdDevice{f: os.NewFile(uintptr(fd), "tun")}
}

func (d *fdDevice) Read(p []byte) (int, error) {
	return d.f.Read(p)
}

func (d *fdDevice) Write(p []byte) error {
	n, err := d.f.Write(p)
	if err != nil {
		return fmt.Errorf("tunio: write fail, %w", err)
	}
	if n != len(p) {
		return fmt.Errorf("tunio: short write %d of %d bytes", n, len(p))
	}
	return nil
}

func (d *fdDevice) Close() error {
	return d.f.Close()
}
