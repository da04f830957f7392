package transport

import (
	"github.com/astaxie/beego/logs"
)

// maxDatagramSize bounds a single tunnel read; it should comfortably
// exceed the host's TUN MTU.
const maxDatagramSize = 65536

// RunTunnelReader reads whole datagrams from the tunnel device and
// appends them to the read buffer, independently of the transport loop,
// so the transport never blocks on tunnel I/O (spec.md §4.7). It runs
// until the tunnel device returns an error (typically because it was
// closed during shutdown), mirroring easymesh's TunRecvTask shape.
func (e *Endpoint) RunTunnelReader() {
	buf := make([]byte, maxDatagramSize)
	for {
		n, err := e.tun.Read(buf)
		if err != nil {
			logs.Error("tunnel read failed, stopping reader: %s", err.Error())
			return
		}
		if n == 0 {
			continue
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		e.enqueueDatagram(datagram)
	}
}
