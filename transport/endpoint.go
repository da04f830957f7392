// Package transport implements the radio-tunnel core: sequence-ID
// discipline, fragmentation/reassembly, and the primary/secondary roles
// built on top of link.Link. Grounded on nerfnet's RadioInterface and its
// Primary/Secondary subclasses, but composed rather than inherited per
// spec.md §9 - a single Endpoint holds the shared state and Primary/
// Secondary each supply their own run loop around it.
package transport

import (
	"sync"

	"github.com/nerfbridge/nerfbridge/link"
	"github.com/nerfbridge/nerfbridge/tunio"
)

// Config is the configuration the core accepts (spec.md §6).
type Config struct {
	CePin         uint16 // opaque to the core; neither the transport nor link/udplink reads it
	PrimaryAddr   uint32
	SecondaryAddr uint32
	RFDelayUs     uint64 // primary's per-request receive timeout
}

// Endpoint holds the per-side state shared between the tunnel-read
// worker and the transport loop (spec.md §3.1, §5). readBuffer is
// guarded by mu because the tunnel-read goroutine appends to it while
// the transport goroutine drains it; nextID, lastAckID, frameBuffer, and
// payloadInFlight are touched only by the transport goroutine and need
// no locking (spec.md §5 "Shared resources").
type Endpoint struct {
	cfg  Config
	link link.Link
	tun  tunio.Device

	mu         sync.Mutex
	readBuffer [][]byte // FIFO of pending outbound datagrams

	nextID    uint32
	lastAckID *uint32

	frameBuffer     []byte
	payloadInFlight bool
}

// NewEndpoint constructs the shared state for one side of the link.
func NewEndpoint(cfg Config, l link.Link, tun tunio.Device) *Endpoint {
	return &Endpoint{cfg: cfg, link: l, tun: tun}
}

// enqueueDatagram appends a datagram read from the tunnel to the read
// buffer. Called only by the tunnel-read worker.
func (e *Endpoint) enqueueDatagram(d []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.readBuffer = append(e.readBuffer, d)
}

// frontDatagram returns the datagram at the head of the read buffer
// without removing it, or nil if the buffer is empty.
func (e *Endpoint) frontDatagram() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.readBuffer) == 0 {
		return nil
	}
	return e.readBuffer[0]
}

// consumeFront erases n bytes from the front of the head datagram,
// popping it from the queue if it becomes empty.
func (e *Endpoint) consumeFront(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.readBuffer) == 0 {
		return
	}
	front := e.readBuffer[0]
	if n > len(front) {
		n = len(front)
	}
	front = front[n:]
	if len(front) == 0 {
		e.readBuffer = e.readBuffer[1:]
		return
	}
	e.readBuffer[0] = front
}
