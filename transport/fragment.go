package transport

import (
	"github.com/astaxie/beego/logs"

	"github.com/nerfbridge/nerfbridge/wire"
)

// buildOutgoingFragment implements the send-side rules of spec.md §4.4:
// if the read buffer is non-empty, chunk up to wire.MaxFragmentSize
// bytes off the front datagram without removing them yet, and mark
// payloadInFlight. Returns ok=false if there is nothing to send.
func (e *Endpoint) buildOutgoingFragment() (payload []byte, remaining uint32, ok bool) {
	front := e.frontDatagram()
	if front == nil {
		return nil, 0, false
	}

	n := len(front)
	if n > wire.MaxFragmentSize {
		n = wire.MaxFragmentSize
	}
	chunk := append([]byte(nil), front[:n]...)
	e.payloadInFlight = true
	return chunk, uint32(len(front) - n), true
}

// onFragmentAcked implements the tail of spec.md §4.4 send side: once an
// ACK advances next_id, erase the transmitted chunk from the front
// datagram (popping it if now empty) and clear payloadInFlight.
func (e *Endpoint) onFragmentAcked(sentLen int) {
	if !e.payloadInFlight {
		return
	}
	e.consumeFront(sentLen)
	e.payloadInFlight = false
}

// receiveFragment implements spec.md §4.4 receive side: append any
// payload to frameBuffer, and flush to the tunnel once remainingBytes
// reaches zero.
func (e *Endpoint) receiveFragment(t wire.NetworkTunnelTxRx) {
	if !t.HasPayload {
		return
	}
	e.frameBuffer = append(e.frameBuffer, t.Payload...)
	if t.RemainingBytes == 0 {
		logs.Info("writing %d bytes to the tunnel", len(e.frameBuffer))
		if err := e.tun.Write(e.frameBuffer); err != nil {
			logs.Error("failed to write to tunnel: %s", err.Error())
		}
		e.frameBuffer = e.frameBuffer[:0]
	}
}
