package transport

import (
	"context"
	"time"

	"github.com/astaxie/beego/logs"

	"github.com/nerfbridge/nerfbridge/link"
	"github.com/nerfbridge/nerfbridge/wire"
)

// Secondary is the endpoint that listens, replying to every request it
// receives (spec.md §4.6). Like Primary, it is the sole goroutine
// permitted to touch the link.
type Secondary struct {
	ep *Endpoint

	// pendingSentLen is the length of the payload chunk sent in the most
	// recent response, needed once the following request's ack_id
	// confirms (or fails to confirm) it.
	pendingSentLen int
}

// NewSecondary constructs a Secondary transport over ep.
func NewSecondary(ep *Endpoint) *Secondary {
	return &Secondary{ep: ep}
}

// Run polls for and answers requests until ctx is canceled.
func (s *Secondary) Run(ctx context.Context) {
	for {
		frame, ok := s.waitForRequest(ctx)
		if !ok {
			return
		}

		env, err := wire.Decode(frame)
		if err != nil || env.Kind != wire.KindRequest {
			logs.Error("dropping malformed request: %v", err)
			continue
		}

		switch env.Tag {
		case wire.TagPing:
			s.handlePing(env.Ping)
		case wire.TagNetworkTunnelTxRx:
			s.handleTunnel(env.Tunnel)
		default:
			logs.Error("dropping request with unknown tag %d", env.Tag)
		}
	}
}

// waitForRequest polls Receive until a message arrives or ctx is
// canceled. Unlike the primary side there is no per-request deadline:
// the secondary simply waits for the next poll from its peer.
func (s *Secondary) waitForRequest(ctx context.Context) (link.Frame, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, false
		default:
		}

		frame, result, err := s.ep.link.Receive()
		if err != nil {
			logs.Error("secondary receive error: %s", err.Error())
			time.Sleep(time.Millisecond)
			continue
		}
		if result == link.ReceiveSuccess {
			return frame, true
		}
		time.Sleep(time.Millisecond)
	}
}

func (s *Secondary) handlePing(p wire.Ping) {
	resp := wire.NewPingResponse(p.Value, p.HasValue)
	if result, err := s.ep.link.Transmit(link.Frame(resp.Encode())); err != nil || result != link.TransmitSuccess {
		logs.Error("ping response transmit failed: %v", err)
	}
}

// handleTunnel implements the secondary side of spec.md §4.3/§4.4. A
// missing ack_id is malformed (spec.md §7) and gets no response at all,
// matching secondary_radio_interface.cc:97-100's early return. Past
// that gate, ack processing is unconditional on whether the incoming id
// validates (that file's HandleNetworkTunnelTxRx treats the ack_id
// check as a sibling if-block to the id/payload check, not nested
// inside it) - unlike Primary.doTunnelRound, where spec.md §4.5
// explicitly ties ack processing to a valid id.
func (s *Secondary) handleTunnel(req wire.NetworkTunnelTxRx) {
	e := s.ep

	if e.ackIDMissingIsMalformed(req.HasAckID) {
		logs.Error("malformed tunnel request: missing ack_id, dropping")
		return
	}

	if e.ackAdvancesNextID(req.AckID, req.HasAckID) {
		e.advanceNextID()
		e.onFragmentAcked(s.pendingSentLen)
	} else if req.HasAckID {
		logs.Error("primary failed to ack id %d", e.nextID)
	}

	if !e.validateID(req.ID) {
		logs.Error("received non-sequential id %d", req.ID)
	} else {
		e.advanceID(req.ID)
		e.receiveFragment(req)
	}

	payload, remaining, hasPayload := e.buildOutgoingFragment()
	s.pendingSentLen = 0
	if hasPayload {
		s.pendingSentLen = len(payload)
	}

	resp := wire.NetworkTunnelTxRx{ID: e.nextID}
	if e.lastAckID != nil {
		resp.HasAckID = true
		resp.AckID = *e.lastAckID
	}
	if hasPayload {
		resp.HasPayload = true
		resp.Payload = payload
		resp.RemainingBytes = remaining
	}

	frame := link.Frame(wire.NewTunnelResponse(resp).Encode())
	if result, err := e.link.Transmit(frame); err != nil || result != link.TransmitSuccess {
		logs.Error("tunnel response transmit failed: %v", err)
	}
}
