package transport

import (
	"testing"
	"time"

	"github.com/nerfbridge/nerfbridge/link/mocklink"
	"github.com/nerfbridge/nerfbridge/wire"
)

func TestSecondaryHandlePingEchoesValue(t *testing.T) {
	l := mocklink.New(mocklink.Config{MaxPayloadSize: 32}, time.Now())
	ep := NewEndpoint(Config{}, l, &fakeTun{})
	s := NewSecondary(ep)

	s.handlePing(wire.Ping{Value: 7, HasValue: true})

	env, err := wire.Decode(l.LastTransmitted)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Kind != wire.KindResponse || env.Tag != wire.TagPing {
		t.Fatal("expected a ping response")
	}
	if !env.Ping.HasValue || env.Ping.Value != 7 {
		t.Fatalf("echoed ping = %+v, want value 7", env.Ping)
	}
}

func TestSecondaryAdvancesIDAndAcksOnValidRequest(t *testing.T) {
	l := mocklink.New(mocklink.Config{MaxPayloadSize: 32}, time.Now())
	ep := NewEndpoint(Config{}, l, &fakeTun{})
	s := NewSecondary(ep)

	s.handleTunnel(wire.NetworkTunnelTxRx{ID: 0})

	if ep.lastAckID == nil || *ep.lastAckID != 0 {
		t.Fatal("the first request's id must be recorded as lastAckID")
	}

	env, err := wire.Decode(l.LastTransmitted)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Tunnel.HasAckID || env.Tunnel.AckID != 0 {
		t.Fatalf("response must ack id 0, got %+v", env.Tunnel)
	}
}

// TestSecondaryAckAdvancesNextIDIndependentOfIDValidity covers the
// scenario where an incoming id fails validation but the same message's
// ack_id still matches this endpoint's outstanding next_id: next_id must
// still advance, since the ack check and the id/payload check are
// independent (secondary_radio_interface.cc applies them as sibling
// branches, not nested).
func TestSecondaryAckAdvancesNextIDIndependentOfIDValidity(t *testing.T) {
	l := mocklink.New(mocklink.Config{MaxPayloadSize: 32}, time.Now())
	ep := NewEndpoint(Config{}, l, &fakeTun{})
	s := NewSecondary(ep)

	lastAck := uint32(3) // expects next request id to be 4
	ep.lastAckID = &lastAck
	ep.nextID = 2
	s.pendingSentLen = 4

	// Peer sends id=5 (invalid) but acks our outstanding next_id (2).
	s.handleTunnel(wire.NetworkTunnelTxRx{ID: 5, HasAckID: true, AckID: 2})

	if ep.nextID != 3 {
		t.Fatalf("nextID = %d, want 3 (ack must advance despite the invalid id)", ep.nextID)
	}
	if ep.lastAckID == nil || *ep.lastAckID != 3 {
		t.Fatal("an invalid id must not update lastAckID")
	}
}

// TestSecondaryDropsRequestMissingAckID covers spec.md §7: once the
// secondary has a lastAckID, a request missing ack_id is malformed and
// must get no response at all, not just a logged warning.
func TestSecondaryDropsRequestMissingAckID(t *testing.T) {
	l := mocklink.New(mocklink.Config{MaxPayloadSize: 32}, time.Now())
	ep := NewEndpoint(Config{}, l, &fakeTun{})
	s := NewSecondary(ep)

	lastAck := uint32(3)
	ep.lastAckID = &lastAck
	ep.nextID = 2

	s.handleTunnel(wire.NetworkTunnelTxRx{ID: 4, HasAckID: false})

	if l.LastTransmitted != nil {
		t.Fatalf("expected no response transmitted, got %q", l.LastTransmitted)
	}
	if ep.nextID != 2 {
		t.Fatal("a dropped request must not advance next_id")
	}
	if *ep.lastAckID != 3 {
		t.Fatal("a dropped request must not update lastAckID")
	}
}

func TestSecondaryPiggybacksOutgoingFragmentOnResponse(t *testing.T) {
	l := mocklink.New(mocklink.Config{MaxPayloadSize: 32}, time.Now())
	ep := NewEndpoint(Config{}, l, &fakeTun{})
	s := NewSecondary(ep)
	ep.enqueueDatagram([]byte("reply")) // must fit in one MaxFragmentSize chunk

	s.handleTunnel(wire.NetworkTunnelTxRx{ID: 0})

	env, err := wire.Decode(l.LastTransmitted)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Tunnel.HasPayload || string(env.Tunnel.Payload) != "reply" {
		t.Fatalf("response payload = %+v, want reply", env.Tunnel)
	}
}
