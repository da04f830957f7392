package transport

import (
	"testing"
	"time"

	"github.com/nerfbridge/nerfbridge/link"
	"github.com/nerfbridge/nerfbridge/link/mocklink"
	"github.com/nerfbridge/nerfbridge/wire"
)

func newPrimaryWithLink(l link.Link, rfDelayUs uint64) (*Primary, *Endpoint) {
	ep := NewEndpoint(Config{RFDelayUs: rfDelayUs}, l, &fakeTun{})
	return NewPrimary(ep, 0), ep
}

func TestPrimaryTunnelRoundAdvancesOnAck(t *testing.T) {
	resp := wire.NewTunnelResponse(wire.NetworkTunnelTxRx{ID: 1, HasAckID: true, AckID: 0})
	l := mocklink.New(mocklink.Config{
		MaxPayloadSize: 32,
		ReceiveResults: []mocklink.ReceiveEntry{{Result: link.ReceiveSuccess, Frame: link.Frame(resp.Encode())}},
	}, time.Now())

	p, ep := newPrimaryWithLink(l, 5000)
	ep.enqueueDatagram([]byte("hello"))

	p.doTunnelRound()

	if ep.nextID != 1 {
		t.Fatalf("nextID = %d, want 1 after the peer acked 0", ep.nextID)
	}
	if ep.lastAckID == nil || *ep.lastAckID != 1 {
		t.Fatal("lastAckID must be updated to the peer's id 1")
	}
}

func TestPrimaryRetransmitsOnTimeoutWithoutAdvancing(t *testing.T) {
	// No receive entries: every poll reports NotReady, so the round
	// times out.
	l := mocklink.New(mocklink.Config{MaxPayloadSize: 32}, time.Now())

	p, ep := newPrimaryWithLink(l, 2000)
	ep.enqueueDatagram([]byte("hello"))

	p.doTunnelRound()
	if ep.nextID != 0 {
		t.Fatalf("nextID = %d, want 0 (unchanged) after a timeout", ep.nextID)
	}
	first := append([]byte(nil), l.LastTransmitted...)

	p.doTunnelRound()
	if string(l.LastTransmitted) != string(first) {
		t.Fatal("retransmission after a timeout must resend the identical frame")
	}
}

func TestPrimaryDoesNotAdvanceOnInvalidResponseID(t *testing.T) {
	resp := wire.NewTunnelResponse(wire.NetworkTunnelTxRx{ID: 99, HasAckID: true, AckID: 0})
	l := mocklink.New(mocklink.Config{
		MaxPayloadSize: 32,
		ReceiveResults: []mocklink.ReceiveEntry{{Result: link.ReceiveSuccess, Frame: link.Frame(resp.Encode())}},
	}, time.Now())

	p, ep := newPrimaryWithLink(l, 2000)
	lastAck := uint32(3) // expects id 4 next, not 99
	ep.lastAckID = &lastAck

	p.doTunnelRound()

	if ep.nextID != 0 {
		t.Fatal("an invalid response id must not advance next_id even though ack_id matched")
	}
}

func TestPrimaryPingSuccess(t *testing.T) {
	resp := wire.NewPingResponse(42, true)
	l := mocklink.New(mocklink.Config{
		MaxPayloadSize: 32,
		ReceiveResults: []mocklink.ReceiveEntry{{Result: link.ReceiveSuccess, Frame: link.Frame(resp.Encode())}},
	}, time.Now())
	p, _ := newPrimaryWithLink(l, 5000)

	if got := p.doPingRound(42, true); got != ResultSuccess {
		t.Fatalf("ping result = %v, want Success", got)
	}
}

func TestPrimaryPingMismatchIsMalformed(t *testing.T) {
	resp := wire.NewPingResponse(99, true)
	l := mocklink.New(mocklink.Config{
		MaxPayloadSize: 32,
		ReceiveResults: []mocklink.ReceiveEntry{{Result: link.ReceiveSuccess, Frame: link.Frame(resp.Encode())}},
	}, time.Now())
	p, _ := newPrimaryWithLink(l, 5000)

	if got := p.doPingRound(42, true); got != ResultMalformedRequest {
		t.Fatalf("ping result = %v, want MalformedRequest", got)
	}
}

func TestPrimaryPingTimeout(t *testing.T) {
	l := mocklink.New(mocklink.Config{MaxPayloadSize: 32}, time.Now())
	p, _ := newPrimaryWithLink(l, 2000)

	if got := p.doPingRound(1, true); got != ResultTimeout {
		t.Fatalf("ping result = %v, want Timeout", got)
	}
}
