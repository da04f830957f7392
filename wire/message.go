package wire

import "fmt"

// MaxFragmentSize is the protocol-mandated cap on a single
// NetworkTunnelTxRx payload fragment. It falls out of the link's
// ~32-byte max frame payload minus envelope overhead (spec.md §4.2).
const MaxFragmentSize = 8

// Kind distinguishes a Request envelope from a Response envelope.
type Kind uint8

const (
	KindRequest Kind = iota
	KindResponse
)

// Tag discriminates the two message shapes carried by Request/Response.
type Tag uint8

const (
	TagPing Tag = iota
	TagNetworkTunnelTxRx
)

// Ping is the diagnostic round-trip message. Request and response share
// this shape; the responder echoes Value iff present.
type Ping struct {
	Value      uint32
	HasValue   bool
}

// NetworkTunnelTxRx carries one fragment of a tunneled datagram along with
// the sequence-ID/ACK bookkeeping described in spec.md §4.3.
type NetworkTunnelTxRx struct {
	ID   uint32

	AckID    uint32
	HasAckID bool

	Payload    []byte // len <= MaxFragmentSize
	HasPayload bool

	RemainingBytes uint32 // defaults to 0
}

// Envelope is either a Request or a Response; exactly one of Ping /
// Tunnel is meaningful, selected by Tag.
type Envelope struct {
	Kind Kind
	Tag  Tag

	Ping   Ping
	Tunnel NetworkTunnelTxRx
}

// NewPingRequest builds a Request envelope carrying a Ping.
func NewPingRequest(value uint32, hasValue bool) Envelope {
	return Envelope{Kind: KindRequest, Tag: TagPing, Ping: Ping{Value: value, HasValue: hasValue}}
}

// NewPingResponse builds a Response envelope carrying a Ping.
func NewPingResponse(value uint32, hasValue bool) Envelope {
	return Envelope{Kind: KindResponse, Tag: TagPing, Ping: Ping{Value: value, HasValue: hasValue}}
}

// NewTunnelRequest builds a Request envelope carrying a NetworkTunnelTxRx.
func NewTunnelRequest(t NetworkTunnelTxRx) Envelope {
	return Envelope{Kind: KindRequest, Tag: TagNetworkTunnelTxRx, Tunnel: t}
}

// NewTunnelResponse builds a Response envelope carrying a NetworkTunnelTxRx.
func NewTunnelResponse(t NetworkTunnelTxRx) Envelope {
	return Envelope{Kind: KindResponse, Tag: TagNetworkTunnelTxRx, Tunnel: t}
}

// Encode serializes the envelope to bytes, little-endian throughout
// (spec.md §4.2, testable property #8).
func (e Envelope) Encode() []byte {
	buf := make([]byte, 0, 16)
	buf = append(buf, byte(e.Kind), byte(e.Tag))

	switch e.Tag {
	case TagPing:
		presence := uint8(0)
		if e.Ping.HasValue {
			presence |= hasValue
		}
		buf = append(buf, presence)
		if e.Ping.HasValue {
			buf = putUint32(buf, e.Ping.Value)
		}
	case TagNetworkTunnelTxRx:
		t := e.Tunnel
		presence := uint8(0)
		if t.HasAckID {
			presence |= hasAckID
		}
		if t.HasPayload {
			presence |= hasPayload
		}
		buf = append(buf, presence)
		buf = putUint32(buf, t.ID)
		if t.HasAckID {
			buf = putUint32(buf, t.AckID)
		}
		if t.HasPayload {
			buf = putBytes(buf, t.Payload)
		}
		buf = putUint32(buf, t.RemainingBytes)
	}

	return buf
}

// Decode parses an envelope previously produced by Encode.
func Decode(buf []byte) (Envelope, error) {
	var e Envelope
	if len(buf) < 3 {
		return e, fmt.Errorf("wire: envelope too short (%d bytes)", len(buf))
	}

	e.Kind = Kind(buf[0])
	e.Tag = Tag(buf[1])
	presence := buf[2]
	rest := buf[3:]

	var err error
	switch e.Tag {
	case TagPing:
		e.Ping.HasValue = presence&hasValue != 0
		if e.Ping.HasValue {
			e.Ping.Value, rest, err = getUint32(rest)
			if err != nil {
				return e, err
			}
		}
	case TagNetworkTunnelTxRx:
		e.Tunnel.HasAckID = presence&hasAckID != 0
		e.Tunnel.HasPayload = presence&hasPayload != 0

		e.Tunnel.ID, rest, err = getUint32(rest)
		if err != nil {
			return e, fmt.Errorf("wire: missing id: %w", err)
		}
		if e.Tunnel.HasAckID {
			e.Tunnel.AckID, rest, err = getUint32(rest)
			if err != nil {
				return e, fmt.Errorf("wire: missing ack_id: %w", err)
			}
		}
		if e.Tunnel.HasPayload {
			var payload []byte
			payload, rest, err = getBytes(rest)
			if err != nil {
				return e, fmt.Errorf("wire: missing payload: %w", err)
			}
			if len(payload) > MaxFragmentSize {
				return e, fmt.Errorf("wire: payload too large (%d bytes)", len(payload))
			}
			e.Tunnel.Payload = append([]byte(nil), payload...)
		}
		e.Tunnel.RemainingBytes, rest, err = getUint32(rest)
		if err != nil {
			return e, fmt.Errorf("wire: missing remaining_bytes: %w", err)
		}
	default:
		return e, fmt.Errorf("wire: unknown tag %d", e.Tag)
	}

	_ = rest
	return e, nil
}
