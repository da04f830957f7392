package transport

import (
	"context"
	"time"

	"github.com/astaxie/beego/logs"

	"github.com/nerfbridge/nerfbridge/link"
	"github.com/nerfbridge/nerfbridge/wire"
)

// RequestResult is the outcome of a primary-initiated request, mirroring
// nerfnet's PrimaryRadioInterface::RequestResult.
type RequestResult int

const (
	ResultSuccess RequestResult = iota
	ResultTimeout
	ResultMalformedRequest
	ResultTransmitError
)

func (r RequestResult) String() string {
	switch r {
	case ResultSuccess:
		return "Success"
	case ResultTimeout:
		return "Timeout"
	case ResultMalformedRequest:
		return "MalformedRequest"
	case ResultTransmitError:
		return "TransmitError"
	default:
		return "Unknown"
	}
}

// Primary is the endpoint that polls, initiating every request/response
// exchange (spec.md §4.5). It owns the only goroutine permitted to touch
// the link (spec.md §5).
type Primary struct {
	ep             *Endpoint
	beaconInterval time.Duration
	rfDelay        time.Duration

	pingCh chan pingJob

	startTime   time.Time
	beaconCount int
}

type pingJob struct {
	value    uint32
	hasValue bool
	resultCh chan RequestResult
}

// NewPrimary constructs a Primary transport over ep, beaconing every
// beaconInterval.
func NewPrimary(ep *Endpoint, beaconInterval time.Duration) *Primary {
	return &Primary{
		ep:             ep,
		beaconInterval: beaconInterval,
		rfDelay:        time.Duration(ep.cfg.RFDelayUs) * time.Microsecond,
		pingCh:         make(chan pingJob, 1),
	}
}

// Ping issues a diagnostic ping request carrying value (if hasValue) and
// blocks for its result. It displaces one round of ordinary tunnel
// traffic (spec.md §4.5).
func (p *Primary) Ping(value uint32, hasValue bool) RequestResult {
	resultCh := make(chan RequestResult, 1)
	p.pingCh <- pingJob{value: value, hasValue: hasValue, resultCh: resultCh}
	return <-resultCh
}

// Run drives the Idle/Awaiting poll loop until ctx is canceled.
func (p *Primary) Run(ctx context.Context) {
	p.startTime = time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p.maybeBeacon()

		select {
		case job := <-p.pingCh:
			job.resultCh <- p.doPingRound(job.value, job.hasValue)
		default:
			p.doTunnelRound()
		}
	}
}

func (p *Primary) maybeBeacon() {
	if p.beaconInterval <= 0 {
		return
	}
	elapsed := time.Since(p.startTime)
	expected := time.Duration(p.beaconCount) * p.beaconInterval
	if elapsed < expected {
		return
	}

	if _, err := p.ep.link.Beacon(); err != nil {
		logs.Error("beacon failed: %s", err.Error())
	}
	p.beaconCount++
}

// waitForResponse polls Receive until it succeeds or rfDelay elapses.
// ChecksumError and NotReady are transient "no message" states and keep
// polling (spec.md §7); only rfDelay expiring is a timeout.
func (p *Primary) waitForResponse() (link.Frame, link.ReceiveResult, error) {
	deadline := time.Now().Add(p.rfDelay)
	for {
		frame, result, err := p.ep.link.Receive()
		if err != nil {
			return nil, result, err
		}
		if result == link.ReceiveSuccess {
			return frame, result, nil
		}
		if time.Now().After(deadline) {
			return nil, link.ReceiveNotReady, nil
		}
		time.Sleep(time.Millisecond)
	}
}

// doTunnelRound composes one NetworkTunnelTxRx request, transmits it, and
// awaits the response, implementing spec.md §4.5's Idle -> Awaiting ->
// Idle cycle. Any failure (transmit error, timeout, invalid id, malformed
// response) leaves next_id and the in-flight payload untouched, which is
// exactly what causes retransmission on the next cycle.
func (p *Primary) doTunnelRound() {
	payload, remaining, hasPayload := p.ep.buildOutgoingFragment()

	req := wire.NetworkTunnelTxRx{ID: p.ep.nextID}
	if p.ep.lastAckID != nil {
		req.HasAckID = true
		req.AckID = *p.ep.lastAckID
	}
	if hasPayload {
		req.HasPayload = true
		req.Payload = payload
		req.RemainingBytes = remaining
	}

	frame := link.Frame(wire.NewTunnelRequest(req).Encode())
	if result, err := p.ep.link.Transmit(frame); err != nil || result != link.TransmitSuccess {
		logs.Error("primary transmit failed, will retransmit: %v", err)
		return
	}

	respFrame, recvResult, err := p.waitForResponse()
	if err != nil {
		logs.Error("primary receive error: %s", err.Error())
		return
	}
	if recvResult != link.ReceiveSuccess {
		logs.Warn("primary request timed out, retransmitting id %d", p.ep.nextID)
		return
	}

	respEnv, err := wire.Decode(respFrame)
	if err != nil || respEnv.Kind != wire.KindResponse || respEnv.Tag != wire.TagNetworkTunnelTxRx {
		logs.Error("malformed tunnel response, retransmitting: %v", err)
		return
	}

	resp := respEnv.Tunnel
	if p.ep.ackIDMissingIsMalformed(resp.HasAckID) {
		logs.Error("malformed tunnel response: missing ack_id")
		return
	}

	if !p.ep.validateID(resp.ID) {
		logs.Error("received non-sequential id %d", resp.ID)
		return
	}
	p.ep.advanceID(resp.ID)
	p.ep.receiveFragment(resp)

	if p.ep.ackAdvancesNextID(resp.AckID, resp.HasAckID) {
		p.ep.advanceNextID()
		p.ep.onFragmentAcked(len(payload))
	} else if resp.HasAckID {
		logs.Error("secondary failed to ack id %d, retransmitting", p.ep.nextID)
	}
}

func (p *Primary) doPingRound(value uint32, hasValue bool) RequestResult {
	frame := link.Frame(wire.NewPingRequest(value, hasValue).Encode())
	if result, err := p.ep.link.Transmit(frame); err != nil || result != link.TransmitSuccess {
		return ResultTransmitError
	}

	respFrame, recvResult, err := p.waitForResponse()
	if err != nil {
		return ResultTransmitError
	}
	if recvResult != link.ReceiveSuccess {
		return ResultTimeout
	}

	respEnv, err := wire.Decode(respFrame)
	if err != nil || respEnv.Kind != wire.KindResponse || respEnv.Tag != wire.TagPing {
		return ResultMalformedRequest
	}
	if respEnv.Ping.HasValue != hasValue || (hasValue && respEnv.Ping.Value != value) {
		return ResultMalformedRequest
	}
	return ResultSuccess
}
