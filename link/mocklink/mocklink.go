// Package mocklink is a scripted replay Link used by transport tests. It
// returns a configured sequence of beacon and receive results and asserts
// that beacons land within the schedule the primary transport is
// expected to keep (spec.md §4.1, testable property #7). Adapted from
// nerfnet's mock_link.cc.
package mocklink

import (
	"fmt"
	"time"

	"github.com/nerfbridge/nerfbridge/link"
)

// ReceiveEntry is one scripted outcome returned from Receive.
type ReceiveEntry struct {
	Result link.ReceiveResult
	Frame  link.Frame
}

// Config scripts a MockLink's behavior.
type Config struct {
	MaxPayloadSize uint32

	// BeaconInterval is the nominal spacing between beacons; every call
	// to Beacon() is checked against [n*Interval, n*Interval+10ms).
	BeaconInterval time.Duration

	// BeaconResults cycles through this pattern on repeated Beacon calls.
	BeaconResults []link.TransmitResult

	// ReceiveResults is consumed in order; once exhausted, Receive always
	// reports NotReady.
	ReceiveResults []ReceiveEntry

	// TransmitResults cycles through this pattern on repeated Transmit
	// calls, like BeaconResults.
	TransmitResults []link.TransmitResult
}

// MockLink implements link.Link by replaying a Config.
type MockLink struct {
	cfg       Config
	startTime time.Time

	beaconCount   int
	receiveCount  int
	transmitCount int

	// LastTransmitted records the most recent frame handed to Transmit,
	// for test assertions.
	LastTransmitted link.Frame
}

// New constructs a MockLink. now is typically time.Now, injected so tests
// can control the beacon schedule's reference point.
func New(cfg Config, now time.Time) *MockLink {
	return &MockLink{cfg: cfg, startTime: now}
}

func (m *MockLink) Beacon() (link.TransmitResult, error) {
	elapsed := time.Since(m.startTime)
	expected := time.Duration(m.beaconCount) * m.cfg.BeaconInterval
	if elapsed < expected || elapsed >= expected+10*time.Millisecond {
		return link.TransmitError, fmt.Errorf(
			"mocklink: beacon %d at %s outside window [%s, %s)",
			m.beaconCount, elapsed, expected, expected+10*time.Millisecond)
	}

	if len(m.cfg.BeaconResults) == 0 {
		m.beaconCount++
		return link.TransmitSuccess, nil
	}
	result := m.cfg.BeaconResults[m.beaconCount%len(m.cfg.BeaconResults)]
	m.beaconCount++
	return result, nil
}

func (m *MockLink) Receive() (link.Frame, link.ReceiveResult, error) {
	if m.receiveCount >= len(m.cfg.ReceiveResults) {
		return nil, link.ReceiveNotReady, nil
	}
	entry := m.cfg.ReceiveResults[m.receiveCount]
	m.receiveCount++
	if entry.Result == link.ReceiveSuccess {
		return entry.Frame, link.ReceiveSuccess, nil
	}
	return nil, entry.Result, nil
}

func (m *MockLink) Transmit(frame link.Frame) (link.TransmitResult, error) {
	m.LastTransmitted = frame
	if len(m.cfg.TransmitResults) == 0 {
		m.transmitCount++
		return link.TransmitSuccess, nil
	}
	result := m.cfg.TransmitResults[m.transmitCount%len(m.cfg.TransmitResults)]
	m.transmitCount++
	return result, nil
}

func (m *MockLink) MaxPayloadSize() uint32 {
	return m.cfg.MaxPayloadSize
}
