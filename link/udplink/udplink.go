// Package udplink is a concrete, non-mock Link backend that carries
// frames over a UDP socket instead of a radio. It's useful for running
// primary/secondary endpoints across two hosts (or two processes on one
// host) before a real radio backend is wired in, and demonstrates the
// pluggable-backend shape spec.md §9 calls for. Adapted from
// easymesh's util/udp/udp.go.
package udplink

import (
	"fmt"
	"net"
	"time"

	"github.com/nerfbridge/nerfbridge/link"
	"github.com/nerfbridge/nerfbridge/util/udp"
)

// UDPLink implements link.Link over a connected UDP socket.
type UDPLink struct {
	conn       *net.UDPConn
	peerAddr   *net.UDPAddr
	maxPayload uint32

	// receiveDeadline bounds how long a single Receive call blocks;
	// zero sets no read deadline, so Receive blocks until a datagram
	// arrives and never returns NotReady for an empty socket.
	receiveDeadline time.Duration
}

// Open binds bindAddr and targets peerAddr for Transmit/Beacon. Both are
// "host:port" strings resolved with net.ResolveUDPAddr.
func Open(bindAddr, peerAddr string, maxPayload uint32, receiveDeadline time.Duration) (*UDPLink, error) {
	conn, err := udp.OpenUdp(bindAddr)
	if err != nil {
		return nil, fmt.Errorf("udplink: open %s: %w", bindAddr, err)
	}

	addr, err := net.ResolveUDPAddr("udp", peerAddr)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("udplink: resolve peer %s: %w", peerAddr, err)
	}

	return &UDPLink{
		conn:            conn,
		peerAddr:        addr,
		maxPayload:      maxPayload,
		receiveDeadline: receiveDeadline,
	}, nil
}

// Close releases the underlying socket.
func (u *UDPLink) Close() error {
	return u.conn.Close()
}

// Beacon sends a zero-length frame to announce presence.
func (u *UDPLink) Beacon() (link.TransmitResult, error) {
	if err := udp.UdpWrite(u.conn, u.peerAddr, []byte{}); err != nil {
		return link.TransmitError, err
	}
	return link.TransmitSuccess, nil
}

// Receive polls for one datagram, waiting up to receiveDeadline.
func (u *UDPLink) Receive() (link.Frame, link.ReceiveResult, error) {
	buf := make([]byte, u.maxPayload)
	if u.receiveDeadline > 0 {
		u.conn.SetReadDeadline(time.Now().Add(u.receiveDeadline))
	}

	n, _, err := u.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, link.ReceiveNotReady, nil
		}
		return nil, link.ReceiveNotReady, err
	}
	return link.Frame(buf[:n]), link.ReceiveSuccess, nil
}

// Transmit sends frame to the configured peer.
func (u *UDPLink) Transmit(frame link.Frame) (link.TransmitResult, error) {
	if err := udp.UdpWrite(u.conn, u.peerAddr, frame); err != nil {
		return link.TransmitError, err
	}
	return link.TransmitSuccess, nil
}

// MaxPayloadSize returns the configured frame size ceiling.
func (u *UDPLink) MaxPayloadSize() uint32 {
	return u.maxPayload
}
