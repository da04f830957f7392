// Package wire implements the little-endian envelope that carries
// Request and Response messages in a Link frame. An envelope is a kind
// byte, a tag byte, a presence byte and the message's fields; it has no
// overall length field, and the only length-prefixed field is a tunnel
// payload (1-byte length).
package wire

import (
	"encoding/binary"
	"fmt"
)

// presence bits, one per optional field, packed into a single byte at
// the front of each message body.
const (
	hasValue uint8 = 1 << iota
	hasAckID
	hasPayload
)

// putUint32 appends the little-endian encoding of v to buf.
func putUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// getUint32 reads a little-endian uint32 from the front of buf, returning
// the value and the remaining bytes.
func getUint32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, fmt.Errorf("wire: need 4 bytes for uint32, have %d", len(buf))
	}
	return binary.LittleEndian.Uint32(buf), buf[4:], nil
}

// putBytes appends a length-prefixed (1-byte length, payload is capped at
// 8 bytes by the protocol) byte slice to buf.
func putBytes(buf []byte, p []byte) []byte {
	buf = append(buf, byte(len(p)))
	return append(buf, p...)
}

func getBytes(buf []byte) ([]byte, []byte, error) {
	if len(buf) < 1 {
		return nil, nil, fmt.Errorf("wire: need 1 byte for length prefix")
	}
	n := int(buf[0])
	buf = buf[1:]
	if len(buf) < n {
		return nil, nil, fmt.Errorf("wire: need %d bytes for payload, have %d", n, len(buf))
	}
	return buf[:n], buf[n:], nil
}
