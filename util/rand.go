package util

import mathrand "math/rand"

// RandomUint32 returns a pseudo-random value, used by the ping diagnostic
// command to pick a probe value when the caller doesn't supply one.
func RandomUint32() uint32 {
	return mathrand.Uint32()
}
