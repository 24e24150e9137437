// Package rand generates the short base62 identifiers attached to
// outbound REST requests for server-side correlation. Not
// security-sensitive; a PCG seeded once from crypto/rand is plenty.
package rand

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	mu  sync.Mutex
	rng = newRNG()
)

func newRNG() *rand.Rand {
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		panic("unreachable")
	}
	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(seed[:8]),
		binary.LittleEndian.Uint64(seed[8:]),
	))
}

// RequestID returns a base62 string of the given length.
func RequestID(length int) string {
	buf := make([]byte, length)

	mu.Lock()
	for i := range buf {
		buf[i] = charset[rng.IntN(len(charset))]
	}
	mu.Unlock()

	return string(buf)
}
