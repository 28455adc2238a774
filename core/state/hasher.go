package state

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Hasher selects how a logical key is turned into the physical storage key.
// Each storage cell declares its scheme statically; readers never guess it.
type Hasher uint8

const (
	// Twox128 is the fixed width scheme used by unparameterized cells: two
	// xxhash64 digests of the prefix with seeds 0 and 1, each little-endian.
	Twox128 Hasher = iota
	// Blake2_256 is the content addressed scheme used by map cells: the
	// blake2b-256 digest of prefix ‖ encoded parameter.
	Blake2_256
)

func (h Hasher) String() string {
	switch h {
	case Twox128:
		return "twox128"
	case Blake2_256:
		return "blake2_256"
	default:
		return fmt.Sprintf("hasher(%d)", uint8(h))
	}
}

// Sum digests data under the scheme.
func (h Hasher) Sum(data []byte) []byte {
	switch h {
	case Twox128:
		return twox128(data)
	case Blake2_256:
		sum := blake2b.Sum256(data)
		return sum[:]
	default:
		panic(fmt.Sprintf("state: unknown hasher %d", uint8(h)))
	}
}

func twox128(data []byte) []byte {
	out := make([]byte, 16)
	for seed := uint64(0); seed < 2; seed++ {
		d := xxhash.NewWithSeed(seed)
		_, _ = d.Write(data)
		binary.LittleEndian.PutUint64(out[seed*8:], d.Sum64())
	}
	return out
}
