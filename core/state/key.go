package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// Key is a logical storage key: the cell prefix, the encoded parameter (if
// any) and the scheme that maps it to a physical key.
type Key struct {
	Prefix string
	Param  []byte
	Hasher Hasher
}

// Physical returns the physical key under the key's own scheme.
func (k Key) Physical() []byte {
	return k.PhysicalWith(k.Hasher)
}

// PhysicalWith returns the physical key under h. Twox128 digests the prefix
// alone; Blake2_256 digests the prefix followed by the parameter.
func (k Key) PhysicalWith(h Hasher) []byte {
	if h == Twox128 {
		return h.Sum([]byte(k.Prefix))
	}
	buf := make([]byte, 0, len(k.Prefix)+len(k.Param))
	buf = append(buf, k.Prefix...)
	buf = append(buf, k.Param...)
	return h.Sum(buf)
}

func (k Key) String() string {
	if len(k.Param) == 0 {
		return k.Prefix
	}
	return fmt.Sprintf("%s(%x)", k.Prefix, k.Param)
}

// EncodeParam canonically encodes a cell parameter. Tuples are passed as
// structs or slices so that (account, index) style params encode as RLP lists.
func EncodeParam(param any) ([]byte, error) {
	return rlp.EncodeToBytes(param)
}

// Value describes an unparameterized storage cell.
type Value struct {
	Prefix string
	Hasher Hasher
}

// NewValue declares a fixed width cell for "<module> <item>".
func NewValue(module, item string) Value {
	return Value{Prefix: module + " " + item, Hasher: Twox128}
}

// Key returns the logical key of the cell.
func (v Value) Key() Key {
	return Key{Prefix: v.Prefix, Hasher: v.Hasher}
}

// Map describes a storage cell keyed by a parameter.
type Map struct {
	Prefix string
	Hasher Hasher
}

// NewMap declares a content addressed cell for "<module> <item>".
func NewMap(module, item string) Map {
	return Map{Prefix: module + " " + item, Hasher: Blake2_256}
}

// At returns the logical key for param. Parameters are static Go shapes, so
// an encoding failure is a programming error and panics.
func (m Map) At(param any) Key {
	encoded, err := EncodeParam(param)
	if err != nil {
		panic(fmt.Sprintf("state: encode %s param: %v", m.Prefix, err))
	}
	return Key{Prefix: m.Prefix, Param: encoded, Hasher: m.Hasher}
}
