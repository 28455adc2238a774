package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"chainx/storage"
)

// ErrDecode marks a stored value that does not decode into the requested
// shape. Corrupt block headers report the same error.
var ErrDecode = storage.ErrDecode

// ReadWith fetches key under scheme h and decodes it into T. An absent key
// yields (nil, nil). Reading with a scheme other than the one the cell was
// written with finds nothing.
func ReadWith[T any](snap Snapshot, key Key, h Hasher) (*T, error) {
	data, err := snap.Get(key.PhysicalWith(h))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	out := new(T)
	if err := rlp.DecodeBytes(data, out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
	}
	return out, nil
}

// Read fetches key under its declared scheme.
func Read[T any](snap Snapshot, key Key) (*T, error) {
	return ReadWith[T](snap, key, key.Hasher)
}

// ReadOr is Read with a fallback for absent keys.
func ReadOr[T any](snap Snapshot, key Key, fallback T) (T, error) {
	value, err := Read[T](snap, key)
	if err != nil {
		var zero T
		return zero, err
	}
	if value == nil {
		return fallback, nil
	}
	return *value, nil
}

// Has reports whether anything is stored under key.
func Has(snap Snapshot, key Key) (bool, error) {
	data, err := snap.Get(key.Physical())
	if err != nil {
		return false, err
	}
	return len(data) > 0, nil
}
