package core

import (
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedChain is returned when a view has no support for the
	// requested chain.
	ErrUnsupportedChain = errors.New("query: chain not supported")
	// ErrHexPrefix is returned when an encoded call lacks the 0x prefix.
	ErrHexPrefix = errors.New("query: hex string must start with 0x")
	// ErrHexDecode is returned when an encoded call is not valid hex.
	ErrHexDecode = errors.New("query: invalid hex string")
)

// DeprecatedError signals that a legacy view can no longer be served for the
// requested state and names the method to use instead.
type DeprecatedError struct {
	Method string
}

func (e *DeprecatedError) Error() string {
	return fmt.Sprintf("query: %s is deprecated for this state, use %sV1", e.Method, e.Method)
}

// RuntimeError carries a failure reported by a collaborator that computes
// results on behalf of the query layer.
type RuntimeError struct {
	Payload []byte
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("query: runtime error: %s", e.Payload)
}

// Hex returns the payload as 0x-prefixed hex.
func (e *RuntimeError) Hex() string {
	return "0x" + hex.EncodeToString(e.Payload)
}
