package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AccountIDLength is the byte length of an on-chain account identifier.
const AccountIDLength = 32

// AccountID identifies an account (a 32 byte public key).
type AccountID [AccountIDLength]byte

// ParseAccountID decodes a 0x-prefixed (or bare) hex string into an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	var id AccountID
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return id, fmt.Errorf("account id: %w", err)
	}
	if len(raw) != AccountIDLength {
		return id, fmt.Errorf("account id: expected %d bytes, got %d", AccountIDLength, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// MustAccountID is ParseAccountID for constants and tests.
func MustAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Bytes returns a copy of the identifier bytes.
func (a AccountID) Bytes() []byte {
	out := make([]byte, AccountIDLength)
	copy(out, a[:])
	return out
}

// IsZero reports whether the identifier is unset.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

func (a AccountID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText renders the identifier as 0x-prefixed hex.
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses 0x-prefixed hex.
func (a *AccountID) UnmarshalText(text []byte) error {
	id, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}
