package bridge

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// Network is the Bitcoin network an address belongs to.
type Network uint8

const (
	Mainnet Network = iota
	Testnet
)

// AddressKind is the Bitcoin output script an address pays to.
type AddressKind uint8

const (
	P2PKH AddressKind = iota
	P2SH
)

var (
	errAddressVersion = errors.New("bridge: unknown bitcoin address version")
	errAddressLength  = errors.New("bridge: bitcoin address payload must be 20 bytes")
)

var versionBytes = map[Network]map[AddressKind]byte{
	Mainnet: {P2PKH: 0x00, P2SH: 0x05},
	Testnet: {P2PKH: 0x6f, P2SH: 0xc4},
}

// BitcoinAddress is a decoded legacy Bitcoin address.
type BitcoinAddress struct {
	Network Network
	Kind    AddressKind
	Hash    [20]byte
}

// String renders the address in base58check.
func (a BitcoinAddress) String() string {
	version, ok := versionBytes[a.Network][a.Kind]
	if !ok {
		return fmt.Sprintf("invalid-address(%d,%d,%x)", a.Network, a.Kind, a.Hash)
	}
	return base58.CheckEncode(a.Hash[:], version)
}

func (a BitcoinAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseBitcoinAddress decodes a base58check P2PKH or P2SH address.
func ParseBitcoinAddress(s string) (BitcoinAddress, error) {
	var addr BitcoinAddress
	payload, version, err := base58.CheckDecode(s)
	if err != nil {
		return addr, fmt.Errorf("bridge: decode bitcoin address: %w", err)
	}
	if len(payload) != len(addr.Hash) {
		return addr, errAddressLength
	}
	found := false
	for network, kinds := range versionBytes {
		for kind, v := range kinds {
			if v == version {
				addr.Network, addr.Kind, found = network, kind, true
			}
		}
	}
	if !found {
		return addr, fmt.Errorf("%w: 0x%02x", errAddressVersion, version)
	}
	copy(addr.Hash[:], payload)
	return addr, nil
}
