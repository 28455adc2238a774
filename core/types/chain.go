package types

import (
	"fmt"
	"strings"
)

// Chain identifies a chain the bridge modules know about.
type Chain uint8

const (
	ChainChainX Chain = iota
	ChainBitcoin
	ChainEthereum
	ChainPolkadot
)

var chainNames = map[Chain]string{
	ChainChainX:   "ChainX",
	ChainBitcoin:  "Bitcoin",
	ChainEthereum: "Ethereum",
	ChainPolkadot: "Polkadot",
}

// Chains lists every known chain in declaration order.
func Chains() []Chain {
	return []Chain{ChainChainX, ChainBitcoin, ChainEthereum, ChainPolkadot}
}

func (c Chain) String() string {
	if name, ok := chainNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Chain(%d)", uint8(c))
}

// ParseChain resolves a chain name case-insensitively.
func ParseChain(s string) (Chain, error) {
	trimmed := strings.TrimSpace(s)
	for chain, name := range chainNames {
		if strings.EqualFold(name, trimmed) {
			return chain, nil
		}
	}
	return 0, fmt.Errorf("unknown chain %q", s)
}

func (c Chain) MarshalText() ([]byte, error) {
	if _, ok := chainNames[c]; !ok {
		return nil, fmt.Errorf("unknown chain %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Chain) UnmarshalText(text []byte) error {
	parsed, err := ParseChain(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
