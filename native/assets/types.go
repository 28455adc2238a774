package assets

import (
	"fmt"

	"chainx/core/types"
)

// AssetType names one of the balance buckets an account holds per token.
type AssetType uint8

const (
	Free AssetType = iota
	ReservedStaking
	ReservedStakingRevocation
	ReservedWithdrawal
	ReservedDexSpot
	ReservedDexFuture
	ReservedCurrency
	ReservedXRC20
)

var assetTypeNames = [...]string{
	Free:                      "Free",
	ReservedStaking:           "ReservedStaking",
	ReservedStakingRevocation: "ReservedStakingRevocation",
	ReservedWithdrawal:        "ReservedWithdrawal",
	ReservedDexSpot:           "ReservedDexSpot",
	ReservedDexFuture:         "ReservedDexFuture",
	ReservedCurrency:          "ReservedCurrency",
	ReservedXRC20:             "ReservedXRC20",
}

// AssetTypes lists every balance bucket in declaration order.
func AssetTypes() []AssetType {
	out := make([]AssetType, len(assetTypeNames))
	for i := range assetTypeNames {
		out[i] = AssetType(i)
	}
	return out
}

func (t AssetType) String() string {
	if int(t) < len(assetTypeNames) {
		return assetTypeNames[t]
	}
	return fmt.Sprintf("AssetType(%d)", uint8(t))
}

// MarshalText renders the bucket name so balance maps serialise with named keys.
func (t AssetType) MarshalText() ([]byte, error) {
	if int(t) >= len(assetTypeNames) {
		return nil, fmt.Errorf("assets: unknown asset type %d", uint8(t))
	}
	return []byte(assetTypeNames[t]), nil
}

func (t *AssetType) UnmarshalText(text []byte) error {
	for i, name := range assetTypeNames {
		if name == string(text) {
			*t = AssetType(i)
			return nil
		}
	}
	return fmt.Errorf("assets: unknown asset type %q", text)
}

// AssetLimit names an operation that can be switched off per token.
type AssetLimit uint8

const (
	CanMove AssetLimit = iota
	CanTransfer
	CanDeposit
	CanWithdraw
	CanDestroyWithdrawal
	CanDestroyFree
)

var assetLimitNames = [...]string{
	CanMove:              "CanMove",
	CanTransfer:          "CanTransfer",
	CanDeposit:           "CanDeposit",
	CanWithdraw:          "CanWithdraw",
	CanDestroyWithdrawal: "CanDestroyWithdrawal",
	CanDestroyFree:       "CanDestroyFree",
}

// AssetLimits lists every limit in declaration order.
func AssetLimits() []AssetLimit {
	out := make([]AssetLimit, len(assetLimitNames))
	for i := range assetLimitNames {
		out[i] = AssetLimit(i)
	}
	return out
}

func (l AssetLimit) String() string {
	if int(l) < len(assetLimitNames) {
		return assetLimitNames[l]
	}
	return fmt.Sprintf("AssetLimit(%d)", uint8(l))
}

func (l AssetLimit) MarshalText() ([]byte, error) {
	if int(l) >= len(assetLimitNames) {
		return nil, fmt.Errorf("assets: unknown asset limit %d", uint8(l))
	}
	return []byte(assetLimitNames[l]), nil
}

func (l *AssetLimit) UnmarshalText(text []byte) error {
	for i, name := range assetLimitNames {
		if name == string(text) {
			*l = AssetLimit(i)
			return nil
		}
	}
	return fmt.Errorf("assets: unknown asset limit %q", text)
}

// Asset is the registration record of a token.
type Asset struct {
	Token     string
	TokenName string
	Chain     types.Chain
	Precision uint16
	Desc      string
}

// AssetRecord is the stored form of an asset together with its status.
type AssetRecord struct {
	Asset        Asset
	Valid        bool
	RegisteredAt uint64
}

// BalanceEntry is one bucket of a stored balance map.
type BalanceEntry struct {
	Type   AssetType
	Amount uint64
}

// LimitEntry is one override of a stored limit map.
type LimitEntry struct {
	Limit   AssetLimit
	Allowed bool
}

// Balances maps every bucket to an amount.
type Balances map[AssetType]uint64

// NewBalances returns a map with every bucket present and zero, overlaid with
// the stored entries.
func NewBalances(entries []BalanceEntry) Balances {
	out := make(Balances, len(assetTypeNames))
	for _, t := range AssetTypes() {
		out[t] = 0
	}
	for _, e := range entries {
		out[e.Type] = e.Amount
	}
	return out
}

// Limits maps every operation to whether it is allowed.
type Limits map[AssetLimit]bool

// NewLimits returns a map with every limit allowed, overlaid with the stored
// overrides.
func NewLimits(entries []LimitEntry) Limits {
	out := make(Limits, len(assetLimitNames))
	for _, l := range AssetLimits() {
		out[l] = true
	}
	for _, e := range entries {
		out[e.Limit] = e.Allowed
	}
	return out
}
