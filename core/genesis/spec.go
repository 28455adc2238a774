// Package genesis loads YAML state fixtures and commits them as blocks so a
// query node can be exercised without a block producer.
package genesis

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"chainx/core/types"
	"chainx/native/assets"
	"chainx/native/bridge"
	"chainx/native/spot"
)

type Spec struct {
	Timestamp       string                                                     `yaml:"timestamp"`
	Assets          []AssetSpec                                                `yaml:"assets"`
	Balances        map[types.AccountID]map[string]map[assets.AssetType]uint64 `yaml:"balances"`
	TradingPairs    []PairSpec                                                 `yaml:"tradingPairs"`
	Orders          []OrderSpec                                                `yaml:"orders"`
	Staking         *StakingSpec                                               `yaml:"staking,omitempty"`
	PseduIntentions []PseduIntentionSpec                                       `yaml:"pseduIntentions"`
	Bridge          *BridgeSpec                                                `yaml:"bridge,omitempty"`
	Accounts        AccountsSpec                                               `yaml:"accounts"`
	Fees            *FeeSpec                                                   `yaml:"fees,omitempty"`

	timestamp time.Time
}

type AssetSpec struct {
	Token     string                     `yaml:"token"`
	TokenName string                     `yaml:"tokenName"`
	Chain     types.Chain                `yaml:"chain"`
	Precision uint16                     `yaml:"precision"`
	Desc      string                     `yaml:"desc"`
	Online    *bool                      `yaml:"online,omitempty"`
	Limits    map[assets.AssetLimit]bool `yaml:"limits,omitempty"`
}

type PairSpec struct {
	Base             string `yaml:"base"`
	Quote            string `yaml:"quote"`
	PipPrecision     uint32 `yaml:"pipPrecision"`
	TickPrecision    uint32 `yaml:"tickPrecision"`
	Online           *bool  `yaml:"online,omitempty"`
	PriceFluctuation uint64 `yaml:"priceFluctuation"`
	LastPrice        uint64 `yaml:"lastPrice"`
	AverPrice        uint64 `yaml:"averPrice"`
}

type OrderSpec struct {
	Pair          uint32          `yaml:"pair"`
	Submitter     types.AccountID `yaml:"submitter"`
	Side          spot.Side       `yaml:"side"`
	Amount        uint64          `yaml:"amount"`
	Price         uint64          `yaml:"price"`
	AlreadyFilled uint64          `yaml:"alreadyFilled"`
}

type StakingSpec struct {
	BondingDuration  uint64                     `yaml:"bondingDuration"`
	Validators       []types.AccountID          `yaml:"validators"`
	Intentions       []IntentionSpec            `yaml:"intentions"`
	Nominations      []NominationSpec           `yaml:"nominations"`
	LastRenomination map[types.AccountID]uint64 `yaml:"lastRenomination,omitempty"`
}

type IntentionSpec struct {
	Account                   types.AccountID  `yaml:"account"`
	Name                      string           `yaml:"name"`
	URL                       string           `yaml:"url"`
	About                     string           `yaml:"about"`
	Active                    bool             `yaml:"active"`
	SessionKey                *types.AccountID `yaml:"sessionKey,omitempty"`
	JackpotAccount            *types.AccountID `yaml:"jackpotAccount,omitempty"`
	TotalNomination           uint64           `yaml:"totalNomination"`
	LastTotalVoteWeight       uint64           `yaml:"lastTotalVoteWeight"`
	LastTotalVoteWeightUpdate uint64           `yaml:"lastTotalVoteWeightUpdate"`
	// V1 stores the profile in the widened layout.
	V1 bool `yaml:"v1"`
}

type NominationSpec struct {
	Nominator            types.AccountID `yaml:"nominator"`
	Nominee              types.AccountID `yaml:"nominee"`
	Nomination           uint64          `yaml:"nomination"`
	LastVoteWeight       uint64          `yaml:"lastVoteWeight"`
	LastVoteWeightUpdate uint64          `yaml:"lastVoteWeightUpdate"`
	V1                   bool            `yaml:"v1"`
}

type PseduIntentionSpec struct {
	Token                        string              `yaml:"token"`
	JackpotAccount               *types.AccountID    `yaml:"jackpotAccount,omitempty"`
	LastTotalDepositWeight       uint64              `yaml:"lastTotalDepositWeight"`
	LastTotalDepositWeightUpdate uint64              `yaml:"lastTotalDepositWeightUpdate"`
	V1                           bool                `yaml:"v1"`
	Deposits                     []DepositWeightSpec `yaml:"deposits"`
}

type DepositWeightSpec struct {
	Account                 types.AccountID `yaml:"account"`
	LastDepositWeight       uint64          `yaml:"lastDepositWeight"`
	LastDepositWeightUpdate uint64          `yaml:"lastDepositWeightUpdate"`
	V1                      bool            `yaml:"v1"`
}

type BridgeSpec struct {
	MinDeposit       *uint64                          `yaml:"minDeposit,omitempty"`
	WithdrawalFee    uint64                           `yaml:"withdrawalFee"`
	BitcoinBindings  map[types.AccountID][]string     `yaml:"bitcoinBindings,omitempty"`
	EthereumBindings map[types.AccountID][]string     `yaml:"ethereumBindings,omitempty"`
	MultiSig         map[types.Chain]types.AccountID  `yaml:"multiSig,omitempty"`
	Trustees         []TrusteeSpec                    `yaml:"trustees"`
	Sessions         map[types.Chain][]SessionSpec    `yaml:"sessions,omitempty"`
	Deposits         map[types.Chain][]DepositSpec    `yaml:"deposits,omitempty"`
	Withdrawals      map[types.Chain][]WithdrawalSpec `yaml:"withdrawals,omitempty"`
	Proposal         *ProposalSpec                    `yaml:"proposal,omitempty"`
}

type TrusteeSpec struct {
	Account    types.AccountID `yaml:"account"`
	Chain      types.Chain     `yaml:"chain"`
	About      string          `yaml:"about"`
	HotEntity  string          `yaml:"hotEntity"`
	ColdEntity string          `yaml:"coldEntity"`
}

type SessionSpec struct {
	Trustees         []types.AccountID `yaml:"trustees"`
	Required         uint32            `yaml:"required"`
	HotAddress       string            `yaml:"hotAddress"`
	HotRedeemScript  string            `yaml:"hotRedeemScript"`
	ColdAddress      string            `yaml:"coldAddress"`
	ColdRedeemScript string            `yaml:"coldRedeemScript"`
}

type DepositSpec struct {
	TxID         string          `yaml:"txid"`
	Account      types.AccountID `yaml:"account"`
	Token        string          `yaml:"token"`
	Address      string          `yaml:"address"`
	Balance      uint64          `yaml:"balance"`
	Memo         string          `yaml:"memo"`
	Confirm      uint32          `yaml:"confirm"`
	TotalConfirm uint32          `yaml:"totalConfirm"`
	Time         uint64          `yaml:"time"`
	State        bridge.TxState  `yaml:"state"`
}

type WithdrawalSpec struct {
	ID           uint32          `yaml:"id"`
	TxID         string          `yaml:"txid"`
	Account      types.AccountID `yaml:"account"`
	Token        string          `yaml:"token"`
	Address      string          `yaml:"address"`
	Balance      uint64          `yaml:"balance"`
	Memo         string          `yaml:"memo"`
	Height       uint64          `yaml:"height"`
	Confirm      uint32          `yaml:"confirm"`
	TotalConfirm uint32          `yaml:"totalConfirm"`
	State        bridge.TxState  `yaml:"state"`
}

type ProposalSpec struct {
	Finished      bool              `yaml:"finished"`
	WithdrawalIDs []uint32          `yaml:"withdrawalIds"`
	Tx            string            `yaml:"tx"`
	Signed        []types.AccountID `yaml:"signed"`
	Pending       []types.AccountID `yaml:"pending"`
}

type AccountsSpec struct {
	Team    *types.AccountID `yaml:"team,omitempty"`
	Council *types.AccountID `yaml:"council,omitempty"`
}

type FeeSpec struct {
	BaseFee uint64            `yaml:"baseFee"`
	ByteFee uint64            `yaml:"byteFee"`
	Weights map[string]uint64 `yaml:"weights"`
}

// LoadSpec reads and validates the fixture at path. Unknown fields are
// rejected.
func LoadSpec(path string) (*Spec, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("fixture path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %q: %w", path, err)
	}
	spec, err := ParseSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("fixture %q: %w", path, err)
	}
	return spec, nil
}

// ParseSpec decodes and validates a YAML fixture.
func ParseSpec(raw []byte) (*Spec, error) {
	var spec Spec
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}
	return &spec, nil
}

// BlockTimestamp returns the timestamp recorded in the committed header.
func (s *Spec) BlockTimestamp() time.Time { return s.timestamp }

func (s *Spec) validate() error {
	if strings.TrimSpace(s.Timestamp) == "" {
		s.timestamp = time.Unix(0, 0).UTC()
	} else {
		ts, err := time.Parse(time.RFC3339, s.Timestamp)
		if err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		s.timestamp = ts.UTC()
	}

	registered := make(map[string]types.Chain, len(s.Assets))
	for i, a := range s.Assets {
		if err := assets.ValidateToken(a.Token); err != nil {
			return fmt.Errorf("assets[%d]: %w", i, err)
		}
		if _, dup := registered[a.Token]; dup {
			return fmt.Errorf("assets[%d]: duplicate token %s", i, a.Token)
		}
		registered[a.Token] = a.Chain
	}
	for account, held := range s.Balances {
		for token := range held {
			if _, ok := registered[token]; !ok {
				return fmt.Errorf("balances[%s]: unknown token %s", account, token)
			}
		}
	}

	for i, p := range s.TradingPairs {
		if _, ok := registered[p.Base]; !ok {
			return fmt.Errorf("tradingPairs[%d]: unknown base %s", i, p.Base)
		}
		if _, ok := registered[p.Quote]; !ok {
			return fmt.Errorf("tradingPairs[%d]: unknown quote %s", i, p.Quote)
		}
		pair := spot.TradingPair{TickPrecision: p.TickPrecision, PriceFluctuation: p.PriceFluctuation}
		if _, err := pair.Tick(); err != nil {
			return fmt.Errorf("tradingPairs[%d]: %w", i, err)
		}
	}
	for i, o := range s.Orders {
		if int(o.Pair) >= len(s.TradingPairs) {
			return fmt.Errorf("orders[%d]: %w: %d", i, spot.ErrTradingPairIndex, o.Pair)
		}
		if o.Amount == 0 || o.Price == 0 {
			return fmt.Errorf("orders[%d]: amount and price must be positive", i)
		}
		if o.AlreadyFilled > o.Amount {
			return fmt.Errorf("orders[%d]: filled %d exceeds amount %d", i, o.AlreadyFilled, o.Amount)
		}
	}

	for i, p := range s.PseduIntentions {
		if _, ok := registered[p.Token]; !ok {
			return fmt.Errorf("pseduIntentions[%d]: unknown token %s", i, p.Token)
		}
	}

	if s.Bridge != nil {
		if err := s.Bridge.validate(); err != nil {
			return fmt.Errorf("bridge: %w", err)
		}
	}
	if s.Fees != nil {
		for call := range s.Fees.Weights {
			if !strings.Contains(call, "|") {
				return fmt.Errorf("fees: call %q must be <module>|<method>", call)
			}
		}
	}
	return nil
}

func (b *BridgeSpec) validate() error {
	for account, addrs := range b.BitcoinBindings {
		for _, addr := range addrs {
			if _, err := bridge.ParseBitcoinAddress(addr); err != nil {
				return fmt.Errorf("bitcoinBindings[%s]: %w", account, err)
			}
		}
	}
	for account, addrs := range b.EthereumBindings {
		for _, addr := range addrs {
			if !common.IsHexAddress(addr) {
				return fmt.Errorf("ethereumBindings[%s]: invalid address %q", account, addr)
			}
		}
	}
	for i, t := range b.Trustees {
		if _, err := decodeHex(t.HotEntity); err != nil {
			return fmt.Errorf("trustees[%d].hotEntity: %w", i, err)
		}
		if _, err := decodeHex(t.ColdEntity); err != nil {
			return fmt.Errorf("trustees[%d].coldEntity: %w", i, err)
		}
	}
	for chain, sessions := range b.Sessions {
		for i, session := range sessions {
			if session.Required == 0 || int(session.Required) > len(session.Trustees) {
				return fmt.Errorf("sessions[%s][%d]: required %d of %d trustees", chain, i, session.Required, len(session.Trustees))
			}
			for _, addr := range []string{session.HotAddress, session.ColdAddress} {
				if addr == "" {
					continue
				}
				if _, err := bridge.ParseBitcoinAddress(addr); err != nil {
					return fmt.Errorf("sessions[%s][%d]: %w", chain, i, err)
				}
			}
		}
	}
	if b.Proposal != nil {
		if _, err := decodeHex(b.Proposal.Tx); err != nil {
			return fmt.Errorf("proposal.tx: %w", err)
		}
	}
	return nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}
