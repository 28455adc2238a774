package core

import (
	"context"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"chainx/core/page"
	"chainx/core/types"
	"chainx/native/assets"
	"chainx/native/bridge"
)

// AssetInfo is the balance view of one token held by an account.
type AssetInfo struct {
	Name    string          `json:"name"`
	Details assets.Balances `json:"details"`
}

// TotalAssetInfo is the issuance view of one registered token.
type TotalAssetInfo struct {
	Name       string          `json:"name"`
	TokenName  string          `json:"tokenName"`
	Chain      types.Chain     `json:"chain"`
	Precision  uint16          `json:"precision"`
	Desc       string          `json:"desc"`
	Online     bool            `json:"online"`
	Details    assets.Balances `json:"details"`
	LimitProps assets.Limits   `json:"limitProps"`
}

// DepositLimit is the minimal deposit accepted for a token.
type DepositLimit struct {
	MinimalDeposit uint64 `json:"minimalDeposit"`
}

// WithdrawalLimit is the minimal withdrawal and fee of a token.
type WithdrawalLimit struct {
	MinimalWithdrawal uint64 `json:"minimalWithdrawal"`
	Fee               uint64 `json:"fee"`
}

// AssetsOf pages the valid tokens account holds a balance record for.
func (q *Querier) AssetsOf(ctx context.Context, who types.AccountID, pageIndex, pageSize uint32, at *common.Hash) (_ *page.Page[AssetInfo], err error) {
	_, snap, finish, err := q.begin(ctx, "assetsOf", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	records, err := assets.Registered(snap)
	if err != nil {
		return nil, err
	}
	var out []AssetInfo
	for _, record := range records {
		if !record.Valid {
			continue
		}
		balances, ok, err := assets.BalanceOf(snap, who, record.Asset.Token)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, AssetInfo{Name: record.Asset.Token, Details: balances})
	}
	return page.Paginate(out, pageIndex, pageSize)
}

// Assets pages every registered token with its issuance and limits.
func (q *Querier) Assets(ctx context.Context, pageIndex, pageSize uint32, at *common.Hash) (_ *page.Page[TotalAssetInfo], err error) {
	_, snap, finish, err := q.begin(ctx, "assets", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	records, err := assets.Registered(snap)
	if err != nil {
		return nil, err
	}
	out := make([]TotalAssetInfo, 0, len(records))
	for _, record := range records {
		token := record.Asset.Token
		totals, err := assets.TotalBalanceOf(snap, token)
		if err != nil {
			return nil, err
		}
		limits, err := assets.LimitsOf(snap, token)
		if err != nil {
			return nil, err
		}
		out = append(out, TotalAssetInfo{
			Name:       token,
			TokenName:  record.Asset.TokenName,
			Chain:      record.Asset.Chain,
			Precision:  record.Asset.Precision,
			Desc:       record.Asset.Desc,
			Online:     record.Valid,
			Details:    totals,
			LimitProps: limits,
		})
	}
	return page.Paginate(out, pageIndex, pageSize)
}

// DepositLimit returns the minimal deposit of token. Only BTC carries a
// limit; other and malformed tokens yield nil.
func (q *Querier) DepositLimit(ctx context.Context, token string, at *common.Hash) (_ *DepositLimit, err error) {
	if !assets.IsValidToken(token) || token != assets.BTC {
		return nil, nil
	}
	_, snap, finish, err := q.begin(ctx, "depositLimit", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	minimal, err := bridge.MinDeposit(snap)
	if err != nil {
		return nil, err
	}
	return &DepositLimit{MinimalDeposit: minimal}, nil
}

// WithdrawalLimit returns the withdrawal fee of token and the smallest
// amount worth withdrawing: one and a half fees plus the deposit dust limit,
// saturating at the largest balance.
func (q *Querier) WithdrawalLimit(ctx context.Context, token string, at *common.Hash) (_ *WithdrawalLimit, err error) {
	if !assets.IsValidToken(token) || token != assets.BTC {
		return nil, nil
	}
	_, snap, finish, err := q.begin(ctx, "withdrawalLimit", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	fee, err := bridge.WithdrawalFee(snap)
	if err != nil {
		return nil, err
	}
	dust, err := bridge.MinDeposit(snap)
	if err != nil {
		return nil, err
	}
	return &WithdrawalLimit{MinimalWithdrawal: minimalWithdrawal(fee, dust), Fee: fee}, nil
}

func minimalWithdrawal(fee, dust uint64) uint64 {
	v := new(uint256.Int).Mul(uint256.NewInt(fee), uint256.NewInt(3))
	v.Div(v, uint256.NewInt(2))
	v.Add(v, uint256.NewInt(dust))
	return clampUint64(v)
}

// clampUint64 narrows v, saturating at math.MaxUint64.
func clampUint64(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

// maxAddressLength bounds the address and memo accepted by VerifyAddress.
const maxAddressLength = 256

// VerifyAddress reports whether addr is an acceptable withdrawal address for
// token. Malformed input and verifier failures both report false.
func (q *Querier) VerifyAddress(ctx context.Context, token, addr, memo string, at *common.Hash) (_ bool, err error) {
	if !assets.IsValidToken(token) || len(addr) > maxAddressLength || len(memo) > maxAddressLength {
		return false, nil
	}
	ctx, snap, finish, err := q.begin(ctx, "verifyAddress", at)
	if err != nil {
		return false, err
	}
	defer func() { finish(err) }()

	if verr := q.verifier.VerifyAddress(ctx, snap, token, []byte(addr), []byte(memo)); verr != nil {
		q.logger.Debug("address rejected", "token", token, "error", verr)
		return false, nil
	}
	return true, nil
}
