package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"chainx/core/state"
	"chainx/core/types"
	"chainx/native/assets"
	"chainx/native/spot"
	"chainx/native/tokens"
)

// PseduIntentionCommon holds the fields shared by both deposit mining views.
type PseduIntentionCommon struct {
	ID             string           `json:"id"`
	Price          uint64           `json:"price"`
	Circulation    uint64           `json:"circulation"`
	Jackpot        uint64           `json:"jackpot"`
	JackpotAccount *types.AccountID `json:"jackpotAccount"`
}

// PseduIntentionInfo is the legacy view of a deposit mining token.
type PseduIntentionInfo struct {
	PseduIntentionCommon
	LastTotalDepositWeight       uint64 `json:"lastTotalDepositWeight"`
	LastTotalDepositWeightUpdate uint64 `json:"lastTotalDepositWeightUpdate"`
}

// PseduIntentionInfoV1 is the current view of a deposit mining token.
type PseduIntentionInfoV1 struct {
	PseduIntentionCommon
	LastTotalDepositWeight       *uint256.Int `json:"lastTotalDepositWeight"`
	LastTotalDepositWeightUpdate uint64       `json:"lastTotalDepositWeightUpdate"`
}

// PseduNominationRecord is the legacy view of an account's deposit weight.
type PseduNominationRecord struct {
	ID                           string `json:"id"`
	Balance                      uint64 `json:"balance"`
	LastTotalDepositWeight       uint64 `json:"lastTotalDepositWeight"`
	LastTotalDepositWeightUpdate uint64 `json:"lastTotalDepositWeightUpdate"`
}

// PseduNominationRecordV1 is the current view of an account's deposit weight.
type PseduNominationRecordV1 struct {
	ID                           string       `json:"id"`
	Balance                      uint64       `json:"balance"`
	LastTotalDepositWeight       *uint256.Int `json:"lastTotalDepositWeight"`
	LastTotalDepositWeightUpdate uint64       `json:"lastTotalDepositWeightUpdate"`
}

// PseduIntentions lists the deposit mining tokens with their legacy weights.
// It fails with a DeprecatedError once any profile has been migrated.
func (q *Querier) PseduIntentions(ctx context.Context, at *common.Hash) (_ []PseduIntentionInfo, err error) {
	_, snap, finish, err := q.begin(ctx, "pseduIntentions", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	list, err := tokens.Tokens(snap)
	if err != nil {
		return nil, err
	}
	out := make([]PseduIntentionInfo, 0, len(list))
	for _, token := range list {
		migrated, err := tokens.HasProfsV1(snap, token)
		if err != nil {
			return nil, err
		}
		if migrated {
			return nil, &DeprecatedError{Method: "chainx_getPseduIntentions"}
		}
		base, err := pseduCommon(snap, token)
		if err != nil {
			return nil, err
		}
		profs, err := tokens.ProfsOf(snap, token)
		if err != nil {
			return nil, err
		}
		info := PseduIntentionInfo{PseduIntentionCommon: *base}
		if profs != nil {
			info.LastTotalDepositWeight = profs.LastTotalDepositWeight
			info.LastTotalDepositWeightUpdate = profs.LastTotalDepositWeightUpdate
		}
		out = append(out, info)
	}
	return out, nil
}

// PseduIntentionsV1 lists the deposit mining tokens with current weights.
func (q *Querier) PseduIntentionsV1(ctx context.Context, at *common.Hash) (_ []PseduIntentionInfoV1, err error) {
	_, snap, finish, err := q.begin(ctx, "pseduIntentionsV1", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	list, err := tokens.Tokens(snap)
	if err != nil {
		return nil, err
	}
	out := make([]PseduIntentionInfoV1, 0, len(list))
	for _, token := range list {
		base, err := pseduCommon(snap, token)
		if err != nil {
			return nil, err
		}
		profs, err := tokens.ProfsV1Of(snap, token)
		if err != nil {
			return nil, err
		}
		info := PseduIntentionInfoV1{PseduIntentionCommon: *base, LastTotalDepositWeight: new(uint256.Int)}
		if profs != nil {
			info.LastTotalDepositWeight = orZero(profs.LastTotalDepositWeight)
			info.LastTotalDepositWeightUpdate = profs.LastTotalDepositWeightUpdate
		}
		out = append(out, info)
	}
	return out, nil
}

// PseduNominationRecords lists the legacy deposit weights of who. It fails
// with a DeprecatedError once any of them has been migrated.
func (q *Querier) PseduNominationRecords(ctx context.Context, who types.AccountID, at *common.Hash) (_ []PseduNominationRecord, err error) {
	_, snap, finish, err := q.begin(ctx, "pseduNominationRecords", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	list, err := tokens.Tokens(snap)
	if err != nil {
		return nil, err
	}
	out := make([]PseduNominationRecord, 0, len(list))
	for _, token := range list {
		migrated, err := tokens.HasWeightV1(snap, who, token)
		if err != nil {
			return nil, err
		}
		if migrated {
			return nil, &DeprecatedError{Method: "chainx_getPseduNominationRecords"}
		}
		balance, err := totalBalance(snap, who, token)
		if err != nil {
			return nil, err
		}
		record := PseduNominationRecord{ID: token, Balance: balance}
		weight, err := tokens.WeightOf(snap, who, token)
		if err != nil {
			return nil, err
		}
		if weight != nil {
			record.LastTotalDepositWeight = weight.LastDepositWeight
			record.LastTotalDepositWeightUpdate = weight.LastDepositWeightUpdate
		}
		out = append(out, record)
	}
	return out, nil
}

// PseduNominationRecordsV1 lists the deposit weights of who, upgrading legacy
// ones.
func (q *Querier) PseduNominationRecordsV1(ctx context.Context, who types.AccountID, at *common.Hash) (_ []PseduNominationRecordV1, err error) {
	_, snap, finish, err := q.begin(ctx, "pseduNominationRecordsV1", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	list, err := tokens.Tokens(snap)
	if err != nil {
		return nil, err
	}
	out := make([]PseduNominationRecordV1, 0, len(list))
	for _, token := range list {
		balance, err := totalBalance(snap, who, token)
		if err != nil {
			return nil, err
		}
		record := PseduNominationRecordV1{ID: token, Balance: balance, LastTotalDepositWeight: new(uint256.Int)}
		weight, err := tokens.WeightV1Of(snap, who, token)
		if err != nil {
			return nil, err
		}
		if weight != nil {
			record.LastTotalDepositWeight = orZero(weight.LastDepositWeight)
			record.LastTotalDepositWeightUpdate = weight.LastDepositWeightUpdate
		}
		out = append(out, record)
	}
	return out, nil
}

func pseduCommon(snap state.Snapshot, token string) (*PseduIntentionCommon, error) {
	out := &PseduIntentionCommon{ID: token}
	totals, err := assets.TotalBalanceOf(snap, token)
	if err != nil {
		return nil, err
	}
	out.Circulation = sumBalances(totals)
	if out.Price, err = averPriceInPCX(snap, token); err != nil {
		return nil, err
	}
	if out.JackpotAccount, err = tokens.JackpotAccount(snap, token); err != nil {
		return nil, err
	}
	if out.JackpotAccount != nil {
		if out.Jackpot, err = freeBalance(snap, *out.JackpotAccount, assets.PCX); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// averPriceInPCX returns the average price of the token/PCX market, zero when
// no such market exists.
func averPriceInPCX(snap state.Snapshot, token string) (uint64, error) {
	count, err := spot.PairCount(snap)
	if err != nil {
		return 0, err
	}
	for i := uint32(0); i < count; i++ {
		pair, err := spot.PairOf(snap, i)
		if err != nil {
			return 0, err
		}
		if pair == nil || pair.Base != token || pair.Quote != assets.PCX {
			continue
		}
		price, err := spot.PriceOf(snap, i)
		if err != nil || price == nil {
			return 0, err
		}
		return price.AverPrice, nil
	}
	return 0, nil
}

func totalBalance(snap state.Snapshot, who types.AccountID, token string) (uint64, error) {
	balances, ok, err := assets.BalanceOf(snap, who, token)
	if err != nil || !ok {
		return 0, err
	}
	return sumBalances(balances), nil
}

// sumBalances totals every balance type, saturating at math.MaxUint64.
func sumBalances(b assets.Balances) uint64 {
	total := new(uint256.Int)
	for _, v := range b {
		total.Add(total, uint256.NewInt(v))
	}
	return clampUint64(total)
}
