package core

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"chainx/core/page"
	"chainx/core/types"
	"chainx/native/bridge"
)

// DepositInfo is the view of one observed deposit.
type DepositInfo struct {
	Time         uint64          `json:"time"`
	TxID         string          `json:"txid"`
	Confirm      uint32          `json:"confirm"`
	TotalConfirm uint32          `json:"totalConfirm"`
	Address      string          `json:"address"`
	Balance      uint64          `json:"balance"`
	Token        string          `json:"token"`
	AccountID    types.AccountID `json:"accountid"`
	Memo         string          `json:"memo"`
	Status       bridge.TxState  `json:"status"`
}

// WithdrawInfo is the view of one withdrawal.
type WithdrawInfo struct {
	ID           uint32          `json:"id"`
	Height       uint64          `json:"height"`
	TxID         string          `json:"txid"`
	Confirm      uint32          `json:"confirm"`
	TotalConfirm uint32          `json:"totalConfirm"`
	Address      string          `json:"address"`
	Balance      uint64          `json:"balance"`
	Token        string          `json:"token"`
	AccountID    types.AccountID `json:"accountid"`
	Memo         string          `json:"memo"`
	Status       bridge.TxState  `json:"status"`
}

// WithdrawTxInfo is the view of the withdrawal transaction being signed.
type WithdrawTxInfo struct {
	Tx               string               `json:"tx"`
	SignStatus       bridge.SigState      `json:"signStatus"`
	WithdrawalIDList []uint32             `json:"withdrawalIdList"`
	TrusteeList      []bridge.TrusteeVote `json:"trusteeList"`
}

// TrusteeEntity is one multisig address of a trustee session.
type TrusteeEntity struct {
	Addr         string `json:"addr"`
	RedeemScript string `json:"redeemScript"`
}

// TrusteeCounts is the signature threshold of a trustee session.
type TrusteeCounts struct {
	Required uint32 `json:"required"`
	Total    uint32 `json:"total"`
}

// TrusteeSessionView is the view of one trustee session.
type TrusteeSessionView struct {
	SessionNumber uint32            `json:"sessionNumber"`
	TrusteeList   []types.AccountID `json:"trusteeList"`
	Counts        TrusteeCounts     `json:"counts"`
	HotEntity     TrusteeEntity     `json:"hotEntity"`
	ColdEntity    TrusteeEntity     `json:"coldEntity"`
}

// TrusteeProps is the view of the keys a trustee registered for one chain.
type TrusteeProps struct {
	About      string `json:"about"`
	HotEntity  string `json:"hotEntity"`
	ColdEntity string `json:"coldEntity"`
}

// DepositList pages the deposits observed on chain.
func (q *Querier) DepositList(ctx context.Context, chain types.Chain, pageIndex, pageSize uint32, at *common.Hash) (_ *page.Page[DepositInfo], err error) {
	_, snap, finish, err := q.begin(ctx, "depositList", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	records, err := bridge.Deposits(snap, chain)
	if err != nil {
		return nil, err
	}
	out := make([]DepositInfo, 0, len(records))
	for _, r := range records {
		out = append(out, DepositInfo{
			Time:         r.Time,
			TxID:         hexString(r.TxHash),
			Confirm:      r.Confirm,
			TotalConfirm: r.TotalConfirm,
			Address:      r.Address,
			Balance:      r.Balance,
			Token:        r.Token,
			AccountID:    r.Account,
			Memo:         r.Memo,
			Status:       r.State,
		})
	}
	return page.Paginate(out, pageIndex, pageSize)
}

// WithdrawalList pages the withdrawals on chain.
func (q *Querier) WithdrawalList(ctx context.Context, chain types.Chain, pageIndex, pageSize uint32, at *common.Hash) (_ *page.Page[WithdrawInfo], err error) {
	_, snap, finish, err := q.begin(ctx, "withdrawalList", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	records, err := bridge.Withdrawals(snap, chain)
	if err != nil {
		return nil, err
	}
	out := make([]WithdrawInfo, 0, len(records))
	for _, r := range records {
		out = append(out, WithdrawInfo{
			ID:           r.ID,
			Height:       r.Height,
			TxID:         hexString(r.TxHash),
			Confirm:      r.Confirm,
			TotalConfirm: r.TotalConfirm,
			Address:      r.Address,
			Balance:      r.Balance,
			Token:        r.Token,
			AccountID:    r.Account,
			Memo:         r.Memo,
			Status:       r.State,
		})
	}
	return page.Paginate(out, pageIndex, pageSize)
}

// Address lists the external addresses bound to who on chain. Only Bitcoin
// and Ethereum bindings exist.
func (q *Querier) Address(ctx context.Context, who types.AccountID, chain types.Chain, at *common.Hash) (_ []string, err error) {
	if chain != types.ChainBitcoin && chain != types.ChainEthereum {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChain, chain)
	}
	_, snap, finish, err := q.begin(ctx, "address", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	out := make([]string, 0)
	if chain == types.ChainBitcoin {
		addrs, err := bridge.BitcoinAddresses(snap, who)
		if err != nil {
			return nil, err
		}
		for _, a := range addrs {
			out = append(out, a.String())
		}
		return out, nil
	}
	addrs, err := bridge.EthereumAddresses(snap, who)
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		out = append(out, a.Hex())
	}
	return out, nil
}

// WithdrawTx returns the Bitcoin withdrawal transaction being signed. Other
// chains have none.
func (q *Querier) WithdrawTx(ctx context.Context, chain types.Chain, at *common.Hash) (_ *WithdrawTxInfo, err error) {
	if chain != types.ChainBitcoin {
		return nil, nil
	}
	_, snap, finish, err := q.begin(ctx, "withdrawTx", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	proposal, err := bridge.Proposal(snap)
	if err != nil || proposal == nil {
		return nil, err
	}
	return &WithdrawTxInfo{
		Tx:               hexString(proposal.Tx),
		SignStatus:       proposal.SigState,
		WithdrawalIDList: nonNil(proposal.WithdrawalIDs),
		TrusteeList:      nonNil(proposal.TrusteeList),
	}, nil
}

// TrusteeSessionInfo returns a Bitcoin trustee session; nil number selects
// the latest. Other chains and unknown sessions yield nil.
func (q *Querier) TrusteeSessionInfo(ctx context.Context, chain types.Chain, number *uint32, at *common.Hash) (_ *TrusteeSessionView, err error) {
	if chain != types.ChainBitcoin {
		return nil, nil
	}
	_, snap, finish, err := q.begin(ctx, "trusteeSessionInfo", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	n, info, err := bridge.Session(snap, chain, number)
	if err != nil || info == nil {
		return nil, err
	}
	return &TrusteeSessionView{
		SessionNumber: n,
		TrusteeList:   nonNil(info.TrusteeList),
		Counts:        TrusteeCounts{Required: info.Required, Total: uint32(len(info.TrusteeList))},
		HotEntity:     TrusteeEntity{Addr: info.HotAddress.String(), RedeemScript: hexString(info.HotRedeemScript)},
		ColdEntity:    TrusteeEntity{Addr: info.ColdAddress.String(), RedeemScript: hexString(info.ColdRedeemScript)},
	}, nil
}

// TrusteeInfo returns the trustee keys who registered, by chain. An account
// that never registered yields nil.
func (q *Querier) TrusteeInfo(ctx context.Context, who types.AccountID, at *common.Hash) (_ map[types.Chain]TrusteeProps, err error) {
	_, snap, finish, err := q.begin(ctx, "trusteeInfo", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	var out map[types.Chain]TrusteeProps
	for _, chain := range types.Chains() {
		props, err := bridge.TrusteePropsOf(snap, who, chain)
		if err != nil {
			return nil, err
		}
		if props == nil {
			continue
		}
		if out == nil {
			out = make(map[types.Chain]TrusteeProps)
		}
		out[chain] = TrusteeProps{
			About:      props.About,
			HotEntity:  hexString(props.HotEntity),
			ColdEntity: hexString(props.ColdEntity),
		}
	}
	return out, nil
}

func hexString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
