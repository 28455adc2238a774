package rpc

import (
	"context"
	"fmt"
)

type methodFunc func(ctx context.Context, p params) (interface{}, error)

func (s *Server) methods() map[string]methodFunc {
	return map[string]methodFunc{
		"chainx_getAssetsByAccount":          s.getAssetsByAccount,
		"chainx_getAssets":                   s.getAssets,
		"chainx_getTradingPairs":             s.getTradingPairs,
		"chainx_getQuotations":               s.getQuotations,
		"chainx_getOrders":                   s.getOrders,
		"chainx_getNominationRecords":        s.getNominationRecords,
		"chainx_getNominationRecordsV1":      s.getNominationRecordsV1,
		"chainx_getPseduNominationRecords":   s.getPseduNominationRecords,
		"chainx_getPseduNominationRecordsV1": s.getPseduNominationRecordsV1,
		"chainx_getDepositList":              s.getDepositList,
		"chainx_getWithdrawalList":           s.getWithdrawalList,
		"chainx_getAddressByAccount":         s.getAddressByAccount,
		"chainx_getNextRenominateByAccount":  s.getNextRenominateByAccount,
		"chainx_getIntentions":               s.getIntentions,
		"chainx_getIntentionsV1":             s.getIntentionsV1,
		"chainx_getPseduIntentions":          s.getPseduIntentions,
		"chainx_getPseduIntentionsV1":        s.getPseduIntentionsV1,
		"chainx_getIntentionByAccount":       s.getIntentionByAccount,
		"chainx_getDepositLimitByToken":      s.getDepositLimitByToken,
		"chainx_getWithdrawalLimitByToken":   s.getWithdrawalLimitByToken,
		"chainx_verifyAddressValidity":       s.verifyAddressValidity,
		"chainx_getWithdrawTx":               s.getWithdrawTx,
		"chainx_getTrusteeSessionInfo":       s.getTrusteeSessionInfo,
		"chainx_getTrusteeInfoByAccount":     s.getTrusteeInfoByAccount,
		"chainx_getFeeByCallAndLength":       s.getFeeByCallAndLength,
		"chainx_getFeeWeightMap":             s.getFeeWeightMap,
		"chainx_particularAccounts":          s.particularAccounts,
		"chain_getHeader":                    s.getHeader,
		"chain_getHeaderByNumber":            s.getHeaderByNumber,
		"chainx_getBlockByNumber":            s.getHeaderByNumber,
	}
}

// --- Assets ---

func (s *Server) getAssetsByAccount(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(3)
	if err != nil {
		return nil, err
	}
	who, err := p.account(0, "account")
	if err != nil {
		return nil, err
	}
	index, size, err := p.pageArgs(1)
	if err != nil {
		return nil, err
	}
	return s.querier.AssetsOf(ctx, who, index, size, at)
}

func (s *Server) getAssets(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(2)
	if err != nil {
		return nil, err
	}
	index, size, err := p.pageArgs(0)
	if err != nil {
		return nil, err
	}
	return s.querier.Assets(ctx, index, size, at)
}

func (s *Server) getDepositLimitByToken(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(1)
	if err != nil {
		return nil, err
	}
	token, err := p.string(0, "token")
	if err != nil {
		return nil, err
	}
	return s.querier.DepositLimit(ctx, token, at)
}

func (s *Server) getWithdrawalLimitByToken(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(1)
	if err != nil {
		return nil, err
	}
	token, err := p.string(0, "token")
	if err != nil {
		return nil, err
	}
	return s.querier.WithdrawalLimit(ctx, token, at)
}

func (s *Server) verifyAddressValidity(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(3)
	if err != nil {
		return nil, err
	}
	token, err := p.string(0, "token")
	if err != nil {
		return nil, err
	}
	addr, err := p.string(1, "addr")
	if err != nil {
		return nil, err
	}
	memo, err := p.string(2, "memo")
	if err != nil {
		return nil, err
	}
	return s.querier.VerifyAddress(ctx, token, addr, memo, at)
}

// --- Spot ---

func (s *Server) getTradingPairs(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(0)
	if err != nil {
		return nil, err
	}
	return s.querier.TradingPairs(ctx, at)
}

func (s *Server) getQuotations(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(2)
	if err != nil {
		return nil, err
	}
	pair, err := p.uint32(0, "pairIndex")
	if err != nil {
		return nil, err
	}
	piece, err := p.uint32(1, "piece")
	if err != nil {
		return nil, err
	}
	return s.querier.Quotations(ctx, pair, piece, at)
}

func (s *Server) getOrders(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(3)
	if err != nil {
		return nil, err
	}
	who, err := p.account(0, "account")
	if err != nil {
		return nil, err
	}
	index, size, err := p.pageArgs(1)
	if err != nil {
		return nil, err
	}
	return s.querier.Orders(ctx, who, index, size, at)
}

// --- Staking ---

func (s *Server) getNominationRecords(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(1)
	if err != nil {
		return nil, err
	}
	who, err := p.account(0, "account")
	if err != nil {
		return nil, err
	}
	return s.querier.NominationRecords(ctx, who, at)
}

func (s *Server) getNominationRecordsV1(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(1)
	if err != nil {
		return nil, err
	}
	who, err := p.account(0, "account")
	if err != nil {
		return nil, err
	}
	return s.querier.NominationRecordsV1(ctx, who, at)
}

func (s *Server) getNextRenominateByAccount(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(1)
	if err != nil {
		return nil, err
	}
	who, err := p.account(0, "account")
	if err != nil {
		return nil, err
	}
	return s.querier.NextRenominate(ctx, who, at)
}

func (s *Server) getIntentions(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(0)
	if err != nil {
		return nil, err
	}
	return s.querier.Intentions(ctx, at)
}

func (s *Server) getIntentionsV1(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(0)
	if err != nil {
		return nil, err
	}
	return s.querier.IntentionsV1(ctx, at)
}

func (s *Server) getIntentionByAccount(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(1)
	if err != nil {
		return nil, err
	}
	who, err := p.account(0, "account")
	if err != nil {
		return nil, err
	}
	return s.querier.Intention(ctx, who, at)
}

// --- Tokens ---

func (s *Server) getPseduIntentions(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(0)
	if err != nil {
		return nil, err
	}
	return s.querier.PseduIntentions(ctx, at)
}

func (s *Server) getPseduIntentionsV1(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(0)
	if err != nil {
		return nil, err
	}
	return s.querier.PseduIntentionsV1(ctx, at)
}

func (s *Server) getPseduNominationRecords(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(1)
	if err != nil {
		return nil, err
	}
	who, err := p.account(0, "account")
	if err != nil {
		return nil, err
	}
	return s.querier.PseduNominationRecords(ctx, who, at)
}

func (s *Server) getPseduNominationRecordsV1(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(1)
	if err != nil {
		return nil, err
	}
	who, err := p.account(0, "account")
	if err != nil {
		return nil, err
	}
	return s.querier.PseduNominationRecordsV1(ctx, who, at)
}

// --- Bridge ---

func (s *Server) getDepositList(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(3)
	if err != nil {
		return nil, err
	}
	chain, err := p.chain(0)
	if err != nil {
		return nil, err
	}
	index, size, err := p.pageArgs(1)
	if err != nil {
		return nil, err
	}
	return s.querier.DepositList(ctx, chain, index, size, at)
}

func (s *Server) getWithdrawalList(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(3)
	if err != nil {
		return nil, err
	}
	chain, err := p.chain(0)
	if err != nil {
		return nil, err
	}
	index, size, err := p.pageArgs(1)
	if err != nil {
		return nil, err
	}
	return s.querier.WithdrawalList(ctx, chain, index, size, at)
}

func (s *Server) getAddressByAccount(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(2)
	if err != nil {
		return nil, err
	}
	who, err := p.account(0, "account")
	if err != nil {
		return nil, err
	}
	chain, err := p.chain(1)
	if err != nil {
		return nil, err
	}
	return s.querier.Address(ctx, who, chain, at)
}

func (s *Server) getWithdrawTx(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(1)
	if err != nil {
		return nil, err
	}
	chain, err := p.chain(0)
	if err != nil {
		return nil, err
	}
	return s.querier.WithdrawTx(ctx, chain, at)
}

func (s *Server) getTrusteeSessionInfo(ctx context.Context, p params) (interface{}, error) {
	// The session number may be omitted entirely.
	if len(p) == 1 {
		p = append(p, nil)
	}
	at, err := p.expect(2)
	if err != nil {
		return nil, err
	}
	chain, err := p.chain(0)
	if err != nil {
		return nil, err
	}
	number, err := p.optionalUint32(1, "number")
	if err != nil {
		return nil, err
	}
	return s.querier.TrusteeSessionInfo(ctx, chain, number, at)
}

func (s *Server) getTrusteeInfoByAccount(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(1)
	if err != nil {
		return nil, err
	}
	who, err := p.account(0, "account")
	if err != nil {
		return nil, err
	}
	return s.querier.TrusteeInfo(ctx, who, at)
}

// --- Fees and chain ---

func (s *Server) getFeeByCallAndLength(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(2)
	if err != nil {
		return nil, err
	}
	call, err := p.string(0, "call")
	if err != nil {
		return nil, err
	}
	length, err := p.uint64(1, "txLength")
	if err != nil {
		return nil, err
	}
	return s.querier.Fee(ctx, call, length, at)
}

func (s *Server) getFeeWeightMap(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(0)
	if err != nil {
		return nil, err
	}
	return s.querier.FeeWeightMap(ctx, at)
}

func (s *Server) particularAccounts(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(0)
	if err != nil {
		return nil, err
	}
	return s.querier.ParticularAccounts(ctx, at)
}

func (s *Server) getHeader(ctx context.Context, p params) (interface{}, error) {
	at, err := p.expect(0)
	if err != nil {
		return nil, err
	}
	return s.querier.Header(ctx, at)
}

// getHeaderByNumber takes an optional block number and no block hash.
func (s *Server) getHeaderByNumber(ctx context.Context, p params) (interface{}, error) {
	if len(p) > 1 {
		return nil, invalidParams(fmt.Sprintf("expected at most 1 parameter, got %d", len(p)))
	}
	number, err := p.optionalUint64(0, "number")
	if err != nil {
		return nil, err
	}
	return s.querier.HeaderByNumber(ctx, number)
}
