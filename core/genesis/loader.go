package genesis

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"chainx/core/chain"
	"chainx/core/state"
	"chainx/core/types"
	"chainx/native/accounts"
	"chainx/native/assets"
	"chainx/native/bridge"
	"chainx/native/fees"
	"chainx/native/spot"
	"chainx/native/staking"
	"chainx/native/tokens"
	"chainx/storage"
)

// Commit writes spec on top of the current head of blocks, or on an empty
// state when nothing has been committed yet, and records the result as the
// new head.
func Commit(spec *Spec, db storage.Database, blocks *chain.Store) (*types.BlockHeader, error) {
	if spec == nil {
		return nil, fmt.Errorf("fixture spec must not be nil")
	}
	if db == nil || blocks == nil {
		return nil, fmt.Errorf("database and block store must not be nil")
	}

	header := &types.BlockHeader{Timestamp: uint64(spec.BlockTimestamp().Unix())}
	head, err := blocks.Head()
	switch {
	case err == nil:
		header.Height = head.Height + 1
		header.ParentHash = head.Hash()
	case errors.Is(err, chain.ErrUnknownBlock):
	default:
		return nil, fmt.Errorf("load head: %w", err)
	}
	var parentRoot common.Hash
	if head != nil {
		parentRoot = head.StateRoot
	}

	w, err := state.NewWriter(db, parentRoot)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	if err := Apply(spec, w, header.Height); err != nil {
		return nil, err
	}
	root, err := w.Commit(parentRoot, header.Height)
	if err != nil {
		return nil, fmt.Errorf("commit state: %w", err)
	}
	header.StateRoot = root
	if _, err := blocks.Commit(header); err != nil {
		return nil, fmt.Errorf("commit header: %w", err)
	}
	return header, nil
}

// Apply stages every cell spec describes on w. Maps are walked in sorted
// order so a fixture always produces the same root.
func Apply(spec *Spec, w *state.Writer, height uint64) error {
	steps := []struct {
		name string
		fn   func(*Spec, *state.Writer, uint64) error
	}{
		{"assets", applyAssets},
		{"spot", applySpot},
		{"staking", applyStaking},
		{"tokens", applyTokens},
		{"bridge", applyBridge},
		{"accounts", applyAccounts},
		{"fees", applyFees},
	}
	for _, step := range steps {
		if err := step.fn(spec, w, height); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

func applyAssets(spec *Spec, w *state.Writer, _ uint64) error {
	lists := make(map[types.Chain][]string)
	for _, a := range spec.Assets {
		lists[a.Chain] = append(lists[a.Chain], a.Token)
		record := assets.AssetRecord{
			Asset: assets.Asset{
				Token:     a.Token,
				TokenName: a.TokenName,
				Chain:     a.Chain,
				Precision: a.Precision,
				Desc:      a.Desc,
			},
			Valid: a.Online == nil || *a.Online,
		}
		if err := w.Put(assets.AssetInfo.At(a.Token), record); err != nil {
			return err
		}
		if len(a.Limits) == 0 {
			continue
		}
		entries := make([]assets.LimitEntry, 0, len(a.Limits))
		for limit, allowed := range a.Limits {
			entries = append(entries, assets.LimitEntry{Limit: limit, Allowed: allowed})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Limit < entries[j].Limit })
		if err := w.Put(assets.AssetLimitProps.At(a.Token), entries); err != nil {
			return err
		}
	}
	for _, c := range sortedChains(lists) {
		if err := w.Put(assets.AssetList.At(c), lists[c]); err != nil {
			return err
		}
	}

	totals := make(map[string]map[assets.AssetType]uint64)
	for _, account := range sortedAccounts(spec.Balances) {
		held := spec.Balances[account]
		for _, token := range sortedStrings(held) {
			entries := balanceEntries(held[token])
			if totals[token] == nil {
				totals[token] = make(map[assets.AssetType]uint64)
			}
			for _, e := range entries {
				totals[token][e.Type] += e.Amount
			}
			key := assets.AssetBalance.At(assets.AccountToken{Account: account, Token: token})
			if err := w.Put(key, entries); err != nil {
				return err
			}
		}
	}
	for _, token := range sortedStrings(totals) {
		if err := w.Put(assets.TotalAssetBalance.At(token), balanceEntries(totals[token])); err != nil {
			return err
		}
	}
	return nil
}

func balanceEntries(buckets map[assets.AssetType]uint64) []assets.BalanceEntry {
	entries := make([]assets.BalanceEntry, 0, len(buckets))
	for t, amount := range buckets {
		entries = append(entries, assets.BalanceEntry{Type: t, Amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Type < entries[j].Type })
	return entries
}

func applySpot(spec *Spec, w *state.Writer, height uint64) error {
	if len(spec.TradingPairs) > 0 {
		if err := w.Put(spot.TradingPairCount.Key(), uint32(len(spec.TradingPairs))); err != nil {
			return err
		}
	}
	for i, p := range spec.TradingPairs {
		index := uint32(i)
		pair := spot.TradingPair{
			Index:            index,
			Base:             p.Base,
			Quote:            p.Quote,
			PipPrecision:     p.PipPrecision,
			TickPrecision:    p.TickPrecision,
			Online:           p.Online == nil || *p.Online,
			PriceFluctuation: p.PriceFluctuation,
		}
		if err := w.Put(spot.TradingPairOf.At(index), pair); err != nil {
			return err
		}
		if p.LastPrice == 0 && p.AverPrice == 0 {
			continue
		}
		price := spot.PairPrice{LastPrice: p.LastPrice, AverPrice: p.AverPrice, UpdateHeight: height}
		if err := w.Put(spot.TradingPairInfoOf.At(index), price); err != nil {
			return err
		}
	}

	counts := make(map[types.AccountID]uint64)
	resting := make(map[spot.PairPriceKey][]spot.OrderRef)
	handicaps := make(map[uint32]*spot.Handicap)
	for _, o := range spec.Orders {
		index := counts[o.Submitter]
		counts[o.Submitter]++
		order := spot.Order{
			PairIndex:     o.Pair,
			Index:         index,
			Class:         spot.Limit,
			Side:          o.Side,
			Submitter:     o.Submitter,
			Amount:        o.Amount,
			Price:         o.Price,
			AlreadyFilled: o.AlreadyFilled,
			Status:        orderStatus(o),
			CreatedAt:     height,
			LastUpdateAt:  height,
		}
		ref := spot.OrderRef{Account: o.Submitter, Index: index}
		if err := w.Put(spot.OrderInfoOf.At(ref), order); err != nil {
			return err
		}
		if order.Unfilled() == 0 {
			continue
		}
		key := spot.PairPriceKey{Pair: o.Pair, Price: o.Price}
		resting[key] = append(resting[key], ref)

		h := handicaps[o.Pair]
		if h == nil {
			h = new(spot.Handicap)
			handicaps[o.Pair] = h
		}
		if o.Side == spot.Buy && o.Price > h.HighestBid {
			h.HighestBid = o.Price
		}
		if o.Side == spot.Sell && (h.LowestOffer == 0 || o.Price < h.LowestOffer) {
			h.LowestOffer = o.Price
		}
	}
	for _, account := range sortedAccounts(counts) {
		if err := w.Put(spot.OrderCountOf.At(account), counts[account]); err != nil {
			return err
		}
	}
	keys := make([]spot.PairPriceKey, 0, len(resting))
	for k := range resting {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Pair != keys[j].Pair {
			return keys[i].Pair < keys[j].Pair
		}
		return keys[i].Price < keys[j].Price
	})
	for _, k := range keys {
		if err := w.Put(spot.QuotationsOf.At(k), resting[k]); err != nil {
			return err
		}
	}
	pairs := make([]uint32, 0, len(handicaps))
	for p := range handicaps {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i] < pairs[j] })
	for _, p := range pairs {
		if err := w.Put(spot.HandicapOf.At(p), *handicaps[p]); err != nil {
			return err
		}
	}
	return nil
}

func orderStatus(o OrderSpec) spot.OrderStatus {
	switch {
	case o.AlreadyFilled == 0:
		return spot.ZeroFill
	case o.AlreadyFilled >= o.Amount:
		return spot.Filled
	default:
		return spot.ParitialFill
	}
}

func applyStaking(spec *Spec, w *state.Writer, _ uint64) error {
	s := spec.Staking
	if s == nil {
		return nil
	}
	if s.BondingDuration > 0 {
		if err := w.Put(staking.BondingDuration.Key(), s.BondingDuration); err != nil {
			return err
		}
	}
	if len(s.Validators) > 0 {
		if err := w.Put(staking.Validators.Key(), s.Validators); err != nil {
			return err
		}
	}
	if len(s.Intentions) > 0 {
		set := make([]types.AccountID, 0, len(s.Intentions))
		for _, in := range s.Intentions {
			set = append(set, in.Account)
		}
		if err := w.Put(staking.Intentions.Key(), set); err != nil {
			return err
		}
	}
	for _, in := range s.Intentions {
		props := staking.IntentionProps{Name: in.Name, URL: in.URL, IsActive: in.Active, About: in.About}
		if in.SessionKey != nil {
			props.SessionKey = *in.SessionKey
		}
		if err := w.Put(staking.IntentionPropsOf.At(in.Account), props); err != nil {
			return err
		}
		profs := staking.IntentionProfs{
			TotalNomination:           in.TotalNomination,
			LastTotalVoteWeight:       in.LastTotalVoteWeight,
			LastTotalVoteWeightUpdate: in.LastTotalVoteWeightUpdate,
		}
		var err error
		if in.V1 {
			err = w.Put(staking.IntentionProfilesV1.At(in.Account), profs.Upgrade())
		} else {
			err = w.Put(staking.IntentionProfiles.At(in.Account), profs)
		}
		if err != nil {
			return err
		}
		if in.JackpotAccount != nil {
			if err := w.Put(staking.JackpotAccountOf.At(in.Account), *in.JackpotAccount); err != nil {
				return err
			}
		}
	}
	for _, n := range s.Nominations {
		pair := staking.Pair{Nominator: n.Nominator, Nominee: n.Nominee}
		record := staking.NominationRecord{
			Nomination:           n.Nomination,
			LastVoteWeight:       n.LastVoteWeight,
			LastVoteWeightUpdate: n.LastVoteWeightUpdate,
		}
		var err error
		if n.V1 {
			err = w.Put(staking.NominationRecordsV1.At(pair), record.Upgrade())
		} else {
			err = w.Put(staking.NominationRecords.At(pair), record)
		}
		if err != nil {
			return err
		}
	}
	for _, account := range sortedAccounts(s.LastRenomination) {
		if err := w.Put(staking.LastRenominationOf.At(account), s.LastRenomination[account]); err != nil {
			return err
		}
	}
	return nil
}

func applyTokens(spec *Spec, w *state.Writer, _ uint64) error {
	if len(spec.PseduIntentions) == 0 {
		return nil
	}
	list := make([]string, 0, len(spec.PseduIntentions))
	for _, p := range spec.PseduIntentions {
		list = append(list, p.Token)
	}
	if err := w.Put(tokens.PseduIntentions.Key(), list); err != nil {
		return err
	}
	for _, p := range spec.PseduIntentions {
		profs := tokens.PseduIntentionProfs{
			LastTotalDepositWeight:       p.LastTotalDepositWeight,
			LastTotalDepositWeightUpdate: p.LastTotalDepositWeightUpdate,
		}
		var err error
		if p.V1 {
			err = w.Put(tokens.PseduIntentionProfilesV1.At(p.Token), profs.Upgrade())
		} else {
			err = w.Put(tokens.PseduIntentionProfiles.At(p.Token), profs)
		}
		if err != nil {
			return err
		}
		if p.JackpotAccount != nil {
			if err := w.Put(tokens.JackpotAccountOf.At(p.Token), *p.JackpotAccount); err != nil {
				return err
			}
		}
		for _, d := range p.Deposits {
			key := assets.AccountToken{Account: d.Account, Token: p.Token}
			if d.V1 {
				err = w.Put(tokens.DepositRecordsV1.At(key), tokens.DepositVoteWeightV1{
					LastDepositWeight:       uint256.NewInt(d.LastDepositWeight),
					LastDepositWeightUpdate: d.LastDepositWeightUpdate,
				})
			} else {
				err = w.Put(tokens.DepositRecords.At(key), tokens.DepositVoteWeight{
					LastDepositWeight:       d.LastDepositWeight,
					LastDepositWeightUpdate: d.LastDepositWeightUpdate,
				})
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func applyBridge(spec *Spec, w *state.Writer, _ uint64) error {
	b := spec.Bridge
	if b == nil {
		return nil
	}
	if b.MinDeposit != nil {
		if err := w.Put(bridge.BtcMinDeposit.Key(), *b.MinDeposit); err != nil {
			return err
		}
	}
	if b.WithdrawalFee > 0 {
		if err := w.Put(bridge.BtcWithdrawalFee.Key(), b.WithdrawalFee); err != nil {
			return err
		}
	}
	for _, account := range sortedAccounts(b.BitcoinBindings) {
		addrs := make([]bridge.BitcoinAddress, 0, len(b.BitcoinBindings[account]))
		for _, s := range b.BitcoinBindings[account] {
			addr, err := bridge.ParseBitcoinAddress(s)
			if err != nil {
				return err
			}
			addrs = append(addrs, addr)
		}
		if err := w.Put(bridge.BitcoinCrossChainBinding.At(account), addrs); err != nil {
			return err
		}
	}
	for _, account := range sortedAccounts(b.EthereumBindings) {
		addrs := make([]common.Address, 0, len(b.EthereumBindings[account]))
		for _, s := range b.EthereumBindings[account] {
			addrs = append(addrs, common.HexToAddress(s))
		}
		if err := w.Put(bridge.EthereumCrossChainBinding.At(account), addrs); err != nil {
			return err
		}
	}
	for _, c := range sortedChains(b.MultiSig) {
		if err := w.Put(bridge.TrusteeMultiSigAddr.At(c), b.MultiSig[c]); err != nil {
			return err
		}
	}
	for _, t := range b.Trustees {
		hot, err := decodeHex(t.HotEntity)
		if err != nil {
			return err
		}
		cold, err := decodeHex(t.ColdEntity)
		if err != nil {
			return err
		}
		key := bridge.TrusteeIntentionPropertiesOf.At(bridge.AccountChain{Account: t.Account, Chain: t.Chain})
		if err := w.Put(key, bridge.TrusteeProps{About: t.About, HotEntity: hot, ColdEntity: cold}); err != nil {
			return err
		}
	}
	for _, c := range sortedChains(b.Sessions) {
		sessions := b.Sessions[c]
		if err := w.Put(bridge.TrusteeSessionInfoLen.At(c), uint32(len(sessions))); err != nil {
			return err
		}
		for i, s := range sessions {
			info, err := sessionInfo(s)
			if err != nil {
				return fmt.Errorf("session %s/%d: %w", c, i, err)
			}
			if err := w.Put(bridge.TrusteeSessionInfoOf.At(bridge.SessionRef{Chain: c, Number: uint32(i)}), info); err != nil {
				return err
			}
		}
	}
	for _, c := range sortedChains(b.Deposits) {
		records := make([]bridge.DepositRecord, 0, len(b.Deposits[c]))
		for _, d := range b.Deposits[c] {
			txHash, err := decodeHex(d.TxID)
			if err != nil {
				return fmt.Errorf("deposit txid: %w", err)
			}
			records = append(records, bridge.DepositRecord{
				TxHash:       txHash,
				Account:      d.Account,
				Token:        d.Token,
				Address:      d.Address,
				Balance:      d.Balance,
				Memo:         d.Memo,
				Confirm:      d.Confirm,
				TotalConfirm: d.TotalConfirm,
				Time:         d.Time,
				State:        d.State,
			})
		}
		if err := w.Put(bridge.DepositRecordsOf.At(c), records); err != nil {
			return err
		}
	}
	for _, c := range sortedChains(b.Withdrawals) {
		records := make([]bridge.WithdrawalRecord, 0, len(b.Withdrawals[c]))
		for _, wd := range b.Withdrawals[c] {
			txHash, err := decodeHex(wd.TxID)
			if err != nil {
				return fmt.Errorf("withdrawal txid: %w", err)
			}
			records = append(records, bridge.WithdrawalRecord{
				ID:           wd.ID,
				Account:      wd.Account,
				Token:        wd.Token,
				Balance:      wd.Balance,
				Address:      wd.Address,
				Memo:         wd.Memo,
				Height:       wd.Height,
				State:        wd.State,
				TxHash:       txHash,
				Confirm:      wd.Confirm,
				TotalConfirm: wd.TotalConfirm,
			})
		}
		if err := w.Put(bridge.WithdrawalRecordsOf.At(c), records); err != nil {
			return err
		}
	}
	if p := b.Proposal; p != nil {
		tx, err := decodeHex(p.Tx)
		if err != nil {
			return err
		}
		proposal := bridge.WithdrawalProposal{SigState: bridge.SigStateSigning, WithdrawalIDs: p.WithdrawalIDs, Tx: tx}
		if p.Finished {
			proposal.SigState = bridge.SigStateFinish
		}
		for _, a := range p.Signed {
			proposal.TrusteeList = append(proposal.TrusteeList, bridge.TrusteeVote{Account: a, Signed: true})
		}
		for _, a := range p.Pending {
			proposal.TrusteeList = append(proposal.TrusteeList, bridge.TrusteeVote{Account: a})
		}
		if err := w.Put(bridge.CurrentWithdrawalProposal.Key(), proposal); err != nil {
			return err
		}
	}
	return nil
}

func sessionInfo(s SessionSpec) (bridge.TrusteeSessionInfo, error) {
	info := bridge.TrusteeSessionInfo{TrusteeList: s.Trustees, Required: s.Required}
	var err error
	if s.HotAddress != "" {
		if info.HotAddress, err = bridge.ParseBitcoinAddress(s.HotAddress); err != nil {
			return info, err
		}
	}
	if s.ColdAddress != "" {
		if info.ColdAddress, err = bridge.ParseBitcoinAddress(s.ColdAddress); err != nil {
			return info, err
		}
	}
	if info.HotRedeemScript, err = decodeHex(s.HotRedeemScript); err != nil {
		return info, err
	}
	if info.ColdRedeemScript, err = decodeHex(s.ColdRedeemScript); err != nil {
		return info, err
	}
	return info, nil
}

func applyAccounts(spec *Spec, w *state.Writer, _ uint64) error {
	if spec.Accounts.Team != nil {
		if err := w.Put(accounts.TeamAccount.Key(), *spec.Accounts.Team); err != nil {
			return err
		}
	}
	if spec.Accounts.Council != nil {
		if err := w.Put(accounts.CouncilAccount.Key(), *spec.Accounts.Council); err != nil {
			return err
		}
	}
	return nil
}

func applyFees(spec *Spec, w *state.Writer, _ uint64) error {
	f := spec.Fees
	if f == nil {
		return nil
	}
	if err := w.Put(fees.TransactionBaseFee.Key(), f.BaseFee); err != nil {
		return err
	}
	if err := w.Put(fees.TransactionByteFee.Key(), f.ByteFee); err != nil {
		return err
	}
	weights := make([]fees.CallWeight, 0, len(f.Weights))
	for _, call := range sortedStrings(f.Weights) {
		weights = append(weights, fees.CallWeight{Call: call, Weight: f.Weights[call]})
	}
	return w.Put(fees.FeeWeightMap.Key(), weights)
}

func sortedAccounts[V any](m map[types.AccountID]V) []types.AccountID {
	out := make([]types.AccountID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

func sortedChains[V any](m map[types.Chain]V) []types.Chain {
	out := make([]types.Chain, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedStrings[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
