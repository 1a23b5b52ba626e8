// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package position

import (
	"math/big"

	"github.com/luxfi/ids"

	"github.com/DarkHorse0725/optix-v2-perp-core/market"
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

// UpdateOpenInterest forwards an open-interest delta to the aggregate state
// and emits the corresponding event. This is one of the two operations in
// this core with side effects; the surrounding environment guarantees the
// enclosing operation commits or aborts as a whole.
func (e *Evaluator) UpdateOpenInterest(mkt market.Market, side market.Side, sizeDeltaUsd *pricing.USD, sizeDeltaInTokens *big.Int) error {
	if err := e.pool.ApplyOpenInterestDelta(side, sizeDeltaUsd, sizeDeltaInTokens); err != nil {
		return err
	}
	e.events.EmitOpenInterestUpdate(mkt.MarketToken, side, sizeDeltaUsd, sizeDeltaInTokens)
	return nil
}

// IncrementClaimableFunding forwards a claimable funding credit to the
// aggregate state and emits the corresponding event.
func (e *Evaluator) IncrementClaimableFunding(mkt market.Market, account, token ids.ID, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := e.pool.CreditClaimableFunding(account, token, amount); err != nil {
		return err
	}
	e.events.EmitClaimableFundingIncrement(mkt.MarketToken, account, token, amount)
	return nil
}
