// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package position

import (
	"math/big"

	"github.com/DarkHorse0725/optix-v2-perp-core/market"
	"github.com/DarkHorse0725/optix-v2-perp-core/oracle"
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

// PnlResult is the outcome of a PnL evaluation for a requested close size.
type PnlResult struct {
	// PnlUsd is the position's unrealized PnL for the close size, after
	// pool-level capping of positive PnL.
	PnlUsd *pricing.USD
	// UncappedPnlUsd is the same quantity before pool-level capping.
	UncappedPnlUsd *pricing.USD
	// SizeDeltaInTokens is the token size to remove for the close.
	SizeDeltaInTokens *big.Int
}

// PositionPnl computes the position's unrealized PnL in quote currency for
// closing sizeDeltaUsd of the position, prorated from the full-position
// PnL.
//
// Positive PnL is scaled down when the pool-wide PnL for the side is being
// capped, so no single position can extract more profit than the pool-level
// payout cap allows. Token-size proration rounds up for longs and down for
// shorts; both directions bias the accounting against the trader.
func (e *Evaluator) PositionPnl(pos *Position, mkt market.Market, prices oracle.MarketPrices, sizeDeltaUsd *pricing.USD) (*PnlResult, error) {
	if err := pos.Validate(); err != nil {
		return nil, err
	}
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	if sizeDeltaUsd.Sign() < 0 || sizeDeltaUsd.Cmp(pos.SizeInUsd) > 0 {
		return nil, ErrInvalidSizeDelta
	}

	long := pos.Side.IsLong()

	// Mark at the conservative side of the spread.
	markPrice := prices.IndexTokenPrice.PickForPnl(long, false)
	positionValue := pricing.TokensToUSD(pos.SizeInTokens, markPrice)

	var totalPnl *pricing.USD
	if long {
		totalPnl = positionValue.Sub(pos.SizeInUsd)
	} else {
		totalPnl = pos.SizeInUsd.Sub(positionValue)
	}
	uncappedTotalPnl := totalPnl.Clone()

	if totalPnl.Sign() > 0 {
		poolPnl := e.pool.Pnl(pos.Side, prices.IndexTokenPrice, true)
		cappedPoolPnl := e.pool.CappedPnl(pos.Side, prices.IndexTokenPrice, true, e.cfg.MaxPoolPnlFactor)

		// Scale down only when the pool-wide PnL is positive and actually
		// reduced by the cap.
		if cappedPoolPnl.Cmp(poolPnl) != 0 && cappedPoolPnl.Sign() > 0 && poolPnl.Sign() > 0 {
			totalPnl = totalPnl.MulDivByUSD(cappedPoolPnl, poolPnl, pricing.RoundDown)
		}
	}

	var sizeDeltaInTokens *big.Int
	switch {
	case pos.SizeInUsd.Cmp(sizeDeltaUsd) == 0:
		// Full close uses the stored token size exactly; proration would
		// introduce rounding drift.
		sizeDeltaInTokens = new(big.Int).Set(pos.SizeInTokens)
	case long:
		sizeDeltaInTokens = pricing.MulDiv(pos.SizeInTokens, sizeDeltaUsd.Raw(), pos.SizeInUsd.Raw(), pricing.RoundUp)
	default:
		sizeDeltaInTokens = pricing.MulDiv(pos.SizeInTokens, sizeDeltaUsd.Raw(), pos.SizeInUsd.Raw(), pricing.RoundDown)
	}

	pnlUsd := totalPnl.MulDivUSD(sizeDeltaInTokens, pos.SizeInTokens, pricing.RoundDown)
	uncappedPnlUsd := uncappedTotalPnl.MulDivUSD(sizeDeltaInTokens, pos.SizeInTokens, pricing.RoundDown)

	return &PnlResult{
		PnlUsd:            pnlUsd,
		UncappedPnlUsd:    uncappedPnlUsd,
		SizeDeltaInTokens: sizeDeltaInTokens,
	}, nil
}
