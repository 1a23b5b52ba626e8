// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package position

import (
	"math/big"

	"github.com/luxfi/ids"

	"github.com/DarkHorse0725/optix-v2-perp-core/market"
	"github.com/DarkHorse0725/optix-v2-perp-core/oracle"
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

// CollateralValues describes the exposure a proposed action would leave in
// place, for the collateral sufficiency pre-check.
type CollateralValues struct {
	// SizeInUsd is the position's notional size after the action.
	SizeInUsd *pricing.USD
	// CollateralAmount is the collateral after the action, in collateral
	// token units.
	CollateralAmount *big.Int
	// RealizedPnlUsd is the PnL realized by the action itself.
	RealizedPnlUsd *pricing.USD
	// OpenInterestDeltaUsd is the open-interest change the action creates.
	OpenInterestDeltaUsd *pricing.USD
}

// WillCollateralBeSufficient is a fast, fee- and impact-agnostic pre-check
// used before admitting new or increased exposure. Its sole purpose is to
// block price-impact gaming: high-leverage positions opened expecting to
// pay less price impact than economically required.
//
// Negative realized PnL is charged against collateral; positive realized
// PnL is never credited, since crediting it would let a trader manipulate
// price to inflate apparent sufficiency. The leverage floor uses the larger
// of the open-interest-scaled factor and the market's static minimum.
func (e *Evaluator) WillCollateralBeSufficient(
	mkt market.Market,
	prices oracle.MarketPrices,
	collateralToken ids.ID,
	side market.Side,
	values CollateralValues,
) (bool, *pricing.USD, error) {
	collateralPrice, err := prices.CollateralPrice(mkt.LongToken, mkt.ShortToken, collateralToken)
	if err != nil {
		return false, nil, err
	}

	remainingCollateralUsd := pricing.TokensToUSD(values.CollateralAmount, collateralPrice.Min)
	if values.RealizedPnlUsd.Sign() < 0 {
		remainingCollateralUsd = remainingCollateralUsd.Add(values.RealizedPnlUsd)
	}
	if remainingCollateralUsd.Sign() < 0 {
		return false, remainingCollateralUsd, nil
	}

	openInterestFactor := e.pool.MinCollateralFactorForOpenInterest(
		values.OpenInterestDeltaUsd,
		side,
		e.cfg.MinCollateralFactorForOpenInterestMultiplier,
	)
	minCollateralFactor := pricing.MaxFactor(openInterestFactor, e.cfg.MinCollateralFactor)

	minCollateralUsdForLeverage := values.SizeInUsd.ApplyFactor(minCollateralFactor, pricing.RoundDown)

	return remainingCollateralUsd.Cmp(minCollateralUsdForLeverage) >= 0, remainingCollateralUsd, nil
}
