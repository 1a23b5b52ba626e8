// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package position

import (
	"errors"
	"math/big"

	"github.com/DarkHorse0725/optix-v2-perp-core/market"
	"github.com/DarkHorse0725/optix-v2-perp-core/oracle"
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

var (
	ErrEmptyTokenDelta        = errors.New("token size delta is zero")
	ErrNegativeExecutionPrice = errors.New("execution price is negative")
	ErrUnacceptablePrice      = errors.New("order not fulfillable at acceptable price")
)

// StandardPricer is the default order-pricing collaborator.
type StandardPricer struct{}

// NewStandardPricer returns the default order pricer.
func NewStandardPricer() *StandardPricer {
	return &StandardPricer{}
}

// ExecutionPriceForIncrease derives the fill price of an increase from its
// notional and token deltas: price = sizeDeltaUsd / sizeDeltaInTokens. The
// token delta already carries the impact, so the quotient is the effective
// per-token fill price. The acceptable-price bound is the trader's worst
// tolerable price: a ceiling for long entries, a floor for short entries.
func (p *StandardPricer) ExecutionPriceForIncrease(
	sizeDeltaUsd *pricing.USD,
	sizeDeltaInTokens *big.Int,
	acceptablePrice *big.Int,
	side market.Side,
) (*big.Int, error) {
	if sizeDeltaInTokens.Sign() == 0 {
		return nil, ErrEmptyTokenDelta
	}

	executionPrice := pricing.MulDiv(sizeDeltaUsd.Raw(), big.NewInt(1), sizeDeltaInTokens, pricing.RoundDown)

	if acceptablePrice != nil {
		if side.IsLong() && executionPrice.Cmp(acceptablePrice) > 0 {
			return nil, ErrUnacceptablePrice
		}
		if !side.IsLong() && executionPrice.Cmp(acceptablePrice) < 0 {
			return nil, ErrUnacceptablePrice
		}
	}
	return executionPrice, nil
}

// ExecutionPriceForDecrease derives the fill price of a decrease by
// adjusting the direction-appropriate picked index price proportionally to
// the impact's share of the notional delta. The acceptable-price bound
// flips relative to increases: a floor for long closes, a ceiling for short
// closes.
func (p *StandardPricer) ExecutionPriceForDecrease(
	indexPrice oracle.Price,
	positionSizeUsd *pricing.USD,
	positionSizeInTokens *big.Int,
	sizeDeltaUsd, priceImpactUsd *pricing.USD,
	acceptablePrice *big.Int,
	side market.Side,
) (*big.Int, error) {
	long := side.IsLong()
	basePrice := indexPrice.Pick(!long)

	executionPrice := new(big.Int).Set(basePrice)
	if sizeDeltaUsd.Sign() > 0 && positionSizeInTokens.Sign() > 0 {
		// For a long close, positive impact raises the effective price;
		// for a short close it lowers it.
		adjustedImpactUsd := priceImpactUsd
		if !long {
			adjustedImpactUsd = priceImpactUsd.Neg()
		}
		if adjustedImpactUsd.Sign() < 0 && adjustedImpactUsd.Neg().Cmp(sizeDeltaUsd) > 0 {
			return nil, ErrPriceImpactLargerThanOrderSize
		}

		adjustment := pricing.MulDiv(basePrice, adjustedImpactUsd.Raw(), sizeDeltaUsd.Raw(), pricing.RoundDown)
		executionPrice.Add(executionPrice, adjustment)
		if executionPrice.Sign() < 0 {
			return nil, ErrNegativeExecutionPrice
		}
	}

	if acceptablePrice != nil {
		if long && executionPrice.Cmp(acceptablePrice) < 0 {
			return nil, ErrUnacceptablePrice
		}
		if !long && executionPrice.Cmp(acceptablePrice) > 0 {
			return nil, ErrUnacceptablePrice
		}
	}
	return executionPrice, nil
}
