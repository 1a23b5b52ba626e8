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
	ErrPriceImpactLargerThanOrderSize = errors.New("price impact larger than order size")
	ErrNegativeSizeDelta              = errors.New("size delta must be non-negative")
)

// IncreaseExecution is the outcome of execution pricing for an increase.
type IncreaseExecution struct {
	// PriceImpactUsd is the impact-pool-capped price impact.
	PriceImpactUsd *pricing.USD
	// PriceImpactAmount is the impact converted to index tokens, signed.
	PriceImpactAmount *big.Int
	// SizeDeltaInTokens is the token size the increase adds.
	SizeDeltaInTokens *big.Int
	// ExecutionPrice is the validated final fill price.
	ExecutionPrice *big.Int
}

// DecreaseExecution is the outcome of execution pricing for a decrease.
type DecreaseExecution struct {
	// PriceImpactUsd is the final, possibly re-capped price impact.
	PriceImpactUsd *pricing.USD
	// PriceImpactDiffUsd is the negative impact capped away by the
	// max-negative-impact bound, owed to the user as a claimable amount
	// rather than paid out of the fill price.
	PriceImpactDiffUsd *pricing.USD
	// ExecutionPrice is the validated final fill price.
	ExecutionPrice *big.Int
}

// ExecutionPriceForIncrease converts a requested notional increase into a
// token-size delta and a fill price.
//
// Impact-to-token conversion rounds against the trader on both branches:
// positive impact is floored at the max index price (minimizing the
// credited bonus), negative impact magnitude is rounded up at the min index
// price (maximizing the charged penalty).
func (e *Evaluator) ExecutionPriceForIncrease(
	mkt market.Market,
	indexPrice oracle.Price,
	sizeDeltaUsd *pricing.USD,
	acceptablePrice *big.Int,
	side market.Side,
) (*IncreaseExecution, error) {
	if err := indexPrice.Validate(); err != nil {
		return nil, err
	}
	if sizeDeltaUsd.Sign() < 0 {
		return nil, ErrNegativeSizeDelta
	}

	long := side.IsLong()

	if sizeDeltaUsd.IsZero() {
		// No impact on a zero delta; acceptable-price validation is the
		// caller's job here.
		return &IncreaseExecution{
			PriceImpactUsd:    pricing.ZeroUSD(),
			PriceImpactAmount: new(big.Int),
			SizeDeltaInTokens: new(big.Int),
			ExecutionPrice:    indexPrice.Pick(long),
		}, nil
	}

	priceImpactUsd := e.impact.PriceImpactUsd(mkt, sizeDeltaUsd, side)
	priceImpactUsd = e.capPositiveImpactByPool(priceImpactUsd, indexPrice)

	var priceImpactAmount *big.Int
	if priceImpactUsd.Sign() >= 0 {
		priceImpactAmount = pricing.USDToTokens(priceImpactUsd, indexPrice.Max, pricing.RoundDown)
	} else {
		priceImpactAmount = pricing.USDToTokens(priceImpactUsd, indexPrice.Min, pricing.RoundUp)
	}

	var baseSizeDeltaInTokens *big.Int
	if long {
		baseSizeDeltaInTokens = pricing.USDToTokens(sizeDeltaUsd, indexPrice.Max, pricing.RoundDown)
	} else {
		baseSizeDeltaInTokens = pricing.USDToTokens(sizeDeltaUsd, indexPrice.Min, pricing.RoundUp)
	}

	var sizeDeltaInTokens *big.Int
	if long {
		sizeDeltaInTokens = new(big.Int).Add(baseSizeDeltaInTokens, priceImpactAmount)
	} else {
		sizeDeltaInTokens = new(big.Int).Sub(baseSizeDeltaInTokens, priceImpactAmount)
	}
	if sizeDeltaInTokens.Sign() < 0 {
		return nil, ErrPriceImpactLargerThanOrderSize
	}

	executionPrice, err := e.pricer.ExecutionPriceForIncrease(sizeDeltaUsd, sizeDeltaInTokens, acceptablePrice, side)
	if err != nil {
		return nil, err
	}

	return &IncreaseExecution{
		PriceImpactUsd:    priceImpactUsd,
		PriceImpactAmount: priceImpactAmount,
		SizeDeltaInTokens: sizeDeltaInTokens,
		ExecutionPrice:    executionPrice,
	}, nil
}

// ExecutionPriceForDecrease prices a notional decrease. After the impact
// pool cap, still-negative impact is capped a second time at the
// max-negative-impact bound scaled to the order's notional size; the amount
// capped away is surfaced as PriceImpactDiffUsd, never silently dropped.
func (e *Evaluator) ExecutionPriceForDecrease(
	pos *Position,
	mkt market.Market,
	indexPrice oracle.Price,
	sizeDeltaUsd *pricing.USD,
	acceptablePrice *big.Int,
	side market.Side,
) (*DecreaseExecution, error) {
	if err := indexPrice.Validate(); err != nil {
		return nil, err
	}
	if sizeDeltaUsd.Sign() < 0 {
		return nil, ErrNegativeSizeDelta
	}

	long := side.IsLong()

	if sizeDeltaUsd.IsZero() {
		return &DecreaseExecution{
			PriceImpactUsd:     pricing.ZeroUSD(),
			PriceImpactDiffUsd: pricing.ZeroUSD(),
			ExecutionPrice:     indexPrice.Pick(!long),
		}, nil
	}

	priceImpactUsd := e.impact.PriceImpactUsd(mkt, sizeDeltaUsd.Neg(), side)
	priceImpactUsd = e.capPositiveImpactByPool(priceImpactUsd, indexPrice)

	priceImpactDiffUsd := pricing.ZeroUSD()
	if priceImpactUsd.Sign() < 0 {
		maxNegativeImpactUsd := sizeDeltaUsd.ApplyFactor(e.cfg.MaxPositionImpactFactorForDecreases, pricing.RoundDown)
		if priceImpactUsd.Neg().Cmp(maxNegativeImpactUsd) > 0 {
			priceImpactDiffUsd = priceImpactUsd.Neg().Sub(maxNegativeImpactUsd)
			priceImpactUsd = maxNegativeImpactUsd.Neg()
		}
	}

	executionPrice, err := e.pricer.ExecutionPriceForDecrease(
		indexPrice,
		pos.SizeInUsd,
		pos.SizeInTokens,
		sizeDeltaUsd,
		priceImpactUsd,
		acceptablePrice,
		side,
	)
	if err != nil {
		return nil, err
	}

	return &DecreaseExecution{
		PriceImpactUsd:     priceImpactUsd,
		PriceImpactDiffUsd: priceImpactDiffUsd,
		ExecutionPrice:     executionPrice,
	}, nil
}

// capPositiveImpactByPool caps positive impact against the available
// impact-pool balance, valued at the min index price. Negative impact
// passes through unchanged.
func (e *Evaluator) capPositiveImpactByPool(priceImpactUsd *pricing.USD, indexPrice oracle.Price) *pricing.USD {
	if priceImpactUsd.Sign() <= 0 {
		return priceImpactUsd
	}
	maxImpactUsd := pricing.TokensToUSD(e.pool.ImpactPoolAmount(), indexPrice.Min)
	if priceImpactUsd.Cmp(maxImpactUsd) > 0 {
		return maxImpactUsd
	}
	return priceImpactUsd
}
