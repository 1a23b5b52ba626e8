// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

// ImbalanceImpactModel prices position changes by how they move the
// open-interest imbalance between the long and short sides.
//
// The model charges the change in a quadratic penalty on the imbalance:
// impact = f(initialImbalance) - f(nextImbalance), with
// f(i) = factor * i^2. An action that reduces the imbalance earns positive
// impact (priced with the positive factor); an action that deepens it pays
// negative impact (priced with the negative factor). Sign convention:
// negative is a cost to the trader.
type ImbalanceImpactModel struct {
	pool           *Pool
	positiveFactor *pricing.Factor
	negativeFactor *pricing.Factor
}

// NewImbalanceImpactModel creates the model over the given pool state.
func NewImbalanceImpactModel(pool *Pool, positiveFactor, negativeFactor *pricing.Factor) *ImbalanceImpactModel {
	return &ImbalanceImpactModel{
		pool:           pool,
		positiveFactor: positiveFactor.Clone(),
		negativeFactor: negativeFactor.Clone(),
	}
}

// PriceImpactUsd returns the signed impact of applying sizeDeltaUsd
// (positive for increases, negative for decreases) to the given side.
func (m *ImbalanceImpactModel) PriceImpactUsd(mkt Market, sizeDeltaUsd *pricing.USD, side Side) *pricing.USD {
	longOI := m.pool.OpenInterestUsd(Long)
	shortOI := m.pool.OpenInterestUsd(Short)

	nextLongOI := longOI.Clone()
	nextShortOI := shortOI.Clone()
	if side == Long {
		nextLongOI = nextLongOI.Add(sizeDeltaUsd)
		if nextLongOI.Sign() < 0 {
			nextLongOI = pricing.ZeroUSD()
		}
	} else {
		nextShortOI = nextShortOI.Add(sizeDeltaUsd)
		if nextShortOI.Sign() < 0 {
			nextShortOI = pricing.ZeroUSD()
		}
	}

	initialImbalance := longOI.Sub(shortOI).Abs()
	nextImbalance := nextLongOI.Sub(nextShortOI).Abs()

	factor := m.negativeFactor
	if nextImbalance.Cmp(initialImbalance) < 0 {
		factor = m.positiveFactor
	}

	initialPenalty := quadraticPenalty(initialImbalance, factor)
	nextPenalty := quadraticPenalty(nextImbalance, factor)
	return initialPenalty.Sub(nextPenalty)
}

// quadraticPenalty computes factor * imbalance^2, rescaled so the result
// stays USD-scaled.
func quadraticPenalty(imbalance *pricing.USD, factor *pricing.Factor) *pricing.USD {
	squared := pricing.MulDiv(imbalance.Raw(), imbalance.Raw(), pricing.PrecisionUSD, pricing.RoundDown)
	return pricing.USDFromRaw(squared).ApplyFactor(factor, pricing.RoundDown)
}
