// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines the per-market risk threshold configuration
// consumed by the position risk core.
//
// A Config is a typed, validated snapshot constructed once per evaluation
// and passed explicitly; the core never reads thresholds through opaque
// keys mid-computation.
package config

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"

	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

var (
	ErrMissingThreshold = errors.New("config threshold not set")
	ErrNegativeFactor   = errors.New("config factor must be non-negative")
	ErrNegativeUsd      = errors.New("config usd threshold must be non-negative")
	ErrNoCollateral     = errors.New("config has no accepted collateral tokens")
)

// Config holds the risk thresholds for one market. All fields are required.
type Config struct {
	// Enabled gates whether the market accepts position changes at all.
	Enabled bool

	// AcceptedCollateral is the set of tokens accepted as position
	// collateral for this market.
	AcceptedCollateral set.Set[ids.ID]

	// MinPositionSizeUsd is the minimum remaining position size after any
	// increase or decrease.
	MinPositionSizeUsd *pricing.USD

	// MinCollateralUsd is the absolute collateral floor applied when a
	// caller requests the min-collateral validation.
	MinCollateralUsd *pricing.USD

	// MinCollateralFactor is the market's static minimum ratio of
	// collateral to position size (inverse of max leverage).
	MinCollateralFactor *pricing.Factor

	// MinCollateralFactorForOpenInterestMultiplier scales the open-interest
	// sensitive collateral floor: factor = openInterest * multiplier.
	MinCollateralFactorForOpenInterestMultiplier *pricing.Factor

	// MaxPositionImpactFactorForLiquidations bounds the negative price
	// impact charged in a liquidation check, as a factor of position size.
	MaxPositionImpactFactorForLiquidations *pricing.Factor

	// MaxPositionImpactFactorForDecreases bounds the negative price impact
	// charged on a decrease, as a factor of the order's notional size.
	MaxPositionImpactFactorForDecreases *pricing.Factor

	// MaxPoolPnlFactor caps pool-wide PnL payout as a factor of pool value.
	MaxPoolPnlFactor *pricing.Factor

	// PositiveImpactFactor and NegativeImpactFactor parameterize the
	// open-interest imbalance impact model for this market.
	PositiveImpactFactor *pricing.Factor
	NegativeImpactFactor *pricing.Factor
}

// Default returns a conservative baseline configuration. Thresholds mirror
// common mainnet parameterizations; governance overrides them per market.
func Default() Config {
	return Config{
		Enabled:                                      true,
		AcceptedCollateral:                           set.NewSet[ids.ID](2),
		MinPositionSizeUsd:                           pricing.NewUSD(1),
		MinCollateralUsd:                             pricing.NewUSD(1),
		MinCollateralFactor:                          pricing.FactorFromBps(100), // 1% => 100x max leverage
		MinCollateralFactorForOpenInterestMultiplier: pricing.ZeroFactor(),
		MaxPositionImpactFactorForLiquidations:       pricing.FactorFromBps(50), // 0.5% of size
		MaxPositionImpactFactorForDecreases:          pricing.FactorFromBps(50),
		MaxPoolPnlFactor:                             pricing.FactorFromBps(9000), // 90% of pool value
		PositiveImpactFactor:                         pricing.ZeroFactor(),
		NegativeImpactFactor:                         pricing.ZeroFactor(),
	}
}

// Validate checks that every threshold is present and in range.
func (c Config) Validate() error {
	usd := map[string]*pricing.USD{
		"minPositionSizeUsd": c.MinPositionSizeUsd,
		"minCollateralUsd":   c.MinCollateralUsd,
	}
	for name, v := range usd {
		if v == nil {
			return fmt.Errorf("%w: %s", ErrMissingThreshold, name)
		}
		if v.Sign() < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeUsd, name)
		}
	}

	factors := map[string]*pricing.Factor{
		"minCollateralFactor":                          c.MinCollateralFactor,
		"minCollateralFactorForOpenInterestMultiplier": c.MinCollateralFactorForOpenInterestMultiplier,
		"maxPositionImpactFactorForLiquidations":       c.MaxPositionImpactFactorForLiquidations,
		"maxPositionImpactFactorForDecreases":          c.MaxPositionImpactFactorForDecreases,
		"maxPoolPnlFactor":                             c.MaxPoolPnlFactor,
		"positiveImpactFactor":                         c.PositiveImpactFactor,
		"negativeImpactFactor":                         c.NegativeImpactFactor,
	}
	for name, f := range factors {
		if f == nil {
			return fmt.Errorf("%w: %s", ErrMissingThreshold, name)
		}
		if f.Sign() < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeFactor, name)
		}
	}

	if c.AcceptedCollateral.Len() == 0 {
		return ErrNoCollateral
	}
	return nil
}
