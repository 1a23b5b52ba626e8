// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package position

import (
	"errors"
	"fmt"

	"github.com/DarkHorse0725/optix-v2-perp-core/market"
	"github.com/DarkHorse0725/optix-v2-perp-core/oracle"
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

// ErrLiquidatablePosition is the sentinel matched by errors.Is against a
// *LiquidatableError.
var ErrLiquidatablePosition = errors.New("position is liquidatable")

// LiquidationReason identifies which threshold a liquidatable position
// failed. Reasons are mutually exclusive; the first matching check wins.
type LiquidationReason uint8

const (
	ReasonNone LiquidationReason = iota
	// ReasonMinCollateral: remaining collateral fell below the absolute
	// configured floor.
	ReasonMinCollateral
	// ReasonBelowZero: remaining collateral is zero or negative.
	ReasonBelowZero
	// ReasonMinCollateralForLeverage: remaining collateral fell below the
	// leverage-implied floor for the position size.
	ReasonMinCollateralForLeverage
)

func (r LiquidationReason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonMinCollateral:
		return "min collateral"
	case ReasonBelowZero:
		return "below zero"
	case ReasonMinCollateralForLeverage:
		return "min collateral for leverage"
	default:
		return "unknown"
	}
}

// LiquidationInfo carries the threshold quantities a liquidation decision
// was made against, for caller-side reporting.
type LiquidationInfo struct {
	RemainingCollateralUsd      *pricing.USD
	MinCollateralUsd            *pricing.USD
	MinCollateralUsdForLeverage *pricing.USD
}

// LiquidatableError reports a liquidatable position together with the
// reason and diagnostics. errors.Is(err, ErrLiquidatablePosition) matches.
type LiquidatableError struct {
	Reason LiquidationReason
	Info   LiquidationInfo
}

func (e *LiquidatableError) Error() string {
	return fmt.Sprintf("position is liquidatable (%s): remaining collateral %s, min collateral %s, min collateral for leverage %s",
		e.Reason,
		e.Info.RemainingCollateralUsd,
		e.Info.MinCollateralUsd,
		e.Info.MinCollateralUsdForLeverage,
	)
}

func (e *LiquidatableError) Is(target error) bool {
	return target == ErrLiquidatablePosition
}

// IsLiquidatable evaluates whether a position must be liquidated.
//
// The estimate of the price impact of a hypothetical full close is never
// credited when favorable (a position must not look safer because closing
// it would move the price in its favor), and when unfavorable its magnitude
// is clamped to the configured bound so one extreme price swing cannot
// cascade liquidations.
//
// validateMinCollateral controls the absolute collateral floor check;
// decrease flows skip it deliberately because decrease sizing is
// pre-estimated and snapped to avoid tiny leftover positions.
func (e *Evaluator) IsLiquidatable(pos *Position, mkt market.Market, prices oracle.MarketPrices, validateMinCollateral bool) (bool, LiquidationReason, *LiquidationInfo, error) {
	pnl, err := e.PositionPnl(pos, mkt, prices, pos.SizeInUsd)
	if err != nil {
		return false, ReasonNone, nil, err
	}

	collateralPrice, err := prices.CollateralPrice(mkt.LongToken, mkt.ShortToken, pos.CollateralToken)
	if err != nil {
		return false, ReasonNone, nil, err
	}
	collateralUsd := pricing.TokensToUSD(pos.CollateralAmount, collateralPrice.Min)

	impactUsd := e.impact.PriceImpactUsd(mkt, pos.SizeInUsd.Neg(), pos.Side)
	if impactUsd.Sign() >= 0 {
		// Favorable impact is never credited in a liquidation check.
		impactUsd = pricing.ZeroUSD()
	} else {
		maxImpactUsd := pos.SizeInUsd.ApplyFactor(e.cfg.MaxPositionImpactFactorForLiquidations, pricing.RoundDown)
		if impactUsd.Neg().Cmp(maxImpactUsd) > 0 {
			impactUsd = maxImpactUsd.Neg()
		}
	}

	fees, err := e.fees.PositionFees(pos, collateralPrice, pos.SizeInUsd, false)
	if err != nil {
		return false, ReasonNone, nil, err
	}
	// Same conservative price basis as the fee computation itself.
	feeCostUsd := pricing.TokensToUSD(fees.TotalCostAmount, collateralPrice.Min)

	remainingCollateralUsd := collateralUsd.
		Add(pnl.PnlUsd).
		Add(impactUsd).
		Sub(feeCostUsd)

	minCollateralUsdForLeverage := pos.SizeInUsd.ApplyFactor(e.cfg.MinCollateralFactor, pricing.RoundDown)

	info := &LiquidationInfo{
		RemainingCollateralUsd:      remainingCollateralUsd,
		MinCollateralUsd:            e.cfg.MinCollateralUsd.Clone(),
		MinCollateralUsdForLeverage: minCollateralUsdForLeverage,
	}

	switch {
	case validateMinCollateral && remainingCollateralUsd.Cmp(e.cfg.MinCollateralUsd) < 0:
		return true, ReasonMinCollateral, info, nil
	case remainingCollateralUsd.Sign() <= 0:
		return true, ReasonBelowZero, info, nil
	case remainingCollateralUsd.Cmp(minCollateralUsdForLeverage) < 0:
		return true, ReasonMinCollateralForLeverage, info, nil
	default:
		return false, ReasonNone, info, nil
	}
}

// ValidateOptions controls the optional checks of ValidatePosition.
type ValidateOptions struct {
	// ValidateMinPositionSize enforces the configured minimum position
	// size.
	ValidateMinPositionSize bool
	// ValidateMinCollateral enforces the absolute collateral floor inside
	// the liquidation check. Decrease flows disable it by design.
	ValidateMinCollateral bool
}

// ValidatePosition rejects structurally invalid positions, disabled or
// mismatched markets, undersized positions, and liquidatable positions.
// A liquidatable position is reported as a *LiquidatableError carrying the
// decision diagnostics.
func (e *Evaluator) ValidatePosition(pos *Position, mkt market.Market, prices oracle.MarketPrices, opts ValidateOptions) error {
	if err := pos.Validate(); err != nil {
		return err
	}
	if err := mkt.Validate(); err != nil {
		return err
	}
	if !e.cfg.Enabled {
		return ErrMarketDisabled
	}
	if !mkt.IsCollateralToken(pos.CollateralToken) || !e.cfg.AcceptedCollateral.Contains(pos.CollateralToken) {
		return ErrCollateralNotAccepted
	}
	if opts.ValidateMinPositionSize && pos.SizeInUsd.Cmp(e.cfg.MinPositionSizeUsd) < 0 {
		return ErrMinPositionSize
	}

	liquidatable, reason, info, err := e.IsLiquidatable(pos, mkt, prices, opts.ValidateMinCollateral)
	if err != nil {
		return err
	}
	if liquidatable {
		e.events.EmitLiquidationDeclared(mkt.MarketToken, pos.Account, reason.String(), info.RemainingCollateralUsd)
		return &LiquidatableError{
			Reason: reason,
			Info:   *info,
		}
	}
	return nil
}
