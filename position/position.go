// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package position implements the position risk and execution-pricing core:
// unrealized PnL with pool-level capping, liquidation evaluation, collateral
// sufficiency checks, and execution-price derivation for increases and
// decreases.
//
// Every entry point is a pure function of an immutable input snapshot
// (position, market, prices, configuration). Only the two forwarders with
// aggregate side effects (open interest, claimable funding) mutate state,
// and they delegate to the pool collaborator.
package position

import (
	"errors"
	"math/big"

	"github.com/luxfi/ids"

	"github.com/DarkHorse0725/optix-v2-perp-core/market"
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

var (
	ErrEmptyPosition             = errors.New("position is empty")
	ErrInvalidPositionSizeValues = errors.New("position size values are inconsistent")
	ErrNegativePositionValue     = errors.New("position values must be non-negative")
	ErrMinPositionSize           = errors.New("position size below minimum")
	ErrMarketDisabled            = errors.New("market is disabled")
	ErrCollateralNotAccepted     = errors.New("collateral token not accepted for market")
	ErrInvalidSizeDelta          = errors.New("size delta exceeds position size")
)

// Position is one account's leveraged exposure in a market. Either both
// size fields are zero (empty position) or both are strictly positive; a
// position with exactly one zero size field is invalid and is rejected
// before any pricing math runs.
type Position struct {
	Account         ids.ID      `json:"account"`
	Market          ids.ID      `json:"market"` // market (pool) token
	CollateralToken ids.ID      `json:"collateralToken"`
	Side            market.Side `json:"side"`

	// SizeInUsd is the position's notional size in quote currency.
	SizeInUsd *pricing.USD `json:"sizeInUsd"`
	// SizeInTokens is the position's size in index token base units.
	SizeInTokens *big.Int `json:"sizeInTokens"`
	// CollateralAmount is the locked collateral in collateral token units.
	CollateralAmount *big.Int `json:"collateralAmount"`

	// BorrowingFactor is the cumulative borrowing factor snapshot taken at
	// the last position change; borrowing accrual itself is external.
	BorrowingFactor *pricing.Factor `json:"borrowingFactor"`

	// Funding amount-per-size snapshots, maintained externally and carried
	// through position changes.
	LongTokenFundingAmountPerSize  *big.Int `json:"longTokenFundingAmountPerSize"`
	ShortTokenFundingAmountPerSize *big.Int `json:"shortTokenFundingAmountPerSize"`
}

// Validate enforces the size invariant. An empty position (both sizes and
// collateral zero) yields ErrEmptyPosition; exactly one zero size field
// yields ErrInvalidPositionSizeValues.
func (p *Position) Validate() error {
	if p.SizeInUsd == nil || p.SizeInTokens == nil || p.CollateralAmount == nil {
		return ErrInvalidPositionSizeValues
	}
	if p.SizeInUsd.Sign() < 0 || p.SizeInTokens.Sign() < 0 || p.CollateralAmount.Sign() < 0 {
		return ErrNegativePositionValue
	}

	usdZero := p.SizeInUsd.IsZero()
	tokensZero := p.SizeInTokens.Sign() == 0

	if usdZero != tokensZero {
		return ErrInvalidPositionSizeValues
	}
	if usdZero && tokensZero {
		if p.CollateralAmount.Sign() == 0 {
			return ErrEmptyPosition
		}
		return ErrInvalidPositionSizeValues
	}
	return nil
}

// IsEmpty reports whether the position carries no exposure and no
// collateral.
func (p *Position) IsEmpty() bool {
	return p.SizeInUsd != nil && p.SizeInUsd.IsZero() &&
		p.SizeInTokens != nil && p.SizeInTokens.Sign() == 0 &&
		p.CollateralAmount != nil && p.CollateralAmount.Sign() == 0
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	return &Position{
		Account:         p.Account,
		Market:          p.Market,
		CollateralToken: p.CollateralToken,
		Side:            p.Side,

		SizeInUsd:        p.SizeInUsd.Clone(),
		SizeInTokens:     new(big.Int).Set(p.SizeInTokens),
		CollateralAmount: new(big.Int).Set(p.CollateralAmount),

		BorrowingFactor: p.BorrowingFactor.Clone(),

		LongTokenFundingAmountPerSize:  new(big.Int).Set(p.LongTokenFundingAmountPerSize),
		ShortTokenFundingAmountPerSize: new(big.Int).Set(p.ShortTokenFundingAmountPerSize),
	}
}
