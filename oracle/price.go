// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package oracle defines the price snapshot types consumed by the risk core.
//
// Prices are reported as a {Min, Max} pair per token for one evaluation
// window. A snapshot is captured once by the caller and never refreshed
// mid-computation, so every derived quantity in an evaluation shares one
// price basis.
package oracle

import (
	"errors"
	"math/big"

	"github.com/luxfi/ids"
)

var (
	ErrEmptyPrice       = errors.New("price has no value set")
	ErrNonPositivePrice = errors.New("price must be positive")
	ErrInvertedSpread   = errors.New("price min exceeds max")
	ErrUnknownToken     = errors.New("token has no price in snapshot")
)

// Price is the bid/ask spread reported for one token, USD-scaled per token
// base unit.
type Price struct {
	Min *big.Int `json:"min"`
	Max *big.Int `json:"max"`
}

// NewPrice returns a Price with copies of min and max.
func NewPrice(min, max *big.Int) Price {
	return Price{
		Min: new(big.Int).Set(min),
		Max: new(big.Int).Set(max),
	}
}

// Validate checks that both sides are set, positive, and not inverted.
func (p Price) Validate() error {
	if p.Min == nil || p.Max == nil {
		return ErrEmptyPrice
	}
	if p.Min.Sign() <= 0 || p.Max.Sign() <= 0 {
		return ErrNonPositivePrice
	}
	if p.Min.Cmp(p.Max) > 0 {
		return ErrInvertedSpread
	}
	return nil
}

// Pick returns the max price when maximize is set, otherwise the min price.
func (p Price) Pick(maximize bool) *big.Int {
	if maximize {
		return new(big.Int).Set(p.Max)
	}
	return new(big.Int).Set(p.Min)
}

// PickForPnl selects the marking price for PnL of a position. The
// non-maximized side is the conservative basis: longs mark at min, shorts
// at max. Maximize flips the selection for pool-favorable marking.
func (p Price) PickForPnl(long, maximize bool) *big.Int {
	if long {
		return p.Pick(maximize)
	}
	return p.Pick(!maximize)
}

// Mid returns the midpoint of the spread, truncated.
func (p Price) Mid() *big.Int {
	sum := new(big.Int).Add(p.Min, p.Max)
	return sum.Rsh(sum, 1)
}

// MarketPrices bundles the token prices used for one evaluation. The bundle
// is an immutable snapshot; callers must not mutate it once an evaluation
// has started.
type MarketPrices struct {
	IndexTokenPrice Price
	LongTokenPrice  Price
	ShortTokenPrice Price
}

// Validate checks every price in the bundle.
func (mp MarketPrices) Validate() error {
	if err := mp.IndexTokenPrice.Validate(); err != nil {
		return err
	}
	if err := mp.LongTokenPrice.Validate(); err != nil {
		return err
	}
	return mp.ShortTokenPrice.Validate()
}

// CollateralPrice returns the price for the given collateral token, which
// must be the market's long or short token.
func (mp MarketPrices) CollateralPrice(longToken, shortToken, collateralToken ids.ID) (Price, error) {
	switch collateralToken {
	case longToken:
		return mp.LongTokenPrice, nil
	case shortToken:
		return mp.ShortTokenPrice, nil
	default:
		return Price{}, ErrUnknownToken
	}
}
