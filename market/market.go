// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package market defines the market descriptor and the aggregate pool state
// that pool-wide risk limits are computed from.
package market

import (
	"errors"

	"github.com/luxfi/ids"
)

var ErrEmptyToken = errors.New("market token must not be empty")

// Side represents the direction of exposure (long or short).
type Side uint8

const (
	Long Side = iota
	Short
)

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "unknown"
	}
}

// IsLong reports whether the side is Long.
func (s Side) IsLong() bool {
	return s == Long
}

// Opposite returns the opposite side.
func (s Side) Opposite() Side {
	if s == Long {
		return Short
	}
	return Long
}

// Market identifies the tokens backing one market. It is an immutable
// descriptor supplied by the caller for the duration of a computation.
type Market struct {
	// MarketToken identifies the pool (liquidity provider) token.
	MarketToken ids.ID `json:"marketToken"`
	// IndexToken is the token whose price positions track.
	IndexToken ids.ID `json:"indexToken"`
	// LongToken backs long-side payouts.
	LongToken ids.ID `json:"longToken"`
	// ShortToken backs short-side payouts.
	ShortToken ids.ID `json:"shortToken"`
}

// Validate checks that all token identifiers are set.
func (m Market) Validate() error {
	for _, token := range []ids.ID{m.MarketToken, m.IndexToken, m.LongToken, m.ShortToken} {
		if token == ids.Empty {
			return ErrEmptyToken
		}
	}
	return nil
}

// IsCollateralToken reports whether token is one of the market's backing
// tokens and therefore usable as position collateral.
func (m Market) IsCollateralToken(token ids.ID) bool {
	return token == m.LongToken || token == m.ShortToken
}
