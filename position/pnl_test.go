// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package position

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DarkHorse0725/optix-v2-perp-core/market"
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

func TestPositionPnlLong(t *testing.T) {
	require := require.New(t)
	mkt := newMarket()
	e := newTestEvaluator(t, testConfig(mkt), &stubPool{}, &stubImpact{}, &stubFees{}, nil)

	// 1 token entered at $1000, spread 1100/1200: longs mark at min.
	pos := newPosition(mkt, market.Long, 1000, tokens(1), 100)
	res, err := e.PositionPnl(pos, mkt, pricesAt(1100, 1200), pos.SizeInUsd)
	require.NoError(err)
	require.Equal(0, res.PnlUsd.Cmp(pricing.NewUSD(100)))
	require.Equal(0, res.UncappedPnlUsd.Cmp(pricing.NewUSD(100)))
	require.Equal(0, res.SizeDeltaInTokens.Cmp(pos.SizeInTokens))
}

func TestPositionPnlShort(t *testing.T) {
	require := require.New(t)
	mkt := newMarket()
	e := newTestEvaluator(t, testConfig(mkt), &stubPool{}, &stubImpact{}, &stubFees{}, nil)

	// 1 token sold at $1000, spread 900/950: shorts mark at max.
	pos := newPosition(mkt, market.Short, 1000, tokens(1), 100)
	res, err := e.PositionPnl(pos, mkt, pricesAt(900, 950), pos.SizeInUsd)
	require.NoError(err)
	require.Equal(0, res.PnlUsd.Cmp(pricing.NewUSD(50)))
}

func TestPositionPnlFullCloseNoDrift(t *testing.T) {
	require := require.New(t)
	mkt := newMarket()
	e := newTestEvaluator(t, testConfig(mkt), &stubPool{}, &stubImpact{}, &stubFees{}, nil)

	// Awkward token size; a prorated full close would drift, the exact
	// full-close path must not.
	pos := newPosition(mkt, market.Long, 1000, big.NewInt(333_337), 100)
	res, err := e.PositionPnl(pos, mkt, pricesAt(3000, 3000), pos.SizeInUsd)
	require.NoError(err)
	require.Equal(0, res.SizeDeltaInTokens.Cmp(pos.SizeInTokens))

	// PnL of the full close equals the direct computation.
	value := pricing.TokensToUSD(pos.SizeInTokens, unitPrice(3000))
	want := value.Sub(pos.SizeInUsd)
	require.Equal(0, res.PnlUsd.Cmp(want))
}

func TestPositionPnlProrationRounding(t *testing.T) {
	require := require.New(t)
	mkt := newMarket()
	e := newTestEvaluator(t, testConfig(mkt), &stubPool{}, &stubImpact{}, &stubFees{}, nil)
	prices := pricesAt(3, 3)

	// 10 token units against $3 of size: closing $1 is 10/3 units.
	long := newPosition(mkt, market.Long, 3, big.NewInt(10), 100)
	res, err := e.PositionPnl(long, mkt, prices, pricing.NewUSD(1))
	require.NoError(err)
	require.Equal(int64(4), res.SizeDeltaInTokens.Int64())

	short := newPosition(mkt, market.Short, 3, big.NewInt(10), 100)
	res, err = e.PositionPnl(short, mkt, prices, pricing.NewUSD(1))
	require.NoError(err)
	require.Equal(int64(3), res.SizeDeltaInTokens.Int64())
}

func TestPositionPnlPoolCapScaling(t *testing.T) {
	require := require.New(t)
	mkt := newMarket()

	// Pool-wide long PnL of $400 is being capped to $100, so every long's
	// positive PnL is scaled by 1/4.
	pool := &stubPool{
		poolPnl:    pricing.NewUSD(400),
		poolCapped: pricing.NewUSD(100),
	}
	e := newTestEvaluator(t, testConfig(mkt), pool, &stubImpact{}, &stubFees{}, nil)

	pos := newPosition(mkt, market.Long, 1000, tokens(1), 100)
	res, err := e.PositionPnl(pos, mkt, pricesAt(1200, 1200), pos.SizeInUsd)
	require.NoError(err)
	require.Equal(0, res.PnlUsd.Cmp(pricing.NewUSD(50)))
	require.Equal(0, res.UncappedPnlUsd.Cmp(pricing.NewUSD(200)))
}

func TestPositionPnlNoScalingWhenCapInactive(t *testing.T) {
	require := require.New(t)
	mkt := newMarket()

	// Cap equals the pool PnL: nothing is being withheld.
	pool := &stubPool{
		poolPnl:    pricing.NewUSD(400),
		poolCapped: pricing.NewUSD(400),
	}
	e := newTestEvaluator(t, testConfig(mkt), pool, &stubImpact{}, &stubFees{}, nil)

	pos := newPosition(mkt, market.Long, 1000, tokens(1), 100)
	res, err := e.PositionPnl(pos, mkt, pricesAt(1200, 1200), pos.SizeInUsd)
	require.NoError(err)
	require.Equal(0, res.PnlUsd.Cmp(pricing.NewUSD(200)))
}

func TestPositionPnlNegativeNeverScaled(t *testing.T) {
	require := require.New(t)
	mkt := newMarket()

	pool := &stubPool{
		poolPnl:    pricing.NewUSD(400),
		poolCapped: pricing.NewUSD(100),
	}
	e := newTestEvaluator(t, testConfig(mkt), pool, &stubImpact{}, &stubFees{}, nil)

	// Losing position: the payout cap has no business shrinking a loss.
	pos := newPosition(mkt, market.Long, 1000, tokens(1), 100)
	res, err := e.PositionPnl(pos, mkt, pricesAt(900, 900), pos.SizeInUsd)
	require.NoError(err)
	require.Equal(0, res.PnlUsd.Cmp(pricing.NewUSD(-100)))
}

func TestPositionPnlSizeDeltaBounds(t *testing.T) {
	require := require.New(t)
	mkt := newMarket()
	e := newTestEvaluator(t, testConfig(mkt), &stubPool{}, &stubImpact{}, &stubFees{}, nil)

	pos := newPosition(mkt, market.Long, 1000, tokens(1), 100)
	prices := pricesAt(1000, 1000)

	_, err := e.PositionPnl(pos, mkt, prices, pricing.NewUSD(-1))
	require.ErrorIs(err, ErrInvalidSizeDelta)

	_, err = e.PositionPnl(pos, mkt, prices, pricing.NewUSD(1001))
	require.ErrorIs(err, ErrInvalidSizeDelta)

	_, err = e.PositionPnl(&Position{}, mkt, prices, pricing.NewUSD(1))
	require.ErrorIs(err, ErrInvalidPositionSizeValues)
}
