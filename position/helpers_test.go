// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package position

import (
	"math/big"
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/DarkHorse0725/optix-v2-perp-core/config"
	"github.com/DarkHorse0725/optix-v2-perp-core/market"
	"github.com/DarkHorse0725/optix-v2-perp-core/oracle"
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

// unitPrice returns the USD-scaled price per base unit for a whole-token
// dollar price, with 1e6 base units per token.
func unitPrice(dollarsPerToken int64) *big.Int {
	p := pricing.NewUSD(dollarsPerToken).Raw()
	return p.Div(p, big.NewInt(1_000_000))
}

// tokens returns whole tokens in base units (1e6 per token).
func tokens(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), big.NewInt(1_000_000))
}

// stablePrice prices the collateral token at exactly $1 per base unit, so
// collateral amounts read directly as dollars in tests.
func stablePrice() oracle.Price {
	return oracle.NewPrice(pricing.PrecisionUSD, pricing.PrecisionUSD)
}

func newMarket() market.Market {
	return market.Market{
		MarketToken: ids.GenerateTestID(),
		IndexToken:  ids.GenerateTestID(),
		LongToken:   ids.GenerateTestID(),
		ShortToken:  ids.GenerateTestID(),
	}
}

func pricesAt(minDollars, maxDollars int64) oracle.MarketPrices {
	return oracle.MarketPrices{
		IndexTokenPrice: oracle.NewPrice(unitPrice(minDollars), unitPrice(maxDollars)),
		LongTokenPrice:  oracle.NewPrice(unitPrice(minDollars), unitPrice(maxDollars)),
		ShortTokenPrice: stablePrice(),
	}
}

// newPosition builds a position collateralized in the market's stable token,
// with collateralDollars base units of collateral (each worth $1).
func newPosition(mkt market.Market, side market.Side, sizeUsd int64, sizeInTokens *big.Int, collateralDollars int64) *Position {
	return &Position{
		Account:         ids.GenerateTestID(),
		Market:          mkt.MarketToken,
		CollateralToken: mkt.ShortToken,
		Side:            side,

		SizeInUsd:        pricing.NewUSD(sizeUsd),
		SizeInTokens:     new(big.Int).Set(sizeInTokens),
		CollateralAmount: big.NewInt(collateralDollars),

		BorrowingFactor: pricing.ZeroFactor(),

		LongTokenFundingAmountPerSize:  new(big.Int),
		ShortTokenFundingAmountPerSize: new(big.Int),
	}
}

// stubPool is a canned PoolState. Zero-value fields read as zero amounts.
type stubPool struct {
	poolValueUsd *pricing.USD
	longOI       *pricing.USD
	shortOI      *pricing.USD
	impactPool   *big.Int
	poolPnl      *pricing.USD
	poolCapped   *pricing.USD
	oiFactor     *pricing.Factor
	applyErr     error

	appliedUsd   []*pricing.USD
	creditedAmts []*big.Int
}

func orZeroUSD(u *pricing.USD) *pricing.USD {
	if u == nil {
		return pricing.ZeroUSD()
	}
	return u.Clone()
}

func (s *stubPool) PoolValueUsd() *pricing.USD {
	return orZeroUSD(s.poolValueUsd)
}

func (s *stubPool) OpenInterestUsd(side market.Side) *pricing.USD {
	if side == market.Long {
		return orZeroUSD(s.longOI)
	}
	return orZeroUSD(s.shortOI)
}

func (s *stubPool) ImpactPoolAmount() *big.Int {
	if s.impactPool == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(s.impactPool)
}

func (s *stubPool) Pnl(market.Side, oracle.Price, bool) *pricing.USD {
	return orZeroUSD(s.poolPnl)
}

func (s *stubPool) CappedPnl(side market.Side, indexPrice oracle.Price, maximize bool, _ *pricing.Factor) *pricing.USD {
	if s.poolCapped == nil {
		return s.Pnl(side, indexPrice, maximize)
	}
	return s.poolCapped.Clone()
}

func (s *stubPool) MinCollateralFactorForOpenInterest(*pricing.USD, market.Side, *pricing.Factor) *pricing.Factor {
	if s.oiFactor == nil {
		return pricing.ZeroFactor()
	}
	return s.oiFactor.Clone()
}

func (s *stubPool) ApplyOpenInterestDelta(_ market.Side, deltaUsd *pricing.USD, _ *big.Int) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	s.appliedUsd = append(s.appliedUsd, deltaUsd.Clone())
	return nil
}

func (s *stubPool) CreditClaimableFunding(_, _ ids.ID, amount *big.Int) error {
	s.creditedAmts = append(s.creditedAmts, new(big.Int).Set(amount))
	return nil
}

// stubImpact returns a fixed impact regardless of the request.
type stubImpact struct {
	impact *pricing.USD
}

func (s *stubImpact) PriceImpactUsd(market.Market, *pricing.USD, market.Side) *pricing.USD {
	return orZeroUSD(s.impact)
}

// stubFees returns a fixed fee breakdown.
type stubFees struct {
	costAmount *big.Int
	err        error
}

func (s *stubFees) PositionFees(*Position, oracle.Price, *pricing.USD, bool) (PositionFees, error) {
	if s.err != nil {
		return PositionFees{}, s.err
	}
	cost := new(big.Int)
	if s.costAmount != nil {
		cost.Set(s.costAmount)
	}
	return PositionFees{
		ClaimableLongTokenAmount:  new(big.Int),
		ClaimableShortTokenAmount: new(big.Int),
		TotalCostAmount:           cost,
	}, nil
}

// recordSink counts emitted events.
type recordSink struct {
	openInterestUpdates int
	fundingCredits      int
	liquidations        int
	lastReason          string
}

func (s *recordSink) EmitOpenInterestUpdate(ids.ID, market.Side, *pricing.USD, *big.Int) {
	s.openInterestUpdates++
}

func (s *recordSink) EmitClaimableFundingIncrement(ids.ID, ids.ID, ids.ID, *big.Int) {
	s.fundingCredits++
}

func (s *recordSink) EmitLiquidationDeclared(_, _ ids.ID, reason string, _ *pricing.USD) {
	s.liquidations++
	s.lastReason = reason
}

// testConfig returns a valid config accepting the market's collateral
// tokens.
func testConfig(mkt market.Market) config.Config {
	cfg := config.Default()
	cfg.AcceptedCollateral.Add(mkt.LongToken)
	cfg.AcceptedCollateral.Add(mkt.ShortToken)
	return cfg
}

func newTestEvaluator(t *testing.T, cfg config.Config, pool *stubPool, impact *stubImpact, fees *stubFees, sink EventSink) *Evaluator {
	e, err := NewEvaluator(cfg, pool, impact, fees, NewStandardPricer(), sink)
	require.NoError(t, err)
	return e
}
