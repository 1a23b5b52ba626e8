// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package position

import (
	"errors"
	"math/big"

	"github.com/luxfi/ids"

	"github.com/DarkHorse0725/optix-v2-perp-core/config"
	"github.com/DarkHorse0725/optix-v2-perp-core/market"
	"github.com/DarkHorse0725/optix-v2-perp-core/oracle"
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

var ErrMissingCollaborator = errors.New("evaluator collaborator must not be nil")

// PoolState is the aggregate market-state collaborator. All reads reflect
// the state as of the start of the evaluation; mutators are only reached
// through the evaluator's forwarders.
type PoolState interface {
	PoolValueUsd() *pricing.USD
	OpenInterestUsd(side market.Side) *pricing.USD
	ImpactPoolAmount() *big.Int
	Pnl(side market.Side, indexPrice oracle.Price, maximize bool) *pricing.USD
	CappedPnl(side market.Side, indexPrice oracle.Price, maximize bool, maxPnlFactor *pricing.Factor) *pricing.USD
	MinCollateralFactorForOpenInterest(deltaUsd *pricing.USD, side market.Side, multiplier *pricing.Factor) *pricing.Factor

	ApplyOpenInterestDelta(side market.Side, deltaUsd *pricing.USD, deltaTokens *big.Int) error
	CreditClaimableFunding(account, token ids.ID, amount *big.Int) error
}

// ImpactModel is the pricing-model collaborator. It returns the signed
// price impact in quote currency of applying sizeDeltaUsd (positive for
// increases, negative for decreases) to the given side. Negative impact is
// a cost to the trader.
type ImpactModel interface {
	PriceImpactUsd(mkt market.Market, sizeDeltaUsd *pricing.USD, side market.Side) *pricing.USD
}

// PositionFees is the externally computed fee breakdown consumed read-only
// by the liquidation evaluator.
type PositionFees struct {
	// ClaimableLongTokenAmount and ClaimableShortTokenAmount are funding
	// amounts claimable by the position owner, per market token side.
	ClaimableLongTokenAmount  *big.Int
	ClaimableShortTokenAmount *big.Int

	// TotalCostAmount is the total fee cost in collateral token units.
	TotalCostAmount *big.Int
}

// FeeModel is the fee collaborator. The collateral price passed in is the
// same conservative basis the caller uses to value the returned cost
// amount; mixing price bases between the two is a correctness bug.
type FeeModel interface {
	PositionFees(pos *Position, collateralPrice oracle.Price, sizeDeltaUsd *pricing.USD, balanceWasImproved bool) (PositionFees, error)
}

// OrderPricer is the order-pricing collaborator that derives the validated
// final execution price, enforcing the order's acceptable-price bound.
type OrderPricer interface {
	ExecutionPriceForIncrease(sizeDeltaUsd *pricing.USD, sizeDeltaInTokens *big.Int, acceptablePrice *big.Int, side market.Side) (*big.Int, error)
	ExecutionPriceForDecrease(indexPrice oracle.Price, positionSizeUsd *pricing.USD, positionSizeInTokens *big.Int, sizeDeltaUsd, priceImpactUsd *pricing.USD, acceptablePrice *big.Int, side market.Side) (*big.Int, error)
}

// EventSink receives fire-and-forget events on state mutation. It is never
// consulted for decisions.
type EventSink interface {
	EmitOpenInterestUpdate(marketToken ids.ID, side market.Side, sizeDeltaUsd *pricing.USD, sizeDeltaTokens *big.Int)
	EmitClaimableFundingIncrement(marketToken, account, token ids.ID, amount *big.Int)
	EmitLiquidationDeclared(marketToken, account ids.ID, reason string, remainingCollateralUsd *pricing.USD)
}

// noopSink drops all events.
type noopSink struct{}

func (noopSink) EmitOpenInterestUpdate(ids.ID, market.Side, *pricing.USD, *big.Int) {}
func (noopSink) EmitClaimableFundingIncrement(ids.ID, ids.ID, ids.ID, *big.Int)     {}
func (noopSink) EmitLiquidationDeclared(ids.ID, ids.ID, string, *pricing.USD)       {}

// Evaluator is the evaluation context: one configuration snapshot plus the
// external collaborators, fixed for the lifetime of the evaluator. All
// methods are pure computations over their inputs except the two explicit
// forwarders.
type Evaluator struct {
	cfg    config.Config
	pool   PoolState
	impact ImpactModel
	fees   FeeModel
	pricer OrderPricer
	events EventSink
}

// NewEvaluator builds an evaluator from a validated configuration snapshot
// and its collaborators. The event sink may be nil.
func NewEvaluator(
	cfg config.Config,
	pool PoolState,
	impact ImpactModel,
	fees FeeModel,
	pricer OrderPricer,
	events EventSink,
) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pool == nil || impact == nil || fees == nil || pricer == nil {
		return nil, ErrMissingCollaborator
	}
	if events == nil {
		events = noopSink{}
	}
	return &Evaluator{
		cfg:    cfg,
		pool:   pool,
		impact: impact,
		fees:   fees,
		pricer: pricer,
		events: events,
	}, nil
}

// Config returns the evaluator's configuration snapshot.
func (e *Evaluator) Config() config.Config {
	return e.cfg
}
