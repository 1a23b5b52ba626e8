// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"math/big"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

// Emitter is the observability sink for state mutations. Emission is
// fire-and-forget: events are never consulted for decisions and emission
// failures never abort an operation.
type Emitter struct {
	log log.Logger

	openInterestUpdates     prometheus.Counter
	claimableFundingCredits prometheus.Counter
	liquidationDeclarations prometheus.Counter
}

// NewEmitter creates an emitter. The registerer may be nil, in which case
// counters are kept but not exported.
func NewEmitter(logger log.Logger, registerer metric.Registerer) (*Emitter, error) {
	e := &Emitter{
		log: logger,
		openInterestUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perp_open_interest_updates",
			Help: "Number of open interest aggregate updates",
		}),
		claimableFundingCredits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perp_claimable_funding_credits",
			Help: "Number of claimable funding credit events",
		}),
		liquidationDeclarations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perp_liquidation_declarations",
			Help: "Number of positions declared liquidatable",
		}),
	}

	if registerer != nil {
		for _, c := range []prometheus.Collector{
			e.openInterestUpdates,
			e.claimableFundingCredits,
			e.liquidationDeclarations,
		} {
			if err := registerer.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return e, nil
}

// EmitOpenInterestUpdate records an open-interest aggregate change.
func (e *Emitter) EmitOpenInterestUpdate(marketToken ids.ID, side Side, sizeDeltaUsd *pricing.USD, sizeDeltaTokens *big.Int) {
	e.openInterestUpdates.Inc()
	e.log.Info("open interest update",
		"market", marketToken,
		"side", side,
		"sizeDeltaUsd", sizeDeltaUsd,
		"sizeDeltaTokens", sizeDeltaTokens,
	)
}

// EmitClaimableFundingIncrement records a claimable funding credit.
func (e *Emitter) EmitClaimableFundingIncrement(marketToken, account, token ids.ID, amount *big.Int) {
	e.claimableFundingCredits.Inc()
	e.log.Info("claimable funding credited",
		"market", marketToken,
		"account", account,
		"token", token,
		"amount", amount,
	)
}

// EmitLiquidationDeclared records that a position was found liquidatable.
func (e *Emitter) EmitLiquidationDeclared(marketToken, account ids.ID, reason string, remainingCollateralUsd *pricing.USD) {
	e.liquidationDeclarations.Inc()
	e.log.Info("position liquidatable",
		"market", marketToken,
		"account", account,
		"reason", reason,
		"remainingCollateralUsd", remainingCollateralUsd,
	)
}
