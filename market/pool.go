// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/DarkHorse0725/optix-v2-perp-core/oracle"
	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

var (
	ErrNegativeOpenInterest = errors.New("open interest would become negative")
	ErrNegativeImpactPool   = errors.New("impact pool would become negative")
	ErrNegativeAmount       = errors.New("amount must be non-negative")

	prefixPoolState = []byte("poolState:")
	prefixClaimable = []byte("claimableFunding:")
)

// poolRecord is the persisted aggregate state of one market's pool.
type poolRecord struct {
	PoolValueUsd *pricing.USD `json:"poolValueUsd"`

	LongOpenInterestUsd  *pricing.USD `json:"longOpenInterestUsd"`
	ShortOpenInterestUsd *pricing.USD `json:"shortOpenInterestUsd"`

	LongOpenInterestInTokens  *big.Int `json:"longOpenInterestInTokens"`
	ShortOpenInterestInTokens *big.Int `json:"shortOpenInterestInTokens"`

	// ImpactPoolAmount is the position-impact reserve, in index tokens.
	ImpactPoolAmount *big.Int `json:"impactPoolAmount"`
}

func newPoolRecord() poolRecord {
	return poolRecord{
		PoolValueUsd:              pricing.ZeroUSD(),
		LongOpenInterestUsd:       pricing.ZeroUSD(),
		ShortOpenInterestUsd:      pricing.ZeroUSD(),
		LongOpenInterestInTokens:  new(big.Int),
		ShortOpenInterestInTokens: new(big.Int),
		ImpactPoolAmount:          new(big.Int),
	}
}

// Pool is the aggregate market-state collaborator: pool value, pool-wide
// PnL, impact-pool balance, open interest, and claimable funding credits.
//
// Mutations are staged in a version layer over the base database; a
// top-level operation either commits the layer or aborts it, so there is no
// partial-failure state to reconcile.
type Pool struct {
	mu  sync.RWMutex
	db  *versiondb.Database
	log log.Logger

	marketToken ids.ID
	state       poolRecord
}

// NewPool opens (or initializes) the aggregate state for a market.
func NewPool(base database.Database, marketToken ids.ID, logger log.Logger) (*Pool, error) {
	p := &Pool{
		db:          versiondb.New(base),
		log:         logger,
		marketToken: marketToken,
		state:       newPoolRecord(),
	}

	data, err := p.db.Get(p.stateKey())
	switch {
	case errors.Is(err, database.ErrNotFound):
		// fresh market
	case err != nil:
		return nil, fmt.Errorf("failed to load pool state: %w", err)
	default:
		if err := json.Unmarshal(data, &p.state); err != nil {
			return nil, fmt.Errorf("failed to decode pool state: %w", err)
		}
	}
	return p, nil
}

func (p *Pool) stateKey() []byte {
	return append(prefixPoolState, p.marketToken[:]...)
}

func claimableKey(marketToken, account, token ids.ID) []byte {
	key := make([]byte, 0, len(prefixClaimable)+3*ids.IDLen)
	key = append(key, prefixClaimable...)
	key = append(key, marketToken[:]...)
	key = append(key, account[:]...)
	key = append(key, token[:]...)
	return key
}

// MarketToken returns the pool token this state belongs to.
func (p *Pool) MarketToken() ids.ID {
	return p.marketToken
}

// PoolValueUsd returns the current pool value.
func (p *Pool) PoolValueUsd() *pricing.USD {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.PoolValueUsd.Clone()
}

// OpenInterestUsd returns the aggregate notional size of the given side.
func (p *Pool) OpenInterestUsd(side Side) *pricing.USD {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if side == Long {
		return p.state.LongOpenInterestUsd.Clone()
	}
	return p.state.ShortOpenInterestUsd.Clone()
}

// OpenInterestInTokens returns the aggregate token size of the given side.
func (p *Pool) OpenInterestInTokens(side Side) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if side == Long {
		return new(big.Int).Set(p.state.LongOpenInterestInTokens)
	}
	return new(big.Int).Set(p.state.ShortOpenInterestInTokens)
}

// ImpactPoolAmount returns the position-impact reserve in index tokens.
func (p *Pool) ImpactPoolAmount() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.state.ImpactPoolAmount)
}

// Pnl returns the pool-wide unrealized PnL owed to the given side, marked
// at the index price. Maximize selects the trader-favorable marking side.
func (p *Pool) Pnl(side Side, indexPrice oracle.Price, maximize bool) *pricing.USD {
	p.mu.RLock()
	defer p.mu.RUnlock()

	price := indexPrice.PickForPnl(side.IsLong(), maximize)
	if side == Long {
		value := pricing.TokensToUSD(p.state.LongOpenInterestInTokens, price)
		return value.Sub(p.state.LongOpenInterestUsd)
	}
	value := pricing.TokensToUSD(p.state.ShortOpenInterestInTokens, price)
	return p.state.ShortOpenInterestUsd.Sub(value)
}

// CappedPnl returns the pool-wide PnL for the side, capped at
// maxPnlFactor of pool value. The cap only ever reduces a positive PnL.
func (p *Pool) CappedPnl(side Side, indexPrice oracle.Price, maximize bool, maxPnlFactor *pricing.Factor) *pricing.USD {
	pnl := p.Pnl(side, indexPrice, maximize)
	if pnl.Sign() <= 0 {
		return pnl
	}

	p.mu.RLock()
	maxPnl := p.state.PoolValueUsd.ApplyFactor(maxPnlFactor, pricing.RoundDown)
	p.mu.RUnlock()

	if pnl.Cmp(maxPnl) > 0 {
		return maxPnl
	}
	return pnl
}

// MinCollateralFactorForOpenInterest returns the collateral factor implied
// by the side's open interest after applying deltaUsd, scaled by the
// configured multiplier. Larger open interest demands more collateral per
// unit of size.
func (p *Pool) MinCollateralFactorForOpenInterest(deltaUsd *pricing.USD, side Side, multiplier *pricing.Factor) *pricing.Factor {
	openInterest := p.OpenInterestUsd(side).Add(deltaUsd)
	if openInterest.Sign() <= 0 {
		return pricing.ZeroFactor()
	}
	raw := pricing.MulDiv(openInterest.Raw(), multiplier.Raw(), pricing.PrecisionUSD, pricing.RoundDown)
	return pricing.FactorFromRaw(raw)
}

// SetPoolValueUsd records the pool's current value. Deposit and withdrawal
// accounting happens outside this core; the value is consumed read-only by
// the PnL cap.
func (p *Pool) SetPoolValueUsd(value *pricing.USD) error {
	if value.Sign() < 0 {
		return ErrNegativeAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.PoolValueUsd = value.Clone()
	return p.persist()
}

// ApplyOpenInterestDelta adjusts one side's open interest. Deltas may be
// negative; aggregate open interest must never go below zero.
func (p *Pool) ApplyOpenInterestDelta(side Side, deltaUsd *pricing.USD, deltaTokens *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var nextUsd *pricing.USD
	var nextTokens *big.Int
	if side == Long {
		nextUsd = p.state.LongOpenInterestUsd.Add(deltaUsd)
		nextTokens = new(big.Int).Add(p.state.LongOpenInterestInTokens, deltaTokens)
	} else {
		nextUsd = p.state.ShortOpenInterestUsd.Add(deltaUsd)
		nextTokens = new(big.Int).Add(p.state.ShortOpenInterestInTokens, deltaTokens)
	}
	if nextUsd.Sign() < 0 || nextTokens.Sign() < 0 {
		return ErrNegativeOpenInterest
	}

	if side == Long {
		p.state.LongOpenInterestUsd = nextUsd
		p.state.LongOpenInterestInTokens = nextTokens
	} else {
		p.state.ShortOpenInterestUsd = nextUsd
		p.state.ShortOpenInterestInTokens = nextTokens
	}

	p.log.Debug("open interest updated",
		"market", p.marketToken,
		"side", side,
		"deltaUsd", deltaUsd,
	)
	return p.persist()
}

// ApplyImpactPoolDelta adjusts the impact reserve by delta index tokens.
func (p *Pool) ApplyImpactPoolDelta(delta *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := new(big.Int).Add(p.state.ImpactPoolAmount, delta)
	if next.Sign() < 0 {
		return ErrNegativeImpactPool
	}
	p.state.ImpactPoolAmount = next
	return p.persist()
}

// CreditClaimableFunding adds a claimable funding amount for an account.
func (p *Pool) CreditClaimableFunding(account, token ids.ID, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := claimableKey(p.marketToken, account, token)
	current := new(big.Int)
	data, err := p.db.Get(key)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return fmt.Errorf("failed to load claimable funding: %w", err)
	default:
		if err := current.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("failed to decode claimable funding: %w", err)
		}
	}

	current.Add(current, amount)
	encoded, err := current.MarshalJSON()
	if err != nil {
		return err
	}
	return p.db.Put(key, encoded)
}

// ClaimableFunding returns the accumulated claimable funding for an account
// and token. Missing entries read as zero.
func (p *Pool) ClaimableFunding(account, token ids.ID) (*big.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	data, err := p.db.Get(claimableKey(p.marketToken, account, token))
	if errors.Is(err, database.ErrNotFound) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load claimable funding: %w", err)
	}
	amount := new(big.Int)
	if err := amount.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("failed to decode claimable funding: %w", err)
	}
	return amount, nil
}

// persist stages the current record into the version layer. Must be called
// with the lock held.
func (p *Pool) persist() error {
	data, err := json.Marshal(&p.state)
	if err != nil {
		return fmt.Errorf("failed to encode pool state: %w", err)
	}
	return p.db.Put(p.stateKey(), data)
}

// Commit flushes all staged mutations to the base database.
func (p *Pool) Commit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db.Commit()
}

// Abort discards all staged mutations and reloads the committed record.
func (p *Pool) Abort() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.db.Abort()

	p.state = newPoolRecord()
	data, err := p.db.Get(p.stateKey())
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to reload pool state: %w", err)
	default:
		return json.Unmarshal(data, &p.state)
	}
}
