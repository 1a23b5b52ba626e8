// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"

	"github.com/DarkHorse0725/optix-v2-perp-core/pricing"
)

var (
	ErrMarketConfigNotFound = errors.New("market config not found")

	prefixMarketConfig = []byte("marketConfig:")
)

// record is the persisted form of a market Config.
type record struct {
	Enabled            bool          `json:"enabled"`
	AcceptedCollateral []ids.ID      `json:"acceptedCollateral"`
	MinPositionSizeUsd *pricing.USD  `json:"minPositionSizeUsd"`
	MinCollateralUsd   *pricing.USD  `json:"minCollateralUsd"`

	MinCollateralFactor                          *pricing.Factor `json:"minCollateralFactor"`
	MinCollateralFactorForOpenInterestMultiplier *pricing.Factor `json:"minCollateralFactorForOpenInterestMultiplier"`
	MaxPositionImpactFactorForLiquidations       *pricing.Factor `json:"maxPositionImpactFactorForLiquidations"`
	MaxPositionImpactFactorForDecreases          *pricing.Factor `json:"maxPositionImpactFactorForDecreases"`
	MaxPoolPnlFactor                             *pricing.Factor `json:"maxPoolPnlFactor"`
	PositiveImpactFactor                         *pricing.Factor `json:"positiveImpactFactor"`
	NegativeImpactFactor                         *pricing.Factor `json:"negativeImpactFactor"`
}

// Store persists per-market configuration records in a key-value database.
// Each market's thresholds live in one record, so a load observes a single
// consistent snapshot with no torn reads across keys.
type Store struct {
	db  database.Database
	log log.Logger
}

// NewStore creates a config store over db.
func NewStore(db database.Database, logger log.Logger) *Store {
	return &Store{
		db:  db,
		log: logger,
	}
}

func marketConfigKey(marketToken ids.ID) []byte {
	return append(prefixMarketConfig, marketToken[:]...)
}

// Market loads the configuration snapshot for a market. The snapshot is
// validated before it is returned; an invalid stored record is a fatal
// configuration error, not something to paper over.
func (s *Store) Market(marketToken ids.ID) (Config, error) {
	data, err := s.db.Get(marketConfigKey(marketToken))
	if errors.Is(err, database.ErrNotFound) {
		return Config{}, fmt.Errorf("%w: %s", ErrMarketConfigNotFound, marketToken)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to load market config: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Config{}, fmt.Errorf("failed to decode market config: %w", err)
	}

	cfg := Config{
		Enabled:            rec.Enabled,
		AcceptedCollateral: set.NewSet[ids.ID](len(rec.AcceptedCollateral)),
		MinPositionSizeUsd: rec.MinPositionSizeUsd,
		MinCollateralUsd:   rec.MinCollateralUsd,

		MinCollateralFactor:                          rec.MinCollateralFactor,
		MinCollateralFactorForOpenInterestMultiplier: rec.MinCollateralFactorForOpenInterestMultiplier,
		MaxPositionImpactFactorForLiquidations:       rec.MaxPositionImpactFactorForLiquidations,
		MaxPositionImpactFactorForDecreases:          rec.MaxPositionImpactFactorForDecreases,
		MaxPoolPnlFactor:                             rec.MaxPoolPnlFactor,
		PositiveImpactFactor:                         rec.PositiveImpactFactor,
		NegativeImpactFactor:                         rec.NegativeImpactFactor,
	}
	for _, token := range rec.AcceptedCollateral {
		cfg.AcceptedCollateral.Add(token)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("stored market config invalid: %w", err)
	}
	return cfg, nil
}

// Put writes the configuration record for a market.
func (s *Store) Put(marketToken ids.ID, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	rec := record{
		Enabled:            cfg.Enabled,
		AcceptedCollateral: cfg.AcceptedCollateral.List(),
		MinPositionSizeUsd: cfg.MinPositionSizeUsd,
		MinCollateralUsd:   cfg.MinCollateralUsd,

		MinCollateralFactor:                          cfg.MinCollateralFactor,
		MinCollateralFactorForOpenInterestMultiplier: cfg.MinCollateralFactorForOpenInterestMultiplier,
		MaxPositionImpactFactorForLiquidations:       cfg.MaxPositionImpactFactorForLiquidations,
		MaxPositionImpactFactorForDecreases:          cfg.MaxPositionImpactFactorForDecreases,
		MaxPoolPnlFactor:                             cfg.MaxPoolPnlFactor,
		PositiveImpactFactor:                         cfg.PositiveImpactFactor,
		NegativeImpactFactor:                         cfg.NegativeImpactFactor,
	}

	data, err := json.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("failed to encode market config: %w", err)
	}
	if err := s.db.Put(marketConfigKey(marketToken), data); err != nil {
		return fmt.Errorf("failed to store market config: %w", err)
	}

	s.log.Debug("market config updated",
		"market", marketToken,
		"enabled", cfg.Enabled,
	)
	return nil
}

// Has reports whether a configuration record exists for the market.
func (s *Store) Has(marketToken ids.ID) (bool, error) {
	return s.db.Has(marketConfigKey(marketToken))
}

// Delete removes the configuration record for a market.
func (s *Store) Delete(marketToken ids.ID) error {
	return s.db.Delete(marketConfigKey(marketToken))
}
