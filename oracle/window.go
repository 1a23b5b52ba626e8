// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package oracle

import (
	"errors"
	"math/big"
	"sync"
	"time"
)

var (
	// ErrNoObservations indicates no price observations are available.
	ErrNoObservations = errors.New("no price observations available")

	// ErrInvalidWindow indicates an invalid observation window duration.
	ErrInvalidWindow = errors.New("observation window must be positive")

	// DefaultWindow is the default observation window.
	DefaultWindow = 5 * time.Minute

	// MaxObservations bounds the number of retained observations.
	MaxObservations = 1000
)

// observation is a single reported price at a specific time.
type observation struct {
	price     *big.Int
	timestamp time.Time
}

// Window maintains a rolling window of price observations for one token and
// produces {Min, Max} snapshots over the window. Taking the extremes of the
// window rather than the latest report makes the snapshot resistant to
// single-report manipulation.
type Window struct {
	mu           sync.RWMutex
	observations []observation
	window       time.Duration
	token        string
}

// NewWindow creates an observation window for the named token.
func NewWindow(token string, window time.Duration) (*Window, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	return &Window{
		observations: make([]observation, 0, 64),
		window:       window,
		token:        token,
	}, nil
}

// NewDefaultWindow creates an observation window with the default duration.
func NewDefaultWindow(token string) *Window {
	w, _ := NewWindow(token, DefaultWindow)
	return w
}

// Record adds a price observation. Non-positive or nil prices are ignored.
func (w *Window) Record(price *big.Int, timestamp time.Time) {
	if price == nil || price.Sign() <= 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.observations = append(w.observations, observation{
		price:     new(big.Int).Set(price),
		timestamp: timestamp,
	})
	w.prune(timestamp)
}

// RecordNow adds a price observation at the current time.
func (w *Window) RecordNow(price *big.Int) {
	w.Record(price, time.Now())
}

// prune drops observations that fell out of the window, and enforces the
// retention bound. Must be called with the lock held.
func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-w.window)

	start := 0
	for start < len(w.observations) && !w.observations[start].timestamp.After(cutoff) {
		start++
	}
	if start > 0 {
		n := copy(w.observations, w.observations[start:])
		w.observations = w.observations[:n]
	}
	if len(w.observations) > MaxObservations {
		over := len(w.observations) - MaxObservations
		n := copy(w.observations, w.observations[over:])
		w.observations = w.observations[:n]
	}
}

// Snapshot returns the {Min, Max} price over the current window, evaluated
// at the given time. It fails with ErrNoObservations when the window is
// empty.
func (w *Window) Snapshot(now time.Time) (Price, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now)
	if len(w.observations) == 0 {
		return Price{}, ErrNoObservations
	}

	min := w.observations[0].price
	max := w.observations[0].price
	for _, obs := range w.observations[1:] {
		if obs.price.Cmp(min) < 0 {
			min = obs.price
		}
		if obs.price.Cmp(max) > 0 {
			max = obs.price
		}
	}
	return NewPrice(min, max), nil
}

// SnapshotNow returns the {Min, Max} price over the window ending now.
func (w *Window) SnapshotNow() (Price, error) {
	return w.Snapshot(time.Now())
}

// Token returns the token this window observes.
func (w *Window) Token() string {
	return w.token
}

// Len returns the current number of retained observations.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.observations)
}
