// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"math/big"
)

// USD is a signed quote-currency amount with an implicit 1e30 scale.
// It is a distinct type so that USD-scaled and factor-scaled integers
// cannot be mixed accidentally.
type USD big.Int

// NewUSD returns dollars as a USD amount (dollars * 1e30).
func NewUSD(dollars int64) *USD {
	v := new(big.Int).Mul(big.NewInt(dollars), PrecisionUSD)
	return (*USD)(v)
}

// USDFromRaw wraps an already USD-scaled integer. The value is copied.
func USDFromRaw(raw *big.Int) *USD {
	return (*USD)(new(big.Int).Set(raw))
}

// ZeroUSD returns a zero USD amount.
func ZeroUSD() *USD {
	return (*USD)(new(big.Int))
}

// Raw returns a copy of the underlying USD-scaled integer.
func (u *USD) Raw() *big.Int {
	return new(big.Int).Set((*big.Int)(u))
}

func (u *USD) big() *big.Int {
	return (*big.Int)(u)
}

// Add returns u + v as a new amount.
func (u *USD) Add(v *USD) *USD {
	return (*USD)(new(big.Int).Add(u.big(), v.big()))
}

// Sub returns u - v as a new amount.
func (u *USD) Sub(v *USD) *USD {
	return (*USD)(new(big.Int).Sub(u.big(), v.big()))
}

// Neg returns -u as a new amount.
func (u *USD) Neg() *USD {
	return (*USD)(new(big.Int).Neg(u.big()))
}

// Abs returns |u| as a new amount.
func (u *USD) Abs() *USD {
	return (*USD)(new(big.Int).Abs(u.big()))
}

// Cmp compares u and v: -1 if u < v, 0 if equal, +1 if u > v.
func (u *USD) Cmp(v *USD) int {
	return u.big().Cmp(v.big())
}

// Sign reports the sign of u.
func (u *USD) Sign() int {
	return u.big().Sign()
}

// IsZero reports whether u is exactly zero.
func (u *USD) IsZero() bool {
	return u.big().Sign() == 0
}

// Clone returns an independent copy of u.
func (u *USD) Clone() *USD {
	return USDFromRaw(u.big())
}

// ApplyFactor returns u scaled by f (u * f / 1e6) in the given rounding mode.
func (u *USD) ApplyFactor(f *Factor, r Rounding) *USD {
	return (*USD)(MulDiv(u.big(), f.big(), PrecisionFactor, r))
}

// MulDivUSD returns u * numerator / denominator in the given rounding mode.
// numerator and denominator are dimensionless (token amounts or counts), so
// the result stays USD-scaled.
func (u *USD) MulDivUSD(numerator, denominator *big.Int, r Rounding) *USD {
	return (*USD)(MulDiv(u.big(), numerator, denominator, r))
}

// MulDivByUSD returns u * numerator / denominator where both numerator and
// denominator are USD amounts; their scales cancel and the result stays
// USD-scaled.
func (u *USD) MulDivByUSD(numerator, denominator *USD, r Rounding) *USD {
	return (*USD)(MulDiv(u.big(), numerator.big(), denominator.big(), r))
}

func (u *USD) String() string {
	return u.big().String()
}

// MarshalJSON encodes the raw USD-scaled integer.
func (u *USD) MarshalJSON() ([]byte, error) {
	return u.big().MarshalJSON()
}

// UnmarshalJSON decodes a raw USD-scaled integer.
func (u *USD) UnmarshalJSON(data []byte) error {
	return (*big.Int)(u).UnmarshalJSON(data)
}

// Factor is a signed dimensionless ratio with an implicit 1e6 scale
// (1_000_000 represents 1.0).
type Factor big.Int

// NewFactor wraps a factor-scaled integer value.
func NewFactor(scaled int64) *Factor {
	return (*Factor)(big.NewInt(scaled))
}

// FactorFromRaw wraps an already factor-scaled integer. The value is copied.
func FactorFromRaw(raw *big.Int) *Factor {
	return (*Factor)(new(big.Int).Set(raw))
}

// FactorFromBps returns basis points as a Factor (100 bps = 1%).
func FactorFromBps(bps int64) *Factor {
	return (*Factor)(big.NewInt(bps * 100))
}

// ZeroFactor returns a zero factor.
func ZeroFactor() *Factor {
	return (*Factor)(new(big.Int))
}

// Raw returns a copy of the underlying factor-scaled integer.
func (f *Factor) Raw() *big.Int {
	return new(big.Int).Set((*big.Int)(f))
}

func (f *Factor) big() *big.Int {
	return (*big.Int)(f)
}

// Cmp compares f and g.
func (f *Factor) Cmp(g *Factor) int {
	return f.big().Cmp(g.big())
}

// Sign reports the sign of f.
func (f *Factor) Sign() int {
	return f.big().Sign()
}

// Clone returns an independent copy of f.
func (f *Factor) Clone() *Factor {
	return FactorFromRaw(f.big())
}

func (f *Factor) String() string {
	return f.big().String()
}

// MarshalJSON encodes the raw factor-scaled integer.
func (f *Factor) MarshalJSON() ([]byte, error) {
	return f.big().MarshalJSON()
}

// UnmarshalJSON decodes a raw factor-scaled integer.
func (f *Factor) UnmarshalJSON(data []byte) error {
	return (*big.Int)(f).UnmarshalJSON(data)
}

// MaxFactor returns the larger of a and b.
func MaxFactor(a, b *Factor) *Factor {
	if a.Cmp(b) >= 0 {
		return a.Clone()
	}
	return b.Clone()
}

// TokensToUSD converts a token amount to USD at the given per-unit price.
// Price is USD-scaled per token base unit, so no rounding occurs here.
func TokensToUSD(tokens, price *big.Int) *USD {
	return (*USD)(new(big.Int).Mul(tokens, price))
}

// USDToTokens converts a USD amount to a token amount at the given per-unit
// price, in the requested rounding mode.
func USDToTokens(u *USD, price *big.Int, r Rounding) *big.Int {
	return MulDiv(u.big(), bigOne, price, r)
}
