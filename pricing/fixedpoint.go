// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pricing provides the fixed-point arithmetic primitives shared by
// the risk and execution-pricing core.
//
// Two implicit scales are used throughout:
//
//   - quote-currency (USD) amounts carry 30 decimals; prices are USD-scaled
//     per token base unit, so tokenAmount * price is USD-scaled directly
//   - factors (ratios) carry 6 decimals, so 1_000_000 represents 1.0
//
// Each scale has a distinct Go type (USD, Factor) so that scale-mismatched
// arithmetic does not compile.
package pricing

import (
	"errors"
	"math/big"
)

const (
	// USDDecimals is the implicit decimal scale of USD quantities.
	USDDecimals = 30

	// FactorDecimals is the implicit decimal scale of Factor quantities.
	FactorDecimals = 6
)

var (
	ErrNegativeValue  = errors.New("negative value where unsigned required")
	ErrValueOverflow  = errors.New("value overflows target width")
	ErrDivisionByZero = errors.New("division by zero")

	// PrecisionUSD is the USD scale denominator (1e30).
	PrecisionUSD = new(big.Int).Exp(big.NewInt(10), big.NewInt(USDDecimals), nil)

	// PrecisionFactor is the factor scale denominator (1e6).
	PrecisionFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(FactorDecimals), nil)
)

// Rounding selects the rounding mode of a scaled division.
type Rounding uint8

const (
	// RoundDown truncates the quotient toward zero.
	RoundDown Rounding = iota
	// RoundUp rounds a non-zero remainder away from zero.
	RoundUp
	// RoundHalfUp rounds to nearest, ties away from zero in magnitude.
	RoundHalfUp
)

func (r Rounding) String() string {
	switch r {
	case RoundDown:
		return "down"
	case RoundUp:
		return "up"
	case RoundHalfUp:
		return "half-up"
	default:
		return "unknown"
	}
}

// MulDiv computes value * numerator / denominator without intermediate
// overflow, rounding the quotient magnitude per the requested mode. The sign
// of the result follows ordinary signed arithmetic. denominator must be
// non-zero.
func MulDiv(value, numerator, denominator *big.Int, r Rounding) *big.Int {
	if denominator.Sign() == 0 {
		panic(ErrDivisionByZero)
	}

	product := new(big.Int).Mul(value, numerator)
	quo, rem := new(big.Int).QuoRem(product, denominator, new(big.Int))
	if rem.Sign() == 0 {
		return quo
	}

	switch r {
	case RoundDown:
	case RoundUp:
		bumpMagnitude(quo, product.Sign() == denominator.Sign())
	case RoundHalfUp:
		remAbs := new(big.Int).Abs(rem)
		remAbs.Lsh(remAbs, 1)
		if remAbs.Cmp(new(big.Int).Abs(denominator)) >= 0 {
			bumpMagnitude(quo, product.Sign() == denominator.Sign())
		}
	}
	return quo
}

// bumpMagnitude moves quo one step away from zero, in the direction the
// true quotient lies (positive when the operand signs agree).
func bumpMagnitude(quo *big.Int, positive bool) {
	if positive {
		quo.Add(quo, bigOne)
	} else {
		quo.Sub(quo, bigOne)
	}
}

var bigOne = big.NewInt(1)

// RoundUpDivision divides two non-negative values, rounding any non-zero
// remainder away from zero.
func RoundUpDivision(a, b *big.Int) *big.Int {
	if b.Sign() == 0 {
		panic(ErrDivisionByZero)
	}
	quo, rem := new(big.Int).QuoRem(a, b, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, bigOne)
	}
	return quo
}

// RoundUpMagnitudeDivision divides a signed numerator by a positive
// denominator, rounding any non-zero remainder away from zero in magnitude:
// more positive for positive quotients, more negative for negative ones.
func RoundUpMagnitudeDivision(a, b *big.Int) *big.Int {
	if b.Sign() == 0 {
		panic(ErrDivisionByZero)
	}
	quo, rem := new(big.Int).QuoRem(a, b, new(big.Int))
	if rem.Sign() == 0 {
		return quo
	}
	bumpMagnitude(quo, a.Sign() == b.Sign())
	return quo
}

// ToUnsigned returns a copy of v, or ErrNegativeValue if v is negative.
// It is the checked bridge from signed intermediate results back into
// unsigned token-amount accounting.
func ToUnsigned(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 {
		return nil, ErrNegativeValue
	}
	return new(big.Int).Set(v), nil
}

// Uint64 converts v to uint64, rejecting negative values and overflow.
func Uint64(v *big.Int) (uint64, error) {
	if v.Sign() < 0 {
		return 0, ErrNegativeValue
	}
	if !v.IsUint64() {
		return 0, ErrValueOverflow
	}
	return v.Uint64(), nil
}

// Int64 converts v to int64, rejecting overflow in either direction.
func Int64(v *big.Int) (int64, error) {
	if !v.IsInt64() {
		return 0, ErrValueOverflow
	}
	return v.Int64(), nil
}
