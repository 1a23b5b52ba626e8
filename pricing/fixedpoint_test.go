// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMulDivRounding(t *testing.T) {
	tests := []struct {
		name     string
		value    int64
		num      int64
		den      int64
		rounding Rounding
		want     int64
	}{
		{"exact down", 10, 3, 6, RoundDown, 5},
		{"exact up", 10, 3, 6, RoundUp, 5},
		{"down truncates", 7, 1, 2, RoundDown, 3},
		{"up bumps", 7, 1, 2, RoundUp, 4},
		{"half up at half", 7, 1, 2, RoundHalfUp, 4},
		{"half up tie", 10, 1, 4, RoundHalfUp, 3}, // 2.5 -> ties away -> 3
		{"half up under", 13, 1, 10, RoundHalfUp, 1},     // 1.3 -> 1
		{"negative down truncates toward zero", -7, 1, 2, RoundDown, -3},
		{"negative up away from zero", -7, 1, 2, RoundUp, -4},
		{"negative half up away", -7, 1, 2, RoundHalfUp, -4},
		{"negative denominator", 7, 1, -2, RoundUp, -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			got := MulDiv(big.NewInt(tt.value), big.NewInt(tt.num), big.NewInt(tt.den), tt.rounding)
			require.Equal(tt.want, got.Int64())
		})
	}
}

func TestMulDivNoIntermediateOverflow(t *testing.T) {
	require := require.New(t)

	// value * numerator far exceeds 256 bits.
	value := new(big.Int).Exp(big.NewInt(10), big.NewInt(40), nil)
	num := new(big.Int).Exp(big.NewInt(10), big.NewInt(40), nil)
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(40), nil)

	got := MulDiv(value, num, den, RoundDown)
	require.Equal(0, got.Cmp(value))
}

func TestMulDivZeroDenominatorPanics(t *testing.T) {
	require := require.New(t)
	require.Panics(func() {
		MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0), RoundDown)
	})
}

func TestRoundUpDivision(t *testing.T) {
	require := require.New(t)

	require.Equal(int64(4), RoundUpDivision(big.NewInt(7), big.NewInt(2)).Int64())
	require.Equal(int64(3), RoundUpDivision(big.NewInt(6), big.NewInt(2)).Int64())
	require.Equal(int64(1), RoundUpDivision(big.NewInt(1), big.NewInt(1000)).Int64())
	require.Equal(int64(0), RoundUpDivision(big.NewInt(0), big.NewInt(5)).Int64())
}

func TestRoundUpMagnitudeDivision(t *testing.T) {
	require := require.New(t)

	require.Equal(int64(4), RoundUpMagnitudeDivision(big.NewInt(7), big.NewInt(2)).Int64())
	require.Equal(int64(-4), RoundUpMagnitudeDivision(big.NewInt(-7), big.NewInt(2)).Int64())
	require.Equal(int64(-3), RoundUpMagnitudeDivision(big.NewInt(-6), big.NewInt(2)).Int64())
	require.Equal(int64(0), RoundUpMagnitudeDivision(big.NewInt(0), big.NewInt(2)).Int64())
}

func TestCheckedConversions(t *testing.T) {
	require := require.New(t)

	v, err := ToUnsigned(big.NewInt(42))
	require.NoError(err)
	require.Equal(int64(42), v.Int64())

	_, err = ToUnsigned(big.NewInt(-1))
	require.ErrorIs(err, ErrNegativeValue)

	u, err := Uint64(big.NewInt(42))
	require.NoError(err)
	require.Equal(uint64(42), u)

	_, err = Uint64(big.NewInt(-1))
	require.ErrorIs(err, ErrNegativeValue)

	huge := new(big.Int).Lsh(big.NewInt(1), 80)
	_, err = Uint64(huge)
	require.ErrorIs(err, ErrValueOverflow)

	_, err = Int64(huge)
	require.ErrorIs(err, ErrValueOverflow)

	i, err := Int64(big.NewInt(-42))
	require.NoError(err)
	require.Equal(int64(-42), i)
}
