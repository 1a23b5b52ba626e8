// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUSDArithmetic(t *testing.T) {
	require := require.New(t)

	a := NewUSD(100)
	b := NewUSD(40)

	require.Equal(0, a.Sub(b).Cmp(NewUSD(60)))
	require.Equal(0, a.Add(b).Cmp(NewUSD(140)))
	require.Equal(0, b.Sub(a).Cmp(NewUSD(-60)))
	require.Equal(-1, b.Sub(a).Sign())
	require.Equal(0, b.Sub(a).Neg().Cmp(NewUSD(60)))
	require.Equal(0, b.Sub(a).Abs().Cmp(NewUSD(60)))
	require.True(ZeroUSD().IsZero())

	// Operations return new values; operands are untouched.
	require.Equal(0, a.Cmp(NewUSD(100)))
	require.Equal(0, b.Cmp(NewUSD(40)))
}

func TestUSDApplyFactor(t *testing.T) {
	require := require.New(t)

	size := NewUSD(1000)
	fivePercent := FactorFromBps(500)

	floor := size.ApplyFactor(fivePercent, RoundDown)
	require.Equal(0, floor.Cmp(NewUSD(50)))

	// Rounding direction is explicit at the call site.
	odd := USDFromRaw(big.NewInt(3))
	half := NewFactor(500_000)
	require.Equal(int64(1), odd.ApplyFactor(half, RoundDown).Raw().Int64())
	require.Equal(int64(2), odd.ApplyFactor(half, RoundUp).Raw().Int64())
}

func TestFactorHelpers(t *testing.T) {
	require := require.New(t)

	require.Equal(0, FactorFromBps(10_000).Cmp(NewFactor(1_000_000)))
	require.Equal(0, MaxFactor(NewFactor(3), NewFactor(7)).Cmp(NewFactor(7)))
	require.Equal(0, MaxFactor(NewFactor(7), NewFactor(3)).Cmp(NewFactor(7)))
	require.Equal(0, ZeroFactor().Sign())
}

func TestTokenConversions(t *testing.T) {
	require := require.New(t)

	// 1 token = 1e6 base units; $2000 per token.
	unitPrice := NewUSD(2000).Raw()
	unitPrice.Div(unitPrice, big.NewInt(1_000_000))

	tokens := big.NewInt(2_500_000) // 2.5 tokens
	value := TokensToUSD(tokens, unitPrice)
	require.Equal(0, value.Cmp(NewUSD(5000)))

	back := USDToTokens(value, unitPrice, RoundDown)
	require.Equal(int64(2_500_000), back.Int64())

	// Negative USD rounds away from zero magnitude with RoundUp.
	neg := USDFromRaw(big.NewInt(-10))
	require.Equal(int64(-4), USDToTokens(neg, big.NewInt(3), RoundUp).Int64())
	require.Equal(int64(-3), USDToTokens(neg, big.NewInt(3), RoundDown).Int64())
}

func TestUSDJSONRoundTrip(t *testing.T) {
	require := require.New(t)

	u := NewUSD(-123)
	data, err := u.MarshalJSON()
	require.NoError(err)

	decoded := ZeroUSD()
	require.NoError(decoded.UnmarshalJSON(data))
	require.Equal(0, decoded.Cmp(u))

	f := NewFactor(42)
	data, err = f.MarshalJSON()
	require.NoError(err)

	decodedFactor := ZeroFactor()
	require.NoError(decodedFactor.UnmarshalJSON(data))
	require.Equal(0, decodedFactor.Cmp(f))
}
