// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mixnet

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0", "0", false},
		{"1", "1", false},
		{"0.05", "0.05", false},
		{".5", "0.5", false},
		{"12.000001", "12.000001", false},
		{"100000000", "100000000", false},
		{"0.000000000000000001", "0.000000000000000001", false},
		{"0.0000000000000000001", "", true},
		{"1.", "", true},
		{"-1", "", true},
		{"1e5", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDecimal(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDecimalArithmetic(t *testing.T) {
	a := MustParseDecimal("1.5")
	b := MustParseDecimal("0.5")

	assert.Equal(t, "2", a.Add(b).String())
	assert.Equal(t, "1", a.Sub(b).String())
	assert.Equal(t, "0.75", a.Mul(b).String())
	assert.Equal(t, "3", a.Quo(b).String())
	assert.Equal(t, "4.5", a.MulUint(3).String())
	assert.Equal(t, "0.75", a.QuoUint(2).String())
	assert.Equal(t, b, a.Min(b))
	assert.Equal(t, uint64(1), a.Floor())
	assert.Equal(t, "0.5", a.Fraction().String())
}

func TestDecimalSaturation(t *testing.T) {
	small := NewDecimal(1)
	big := NewDecimal(2)

	assert.True(t, small.Sub(big).IsZero(), "subtraction saturates at zero")
	assert.Equal(t, MaxDecimal, MaxDecimal.Add(One))
	assert.Equal(t, MaxDecimal, MaxDecimal.Mul(big))
	assert.Equal(t, MaxDecimal, MaxDecimal.MulUint(2))
	assert.True(t, big.Quo(Zero).IsZero(), "division by zero yields zero")
	assert.True(t, big.QuoUint(0).IsZero())
	assert.Equal(t, uint64(math.MaxUint64), MaxDecimal.Floor())
}

func TestDecimalRatio(t *testing.T) {
	third := NewDecimalFromRatio(1, 3)
	assert.Equal(t, "0.333333333333333333", third.String())
	assert.True(t, NewDecimalFromRatio(1, 0).IsZero())
	assert.True(t, third.IsPercent())
	assert.False(t, NewDecimal(2).IsPercent())
}

func TestDecimalEncoding(t *testing.T) {
	d := MustParseDecimal("42.125")

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"42.125"`, string(data))

	var decoded Decimal
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, d, decoded)

	raw, err := rlp.EncodeToBytes(Zero)
	require.NoError(t, err)
	assert.Len(t, raw, 33, "zero keeps its full width")

	raw, err = rlp.EncodeToBytes(d)
	require.NoError(t, err)
	var back Decimal
	require.NoError(t, rlp.DecodeBytes(raw, &back))
	assert.Equal(t, d, back)

	type holder struct {
		Value *Decimal `rlp:"nilString"`
	}
	raw, err = rlp.EncodeToBytes(&holder{})
	require.NoError(t, err)
	var h holder
	require.NoError(t, rlp.DecodeBytes(raw, &h))
	assert.Nil(t, h.Value)

	raw, err = rlp.EncodeToBytes(&holder{Value: &Zero})
	require.NoError(t, err)
	require.NoError(t, rlp.DecodeBytes(raw, &h))
	require.NotNil(t, h.Value)
	assert.True(t, h.Value.IsZero())
}
