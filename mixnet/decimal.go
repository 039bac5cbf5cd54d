// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mixnet

import (
	"encoding/json"
	"io"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// DecimalPlaces is the number of fractional digits carried by Decimal.
const DecimalPlaces = 18

var (
	unit = uint256.NewInt(1e18)

	// Zero is the zero decimal.
	Zero = Decimal{}
	// One is the decimal 1.0.
	One = Decimal{v: *uint256.NewInt(1e18)}
	// MaxDecimal is the largest representable value; saturating operations stop here.
	MaxDecimal = Decimal{v: *new(uint256.Int).SetAllOne()}
)

// Decimal is an unsigned fixed-point number with 18 fractional digits.
// All arithmetic saturates: overflow yields MaxDecimal and underflow yields Zero.
type Decimal struct {
	v uint256.Int
}

// NewDecimal returns the decimal form of an integer.
func NewDecimal(n uint64) Decimal {
	var d Decimal
	d.v.Mul(uint256.NewInt(n), unit)
	return d
}

// NewDecimalFromRatio returns num/den, or zero when den is zero.
func NewDecimalFromRatio(num, den uint64) Decimal {
	return NewDecimal(num).Quo(NewDecimal(den))
}

// ParseDecimal parses a non-negative decimal string such as "1", "0.05" or "12.000001".
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, errors.New("empty decimal")
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if hasFrac && fracPart == "" {
		return Zero, errors.Errorf("invalid decimal %q", s)
	}
	if len(fracPart) > DecimalPlaces {
		return Zero, errors.Errorf("decimal %q has more than %d fractional digits", s, DecimalPlaces)
	}
	if intPart == "" {
		intPart = "0"
	}
	digits := intPart + fracPart + strings.Repeat("0", DecimalPlaces-len(fracPart))
	for _, c := range digits {
		if c < '0' || c > '9' {
			return Zero, errors.Errorf("invalid decimal %q", s)
		}
	}
	// uint256 rejects leading zeros
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return Zero, nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return Zero, errors.Wrapf(err, "invalid decimal %q", s)
	}
	return Decimal{v: *v}, nil
}

// MustParseDecimal is like ParseDecimal but panics on error.
func MustParseDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Decimal) Add(o Decimal) Decimal {
	var z Decimal
	if _, overflow := z.v.AddOverflow(&d.v, &o.v); overflow {
		return MaxDecimal
	}
	return z
}

// Sub returns d-o, or zero if o > d.
func (d Decimal) Sub(o Decimal) Decimal {
	var z Decimal
	if _, underflow := z.v.SubOverflow(&d.v, &o.v); underflow {
		return Zero
	}
	return z
}

func (d Decimal) Mul(o Decimal) Decimal {
	var z Decimal
	if _, overflow := z.v.MulDivOverflow(&d.v, &o.v, unit); overflow {
		return MaxDecimal
	}
	return z
}

// Quo returns d/o, or zero when o is zero.
func (d Decimal) Quo(o Decimal) Decimal {
	if o.v.IsZero() {
		return Zero
	}
	var z Decimal
	if _, overflow := z.v.MulDivOverflow(&d.v, unit, &o.v); overflow {
		return MaxDecimal
	}
	return z
}

// MulUint multiplies by an integer.
func (d Decimal) MulUint(n uint64) Decimal {
	var z Decimal
	if _, overflow := z.v.MulOverflow(&d.v, uint256.NewInt(n)); overflow {
		return MaxDecimal
	}
	return z
}

// QuoUint divides by an integer, returning zero when n is zero.
func (d Decimal) QuoUint(n uint64) Decimal {
	if n == 0 {
		return Zero
	}
	var z Decimal
	z.v.Div(&d.v, uint256.NewInt(n))
	return z
}

// Min returns the smaller of d and o.
func (d Decimal) Min(o Decimal) Decimal {
	if d.Cmp(o) <= 0 {
		return d
	}
	return o
}

func (d Decimal) Cmp(o Decimal) int {
	return d.v.Cmp(&o.v)
}

func (d Decimal) IsZero() bool {
	return d.v.IsZero()
}

// Floor returns the integer part, saturated to the uint64 range.
func (d Decimal) Floor() uint64 {
	var q uint256.Int
	q.Div(&d.v, unit)
	if !q.IsUint64() {
		return math.MaxUint64
	}
	return q.Uint64()
}

// Fraction returns the part of d below one.
func (d Decimal) Fraction() Decimal {
	var z Decimal
	z.v.Mod(&d.v, unit)
	return z
}

// IsPercent reports whether d lies within [0, 1].
func (d Decimal) IsPercent() bool {
	return d.Cmp(One) <= 0
}

func (d Decimal) String() string {
	var q, r uint256.Int
	q.DivMod(&d.v, unit, &r)
	if r.IsZero() {
		return q.Dec()
	}
	frac := r.Dec()
	frac = strings.Repeat("0", DecimalPlaces-len(frac)) + frac
	return q.Dec() + "." + strings.TrimRight(frac, "0")
}

// MarshalJSON implements json.Marshaler.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Decimal) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, which yaml.v3 also honors.
func (d *Decimal) UnmarshalText(text []byte) error {
	parsed, err := ParseDecimal(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EncodeRLP implements rlp.Encoder. The value is always written as 32 bytes,
// so a zero decimal is distinguishable from an absent one.
func (d Decimal) EncodeRLP(w io.Writer) error {
	b := d.v.Bytes32()
	return rlp.Encode(w, b[:])
}

// DecodeRLP implements rlp.Decoder.
func (d *Decimal) DecodeRLP(s *rlp.Stream) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	if len(b) != 32 {
		return errors.Errorf("decimal: invalid encoding length %d", len(b))
	}
	d.v.SetBytes32(b)
	return nil
}
