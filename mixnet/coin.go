// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mixnet

import (
	"fmt"
)

// Coin is an amount of a single denomination, in base units.
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount,string"`
}

// NewCoin creates a coin.
func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: amount}
}

func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

// IsZero returns whether the coin carries no value.
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// Decimal returns the amount as a fixed-point value.
func (c Coin) Decimal() Decimal {
	return NewDecimal(c.Amount)
}

// Coins is the list of funds attached to a call.
type Coins []Coin

// NewCoins creates coins from the non-zero entries given.
func NewCoins(coins ...Coin) Coins {
	out := make(Coins, 0, len(coins))
	for _, c := range coins {
		if !c.IsZero() {
			out = append(out, c)
		}
	}
	return out
}

// AmountOf returns the summed amount of the given denom.
func (cs Coins) AmountOf(denom string) uint64 {
	var sum uint64
	for _, c := range cs {
		if c.Denom == denom {
			sum += c.Amount
		}
	}
	return sum
}

func (cs Coins) String() string {
	if len(cs) == 0 {
		return ""
	}
	s := cs[0].String()
	for _, c := range cs[1:] {
		s += "," + c.String()
	}
	return s
}
