// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"fmt"

	"github.com/mixledger/ledger/mixnet"
)

// Env is the host context of a call.
type Env struct {
	BlockHeight uint64 `json:"block_height"`
	// BlockTime is in unix seconds.
	BlockTime uint64 `json:"block_time"`
}

// MessageInfo carries the authenticated caller and the funds sent along.
type MessageInfo struct {
	Sender mixnet.Address `json:"sender"`
	Funds  mixnet.Coins   `json:"funds"`
}

// BankMsg is a payout the host must perform once the call commits.
type BankMsg struct {
	ToAddress mixnet.Address `json:"to_address"`
	Amount    mixnet.Coins   `json:"amount"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is an observable record of something the call did.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// Attr returns the value of the first attribute with the given key.
func (e *Event) Attr(key string) string {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// Response collects the effects of a call.
type Response struct {
	Messages []BankMsg `json:"messages"`
	Events   []Event   `json:"events"`
}

func NewResponse() *Response {
	return &Response{Messages: []BankMsg{}, Events: []Event{}}
}

// Send queues a payout. Zero amounts are dropped.
func (r *Response) Send(to mixnet.Address, amount mixnet.Coin) *Response {
	if amount.IsZero() {
		return r
	}
	r.Messages = append(r.Messages, BankMsg{ToAddress: to, Amount: mixnet.Coins{amount}})
	return r
}

// Emit records an event from alternating key/value pairs.
func (r *Response) Emit(typ string, kv ...any) *Response {
	ev := Event{Type: typ}
	for i := 0; i+1 < len(kv); i += 2 {
		ev.Attributes = append(ev.Attributes, Attribute{
			Key:   fmt.Sprint(kv[i]),
			Value: fmt.Sprint(kv[i+1]),
		})
	}
	r.Events = append(r.Events, ev)
	return r
}

// Merge appends the effects of other.
func (r *Response) Merge(other *Response) *Response {
	if other == nil {
		return r
	}
	r.Messages = append(r.Messages, other.Messages...)
	r.Events = append(r.Events, other.Events...)
	return r
}

// EventsOf returns the events of the given type.
func (r *Response) EventsOf(typ string) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Paid sums the payouts of denom sent to address.
func (r *Response) Paid(to mixnet.Address, denom string) uint64 {
	var sum uint64
	for _, m := range r.Messages {
		if m.ToAddress == to {
			sum += m.Amount.AmountOf(denom)
		}
	}
	return sum
}

// event types
const (
	EventBond                = "bond"
	EventPendingUnbond       = "pending_unbond"
	EventUnbond              = "unbond"
	EventPendingDelegation   = "pending_delegation"
	EventDelegation          = "delegation"
	EventPendingUndelegation = "pending_undelegation"
	EventUndelegation        = "undelegation"
	EventDelegationRefund    = "delegation_refund"
	EventNodeRewarding       = "node_rewarding"
	EventNodeRewardSkipped   = "node_rewarding_skipped"
	EventRewardPoolShortfall = "reward_pool_shortfall"
	EventWithdrawOperator    = "withdraw_operator_reward"
	EventWithdrawDelegator   = "withdraw_delegator_reward"
	EventAdvanceEpoch        = "advance_epoch"
	EventReconcileEpoch      = "reconcile_epoch_events"
	EventReconcileInterval   = "reconcile_interval_events"
	EventEpochEventSkipped   = "epoch_event_skipped"
	EventIntervalEventSkip   = "interval_event_skipped"
	EventNodeConfigUpdate    = "node_config_update"
	EventPendingCostUpdate   = "pending_cost_params_update"
	EventCostParamsUpdate    = "cost_params_update"
	EventPendingParamsUpdate = "pending_params_update"
	EventParamsUpdate        = "params_update"
	EventActiveSetUpdate     = "active_set_size_update"
	EventIntervalConfig      = "interval_config_update"
	EventContractParams      = "contract_params_update"
	EventRewardingValidator  = "rewarding_validator_update"
)
