// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mixledger/ledger/co"
)

func TestSignal_BroadcastBeforeWait(t *testing.T) {
	var sig co.Signal
	sig.Broadcast()

	select {
	case <-sig.Wait():
		t.Fatal("a past broadcast must not wake a new waiter")
	default:
	}
}

func TestSignal_BroadcastAfterWait(t *testing.T) {
	var sig co.Signal

	var ws []<-chan struct{}
	for range 10 {
		ws = append(ws, sig.Wait())
	}

	sig.Broadcast()

	for _, w := range ws {
		<-w
	}

	next := sig.Wait()
	assert.NotEqual(t, ws[0], next, "waiters after a broadcast wait for the next one")
}
