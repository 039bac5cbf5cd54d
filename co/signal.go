// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Signal announces that something changed to every goroutine waiting on it.
// Unlike sync.Cond it is channel based, so waiting can be part of a select.
type Signal struct {
	l  sync.Mutex
	ch chan struct{}
}

func (s *Signal) init() {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
}

// Broadcast wakes all goroutines that are waiting on s.
func (s *Signal) Broadcast() {
	s.l.Lock()
	defer s.l.Unlock()

	s.init()
	close(s.ch)
	s.ch = make(chan struct{})
}

// Wait returns a channel that is closed by the next broadcast.
func (s *Signal) Wait() <-chan struct{} {
	s.l.Lock()
	defer s.l.Unlock()

	s.init()
	return s.ch
}
