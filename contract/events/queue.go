// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/storage"
)

const (
	slotEpochEvents    = "events/epoch/"
	slotIntervalEvents = "events/interval/"
)

// eventID keys events big-endian so that key order is insertion order.
type eventID uint64

func (id eventID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

type queueState struct {
	NextID uint64
	Len    uint64
}

// Entry is a queued event with its insertion id.
type Entry[E any] struct {
	ID    uint64 `json:"id"`
	Event E      `json:"event"`
}

// Queue is a persisted FIFO of events.
type Queue[E any] struct {
	events *storage.Mapping[eventID, E]
	state  *storage.Raw[queueState]
}

func newQueue[E any](sctx *storage.Context, slot string) *Queue[E] {
	return &Queue[E]{
		events: storage.NewMapping[eventID, E](sctx, slot+"e"),
		state:  storage.NewRaw[queueState](sctx, slot+"s"),
	}
}

func NewEpochQueue(sctx *storage.Context) *Queue[EpochEvent] {
	return newQueue[EpochEvent](sctx, slotEpochEvents)
}

func NewIntervalQueue(sctx *storage.Context) *Queue[IntervalEvent] {
	return newQueue[IntervalEvent](sctx, slotIntervalEvents)
}

// Push appends an event and returns its id. Ids start at 1 and never repeat.
func (q *Queue[E]) Push(event E) (uint64, error) {
	st, err := q.state.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get queue state")
	}
	st.NextID++
	st.Len++
	if err := q.events.Insert(eventID(st.NextID), event); err != nil {
		return 0, errors.Wrap(err, "failed to push event")
	}
	if err := q.state.Upsert(st); err != nil {
		return 0, errors.Wrap(err, "failed to set queue state")
	}
	return st.NextID, nil
}

func (q *Queue[E]) Len() (uint64, error) {
	st, err := q.state.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get queue state")
	}
	return st.Len, nil
}

// Due returns up to limit events from the head of the queue for which isDue
// holds, stopping at the first event that is not due.
func (q *Queue[E]) Due(limit int, isDue func(*E) bool) ([]Entry[E], error) {
	var out []Entry[E]
	errStop := errors.New("stop")
	_, err := q.events.Range(storage.Page{Limit: limit}, func(key []byte, event E) error {
		if !isDue(&event) {
			return errStop
		}
		out = append(out, Entry[E]{ID: binary.BigEndian.Uint64(key), Event: event})
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, errors.Wrap(err, "failed to read queue")
	}
	return out, nil
}

// Remove drops a settled event.
func (q *Queue[E]) Remove(id uint64) error {
	st, err := q.state.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get queue state")
	}
	if err := q.events.Delete(eventID(id)); err != nil {
		return errors.Wrap(err, "failed to remove event")
	}
	if st.Len > 0 {
		st.Len--
	}
	return q.state.Upsert(st)
}

// List pages through the queued events in insertion order.
func (q *Queue[E]) List(startAfter *uint64, limit int) ([]Entry[E], *uint64, error) {
	page := storage.Page{Limit: limit}
	if startAfter != nil {
		page.StartAfter = eventID(*startAfter).Bytes()
	}
	var out []Entry[E]
	next, err := q.events.Range(page, func(key []byte, event E) error {
		out = append(out, Entry[E]{ID: binary.BigEndian.Uint64(key), Event: event})
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to list queue")
	}
	if next == nil {
		return out, nil, nil
	}
	id := binary.BigEndian.Uint64(next)
	return out, &id, nil
}
