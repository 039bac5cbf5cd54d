// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package interval

import (
	"time"

	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/storage"
)

const slotInterval = "interval/current"

// Interval is the epoch clock. Times are unix seconds.
type Interval struct {
	ID                 uint32 `json:"id"`
	CurrentEpochID     uint32 `json:"current_epoch_id"`
	EpochsInInterval   uint32 `json:"epochs_in_interval"`
	EpochStart         uint64 `json:"current_epoch_start"`
	EpochLength        uint64 `json:"epoch_length_secs"`
	TotalElapsedEpochs uint64 `json:"total_elapsed_epochs"`
}

func validateConfig(epochsInInterval uint32, epochLength time.Duration) error {
	if epochsInInterval == 0 {
		return errors.WithMessage(reverts.ErrInvalidParams, "epochs in interval must be positive")
	}
	if epochLength < time.Second {
		return errors.WithMessagef(reverts.ErrInvalidParams, "epoch length %v is shorter than a second", epochLength)
	}
	return nil
}

// Init starts the clock at epoch 0 of interval 0.
func Init(epochsInInterval uint32, epochLength time.Duration, now uint64) (Interval, error) {
	if err := validateConfig(epochsInInterval, epochLength); err != nil {
		return Interval{}, err
	}
	return Interval{
		EpochsInInterval: epochsInInterval,
		EpochStart:       now,
		EpochLength:      uint64(epochLength / time.Second),
	}, nil
}

// AbsoluteEpochID is the number of epochs elapsed since the clock started.
func (i Interval) AbsoluteEpochID() uint64 {
	return i.TotalElapsedEpochs
}

func (i Interval) EpochEnd() uint64 {
	return i.EpochStart + i.EpochLength
}

func (i Interval) IsEpochOver(now uint64) bool {
	return now >= i.EpochEnd()
}

func (i Interval) SecondsUntilEpochEnd(now uint64) uint64 {
	if i.IsEpochOver(now) {
		return 0
	}
	return i.EpochEnd() - now
}

// IsLastEpoch reports whether the current epoch closes the interval.
func (i Interval) IsLastEpoch() bool {
	return i.CurrentEpochID+1 >= i.EpochsInInterval
}

// Advance moves the clock to the next epoch starting at now.
// It reports whether the move started a new interval.
func (i *Interval) Advance(now uint64) (bool, error) {
	if !i.IsEpochOver(now) {
		return false, errors.WithMessagef(reverts.ErrEpochInProgress, "%d seconds left", i.SecondsUntilEpochEnd(now))
	}
	rolled := i.IsLastEpoch()
	if rolled {
		i.ID++
		i.CurrentEpochID = 0
	} else {
		i.CurrentEpochID++
	}
	i.EpochStart = now
	i.TotalElapsedEpochs++
	return rolled, nil
}

// ApplyConfig changes the interval shape. The epoch length applies to the
// running epoch at once; the current epoch id is clamped into the new interval.
func (i *Interval) ApplyConfig(epochsInInterval uint32, epochLength time.Duration) error {
	if err := validateConfig(epochsInInterval, epochLength); err != nil {
		return err
	}
	i.EpochsInInterval = epochsInInterval
	i.EpochLength = uint64(epochLength / time.Second)
	if i.CurrentEpochID >= epochsInInterval {
		i.CurrentEpochID = epochsInInterval - 1
	}
	return nil
}

type Service struct {
	current *storage.Raw[Interval]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		current: storage.NewRaw[Interval](sctx, slotInterval),
	}
}

func (s *Service) Get() (Interval, error) {
	i, err := s.current.Get()
	if err != nil {
		return Interval{}, errors.Wrap(err, "failed to get interval")
	}
	return i, nil
}

func (s *Service) Set(i Interval) error {
	return s.current.Upsert(i)
}
