// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package test

import (
	"time"

	"github.com/pkg/errors"
)

// Retry calls fn every retryPeriod until it succeeds or maxWaitTime passes,
// in which case the last error is returned.
func Retry(fn func() error, retryPeriod, maxWaitTime time.Duration) error {
	deadline := time.NewTimer(maxWaitTime)
	defer deadline.Stop()
	ticker := time.NewTicker(retryPeriod)
	defer ticker.Stop()

	for {
		err := fn()
		if err == nil {
			return nil
		}
		select {
		case <-deadline.C:
			return errors.WithMessage(err, "retry timeout")
		case <-ticker.C:
		}
	}
}
