// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"strconv"

	"github.com/mixledger/ledger/metrics"
)

var (
	metricExecuteCount    = metrics.LazyLoadCounterVec("contract_execute_count", []string{"msg", "status"})
	metricExecuteDuration = metrics.LazyLoadHistogramVec("contract_execute_duration_ms", []string{"msg"}, metrics.BucketHTTPReqs)
	metricBatchSize       = metrics.LazyLoadHistogramVec("contract_reconcile_batch_size", []string{"queue"}, metrics.BucketBatchSize)
	metricSkippedEvents   = metrics.LazyLoadCounterVec("contract_events_skipped_count", []string{"queue"})
	metricRewardedNodes   = metrics.LazyLoadCounterVec("contract_rewarded_nodes_count", []string{"result"})
	metricPayouts         = metrics.LazyLoadCounter("contract_payout_amount")
	metricRewardPool      = metrics.LazyLoadGauge("contract_reward_pool")
	metricPendingEvents   = metrics.LazyLoadGaugeVec("contract_pending_events", []string{"queue"})
)

// observeResponse derives counters from the events of a committed call.
func observeResponse(resp *Response) {
	for _, ev := range resp.Events {
		switch ev.Type {
		case EventReconcileEpoch:
			observeDrained("epoch", ev.Attr("drained"))
		case EventReconcileInterval:
			observeDrained("interval", ev.Attr("drained"))
		case EventEpochEventSkipped:
			metricSkippedEvents().AddWithLabel(1, map[string]string{"queue": "epoch"})
		case EventIntervalEventSkip:
			metricSkippedEvents().AddWithLabel(1, map[string]string{"queue": "interval"})
		case EventNodeRewarding:
			metricRewardedNodes().AddWithLabel(1, map[string]string{"result": "rewarded"})
		case EventNodeRewardSkipped:
			metricRewardedNodes().AddWithLabel(1, map[string]string{"result": "skipped"})
		}
	}
	for _, m := range resp.Messages {
		for _, coin := range m.Amount {
			metricPayouts().Add(int64(coin.Amount))
		}
	}
}

func observeDrained(queue, drained string) {
	n, err := strconv.ParseInt(drained, 10, 64)
	if err != nil {
		return
	}
	metricBatchSize().ObserveWithLabels(n, map[string]string{"queue": queue})
}
