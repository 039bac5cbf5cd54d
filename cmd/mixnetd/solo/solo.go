// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/contract/nodes"
	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/genesis"
	"github.com/mixledger/ledger/log"
	"github.com/mixledger/ledger/mixnet"
)

var logger = log.WithContext("pkg", "solo")

type Options struct {
	// Performance is reported for every rewarded node.
	Performance mixnet.Decimal
	// Pledge is what each dev account bonds.
	Pledge uint64
}

// Solo plays the rewarding validator on a standalone ledger: it rewards the
// rewarded set when an epoch ends, picks the next set by stake and drains
// the deferred events.
type Solo struct {
	executor  *contract.Executor
	validator mixnet.Address
	options   Options
}

// New returns Solo instance
func New(executor *contract.Executor, validator mixnet.Address, options Options) *Solo {
	return &Solo{
		executor:  executor,
		validator: validator,
		options:   options,
	}
}

// Summary describes one epoch transition.
type Summary struct {
	AbsoluteEpoch uint64
	Rewarded      int
	RewardedSet   []mixnet.NodeID
	Drained       uint32
}

func (s *Solo) execute(sender mixnet.Address, funds mixnet.Coins, msg *contract.ExecuteMsg) (*contract.Response, error) {
	return s.executor.Execute(contract.MessageInfo{Sender: sender, Funds: funds}, msg)
}

// BondDevNodes bonds a node for every account that does not own one yet.
func (s *Solo) BondDevNodes(accounts []genesis.DevAccount) error {
	var denom string
	if err := s.executor.View(func(c *contract.Contract, _ contract.Env) error {
		state, err := c.GetContractState()
		if err != nil {
			return err
		}
		denom = state.RewardingDenom
		return nil
	}); err != nil {
		return err
	}

	for i, acc := range accounts {
		var owned bool
		if err := s.executor.View(func(c *contract.Contract, _ contract.Env) error {
			node, err := c.GetOwnedNode(acc.Address)
			if err != nil {
				return err
			}
			owned = node.Details != nil
			return nil
		}); err != nil {
			return err
		}
		if owned {
			continue
		}
		_, err := s.execute(acc.Address, mixnet.NewCoins(mixnet.NewCoin(s.options.Pledge, denom)), &contract.ExecuteMsg{
			Bond: &contract.BondMsg{
				Node: nodes.Config{
					IdentityKey: acc.IdentityKey(),
					SphinxKey:   acc.IdentityKey(),
					ConfigUpdate: nodes.ConfigUpdate{
						Host:        "127.0.0.1",
						MixPort:     uint16(1789 + i),
						VerlocPort:  1790,
						HTTPAPIPort: 8000,
						Version:     "dev",
					},
				},
				CostParams: nodes.CostParams{
					ProfitMargin:          mixnet.MustParseDecimal("0.1"),
					IntervalOperatingCost: mixnet.NewCoin(0, denom),
				},
				OwnerSignature: acc.OwnerSignature(),
			},
		})
		if err != nil {
			return errors.WithMessagef(err, "bond dev node of %v", acc.Address)
		}
	}
	logger.Info("dev nodes bonded", "accounts", len(accounts))
	return nil
}

// Run drives epochs until ctx is done.
func (s *Solo) Run(ctx context.Context) error {
	logger.Info("prepared to advance epochs", "validator", s.validator)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.loop(gctx)
		return nil
	})
	g.Go(func() error { return s.watch(gctx) })
	return g.Wait()
}

// watch logs every committed height.
func (s *Solo) watch(ctx context.Context) error {
	for {
		committed := s.executor.Committed()
		select {
		case <-ctx.Done():
			return nil
		case <-committed:
			env, err := s.executor.Env()
			if err != nil {
				return errors.WithMessage(err, "read env")
			}
			logger.Debug("state committed", "height", env.BlockHeight, "time", env.BlockTime)
		}
	}
}

func (s *Solo) loop(ctx context.Context) {
	var backoff time.Duration
	for {
		wait, err := s.untilEpochEnd()
		if err != nil {
			logger.Error("failed to read the current interval", "err", err)
			wait = time.Second
		}
		timer := time.NewTimer(max(wait, backoff))

		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("stopping epoch advancing service......")
			return
		case <-s.executor.Committed():
			// the owner may have moved the epoch end; re-arm
			timer.Stop()
		case <-timer.C:
			if _, err := s.Step(); err != nil {
				logger.Warn("failed to advance epoch", "err", err)
				backoff = time.Second
			} else {
				backoff = 0
			}
		}
	}
}

func (s *Solo) untilEpochEnd() (time.Duration, error) {
	var wait time.Duration
	err := s.executor.View(func(c *contract.Contract, env contract.Env) error {
		details, err := c.GetCurrentInterval(env)
		if err != nil {
			return err
		}
		wait = time.Duration(details.SecondsUntilEpochEnd) * time.Second
		return nil
	})
	return wait, err
}

// Step ends the current epoch if it is over. It returns nil when there was
// nothing to do.
func (s *Solo) Step() (*Summary, error) {
	var (
		over          bool
		current       []mixnet.NodeID
		next          []mixnet.NodeID
		expected      uint32
		absoluteEpoch uint64
	)
	err := s.executor.View(func(c *contract.Contract, env contract.Env) error {
		details, err := c.GetCurrentInterval(env)
		if err != nil {
			return err
		}
		if over = details.IsEpochOver; !over {
			return nil
		}
		absoluteEpoch = details.AbsoluteEpochID

		if current, err = rewardedSet(c); err != nil {
			return err
		}
		rp, err := c.GetRewardingParams()
		if err != nil {
			return err
		}
		expected = rp.Epoch.ActiveSetSize
		all, err := c.AllNodes()
		if err != nil {
			return err
		}
		next = SelectRewardedSet(all, rp.Epoch.RewardedSetSize)
		return nil
	})
	if err != nil || !over {
		return nil, err
	}

	summary := &Summary{AbsoluteEpoch: absoluteEpoch, RewardedSet: next}
	for _, id := range current {
		resp, err := s.execute(s.validator, nil, &contract.ExecuteMsg{RewardNode: &contract.RewardNodeMsg{
			NodeID:      id,
			Performance: s.options.Performance,
		}})
		if reverts.IsRevertErr(err) {
			// rewarded through the api already
			logger.Warn("node not rewarded", "node", id, "err", err)
			continue
		}
		if err != nil {
			return nil, errors.WithMessagef(err, "reward node %v", id)
		}
		summary.Rewarded += len(resp.EventsOf(contract.EventNodeRewarding))
	}

	if _, err := s.execute(s.validator, nil, &contract.ExecuteMsg{AdvanceEpoch: &contract.AdvanceEpochMsg{
		NewRewardedSet:        next,
		ExpectedActiveSetSize: expected,
	}}); err != nil {
		return nil, errors.WithMessage(err, "advance epoch")
	}

	epochDrained, err := s.drain(func() *contract.ExecuteMsg {
		return &contract.ExecuteMsg{ReconcileEpochEvents: &contract.ReconcileMsg{}}
	}, contract.EventReconcileEpoch)
	if err != nil {
		return nil, err
	}
	intervalDrained, err := s.drain(func() *contract.ExecuteMsg {
		return &contract.ExecuteMsg{ReconcileIntervalEvents: &contract.ReconcileMsg{}}
	}, contract.EventReconcileInterval)
	if err != nil {
		return nil, err
	}
	summary.Drained = epochDrained + intervalDrained

	logger.Info("epoch ended", "epoch", absoluteEpoch, "rewarded", summary.Rewarded,
		"next_set", len(next), "drained", summary.Drained)
	return summary, nil
}

// drain reconciles until a batch comes back empty.
func (s *Solo) drain(msg func() *contract.ExecuteMsg, event string) (uint32, error) {
	var total uint32
	for {
		resp, err := s.execute(s.validator, nil, msg())
		if err != nil {
			return total, errors.WithMessage(err, event)
		}
		var drained uint32
		for _, ev := range resp.EventsOf(event) {
			n, err := strconv.ParseUint(ev.Attr("drained"), 10, 32)
			if err != nil {
				return total, errors.Wrap(err, "drained attribute")
			}
			drained += uint32(n)
		}
		if drained == 0 {
			return total, nil
		}
		total += drained
	}
}

func rewardedSet(c *contract.Contract) ([]mixnet.NodeID, error) {
	var (
		ids   []mixnet.NodeID
		after *mixnet.NodeID
	)
	for {
		page, err := c.GetRewardedSet(after, nil)
		if err != nil {
			return nil, err
		}
		for _, n := range page.Nodes {
			ids = append(ids, n.NodeID)
		}
		if page.StartNextAfter == nil {
			return ids, nil
		}
		after = page.StartNextAfter
	}
}

// SelectRewardedSet picks up to size bonded nodes by total stake, highest
// first. Ties go to the older node.
func SelectRewardedSet(all []contract.NodeDetails, size uint32) []mixnet.NodeID {
	candidates := make([]contract.NodeDetails, 0, len(all))
	for _, n := range all {
		if n.Node.IsBonded() && n.Rewarding != nil {
			candidates = append(candidates, n)
		}
	}
	slices.SortFunc(candidates, func(a, b contract.NodeDetails) int {
		if c := b.Rewarding.TotalStake().Cmp(a.Rewarding.TotalStake()); c != 0 {
			return c
		}
		return cmp.Compare(a.Node.ID, b.Node.ID)
	})
	if uint64(len(candidates)) > uint64(size) {
		candidates = candidates[:size]
	}
	ids := make([]mixnet.NodeID, 0, len(candidates))
	for _, n := range candidates {
		ids = append(ids, n.Node.ID)
	}
	return ids
}
