// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/storage"
	"github.com/mixledger/ledger/mixnet"
)

const slotContractState = "params/state"

// Params are the owner-tunable bonding thresholds.
type Params struct {
	MinimumPledge mixnet.Coin `json:"minimum_pledge"`
	// MinimumDelegation is optional; nil means any non-zero amount is accepted.
	MinimumDelegation *mixnet.Coin `json:"minimum_delegation,omitempty" rlp:"nil"`
}

// ContractState is the contract-wide configuration.
type ContractState struct {
	Owner                     mixnet.Address `json:"owner"`
	RewardingValidatorAddress mixnet.Address `json:"rewarding_validator_address"`
	VestingContractAddress    mixnet.Address `json:"vesting_contract_address"`
	RewardingDenom            string         `json:"rewarding_denom"`
	Params                    Params         `json:"params"`
}

// Validate checks the internal consistency of the state.
func (cs *ContractState) Validate() error {
	if cs.Owner.IsZero() {
		return errors.WithMessage(reverts.ErrInvalidParams, "owner is empty")
	}
	if cs.RewardingValidatorAddress.IsZero() {
		return errors.WithMessage(reverts.ErrInvalidParams, "rewarding validator address is empty")
	}
	if cs.RewardingDenom == "" {
		return errors.WithMessage(reverts.ErrInvalidParams, "rewarding denom is empty")
	}
	return validateParams(cs.RewardingDenom, cs.Params)
}

func validateParams(denom string, p Params) error {
	if p.MinimumPledge.Denom != denom {
		return errors.WithMessagef(reverts.ErrWrongDenom, "minimum pledge denom %q, expected %q", p.MinimumPledge.Denom, denom)
	}
	if p.MinimumDelegation != nil && p.MinimumDelegation.Denom != denom {
		return errors.WithMessagef(reverts.ErrWrongDenom, "minimum delegation denom %q, expected %q", p.MinimumDelegation.Denom, denom)
	}
	return nil
}

type Service struct {
	state *storage.Raw[ContractState]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		state: storage.NewRaw[ContractState](sctx, slotContractState),
	}
}

// Init stores the initial state. It fails if the state was already initialized.
func (s *Service) Init(state ContractState) error {
	exists, err := s.state.Exists()
	if err != nil {
		return err
	}
	if exists {
		return errors.New("contract state already initialized")
	}
	if err := state.Validate(); err != nil {
		return err
	}
	return s.state.Upsert(state)
}

func (s *Service) State() (*ContractState, error) {
	state, err := s.state.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get contract state")
	}
	return &state, nil
}

// UpdateContractParams replaces the bonding thresholds. Owner only.
func (s *Service) UpdateContractParams(sender mixnet.Address, p Params) error {
	state, err := s.State()
	if err != nil {
		return err
	}
	if sender != state.Owner {
		return reverts.ErrUnauthorized
	}
	if err := validateParams(state.RewardingDenom, p); err != nil {
		return err
	}
	state.Params = p
	return s.state.Upsert(*state)
}

// UpdateRewardingValidatorAddress replaces the rewarding authority. Owner only.
func (s *Service) UpdateRewardingValidatorAddress(sender, address mixnet.Address) error {
	state, err := s.State()
	if err != nil {
		return err
	}
	if sender != state.Owner {
		return reverts.ErrUnauthorized
	}
	if address.IsZero() {
		return errors.WithMessage(reverts.ErrInvalidParams, "rewarding validator address is empty")
	}
	state.RewardingValidatorAddress = address
	return s.state.Upsert(*state)
}

func (s *Service) EnsureOwner(sender mixnet.Address) error {
	state, err := s.State()
	if err != nil {
		return err
	}
	if sender != state.Owner {
		return reverts.ErrUnauthorized
	}
	return nil
}

func (s *Service) EnsureRewardingValidator(sender mixnet.Address) error {
	state, err := s.State()
	if err != nil {
		return err
	}
	if sender != state.RewardingValidatorAddress {
		return reverts.ErrUnauthorized
	}
	return nil
}

// EnsureOwnerOrRewardingValidator admits either of the two privileged addresses.
func (s *Service) EnsureOwnerOrRewardingValidator(sender mixnet.Address) error {
	state, err := s.State()
	if err != nil {
		return err
	}
	if sender != state.Owner && sender != state.RewardingValidatorAddress {
		return reverts.ErrUnauthorized
	}
	return nil
}

// EnsureVestingProxy checks that sender is the trusted proxy allowed to act on behalf of owners.
func (s *Service) EnsureVestingProxy(sender mixnet.Address) error {
	state, err := s.State()
	if err != nil {
		return err
	}
	if state.VestingContractAddress.IsZero() || sender != state.VestingContractAddress {
		return reverts.ErrUnauthorized
	}
	return nil
}

// ValidatePledge checks the funds attached to a bond and returns the single pledged coin.
func ValidatePledge(funds mixnet.Coins, state *ContractState) (mixnet.Coin, error) {
	funds = mixnet.NewCoins(funds...)
	if len(funds) == 0 {
		return mixnet.Coin{}, reverts.ErrNoBondFound
	}
	if len(funds) > 1 {
		return mixnet.Coin{}, reverts.ErrMultipleDenoms
	}
	pledge := funds[0]
	if pledge.Denom != state.RewardingDenom {
		return mixnet.Coin{}, errors.WithMessagef(reverts.ErrWrongDenom, "got %q, expected %q", pledge.Denom, state.RewardingDenom)
	}
	if pledge.Amount < state.Params.MinimumPledge.Amount {
		return mixnet.Coin{}, errors.WithMessagef(reverts.ErrInsufficientPledge, "got %v, minimum %v", pledge, state.Params.MinimumPledge)
	}
	return pledge, nil
}

// ValidateDelegation checks the funds attached to a delegation and returns the single delegated coin.
func ValidateDelegation(funds mixnet.Coins, state *ContractState) (mixnet.Coin, error) {
	funds = mixnet.NewCoins(funds...)
	if len(funds) == 0 {
		return mixnet.Coin{}, reverts.ErrEmptyDelegation
	}
	if len(funds) > 1 {
		return mixnet.Coin{}, reverts.ErrMultipleDenoms
	}
	amount := funds[0]
	if amount.Denom != state.RewardingDenom {
		return mixnet.Coin{}, errors.WithMessagef(reverts.ErrWrongDenom, "got %q, expected %q", amount.Denom, state.RewardingDenom)
	}
	if minimum := state.Params.MinimumDelegation; minimum != nil && amount.Amount < minimum.Amount {
		return mixnet.Coin{}, errors.WithMessagef(reverts.ErrInsufficientDelegation, "got %v, minimum %v", amount, *minimum)
	}
	return amount, nil
}
