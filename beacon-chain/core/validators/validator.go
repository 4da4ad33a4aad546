// Package validators contains libraries to activate, exit and rotate
// validators in and out of the registry, within the balance churn the
// protocol allows per epoch.
package validators

import (
	"github.com/pkg/errors"

	"github.com/serenitylabs/serenity/beacon-chain/core/helpers"
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
	"github.com/serenitylabs/serenity/shared/mathutil"
	"github.com/serenitylabs/serenity/shared/params"
)

// EntryExitEffectEpoch returns the epoch at which an activation or exit
// triggered in the given epoch takes effect.
//
// Spec pseudocode definition:
//   def get_entry_exit_effect_epoch(epoch: EpochNumber) -> EpochNumber:
//     """
//     An entry or exit triggered in the ``epoch`` given by the input takes effect at
//     the epoch given by the output.
//     """
//     return epoch + 1 + ACTIVATION_EXIT_DELAY
func EntryExitEffectEpoch(epoch uint64) uint64 {
	return epoch + 1 + params.BeaconConfig().ActivationExitDelay
}

// ActivateValidator takes in validator index and updates
// validator's activation epoch.
//
// Spec pseudocode definition:
//   def activate_validator(state: BeaconState, index: ValidatorIndex, is_genesis: bool) -> None:
//     """
//     Activate the validator with the given ``index``.
//     Note that this function mutates ``state``.
//     """
//     validator = state.validator_registry[index]
//
//     validator.activation_epoch = GENESIS_EPOCH if is_genesis else get_entry_exit_effect_epoch(get_current_epoch(state))
func ActivateValidator(state *types.BeaconState, idx uint64, genesis bool) *types.BeaconState {
	validator := state.ValidatorRegistry[idx]
	if genesis {
		validator.ActivationEpoch = params.BeaconConfig().GenesisEpoch
	} else {
		validator.ActivationEpoch = EntryExitEffectEpoch(helpers.CurrentEpoch(state))
	}
	state.ValidatorRegistry[idx] = validator
	return state
}

// InitiateValidatorExit takes in validator index and updates
// validator with INITIATED_EXIT status flag. The validator is
// exited by UpdateRegistry once churn allows.
//
// Spec pseudocode definition:
//   def initiate_validator_exit(state: BeaconState, index: ValidatorIndex) -> None:
//     validator = state.validator_registry[index]
//     validator.status_flags |= INITIATED_EXIT
func InitiateValidatorExit(state *types.BeaconState, idx uint64) *types.BeaconState {
	state.ValidatorRegistry[idx].StatusFlags |= types.StatusFlagInitiatedExit
	return state
}

// ExitValidator takes in validator index and does house
// keeping work to exit validator with entry exit delay.
//
// Spec pseudocode definition:
//   def exit_validator(state: BeaconState, index: ValidatorIndex) -> None:
//     """
//     Exit the validator with the given ``index``.
//     Note that this function mutates ``state``.
//     """
//     validator = state.validator_registry[index]
//
//     # The following updates only occur if not previous exited
//     if validator.exit_epoch <= get_entry_exit_effect_epoch(get_current_epoch(state)):
//         return
//
//     validator.exit_epoch = get_entry_exit_effect_epoch(get_current_epoch(state))
func ExitValidator(state *types.BeaconState, idx uint64) *types.BeaconState {
	validator := state.ValidatorRegistry[idx]
	exitEpoch := EntryExitEffectEpoch(helpers.CurrentEpoch(state))
	if validator.ExitEpoch <= exitEpoch {
		return state
	}
	validator.ExitEpoch = exitEpoch
	state.ValidatorRegistry[idx] = validator
	return state
}

// SlashValidator exits the malicious validator and adds its effective
// balance to the running slashed balance total for the current epoch.
// Whistleblower rewards are credited by the block processing pipeline,
// which knows the proposer; they are not handled here.
//
// Spec pseudocode definition:
//   def penalize_validator(state: BeaconState, index: ValidatorIndex) -> None:
//     exit_validator(state, index)
//     state.latest_penalized_balances[get_current_epoch(state) % LATEST_PENALIZED_EXIT_LENGTH] += get_effective_balance(state, index)
func SlashValidator(state *types.BeaconState, idx uint64) (*types.BeaconState, error) {
	if idx >= uint64(len(state.ValidatorRegistry)) {
		return nil, errors.Errorf("validator index %d out of bounds for registry of size %d",
			idx, len(state.ValidatorRegistry))
	}
	state = ExitValidator(state, idx)

	slashedEpoch := helpers.CurrentEpoch(state) % params.BeaconConfig().LatestSlashedExitLength
	state.LatestSlashedBalances[slashedEpoch] += helpers.EffectiveBalance(state.ValidatorBalances, idx)
	return state, nil
}

// maxBalanceChurn returns the maximum combined effective balance that may
// rotate in or out of the active set in one registry update.
//
// Spec pseudocode definition:
//   max_balance_churn = max(
//       MAX_DEPOSIT_AMOUNT,
//       total_balance // (2 * MAX_BALANCE_CHURN_QUOTIENT)
//   )
func maxBalanceChurn(totalBalance uint64) uint64 {
	return mathutil.Max(
		params.BeaconConfig().MaxDepositAmount,
		totalBalance/(2*params.BeaconConfig().MaxBalanceChurnQuotient))
}

// UpdateRegistry rotates validators in and out of the active pool.
// The amount to rotate is determined by the max validator balance churn.
//
// Spec pseudocode definition:
//   def update_validator_registry(state: BeaconState) -> None:
//     """
//     Update validator registry.
//     Note that this function mutates ``state``.
//     """
//     current_epoch = get_current_epoch(state)
//     # The active validators
//     active_validator_indices = get_active_validator_indices(state.validator_registry, current_epoch)
//     # The total effective balance of active validators
//     total_balance = sum([get_effective_balance(state, i) for i in active_validator_indices])
//
//     # The maximum balance churn in Gwei (for deposits and exits separately)
//     max_balance_churn = max(
//         MAX_DEPOSIT_AMOUNT,
//         total_balance // (2 * MAX_BALANCE_CHURN_QUOTIENT)
//     )
//
//     # Activate validators within the allowable balance churn
//     balance_churn = 0
//     for index, validator in enumerate(state.validator_registry):
//         if validator.activation_epoch > get_entry_exit_effect_epoch(current_epoch) and state.validator_balances[index] >= MAX_DEPOSIT_AMOUNT:
//             # Check the balance churn would be within the allowance
//             balance_churn += get_effective_balance(state, index)
//             if balance_churn > max_balance_churn:
//                 break
//
//             # Activate validator
//             activate_validator(state, index, False)
//
//     # Exit validators within the allowable balance churn
//     balance_churn = 0
//     for index, validator in enumerate(state.validator_registry):
//         if validator.exit_epoch > get_entry_exit_effect_epoch(current_epoch) and validator.status_flags & INITIATED_EXIT:
//             # Check the balance churn would be within the allowance
//             balance_churn += get_effective_balance(state, index)
//             if balance_churn > max_balance_churn:
//                 break
//
//             # Exit validator
//             exit_validator(state, index)
//
//     state.validator_registry_update_epoch = current_epoch
func UpdateRegistry(state *types.BeaconState) *types.BeaconState {
	currentEpoch := helpers.CurrentEpoch(state)
	effectEpoch := EntryExitEffectEpoch(currentEpoch)
	activeIndices := helpers.ActiveValidatorIndices(state.ValidatorRegistry, currentEpoch)
	totalBalance := helpers.TotalBalance(state.ValidatorBalances, activeIndices)
	churnLimit := maxBalanceChurn(totalBalance)

	var balanceChurn uint64
	for idx, validator := range state.ValidatorRegistry {
		if validator.ActivationEpoch > effectEpoch &&
			state.ValidatorBalances[idx] >= params.BeaconConfig().MaxDepositAmount {
			balanceChurn += helpers.EffectiveBalance(state.ValidatorBalances, uint64(idx))
			if balanceChurn > churnLimit {
				break
			}
			state = ActivateValidator(state, uint64(idx), false)
		}
	}

	balanceChurn = 0
	for idx, validator := range state.ValidatorRegistry {
		if validator.ExitEpoch > effectEpoch &&
			validator.StatusFlags&types.StatusFlagInitiatedExit != 0 {
			balanceChurn += helpers.EffectiveBalance(state.ValidatorBalances, uint64(idx))
			if balanceChurn > churnLimit {
				break
			}
			state = ExitValidator(state, uint64(idx))
		}
	}

	state.ValidatorRegistryUpdateEpoch = currentEpoch
	return state
}
