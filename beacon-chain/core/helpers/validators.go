package helpers

import (
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
	"github.com/serenitylabs/serenity/shared/params"
)

// IsActiveValidator returns the boolean value on whether the validator
// is active or not.
//
// Spec pseudocode definition:
//   def is_active_validator(validator: ValidatorRecord, epoch: EpochNumber) -> bool:
//     """
//     Checks if ``validator`` is active.
//     """
//     return validator.activation_epoch <= epoch < validator.exit_epoch
func IsActiveValidator(validator *types.Validator, epoch uint64) bool {
	return validator.ActivationEpoch <= epoch &&
		epoch < validator.ExitEpoch
}

// ActiveValidatorIndices filters out active validators based on validator status
// and returns their indices in registry order. Registry order is significant:
// seed derivation and shuffling both consume the sequence as produced here.
//
// Spec pseudocode definition:
//   def get_active_validator_indices(validators: [ValidatorRecord], epoch: EpochNumber) -> List[int]:
//     """
//     Gets indices of active validators from ``validators``.
//     """
//     return [i for i, v in enumerate(validators) if is_active_validator(v, epoch)]
func ActiveValidatorIndices(registry []*types.Validator, epoch uint64) []uint64 {
	indices := make([]uint64, 0, len(registry))
	for i, v := range registry {
		if IsActiveValidator(v, epoch) {
			indices = append(indices, uint64(i))
		}
	}
	return indices
}

// ActiveValidatorCount returns the number of validators active at the given
// epoch without materializing the index set.
func ActiveValidatorCount(registry []*types.Validator, epoch uint64) uint64 {
	count := uint64(0)
	for _, v := range registry {
		if IsActiveValidator(v, epoch) {
			count++
		}
	}
	return count
}

// EffectiveBalance returns the balance at stake for the validator.
// Beacon chain allows validators to top off their balance above MAX_DEPOSIT_AMOUNT,
// but they can be slashed at most MAX_DEPOSIT_AMOUNT at any time.
//
// Spec pseudocode definition:
//   def get_effective_balance(state: State, index: int) -> int:
//     """
//     Returns the effective balance (also known as "balance at stake") for a ``validator`` with the given ``index``.
//     """
//     return min(state.validator_balances[index], MAX_DEPOSIT_AMOUNT)
func EffectiveBalance(balances []uint64, idx uint64) uint64 {
	if balances[idx] > params.BeaconConfig().MaxDepositAmount {
		return params.BeaconConfig().MaxDepositAmount
	}
	return balances[idx]
}

// TotalBalance returns the combined effective balance of an array of validators.
//
// Spec pseudocode definition:
//   def get_total_balance(state: BeaconState, validators: List[ValidatorIndex]) -> Gwei:
//    """
//    Return the combined effective balance of an array of validators.
//    """
//    return sum([get_effective_balance(state, i) for i in validators])
func TotalBalance(balances []uint64, indices []uint64) uint64 {
	var total uint64
	for _, idx := range indices {
		total += EffectiveBalance(balances, idx)
	}
	return total
}
