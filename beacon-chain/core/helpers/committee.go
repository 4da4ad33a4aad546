package helpers

import (
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
	"github.com/serenitylabs/serenity/shared/params"
)

// CrosslinkCommittee defines the validator committee of slot and shard combinations.
type CrosslinkCommittee struct {
	Committee []uint64
	Shard     uint64
}

// CommitteeAssigner supplies the crosslink committees active at a slot.
// The shuffling algorithm that produces the assignments lives outside this
// core; the epoch transitions only consume its output.
type CommitteeAssigner interface {
	CrosslinkCommitteesAtSlot(state *types.BeaconState, slot uint64) ([]*CrosslinkCommittee, error)
}

// EpochCommitteeCount returns the number of crosslink committees of an epoch.
//
// Spec pseudocode definition:
//   def get_epoch_committee_count(active_validator_count: int) -> int:
//     """
//     Return the number of committees in one epoch.
//     """
//     return max(
//        1,
//        min(
//            SHARD_COUNT // EPOCH_LENGTH,
//            active_validator_count // EPOCH_LENGTH // TARGET_COMMITTEE_SIZE,
//        )
//     ) * EPOCH_LENGTH
func EpochCommitteeCount(activeValidatorCount uint64) uint64 {
	var minCommitteePerSlot = uint64(1)
	// Max committee count per slot will be 0 when shard count is less than epoch length, this
	// covers the boundary condition.
	var maxCommitteePerSlot = params.BeaconConfig().ShardCount / params.BeaconConfig().EpochLength
	var currCommitteePerSlot = activeValidatorCount / params.BeaconConfig().EpochLength / params.BeaconConfig().TargetCommitteeSize
	if currCommitteePerSlot > maxCommitteePerSlot {
		return maxCommitteePerSlot * params.BeaconConfig().EpochLength
	}
	if currCommitteePerSlot < 1 {
		return minCommitteePerSlot * params.BeaconConfig().EpochLength
	}
	return currCommitteePerSlot * params.BeaconConfig().EpochLength
}

// CurrentEpochCommitteeCount returns the number of crosslink committees per epoch
// of the current epoch.
// Ex: Returns 100 means there's 8 committees assigned to current epoch.
//
// Spec pseudocode definition:
//   def get_current_epoch_committee_count(state: BeaconState) -> int:
//     """
//     Return the number of committees in the current epoch of the given ``state``.
//     """
//     current_active_validators = get_active_validator_indices(
//         state.validator_registry,
//         state.current_calculation_epoch,
//     )
//     return get_epoch_committee_count(len(current_active_validators))
func CurrentEpochCommitteeCount(state *types.BeaconState) uint64 {
	currActiveValidatorCount := ActiveValidatorCount(
		state.ValidatorRegistry, state.CurrentCalculationEpoch)
	return EpochCommitteeCount(currActiveValidatorCount)
}

// PrevEpochCommitteeCount returns the number of committees per slot
// of the previous epoch.
//
// Spec pseudocode definition:
//   def get_previous_epoch_committee_count(state: BeaconState) -> int:
//     """
//     Return the number of committees in the previous epoch of the given ``state``.
//     """
//     previous_active_validators = get_active_validator_indices(
//         state.validator_registry,
//         state.previous_calculation_epoch,
//     )
//     return get_epoch_committee_count(len(previous_active_validators))
func PrevEpochCommitteeCount(state *types.BeaconState) uint64 {
	prevActiveValidatorCount := ActiveValidatorCount(
		state.ValidatorRegistry, state.PreviousCalculationEpoch)
	return EpochCommitteeCount(prevActiveValidatorCount)
}

// NextEpochCommitteeCount returns the number of committees per slot
// of the next epoch.
func NextEpochCommitteeCount(state *types.BeaconState) uint64 {
	nextActiveValidatorCount := ActiveValidatorCount(
		state.ValidatorRegistry, CurrentEpoch(state)+1)
	return EpochCommitteeCount(nextActiveValidatorCount)
}
