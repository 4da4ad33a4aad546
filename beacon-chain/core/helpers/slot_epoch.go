// Package helpers contains helper functions outlined in the beacon chain spec, such as
// computing committees, randao seeds, validator set queries, and more.
package helpers

import (
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
	"github.com/serenitylabs/serenity/shared/params"
)

// SlotToEpoch returns the epoch number of the input slot.
//
// Spec pseudocode definition:
//   def slot_to_epoch(slot: SlotNumber) -> EpochNumber:
//    return slot // EPOCH_LENGTH
func SlotToEpoch(slot uint64) uint64 {
	return slot / params.BeaconConfig().EpochLength
}

// CurrentEpoch returns the current epoch number calculated from
// the slot number stored in beacon state.
//
// Spec pseudocode definition:
//   def get_current_epoch(state: BeaconState) -> EpochNumber:
//    return slot_to_epoch(state.slot)
func CurrentEpoch(state *types.BeaconState) uint64 {
	return SlotToEpoch(state.Slot)
}

// PrevEpoch returns the previous epoch number calculated from
// the slot number stored in beacon state. It also checks for
// underflow condition.
//
// Spec pseudocode definition:
//   def get_previous_epoch(state: BeaconState) -> EpochNumber:
//    return max(get_current_epoch(state) - 1, GENESIS_EPOCH)
func PrevEpoch(state *types.BeaconState) uint64 {
	if CurrentEpoch(state) > params.BeaconConfig().GenesisEpoch {
		return CurrentEpoch(state) - 1
	}
	return params.BeaconConfig().GenesisEpoch
}

// NextEpoch returns the next epoch number calculated from
// the slot number stored in beacon state.
func NextEpoch(state *types.BeaconState) uint64 {
	return SlotToEpoch(state.Slot) + 1
}

// StartSlot returns the first slot number of the
// current epoch.
//
// Spec pseudocode definition:
//   def get_epoch_start_slot(epoch: EpochNumber) -> SlotNumber:
//    return epoch * EPOCH_LENGTH
func StartSlot(epoch uint64) uint64 {
	return epoch * params.BeaconConfig().EpochLength
}

// IsEpochStart returns true if the given slot number is an epoch starting slot
// number.
func IsEpochStart(slot uint64) bool {
	return slot%params.BeaconConfig().EpochLength == 0
}

// IsEpochEnd returns true if the given slot number is an epoch ending slot
// number.
func IsEpochEnd(slot uint64) bool {
	return IsEpochStart(slot + 1)
}
