package helpers

import (
	"github.com/pkg/errors"

	"github.com/serenitylabs/serenity/beacon-chain/core/types"
	"github.com/serenitylabs/serenity/shared/params"
)

// BlockRoot returns the block root stored in the BeaconState for a recent slot.
// It returns an error if the requested block root is not within the slot range.
//
// Spec pseudocode definition:
//   def get_block_root(state: BeaconState, slot: SlotNumber) -> Bytes32:
//     """
//     Returns the block root at a recent ``slot``.
//     """
//     assert state.slot <= slot + LATEST_BLOCK_ROOTS_LENGTH
//     assert slot < state.slot
//     return state.latest_block_roots[slot % LATEST_BLOCK_ROOTS_LENGTH]
func BlockRoot(state *types.BeaconState, slot uint64) ([]byte, error) {
	blockRootsLength := params.BeaconConfig().LatestBlockRootsLength
	if state.Slot > slot+blockRootsLength || slot >= state.Slot {
		return nil, errors.Wrapf(ErrSlotOutOfRange,
			"block root for slot %d, state slot %d", slot, state.Slot)
	}
	return state.LatestBlockRoots[slot%blockRootsLength], nil
}
