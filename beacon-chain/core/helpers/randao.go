package helpers

import (
	"github.com/pkg/errors"

	"github.com/serenitylabs/serenity/beacon-chain/core/types"
	"github.com/serenitylabs/serenity/shared/bytesutil"
	"github.com/serenitylabs/serenity/shared/hashutil"
	"github.com/serenitylabs/serenity/shared/params"
)

// RandaoMix returns the randao mix (xor'ed seed)
// of a given slot. It is used to shuffle validators.
//
// Spec pseudocode definition:
//   def get_randao_mix(state: BeaconState, epoch: EpochNumber) -> Bytes32:
//     """
//     Returns the randao mix at a recent ``epoch``.
//     """
//     assert get_current_epoch(state) - LATEST_RANDAO_MIXES_LENGTH < epoch <= get_current_epoch(state)
//     return state.latest_randao_mixes[epoch % LATEST_RANDAO_MIXES_LENGTH]
func RandaoMix(state *types.BeaconState, epoch uint64) ([]byte, error) {
	currentEpoch := CurrentEpoch(state)
	randaoMixesLength := params.BeaconConfig().LatestRandaoMixesLength
	if epoch+randaoMixesLength <= currentEpoch || epoch > currentEpoch {
		return nil, errors.Wrapf(ErrEpochOutOfRange,
			"randao mix for epoch %d, current epoch %d", epoch, currentEpoch)
	}
	return state.LatestRandaoMixes[epoch%randaoMixesLength], nil
}

// ActiveIndexRoot returns the index root of a given epoch.
//
// Spec pseudocode definition:
//   def get_active_index_root(state: BeaconState, epoch: EpochNumber) -> Bytes32:
//     """
//     Returns the index root at a recent ``epoch``.
//     """
//     assert get_current_epoch(state) - LATEST_ACTIVE_INDEX_ROOTS_LENGTH + ACTIVATION_EXIT_DELAY < epoch
//         <= get_current_epoch(state) + ACTIVATION_EXIT_DELAY
//     return state.latest_active_index_roots[epoch % LATEST_ACTIVE_INDEX_ROOTS_LENGTH]
func ActiveIndexRoot(state *types.BeaconState, epoch uint64) ([]byte, error) {
	currentEpoch := CurrentEpoch(state)
	indexRootsLength := params.BeaconConfig().LatestActiveIndexRootsLength
	delay := params.BeaconConfig().ActivationExitDelay
	if epoch+indexRootsLength <= currentEpoch+delay || epoch > currentEpoch+delay {
		return nil, errors.Wrapf(ErrEpochOutOfRange,
			"active index root for epoch %d, current epoch %d", epoch, currentEpoch)
	}
	return state.LatestActiveIndexRoots[epoch%indexRootsLength], nil
}

// GenerateSeed generates the randao seed of a given epoch. The seed feeds the
// committee shuffling, so it must match other implementations byte for byte.
//
// Spec pseudocode definition:
//   def generate_seed(state: BeaconState, epoch: EpochNumber) -> Bytes32:
//     """
//     Generate a seed for the given ``epoch``.
//     """
//     return hash(
//         get_randao_mix(state, epoch - MIN_SEED_LOOKAHEAD) +
//         get_active_index_root(state, epoch) +
//         int_to_bytes32(epoch)
//     )
func GenerateSeed(state *types.BeaconState, epoch uint64) ([32]byte, error) {
	randaoMix, err := RandaoMix(state, epoch-params.BeaconConfig().MinSeedLookahead)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not get randao mix")
	}
	indexRoot, err := ActiveIndexRoot(state, epoch)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not get active index root")
	}

	seedInput := make([]byte, 0, len(randaoMix)+len(indexRoot)+32)
	seedInput = append(seedInput, randaoMix...)
	seedInput = append(seedInput, indexRoot...)
	seedInput = append(seedInput, bytesutil.Bytes32(epoch)...)
	return hashutil.Hash(seedInput), nil
}
