// Package epoch contains epoch processing libraries. These libraries
// justify and finalize new check points, form crosslinks for shards
// with enough attesting stake, rotate the validator registry and
// perform the per-epoch housekeeping updates.
package epoch

import (
	"context"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/serenitylabs/serenity/beacon-chain/core/helpers"
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
	"github.com/serenitylabs/serenity/beacon-chain/core/validators"
	"github.com/serenitylabs/serenity/shared/bytesutil"
	"github.com/serenitylabs/serenity/shared/hashutil"
	"github.com/serenitylabs/serenity/shared/mathutil"
	"github.com/serenitylabs/serenity/shared/params"
)

var log = logrus.WithField("prefix", "epoch")

// CanProcessEpoch checks the eligibility to process epoch.
// The epoch can be processed at the end of the last slot of every epoch.
//
// Spec pseudocode definition:
//   If state.slot % EPOCH_LENGTH == EPOCH_LENGTH - 1
func CanProcessEpoch(state *types.BeaconState) bool {
	return (state.Slot+1)%params.BeaconConfig().EpochLength == 0
}

// ProcessJustification justifies and finalizes the epoch based on the
// epoch boundary attesting balances supplied by the attestation
// aggregation pipeline. The justification bitfield shifts by one each
// epoch; its low bit records whether the current epoch boundary gathered
// a supermajority, its second bit the previous epoch boundary.
//
// Spec pseudocode definition:
//   previous_epoch_justifiable = 3 * previous_epoch_boundary_attesting_balance >= 2 * previous_total_balance
//   current_epoch_justifiable = 3 * current_epoch_boundary_attesting_balance >= 2 * current_total_balance
//
//   state.justification_bitfield = state.justification_bitfield << 1
//   if previous_epoch_justifiable: state.justification_bitfield |= 2
//   if current_epoch_justifiable: state.justification_bitfield |= 1
//
//   state.previous_justified_epoch = state.justified_epoch
//   if current_epoch_justifiable: state.justified_epoch = current_epoch
//   elif previous_epoch_justifiable: state.justified_epoch = previous_epoch
func ProcessJustification(
	ctx context.Context,
	state *types.BeaconState,
	currentBoundaryAttestingBalance uint64,
	prevBoundaryAttestingBalance uint64) *types.BeaconState {

	_, span := trace.StartSpan(ctx, "epoch.ProcessJustification")
	defer span.End()

	state = state.Copy()
	currentEpoch := helpers.CurrentEpoch(state)
	prevEpoch := helpers.PrevEpoch(state)

	currentActiveIndices := helpers.ActiveValidatorIndices(state.ValidatorRegistry, currentEpoch)
	prevActiveIndices := helpers.ActiveValidatorIndices(state.ValidatorRegistry, prevEpoch)
	currentTotalBalance := helpers.TotalBalance(state.ValidatorBalances, currentActiveIndices)
	prevTotalBalance := helpers.TotalBalance(state.ValidatorBalances, prevActiveIndices)

	currentEpochJustifiable := 3*currentBoundaryAttestingBalance >= 2*currentTotalBalance
	prevEpochJustifiable := 3*prevBoundaryAttestingBalance >= 2*prevTotalBalance

	newBitfield := state.JustificationBitfield << 1
	if prevEpochJustifiable {
		newBitfield |= 2
	}
	if currentEpochJustifiable {
		newBitfield |= 1
	}
	state.JustificationBitfield = newBitfield

	newJustifiedEpoch := state.JustifiedEpoch
	if currentEpochJustifiable {
		newJustifiedEpoch = currentEpoch
	} else if prevEpochJustifiable {
		newJustifiedEpoch = prevEpoch
	}

	newFinalizedEpoch := finalizedEpoch(
		newBitfield,
		state.PreviousJustifiedEpoch,
		state.JustifiedEpoch,
		state.FinalizedEpoch,
		prevEpoch,
	)
	if newFinalizedEpoch != state.FinalizedEpoch {
		log.WithFields(logrus.Fields{
			"previousFinalizedEpoch": state.FinalizedEpoch,
			"finalizedEpoch":         newFinalizedEpoch,
		}).Info("Epoch finalized")
	}

	// previous_justified_epoch takes the pre-update justified_epoch, so
	// it must be captured before justified_epoch is overwritten.
	state.PreviousJustifiedEpoch = state.JustifiedEpoch
	state.JustifiedEpoch = newJustifiedEpoch
	state.FinalizedEpoch = newFinalizedEpoch

	lastJustifiedEpochGauge.Set(float64(state.JustifiedEpoch))
	lastFinalizedEpochGauge.Set(float64(state.FinalizedEpoch))
	return state
}

// finalizedEpoch evaluates the four finality rules against the updated
// justification bitfield and the pre-update epoch markers. Rules are
// checked in the order that can finalize the highest epoch; the first
// match wins. No match leaves the finalized epoch unchanged.
//
// Spec pseudocode definition:
//   if state.justification_bitfield % 4 == 0b11 and state.justified_epoch == previous_epoch:
//       state.finalized_epoch = state.justified_epoch
//   elif state.justification_bitfield % 8 == 0b111 and state.justified_epoch == previous_epoch - 1:
//       state.finalized_epoch = state.justified_epoch
//   elif state.justification_bitfield >> 1 % 4 == 0b11 and state.previous_justified_epoch == previous_epoch - 1:
//       state.finalized_epoch = state.previous_justified_epoch
//   elif state.justification_bitfield >> 1 % 8 == 0b111 and state.previous_justified_epoch == previous_epoch - 2:
//       state.finalized_epoch = state.previous_justified_epoch
func finalizedEpoch(
	justificationBitfield uint64,
	previousJustifiedEpoch uint64,
	justifiedEpoch uint64,
	currentFinalizedEpoch uint64,
	prevEpoch uint64) uint64 {

	if justificationBitfield%4 == 0x3 && justifiedEpoch == prevEpoch {
		return justifiedEpoch
	}
	if justificationBitfield%8 == 0x7 && justifiedEpoch == prevEpoch-1 {
		return justifiedEpoch
	}
	if (justificationBitfield>>1)%4 == 0x3 && previousJustifiedEpoch == prevEpoch-1 {
		return previousJustifiedEpoch
	}
	if (justificationBitfield>>1)%8 == 0x7 && previousJustifiedEpoch == prevEpoch-2 {
		return previousJustifiedEpoch
	}
	return currentFinalizedEpoch
}

// ProcessCrosslinks goes through each crosslink committee of the past two
// epochs and tallies the shard block root with the most attesting stake.
// A shard's crosslink record is replaced only when the winning root
// gathered at least 2/3 of the committee's total balance. Shards with no
// attestations keep their prior crosslink untouched.
//
// Spec pseudocode definition:
//   For every slot in range(get_epoch_start_slot(previous_epoch), get_epoch_start_slot(next_epoch)),
//   let crosslink_committees_at_slot = get_crosslink_committees_at_slot(state, slot).
//   For every (crosslink_committee, shard) in crosslink_committees_at_slot, compute:
//     Set state.latest_crosslinks[shard] = Crosslink(
//     epoch=current_epoch, shard_block_root=winning_root(crosslink_committee))
//     if 3 * total_attesting_balance(crosslink_committee) >= 2 * get_total_balance(crosslink_committee)
func ProcessCrosslinks(
	ctx context.Context,
	state *types.BeaconState,
	assigner helpers.CommitteeAssigner) (*types.BeaconState, error) {

	_, span := trace.StartSpan(ctx, "epoch.ProcessCrosslinks")
	defer span.End()

	state = state.Copy()
	currentEpoch := helpers.CurrentEpoch(state)
	attestations := append(PrevAttestations(state), CurrentAttestations(state)...)

	prevEpochStartSlot := helpers.StartSlot(helpers.PrevEpoch(state))
	nextEpochStartSlot := helpers.StartSlot(helpers.NextEpoch(state))
	for slot := prevEpochStartSlot; slot < nextEpochStartSlot; slot++ {
		committees, err := assigner.CrosslinkCommitteesAtSlot(state, slot)
		if err != nil {
			return nil, errors.Wrapf(err, "could not get committees for slot %d", slot)
		}
		for _, committee := range committees {
			root, attestingBalance, err := winningRoot(state, committee, attestations)
			if errors.Is(err, ErrNoWinningRoot) {
				// No attestation voted for this shard, leave its
				// crosslink untouched.
				continue
			}
			if err != nil {
				return nil, errors.Wrapf(err, "could not get winning root for shard %d", committee.Shard)
			}
			committeeBalance := helpers.TotalBalance(state.ValidatorBalances, committee.Committee)
			if 3*attestingBalance >= 2*committeeBalance {
				state.LatestCrosslinks[committee.Shard] = &types.CrosslinkRecord{
					Epoch:          currentEpoch,
					ShardBlockRoot: bytesutil.SafeCopyBytes(root),
				}
				crosslinksFormedCounter.Inc()
			}
		}
	}
	return state, nil
}

// shouldUpdateRegistry checks the eligibility to rotate the validator
// registry: the chain must have finalized past the last registry update,
// and every shard in the current epoch's committees must have formed a
// crosslink since then. The shard count consumed by the current
// committees is returned for the start shard advance.
//
// Spec pseudocode definition:
//   If the following are satisfied:
//     * state.finalized_epoch > state.validator_registry_update_epoch
//     * state.latest_crosslinks[shard].epoch > state.validator_registry_update_epoch
//       for every shard number shard in
//       [(state.current_epoch_start_shard + i) % SHARD_COUNT
//       for i in range(get_current_epoch_committee_count(state))]
func shouldUpdateRegistry(state *types.BeaconState) (bool, uint64) {
	if state.FinalizedEpoch <= state.ValidatorRegistryUpdateEpoch {
		return false, 0
	}
	shardCount := params.BeaconConfig().ShardCount
	committeeCount := helpers.CurrentEpochCommitteeCount(state)
	for i := uint64(0); i < committeeCount; i++ {
		shard := (state.CurrentEpochStartShard + i) % shardCount
		if state.LatestCrosslinks[shard].Epoch <= state.ValidatorRegistryUpdateEpoch {
			return false, 0
		}
	}
	return true, committeeCount
}

// ProcessValidatorRegistry rotates the validator registry when the chain
// has finalized past the previous rotation and all current shards have
// fresh crosslinks. When rotation is not due, the shuffling seed is still
// refreshed on a power-of-two cadence since the last update. Either way
// the previous epoch's calculation pointers are snapshotted first.
//
// Spec pseudocode definition:
//   First, update the following:
//     * Set state.previous_calculation_epoch = state.current_calculation_epoch
//     * Set state.previous_epoch_start_shard = state.current_epoch_start_shard
//     * Set state.previous_epoch_seed = state.current_epoch_seed
//   If a validator registry update is due:
//     * update_validator_registry(state)
//     * Set state.current_calculation_epoch = next_epoch
//     * Set state.current_epoch_start_shard = (state.current_epoch_start_shard +
//       get_current_epoch_committee_count(state)) % SHARD_COUNT
//     * Set state.current_epoch_seed = generate_seed(state, state.current_calculation_epoch)
//   If a validator registry update does not happen:
//     * Let epochs_since_last_registry_update = current_epoch - state.validator_registry_update_epoch
//     * If epochs_since_last_registry_update is an exact power of 2:
//       * Set state.current_calculation_epoch = next_epoch
//       * Set state.current_epoch_seed = generate_seed(state, state.current_calculation_epoch)
func ProcessValidatorRegistry(
	ctx context.Context,
	state *types.BeaconState) (*types.BeaconState, error) {

	_, span := trace.StartSpan(ctx, "epoch.ProcessValidatorRegistry")
	defer span.End()

	state = state.Copy()
	state.PreviousCalculationEpoch = state.CurrentCalculationEpoch
	state.PreviousEpochStartShard = state.CurrentEpochStartShard
	state.PreviousEpochSeed = bytesutil.SafeCopyBytes(state.CurrentEpochSeed)

	needToUpdate, committeeCount := shouldUpdateRegistry(state)
	if needToUpdate {
		state = validators.UpdateRegistry(state)
		state.CurrentCalculationEpoch = helpers.NextEpoch(state)
		state.CurrentEpochStartShard = (state.CurrentEpochStartShard + committeeCount) %
			params.BeaconConfig().ShardCount
		seed, err := helpers.GenerateSeed(state, state.CurrentCalculationEpoch)
		if err != nil {
			return nil, errors.Wrap(err, "could not generate seed")
		}
		state.CurrentEpochSeed = seed[:]
		registryUpdateCounter.Inc()
		log.WithFields(logrus.Fields{
			"updateEpoch": state.ValidatorRegistryUpdateEpoch,
			"startShard":  state.CurrentEpochStartShard,
		}).Info("Validator registry updated")
		return state, nil
	}

	epochsSinceLastUpdate := helpers.CurrentEpoch(state) - state.ValidatorRegistryUpdateEpoch
	if mathutil.IsPowerOf2(epochsSinceLastUpdate) {
		state.CurrentCalculationEpoch = helpers.NextEpoch(state)
		seed, err := helpers.GenerateSeed(state, state.CurrentCalculationEpoch)
		if err != nil {
			return nil, errors.Wrap(err, "could not generate seed")
		}
		state.CurrentEpochSeed = seed[:]
	}
	return state, nil
}

// ProcessFinalUpdates performs the per-epoch housekeeping that always
// runs: it stores the active index root for the shuffling lookahead
// epoch, carries the running slashed balance and randao mix forward into
// the next epoch's ring buffer slots, and prunes attestations that can no
// longer affect an epoch transition. The randao copy-forward slot is
// keyed by LATEST_SLASHED_EXIT_LENGTH for both buffers; other
// implementations index the same way, so this must not be changed.
//
// Spec pseudocode definition:
//   Set state.latest_active_index_roots[(next_epoch + ACTIVATION_EXIT_DELAY) %
//     LATEST_ACTIVE_INDEX_ROOTS_LENGTH] =
//     hash_tree_root(get_active_validator_indices(state, next_epoch + ACTIVATION_EXIT_DELAY))
//   Set state.latest_slashed_balances[next_epoch % LATEST_SLASHED_EXIT_LENGTH] =
//     state.latest_slashed_balances[current_epoch % LATEST_SLASHED_EXIT_LENGTH]
//   Set state.latest_randao_mixes[next_epoch % LATEST_SLASHED_EXIT_LENGTH] =
//     get_randao_mix(state, current_epoch)
//   Remove any attestation in state.latest_attestations such that
//     slot_to_epoch(attestation.data.slot) < current_epoch
func ProcessFinalUpdates(
	ctx context.Context,
	state *types.BeaconState) (*types.BeaconState, error) {

	_, span := trace.StartSpan(ctx, "epoch.ProcessFinalUpdates")
	defer span.End()

	state = state.Copy()
	currentEpoch := helpers.CurrentEpoch(state)
	nextEpoch := helpers.NextEpoch(state)

	indexRootEpoch := nextEpoch + params.BeaconConfig().ActivationExitDelay
	activeIndices := helpers.ActiveValidatorIndices(state.ValidatorRegistry, indexRootEpoch)
	indexRoot := activeIndexRoot(activeIndices)
	indexRootSlot := indexRootEpoch % params.BeaconConfig().LatestActiveIndexRootsLength
	state.LatestActiveIndexRoots[indexRootSlot] = indexRoot[:]

	slashedExitLength := params.BeaconConfig().LatestSlashedExitLength
	state.LatestSlashedBalances[nextEpoch%slashedExitLength] =
		state.LatestSlashedBalances[currentEpoch%slashedExitLength]

	randaoMix, err := helpers.RandaoMix(state, currentEpoch)
	if err != nil {
		return nil, errors.Wrap(err, "could not get randao mix")
	}
	state.LatestRandaoMixes[nextEpoch%slashedExitLength] = bytesutil.SafeCopyBytes(randaoMix)

	var remaining []*types.PendingAttestation
	for _, attestation := range state.LatestAttestations {
		if helpers.SlotToEpoch(attestation.Data.Slot) >= currentEpoch {
			remaining = append(remaining, attestation)
		}
	}
	prunedAttestationsCounter.Add(float64(len(state.LatestAttestations) - len(remaining)))
	state.LatestAttestations = remaining

	return state, nil
}

// activeIndexRoot hashes the concatenation of the active validator
// indices, each encoded as a big endian 32 byte value.
func activeIndexRoot(activeIndices []uint64) [32]byte {
	indexBytes := make([]byte, 0, len(activeIndices)*32)
	for _, index := range activeIndices {
		padded := make([]byte, 32)
		binary.BigEndian.PutUint64(padded[24:], index)
		indexBytes = append(indexBytes, padded...)
	}
	return hashutil.Hash(indexBytes)
}
