package epoch

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/serenitylabs/serenity/beacon-chain/core/helpers"
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
	"github.com/serenitylabs/serenity/shared/bytesutil"
	"github.com/serenitylabs/serenity/shared/sliceutil"
)

// ErrNoWinningRoot is returned when no attestation in the candidate set
// votes for the given shard. Callers skip the crosslink update for the
// shard; the error never escapes ProcessCrosslinks.
var ErrNoWinningRoot = errors.New("no winning root found for shard")

// CurrentAttestations returns the pending attestations from the current
// epoch.
//
// Spec pseudocode definition:
//   return [a for a in state.latest_attestations
//           if current_epoch == slot_to_epoch(a.data.slot)]
func CurrentAttestations(state *types.BeaconState) []*types.PendingAttestation {
	currentEpoch := helpers.CurrentEpoch(state)

	var currentEpochAttestations []*types.PendingAttestation
	for _, attestation := range state.LatestAttestations {
		if currentEpoch == helpers.SlotToEpoch(attestation.Data.Slot) {
			currentEpochAttestations = append(currentEpochAttestations, attestation)
		}
	}
	return currentEpochAttestations
}

// PrevAttestations returns the pending attestations from the previous
// epoch.
//
// Spec pseudocode definition:
//   return [a for a in state.latest_attestations
//           if previous_epoch == slot_to_epoch(a.data.slot)]
func PrevAttestations(state *types.BeaconState) []*types.PendingAttestation {
	prevEpoch := helpers.PrevEpoch(state)

	var prevEpochAttestations []*types.PendingAttestation
	for _, attestation := range state.LatestAttestations {
		if prevEpoch == helpers.SlotToEpoch(attestation.Data.Slot) {
			prevEpochAttestations = append(prevEpochAttestations, attestation)
		}
	}
	return prevEpochAttestations
}

// AttestingValidatorIndices returns the union of validator indices out of
// the committee that attested to the given shard block root.
//
// Spec pseudocode definition:
//   Let attesting_validator_indices(crosslink_committee, shard_block_root)
//   be the union of the validator index sets given by
//   [get_attestation_participants(state, a.data, a.aggregation_bitfield)
//   for a in current_epoch_attestations + previous_epoch_attestations
//   if a.data.shard == crosslink_committee.shard and a.data.shard_block_root == shard_block_root]
func AttestingValidatorIndices(
	committee *helpers.CrosslinkCommittee,
	shardBlockRoot []byte,
	attestations []*types.PendingAttestation) ([]uint64, error) {

	var validatorIndices []uint64
	for _, attestation := range attestations {
		if attestation.Data.Shard == committee.Shard &&
			bytes.Equal(attestation.Data.ShardBlockRoot, shardBlockRoot) {
			participants, err := helpers.AttestationParticipants(
				committee.Committee, attestation.AggregationBits)
			if err != nil {
				return nil, errors.Wrap(err, "could not get attestation participants")
			}
			validatorIndices = sliceutil.UnionUint64(validatorIndices, participants)
		}
	}
	return validatorIndices, nil
}

// TotalAttestingBalance returns the total balance at stake of the
// validators that attested to the winning root.
//
// Spec pseudocode definition:
//   Let total_attesting_balance(crosslink_committee) =
//   sum([get_effective_balance(state, i) for i in attesting_validators(crosslink_committee)])
func TotalAttestingBalance(
	state *types.BeaconState,
	committee *helpers.CrosslinkCommittee,
	shardBlockRoot []byte,
	attestations []*types.PendingAttestation) (uint64, error) {

	indices, err := AttestingValidatorIndices(committee, shardBlockRoot, attestations)
	if err != nil {
		return 0, errors.Wrap(err, "could not get attesting validator indices")
	}
	return helpers.TotalBalance(state.ValidatorBalances, indices), nil
}

// SinceFinality calculates and returns how many epochs it has been since
// the last finalized epoch.
//
// Spec pseudocode definition:
//   epochs_since_finality = next_epoch - state.finalized_epoch
func SinceFinality(state *types.BeaconState) uint64 {
	return helpers.NextEpoch(state) - state.FinalizedEpoch
}

// winningRoot returns the shard block root with the most combined validator
// effective balance, along with that balance. Ties are broken by favoring
// the lower shard block root value. ErrNoWinningRoot is returned when no
// attestation in the set votes for the committee's shard.
//
// Spec pseudocode definition:
//   Let winning_root(crosslink_committee) be equal to the value of shard_block_root
//   such that get_total_balance(state, attesting_validator_indices(crosslink_committee, shard_block_root))
//   is maximized (ties broken by favoring lexicographically smallest shard_block_root).
func winningRoot(
	state *types.BeaconState,
	committee *helpers.CrosslinkCommittee,
	attestations []*types.PendingAttestation) ([]byte, uint64, error) {

	var winnerBalance uint64
	var winnerRoot []byte
	var candidateRoots [][]byte
	for _, attestation := range attestations {
		if attestation.Data.Shard == committee.Shard {
			candidateRoots = append(candidateRoots, attestation.Data.ShardBlockRoot)
		}
	}
	if len(candidateRoots) == 0 {
		return nil, 0, errors.Wrapf(ErrNoWinningRoot, "shard %d", committee.Shard)
	}

	for _, candidateRoot := range candidateRoots {
		rootBalance, err := TotalAttestingBalance(state, committee, candidateRoot, attestations)
		if err != nil {
			return nil, 0, errors.Wrap(err, "could not get total attesting balance")
		}
		if winnerRoot == nil || rootBalance > winnerBalance ||
			(rootBalance == winnerBalance && bytesutil.LowerThan(candidateRoot, winnerRoot)) {
			winnerBalance = rootBalance
			winnerRoot = candidateRoot
		}
	}
	return winnerRoot, winnerBalance, nil
}
