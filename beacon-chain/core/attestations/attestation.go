// Package attestations implements the slashing condition checks performed
// on pairs of attestation votes. The attestation pool decides which pairs
// to compare and what to do with an offender; this package only answers
// whether a given pair is slashable.
package attestations

import (
	"github.com/pkg/errors"

	"github.com/serenitylabs/serenity/beacon-chain/core/helpers"
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
)

// Key generates the hash tree root of an attestation data object. This is
// used for attestation table look up in the local pool.
func Key(att *types.AttestationData) ([32]byte, error) {
	root, err := att.HashTreeRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not hash attestation data")
	}
	return root, nil
}

// IsDoubleVote checks if both of the attestations have been used to vote for the same epoch.
//
// Spec pseudocode definition:
//   def is_double_vote(attestation_data_1: AttestationData,
//                      attestation_data_2: AttestationData) -> bool:
//     """
//     Assumes ``attestation_data_1`` is distinct from ``attestation_data_2``.
//     Returns True if the provided ``AttestationData`` are slashable
//     due to a 'double vote'.
//     """
//     target_epoch_1 = slot_to_epoch(attestation_data_1.slot)
//     target_epoch_2 = slot_to_epoch(attestation_data_2.slot)
//     return target_epoch_1 == target_epoch_2
func IsDoubleVote(attestation1 *types.AttestationData, attestation2 *types.AttestationData) bool {
	return helpers.SlotToEpoch(attestation1.Slot) == helpers.SlotToEpoch(attestation2.Slot)
}

// IsSurroundVote checks if the data provided by the attestations fulfill the
// conditions for a surround vote. Parameter order matters: this only checks
// that attestation1 surrounds attestation2, so the caller must test both
// orderings to detect surrounding in either direction.
//
// Spec pseudocode definition:
//   def is_surround_vote(attestation_data_1: AttestationData,
//                        attestation_data_2: AttestationData) -> bool:
//     """
//     Assumes ``attestation_data_1`` is distinct from ``attestation_data_2``.
//     Returns True if the provided ``AttestationData`` are slashable
//     due to a 'surround vote'.
//     """
//     source_epoch_1 = attestation_data_1.justified_epoch
//     source_epoch_2 = attestation_data_2.justified_epoch
//     target_epoch_1 = slot_to_epoch(attestation_data_1.slot)
//     target_epoch_2 = slot_to_epoch(attestation_data_2.slot)
//     return source_epoch_1 < source_epoch_2 and target_epoch_2 < target_epoch_1
func IsSurroundVote(attestation1 *types.AttestationData, attestation2 *types.AttestationData) bool {
	sourceEpoch1 := attestation1.JustifiedEpoch
	sourceEpoch2 := attestation2.JustifiedEpoch
	targetEpoch1 := helpers.SlotToEpoch(attestation1.Slot)
	targetEpoch2 := helpers.SlotToEpoch(attestation2.Slot)

	return sourceEpoch1 < sourceEpoch2 && targetEpoch2 < targetEpoch1
}
