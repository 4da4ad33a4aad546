package helpers

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
)

// AttestationParticipants returns the validator indices out of the given
// committee that participated in an attestation, as marked in the
// attestation's aggregation bitlist. Bit i of the bitlist corresponds to
// committee[i].
//
// Spec pseudocode definition:
//   def get_attestation_participants(state: BeaconState,
//                                    attestation_data: AttestationData,
//                                    bitfield: bytes) -> List[ValidatorIndex]:
//     """
//     Returns the participant indices at for the ``attestation_data`` and ``bitfield``.
//     """
//     crosslink_committee = [committee for committee, shard in crosslink_committees if shard == attestation_data.shard][0]
//     return [index for i, index in enumerate(crosslink_committee) if get_bitfield_bit(bitfield, i) == 0b1]
func AttestationParticipants(committee []uint64, aggregationBits bitfield.Bitlist) ([]uint64, error) {
	if aggregationBits.Len() != uint64(len(committee)) {
		return nil, errors.Errorf(
			"wanted participants bitlist length %d, got: %d", len(committee), aggregationBits.Len())
	}
	participants := make([]uint64, 0, len(committee))
	for _, i := range aggregationBits.BitIndices() {
		participants = append(participants, committee[i])
	}
	return participants, nil
}
