// Package types defines the beacon chain's core state containers. All of
// them are plain value types: a transition never mutates an input container,
// it deep-copies the state first and returns the modified copy. The field
// set and the ring-buffer indexing scheme are a wire-compatibility contract
// with other client implementations and must not be reshaped.
package types

import (
	"github.com/prysmaticlabs/go-bitfield"
)

// Fork carries the current and previous fork version together with the epoch
// at which the current version activated.
type Fork struct {
	PreviousVersion uint64
	CurrentVersion  uint64
	Epoch           uint64
}

// ValidatorStatusFlags are the pending-operation flags carried on a
// validator record.
type ValidatorStatusFlags uint64

const (
	// StatusFlagInitiatedExit marks a validator that has requested to leave
	// the active set but has not been processed by a registry update yet.
	StatusFlagInitiatedExit ValidatorStatusFlags = 1 << iota
	// StatusFlagWithdrawable marks a validator whose balance may be withdrawn.
	StatusFlagWithdrawable
)

// Validator is a single registry entry. The activation/exit epoch pair
// determines the epochs in which the validator is part of the active set.
type Validator struct {
	Pubkey          []byte
	ActivationEpoch uint64
	ExitEpoch       uint64
	StatusFlags     ValidatorStatusFlags
}

// CrosslinkRecord is the latest crosslink of a shard: the last epoch the
// shard was crosslinked with the beacon chain and the shard block root that
// won that crosslink. Epoch is monotonic per shard.
type CrosslinkRecord struct {
	Epoch          uint64
	ShardBlockRoot []byte
}

// AttestationData is a validator vote for a shard block root. Two distinct
// AttestationData values are what the slashing predicates compare.
type AttestationData struct {
	Slot           uint64
	Shard          uint64
	ShardBlockRoot []byte
	JustifiedEpoch uint64
}

// PendingAttestation is an attestation accumulated in state until its target
// epoch has been fully processed.
type PendingAttestation struct {
	Data            *AttestationData
	AggregationBits bitfield.Bitlist
	InclusionSlot   uint64
}

// BeaconState is the full consensus state snapshot.
//
// The Latest* fields are fixed-size ring buffers indexed by value % length;
// reads outside the retained lookback window must fail rather than wrap into
// unrelated entries, which the helpers package range checks enforce.
type BeaconState struct {
	// Slot and fork versioning.
	Slot uint64
	Fork *Fork

	// Validator registry. ValidatorBalances is index-aligned with
	// ValidatorRegistry.
	ValidatorRegistry            []*Validator
	ValidatorBalances            []uint64
	ValidatorRegistryUpdateEpoch uint64

	// Randomness and committee shuffling bookkeeping.
	LatestRandaoMixes        [][]byte
	PreviousEpochStartShard  uint64
	CurrentEpochStartShard   uint64
	PreviousCalculationEpoch uint64
	CurrentCalculationEpoch  uint64
	PreviousEpochSeed        []byte
	CurrentEpochSeed         []byte

	// Justification and finality.
	PreviousJustifiedEpoch uint64
	JustifiedEpoch         uint64
	JustificationBitfield  uint64
	FinalizedEpoch         uint64

	// Recent state.
	LatestCrosslinks       []*CrosslinkRecord
	LatestBlockRoots       [][]byte
	LatestActiveIndexRoots [][]byte
	LatestSlashedBalances  []uint64
	LatestAttestations     []*PendingAttestation
}
