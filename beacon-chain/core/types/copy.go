package types

import (
	"github.com/prysmaticlabs/go-bitfield"

	"github.com/serenitylabs/serenity/shared/bytesutil"
)

// Copy returns a deep copy of the fork record.
func (f *Fork) Copy() *Fork {
	if f == nil {
		return nil
	}
	return &Fork{
		PreviousVersion: f.PreviousVersion,
		CurrentVersion:  f.CurrentVersion,
		Epoch:           f.Epoch,
	}
}

// Copy returns a deep copy of the validator record.
func (v *Validator) Copy() *Validator {
	if v == nil {
		return nil
	}
	return &Validator{
		Pubkey:          bytesutil.SafeCopyBytes(v.Pubkey),
		ActivationEpoch: v.ActivationEpoch,
		ExitEpoch:       v.ExitEpoch,
		StatusFlags:     v.StatusFlags,
	}
}

// Copy returns a deep copy of the crosslink record.
func (c *CrosslinkRecord) Copy() *CrosslinkRecord {
	if c == nil {
		return nil
	}
	return &CrosslinkRecord{
		Epoch:          c.Epoch,
		ShardBlockRoot: bytesutil.SafeCopyBytes(c.ShardBlockRoot),
	}
}

// Copy returns a deep copy of the attestation data.
func (a *AttestationData) Copy() *AttestationData {
	if a == nil {
		return nil
	}
	return &AttestationData{
		Slot:           a.Slot,
		Shard:          a.Shard,
		ShardBlockRoot: bytesutil.SafeCopyBytes(a.ShardBlockRoot),
		JustifiedEpoch: a.JustifiedEpoch,
	}
}

// Copy returns a deep copy of the pending attestation.
func (p *PendingAttestation) Copy() *PendingAttestation {
	if p == nil {
		return nil
	}
	return &PendingAttestation{
		Data:            p.Data.Copy(),
		AggregationBits: bitfield.Bitlist(bytesutil.SafeCopyBytes(p.AggregationBits)),
		InclusionSlot:   p.InclusionSlot,
	}
}

// Copy returns a deep copy of the beacon state. Transition functions copy
// the state up front so the caller's snapshot is never written to, even when
// a transition fails partway through.
func (b *BeaconState) Copy() *BeaconState {
	if b == nil {
		return nil
	}
	newState := &BeaconState{
		Slot: b.Slot,
		Fork: b.Fork.Copy(),

		ValidatorRegistryUpdateEpoch: b.ValidatorRegistryUpdateEpoch,

		LatestRandaoMixes:        bytesutil.SafeCopy2DBytes(b.LatestRandaoMixes),
		PreviousEpochStartShard:  b.PreviousEpochStartShard,
		CurrentEpochStartShard:   b.CurrentEpochStartShard,
		PreviousCalculationEpoch: b.PreviousCalculationEpoch,
		CurrentCalculationEpoch:  b.CurrentCalculationEpoch,
		PreviousEpochSeed:        bytesutil.SafeCopyBytes(b.PreviousEpochSeed),
		CurrentEpochSeed:         bytesutil.SafeCopyBytes(b.CurrentEpochSeed),

		PreviousJustifiedEpoch: b.PreviousJustifiedEpoch,
		JustifiedEpoch:         b.JustifiedEpoch,
		JustificationBitfield:  b.JustificationBitfield,
		FinalizedEpoch:         b.FinalizedEpoch,

		LatestBlockRoots:       bytesutil.SafeCopy2DBytes(b.LatestBlockRoots),
		LatestActiveIndexRoots: bytesutil.SafeCopy2DBytes(b.LatestActiveIndexRoots),
	}
	if b.ValidatorRegistry != nil {
		newState.ValidatorRegistry = make([]*Validator, len(b.ValidatorRegistry))
		for i, v := range b.ValidatorRegistry {
			newState.ValidatorRegistry[i] = v.Copy()
		}
	}
	if b.ValidatorBalances != nil {
		newState.ValidatorBalances = make([]uint64, len(b.ValidatorBalances))
		copy(newState.ValidatorBalances, b.ValidatorBalances)
	}
	if b.LatestCrosslinks != nil {
		newState.LatestCrosslinks = make([]*CrosslinkRecord, len(b.LatestCrosslinks))
		for i, c := range b.LatestCrosslinks {
			newState.LatestCrosslinks[i] = c.Copy()
		}
	}
	if b.LatestSlashedBalances != nil {
		newState.LatestSlashedBalances = make([]uint64, len(b.LatestSlashedBalances))
		copy(newState.LatestSlashedBalances, b.LatestSlashedBalances)
	}
	if b.LatestAttestations != nil {
		newState.LatestAttestations = make([]*PendingAttestation, len(b.LatestAttestations))
		for i, a := range b.LatestAttestations {
			newState.LatestAttestations[i] = a.Copy()
		}
	}
	return newState
}
