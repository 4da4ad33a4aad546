package epoch

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/serenitylabs/serenity/beacon-chain/core/helpers"
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
	"github.com/serenitylabs/serenity/shared/params"
	"github.com/serenitylabs/serenity/shared/testutil/assert"
	"github.com/serenitylabs/serenity/shared/testutil/require"
)

// fakeAssigner returns a fixed committee assignment per slot. Slots with
// no entry have no committees.
type fakeAssigner struct {
	committees map[uint64][]*helpers.CrosslinkCommittee
}

func (f *fakeAssigner) CrosslinkCommitteesAtSlot(
	_ *types.BeaconState, slot uint64) ([]*helpers.CrosslinkCommittee, error) {
	return f.committees[slot], nil
}

func newEpochState(slot uint64, validatorCount int) *types.BeaconState {
	registry := make([]*types.Validator, validatorCount)
	balances := make([]uint64, validatorCount)
	for i := 0; i < validatorCount; i++ {
		registry[i] = &types.Validator{
			ActivationEpoch: params.BeaconConfig().GenesisEpoch,
			ExitEpoch:       params.BeaconConfig().FarFutureEpoch,
		}
		balances[i] = params.BeaconConfig().MaxDepositAmount
	}
	randaoMixes := make([][]byte, params.BeaconConfig().LatestRandaoMixesLength)
	for i := 0; i < len(randaoMixes); i++ {
		mix := make([]byte, 32)
		binary.LittleEndian.PutUint64(mix, uint64(i))
		randaoMixes[i] = mix
	}
	indexRoots := make([][]byte, params.BeaconConfig().LatestActiveIndexRootsLength)
	for i := 0; i < len(indexRoots); i++ {
		root := make([]byte, 32)
		binary.LittleEndian.PutUint64(root, uint64(i))
		indexRoots[i] = root
	}
	crosslinks := make([]*types.CrosslinkRecord, params.BeaconConfig().ShardCount)
	for i := 0; i < len(crosslinks); i++ {
		crosslinks[i] = &types.CrosslinkRecord{
			Epoch:          params.BeaconConfig().GenesisEpoch,
			ShardBlockRoot: make([]byte, 32),
		}
	}
	return &types.BeaconState{
		Slot:                   slot,
		ValidatorRegistry:      registry,
		ValidatorBalances:      balances,
		LatestRandaoMixes:      randaoMixes,
		LatestActiveIndexRoots: indexRoots,
		LatestCrosslinks:       crosslinks,
		LatestSlashedBalances:  make([]uint64, params.BeaconConfig().LatestSlashedExitLength),
		CurrentEpochSeed:       []byte{'s', 'e', 'e', 'd'},
	}
}

func TestCanProcessEpoch(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	tests := []struct {
		slot       uint64
		canProcess bool
	}{
		{slot: 0, canProcess: false},
		{slot: epochLength - 1, canProcess: true},
		{slot: epochLength, canProcess: false},
		{slot: 10*epochLength - 1, canProcess: true},
		{slot: 10*epochLength + 1, canProcess: false},
	}
	for _, tt := range tests {
		state := &types.BeaconState{Slot: tt.slot}
		if CanProcessEpoch(state) != tt.canProcess {
			t.Errorf("CanProcessEpoch(slot %d) wanted %v", tt.slot, tt.canProcess)
		}
	}
}

func TestProcessJustification_BothJustifiable(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	totalBalance := uint64(4) * params.BeaconConfig().MaxDepositAmount

	newState := ProcessJustification(context.Background(), state, totalBalance, totalBalance)

	assert.Equal(t, uint64(0x3), newState.JustificationBitfield)
	assert.Equal(t, uint64(3), newState.JustifiedEpoch)
}

func TestProcessJustification_PreviousOnly(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	totalBalance := uint64(4) * params.BeaconConfig().MaxDepositAmount

	newState := ProcessJustification(context.Background(), state, 0, totalBalance)

	assert.Equal(t, uint64(0x2), newState.JustificationBitfield)
	assert.Equal(t, uint64(2), newState.JustifiedEpoch)
}

func TestProcessJustification_NoneJustifiable(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	state.JustificationBitfield = 0x5
	state.JustifiedEpoch = 1

	newState := ProcessJustification(context.Background(), state, 0, 0)

	assert.Equal(t, uint64(0xa), newState.JustificationBitfield)
	assert.Equal(t, uint64(1), newState.JustifiedEpoch)
}

func TestProcessJustification_BitfieldShiftInvariant(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(5*epochLength, 4)
	state.JustificationBitfield = 0x29
	totalBalance := uint64(4) * params.BeaconConfig().MaxDepositAmount

	newState := ProcessJustification(context.Background(), state, totalBalance, 0)

	shiftedIn := newState.JustificationBitfield ^ (state.JustificationBitfield << 1)
	if shiftedIn > 0x3 {
		t.Errorf("bitfield gained bits beyond the shifted-in pair: %#x", shiftedIn)
	}
	assert.Equal(t, (state.JustificationBitfield<<1)|1, newState.JustificationBitfield)
}

func TestProcessJustification_ReadBeforeWrite(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	state.JustifiedEpoch = 1
	state.PreviousJustifiedEpoch = 0
	totalBalance := uint64(4) * params.BeaconConfig().MaxDepositAmount

	newState := ProcessJustification(context.Background(), state, totalBalance, totalBalance)

	// The old justified epoch must land in previous_justified_epoch.
	assert.Equal(t, uint64(1), newState.PreviousJustifiedEpoch)
	assert.Equal(t, uint64(3), newState.JustifiedEpoch)
}

func TestProcessJustification_FinalityRule4(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	// The previous epoch was already justified; both boundaries gather a
	// supermajority this round, so the low bits become 0b11.
	state.JustifiedEpoch = 2
	state.FinalizedEpoch = 0
	totalBalance := uint64(4) * params.BeaconConfig().MaxDepositAmount

	newState := ProcessJustification(context.Background(), state, totalBalance, totalBalance)

	assert.Equal(t, uint64(2), newState.FinalizedEpoch)
}

func TestFinalizedEpoch_Rules(t *testing.T) {
	tests := []struct {
		name            string
		bitfield        uint64
		prevJustified   uint64
		justified       uint64
		finalized       uint64
		prevEpoch       uint64
		wantedFinalized uint64
	}{
		{
			name:     "rule 4",
			bitfield: 0x3, prevJustified: 0, justified: 9, finalized: 1, prevEpoch: 9,
			wantedFinalized: 9,
		},
		{
			name:     "rule 3",
			bitfield: 0x7, prevJustified: 0, justified: 8, finalized: 1, prevEpoch: 9,
			wantedFinalized: 8,
		},
		{
			name:     "rule 2",
			bitfield: 0x6, prevJustified: 8, justified: 0, finalized: 1, prevEpoch: 9,
			wantedFinalized: 8,
		},
		{
			name:     "rule 1",
			bitfield: 0xe, prevJustified: 7, justified: 0, finalized: 1, prevEpoch: 9,
			wantedFinalized: 7,
		},
		{
			name:     "no match",
			bitfield: 0x1, prevJustified: 5, justified: 5, finalized: 1, prevEpoch: 9,
			wantedFinalized: 1,
		},
		{
			name:     "rule 4 beats rule 2",
			bitfield: 0x7, prevJustified: 8, justified: 9, finalized: 1, prevEpoch: 9,
			wantedFinalized: 9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := finalizedEpoch(tt.bitfield, tt.prevJustified, tt.justified, tt.finalized, tt.prevEpoch)
			assert.Equal(t, tt.wantedFinalized, got)
		})
	}
}

func TestProcessJustification_MonotonicFinality(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	totalBalance := uint64(4) * params.BeaconConfig().MaxDepositAmount
	balances := []struct{ current, prev uint64 }{
		{totalBalance, totalBalance},
		{0, totalBalance},
		{totalBalance, 0},
		{0, 0},
	}
	for _, b := range balances {
		state := newEpochState(6*epochLength, 4)
		state.FinalizedEpoch = 4
		state.JustifiedEpoch = 5
		state.PreviousJustifiedEpoch = 4
		state.JustificationBitfield = 0x3

		newState := ProcessJustification(context.Background(), state, b.current, b.prev)
		if newState.FinalizedEpoch < state.FinalizedEpoch {
			t.Errorf("finalized epoch decreased from %d to %d",
				state.FinalizedEpoch, newState.FinalizedEpoch)
		}
	}
}

func TestProcessJustification_DoesNotMutateInput(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	totalBalance := uint64(4) * params.BeaconConfig().MaxDepositAmount

	_ = ProcessJustification(context.Background(), state, totalBalance, totalBalance)

	assert.Equal(t, uint64(0), state.JustificationBitfield)
	assert.Equal(t, uint64(0), state.JustifiedEpoch)
}

func TestProcessCrosslinks_FormsCrosslink(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	winner := []byte{'w'}
	state.LatestAttestations = []*types.PendingAttestation{
		pendingAttestation(3*epochLength, 5, winner, 0, 1, 2),
	}
	assigner := &fakeAssigner{committees: map[uint64][]*helpers.CrosslinkCommittee{
		3 * epochLength: {
			{Committee: []uint64{0, 1, 2, 3}, Shard: 5},
		},
	}}

	newState, err := ProcessCrosslinks(context.Background(), state, assigner)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), newState.LatestCrosslinks[5].Epoch)
	assert.DeepEqual(t, winner, newState.LatestCrosslinks[5].ShardBlockRoot)
}

func TestProcessCrosslinks_ZeroBalanceCommittee(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 3)
	// A fully slashed-out committee still crosslinks: with zero balance the
	// 2/3 threshold of zero is trivially met, and the attested root must be
	// adopted rather than an empty one.
	state.ValidatorBalances = []uint64{0, 0, 0}
	winner := []byte{'w'}
	att := pendingAttestation(3*epochLength, 5, winner)
	att.AggregationBits = bitfield.NewBitlist(3)
	att.AggregationBits.SetBitAt(0, true)
	state.LatestAttestations = []*types.PendingAttestation{att}
	assigner := &fakeAssigner{committees: map[uint64][]*helpers.CrosslinkCommittee{
		3 * epochLength: {
			{Committee: []uint64{0, 1, 2}, Shard: 5},
		},
	}}

	newState, err := ProcessCrosslinks(context.Background(), state, assigner)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), newState.LatestCrosslinks[5].Epoch)
	assert.DeepEqual(t, winner, newState.LatestCrosslinks[5].ShardBlockRoot)
}

func TestProcessCrosslinks_BelowThreshold(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 3)
	// Committee total balance 300, the winning root gathers 150 which is
	// short of the 200 supermajority threshold.
	state.ValidatorBalances = []uint64{150, 75, 75}
	att := pendingAttestation(3*epochLength, 5, []byte{'w'})
	att.AggregationBits = bitfield.NewBitlist(3)
	att.AggregationBits.SetBitAt(0, true)
	state.LatestAttestations = []*types.PendingAttestation{att}
	priorRoot := bytes.Repeat([]byte{0}, 32)
	assigner := &fakeAssigner{committees: map[uint64][]*helpers.CrosslinkCommittee{
		3 * epochLength: {
			{Committee: []uint64{0, 1, 2}, Shard: 5},
		},
	}}

	newState, err := ProcessCrosslinks(context.Background(), state, assigner)
	require.NoError(t, err)
	assert.Equal(t, params.BeaconConfig().GenesisEpoch, newState.LatestCrosslinks[5].Epoch)
	assert.DeepEqual(t, priorRoot, newState.LatestCrosslinks[5].ShardBlockRoot)
}

func TestProcessCrosslinks_NoAttestations(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	assigner := &fakeAssigner{committees: map[uint64][]*helpers.CrosslinkCommittee{
		3 * epochLength: {
			{Committee: []uint64{0, 1, 2, 3}, Shard: 5},
		},
	}}

	newState, err := ProcessCrosslinks(context.Background(), state, assigner)
	require.NoError(t, err)
	assert.Equal(t, params.BeaconConfig().GenesisEpoch, newState.LatestCrosslinks[5].Epoch)
}

func TestProcessCrosslinks_MonotonicEpochs(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	for _, crosslink := range state.LatestCrosslinks {
		crosslink.Epoch = 2
	}
	state.LatestAttestations = []*types.PendingAttestation{
		pendingAttestation(3*epochLength, 5, []byte{'w'}, 0, 1, 2),
	}
	assigner := &fakeAssigner{committees: map[uint64][]*helpers.CrosslinkCommittee{
		3 * epochLength: {
			{Committee: []uint64{0, 1, 2, 3}, Shard: 5},
		},
	}}

	newState, err := ProcessCrosslinks(context.Background(), state, assigner)
	require.NoError(t, err)
	for shard, crosslink := range newState.LatestCrosslinks {
		if crosslink.Epoch != 2 && crosslink.Epoch != 3 {
			t.Errorf("shard %d crosslink epoch went to an arbitrary value: %d", shard, crosslink.Epoch)
		}
	}
}

func TestProcessValidatorRegistry_SnapshotsFirst(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	state.CurrentCalculationEpoch = 3
	state.CurrentEpochStartShard = 7
	state.CurrentEpochSeed = []byte{'c', 'u', 'r'}
	// Not due and not on the power-of-two cadence.
	state.ValidatorRegistryUpdateEpoch = 0
	state.FinalizedEpoch = 0

	newState, err := ProcessValidatorRegistry(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), newState.PreviousCalculationEpoch)
	assert.Equal(t, uint64(7), newState.PreviousEpochStartShard)
	assert.DeepEqual(t, []byte{'c', 'u', 'r'}, newState.PreviousEpochSeed)
}

func TestProcessValidatorRegistry_UpdatesWhenDue(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(6*epochLength, 4)
	state.CurrentCalculationEpoch = 6
	state.CurrentEpochStartShard = 0
	state.ValidatorRegistryUpdateEpoch = 4
	state.FinalizedEpoch = 5
	for _, crosslink := range state.LatestCrosslinks {
		crosslink.Epoch = 5
	}

	newState, err := ProcessValidatorRegistry(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), newState.CurrentCalculationEpoch)
	wantedStartShard := helpers.CurrentEpochCommitteeCount(state) % params.BeaconConfig().ShardCount
	assert.Equal(t, wantedStartShard, newState.CurrentEpochStartShard)
	assert.Equal(t, uint64(6), newState.ValidatorRegistryUpdateEpoch)
	assert.DeepNotEqual(t, state.CurrentEpochSeed, newState.CurrentEpochSeed)
}

func TestProcessValidatorRegistry_NotDueStaleCrosslinks(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(6*epochLength, 4)
	state.ValidatorRegistryUpdateEpoch = 4
	state.FinalizedEpoch = 5
	// Crosslinks not newer than the last registry update block rotation.
	for _, crosslink := range state.LatestCrosslinks {
		crosslink.Epoch = 4
	}

	newState, err := ProcessValidatorRegistry(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), newState.ValidatorRegistryUpdateEpoch)
}

func TestProcessValidatorRegistry_PowerOfTwoCadence(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	tests := []struct {
		epochsSinceUpdate uint64
		refreshed         bool
	}{
		{epochsSinceUpdate: 1, refreshed: true},
		{epochsSinceUpdate: 2, refreshed: true},
		{epochsSinceUpdate: 3, refreshed: false},
		{epochsSinceUpdate: 4, refreshed: true},
		{epochsSinceUpdate: 5, refreshed: false},
	}
	for _, tt := range tests {
		currentEpoch := uint64(8)
		state := newEpochState(currentEpoch*epochLength, 4)
		state.CurrentCalculationEpoch = currentEpoch
		state.ValidatorRegistryUpdateEpoch = currentEpoch - tt.epochsSinceUpdate
		state.FinalizedEpoch = 0

		newState, err := ProcessValidatorRegistry(context.Background(), state)
		require.NoError(t, err)
		if tt.refreshed {
			assert.Equal(t, currentEpoch+1, newState.CurrentCalculationEpoch,
				"epochs since update: %d", tt.epochsSinceUpdate)
			assert.DeepNotEqual(t, state.CurrentEpochSeed, newState.CurrentEpochSeed,
				"epochs since update: %d", tt.epochsSinceUpdate)
		} else {
			assert.Equal(t, currentEpoch, newState.CurrentCalculationEpoch,
				"epochs since update: %d", tt.epochsSinceUpdate)
			assert.DeepEqual(t, state.CurrentEpochSeed, newState.CurrentEpochSeed)
		}
	}
}

func TestProcessFinalUpdates_IndexRootAndCopyForwards(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	delay := params.BeaconConfig().ActivationExitDelay
	slashedExitLength := params.BeaconConfig().LatestSlashedExitLength
	currentEpoch := uint64(100)
	state := newEpochState(currentEpoch*epochLength, 4)
	state.LatestSlashedBalances[currentEpoch%slashedExitLength] = 77

	newState, err := ProcessFinalUpdates(context.Background(), state)
	require.NoError(t, err)

	indexRootSlot := (currentEpoch + 1 + delay) % params.BeaconConfig().LatestActiveIndexRootsLength
	assert.DeepNotEqual(t, state.LatestActiveIndexRoots[indexRootSlot],
		newState.LatestActiveIndexRoots[indexRootSlot])

	assert.Equal(t, uint64(77), newState.LatestSlashedBalances[(currentEpoch+1)%slashedExitLength])

	currentMix := state.LatestRandaoMixes[currentEpoch%params.BeaconConfig().LatestRandaoMixesLength]
	assert.DeepEqual(t, currentMix, newState.LatestRandaoMixes[(currentEpoch+1)%slashedExitLength])
}

// The randao copy-forward slot is indexed by LATEST_SLASHED_EXIT_LENGTH
// rather than the randao buffer's own length. Other implementations do
// the same, so the indexing must hold even when the two lengths differ.
func TestProcessFinalUpdates_RandaoSlotKeyedBySlashedLength(t *testing.T) {
	cfg := params.BeaconConfig().Copy()
	cfg.LatestSlashedExitLength = 64
	defer params.OverrideBeaconConfig(params.BeaconConfig())
	params.OverrideBeaconConfig(cfg)

	epochLength := params.BeaconConfig().EpochLength
	currentEpoch := uint64(100)
	state := newEpochState(currentEpoch*epochLength, 4)

	newState, err := ProcessFinalUpdates(context.Background(), state)
	require.NoError(t, err)

	// next_epoch % 64 = 37, distinct from next_epoch % 8192 = 101.
	currentMix := state.LatestRandaoMixes[currentEpoch%params.BeaconConfig().LatestRandaoMixesLength]
	assert.DeepEqual(t, currentMix, newState.LatestRandaoMixes[101%64])
	assert.DeepEqual(t, state.LatestRandaoMixes[101], newState.LatestRandaoMixes[101])
}

func TestProcessFinalUpdates_PrunesStaleAttestations(t *testing.T) {
	epochLength := params.BeaconConfig().EpochLength
	state := newEpochState(3*epochLength, 4)
	state.LatestAttestations = []*types.PendingAttestation{
		pendingAttestation(1*epochLength, 0, []byte{'a'}),
		pendingAttestation(2*epochLength, 0, []byte{'b'}),
		pendingAttestation(3*epochLength, 0, []byte{'c'}),
	}

	newState, err := ProcessFinalUpdates(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, 1, len(newState.LatestAttestations))
	assert.DeepEqual(t, []byte{'c'}, newState.LatestAttestations[0].Data.ShardBlockRoot)
}
