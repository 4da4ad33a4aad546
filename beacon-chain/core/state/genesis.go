package state

import (
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
	"github.com/serenitylabs/serenity/shared/params"
)

// GenesisBeaconState gets called when to proceed with the genesis beacon
// state. The registry and balances come from the processed genesis
// deposits; deposit handling itself happens upstream.
func GenesisBeaconState(
	genesisRegistry []*types.Validator,
	genesisBalances []uint64) *types.BeaconState {

	latestRandaoMixes := make([][]byte,
		params.BeaconConfig().LatestRandaoMixesLength)
	for i := 0; i < len(latestRandaoMixes); i++ {
		latestRandaoMixes[i] = make([]byte, 32)
	}

	latestActiveIndexRoots := make([][]byte,
		params.BeaconConfig().LatestActiveIndexRootsLength)
	for i := 0; i < len(latestActiveIndexRoots); i++ {
		latestActiveIndexRoots[i] = make([]byte, 32)
	}

	latestCrosslinks := make([]*types.CrosslinkRecord, params.BeaconConfig().ShardCount)
	for i := 0; i < len(latestCrosslinks); i++ {
		latestCrosslinks[i] = &types.CrosslinkRecord{
			Epoch:          params.BeaconConfig().GenesisEpoch,
			ShardBlockRoot: make([]byte, 32),
		}
	}

	latestBlockRoots := make([][]byte, params.BeaconConfig().LatestBlockRootsLength)
	for i := 0; i < len(latestBlockRoots); i++ {
		latestBlockRoots[i] = make([]byte, 32)
	}

	return &types.BeaconState{
		Slot: params.BeaconConfig().GenesisSlot,
		Fork: &types.Fork{
			PreviousVersion: params.BeaconConfig().GenesisForkVersion,
			CurrentVersion:  params.BeaconConfig().GenesisForkVersion,
			Epoch:           params.BeaconConfig().GenesisEpoch,
		},

		ValidatorRegistry:            genesisRegistry,
		ValidatorBalances:            genesisBalances,
		ValidatorRegistryUpdateEpoch: params.BeaconConfig().GenesisEpoch,

		LatestRandaoMixes:        latestRandaoMixes,
		PreviousEpochStartShard:  params.BeaconConfig().GenesisStartShard,
		CurrentEpochStartShard:   params.BeaconConfig().GenesisStartShard,
		PreviousCalculationEpoch: params.BeaconConfig().GenesisEpoch,
		CurrentCalculationEpoch:  params.BeaconConfig().GenesisEpoch,
		PreviousEpochSeed:        make([]byte, 32),
		CurrentEpochSeed:         make([]byte, 32),

		PreviousJustifiedEpoch: params.BeaconConfig().GenesisEpoch,
		JustifiedEpoch:         params.BeaconConfig().GenesisEpoch,
		JustificationBitfield:  0,
		FinalizedEpoch:         params.BeaconConfig().GenesisEpoch,

		LatestCrosslinks:       latestCrosslinks,
		LatestBlockRoots:       latestBlockRoots,
		LatestActiveIndexRoots: latestActiveIndexRoots,
		LatestSlashedBalances:  make([]uint64, params.BeaconConfig().LatestSlashedExitLength),
		LatestAttestations:     nil,
	}
}
