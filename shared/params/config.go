// Package params defines the static beacon chain protocol parameters and the
// accessors used across the runtime. The active configuration is constructed
// once at chain start and never mutated afterwards; tests may swap it with
// OverrideBeaconConfig.
package params

// BeaconChainConfig contains the protocol constants for the beacon chain.
type BeaconChainConfig struct {
	// Misc constants.
	ShardCount              uint64 `yaml:"SHARD_COUNT"`                // ShardCount is the number of shard chains.
	TargetCommitteeSize     uint64 `yaml:"TARGET_COMMITTEE_SIZE"`      // TargetCommitteeSize is the number of validators a committee aims for.
	MaxBalanceChurnQuotient uint64 `yaml:"MAX_BALANCE_CHURN_QUOTIENT"` // MaxBalanceChurnQuotient bounds the stake that can rotate per registry update.

	// Deposit parameters.
	MaxDepositAmount uint64 `yaml:"MAX_DEPOSIT_AMOUNT"` // MaxDepositAmount caps a validator's balance at stake, in Gwei.
	MinDepositAmount uint64 `yaml:"MIN_DEPOSIT_AMOUNT"` // MinDepositAmount is the minimal deposit accepted, in Gwei.

	// Initial values.
	GenesisSlot        uint64 `yaml:"GENESIS_SLOT"`         // GenesisSlot is the slot of the genesis block.
	GenesisEpoch       uint64 `yaml:"GENESIS_EPOCH"`        // GenesisEpoch is the epoch of the genesis slot.
	GenesisForkVersion uint64 `yaml:"GENESIS_FORK_VERSION"` // GenesisForkVersion is the fork version the chain starts with.
	GenesisStartShard  uint64 `yaml:"GENESIS_START_SHARD"`  // GenesisStartShard is the first shard crosslinked at genesis.
	FarFutureEpoch     uint64 `yaml:"FAR_FUTURE_EPOCH"`     // FarFutureEpoch marks a validator with no scheduled activation or exit.

	// Time parameters.
	EpochLength         uint64 `yaml:"EPOCH_LENGTH"`          // EpochLength is the number of slots per epoch.
	MinSeedLookahead    uint64 `yaml:"MIN_SEED_LOOKAHEAD"`    // MinSeedLookahead is how far back the shuffling seed draws its randao mix.
	ActivationExitDelay uint64 `yaml:"ACTIVATION_EXIT_DELAY"` // ActivationExitDelay is the delay before activations and exits take effect.

	// State list lengths. These size the ring buffers carried in the state;
	// every read is indexed value % length and bounded by the lookback window.
	LatestBlockRootsLength       uint64 `yaml:"LATEST_BLOCK_ROOTS_LENGTH"`
	LatestRandaoMixesLength      uint64 `yaml:"LATEST_RANDAO_MIXES_LENGTH"`
	LatestActiveIndexRootsLength uint64 `yaml:"LATEST_ACTIVE_INDEX_ROOTS_LENGTH"`
	LatestSlashedExitLength      uint64 `yaml:"LATEST_SLASHED_EXIT_LENGTH"`

	// Signature domain types.
	DomainDeposit     uint64 `yaml:"DOMAIN_DEPOSIT"`
	DomainAttestation uint64 `yaml:"DOMAIN_ATTESTATION"`
	DomainProposal    uint64 `yaml:"DOMAIN_PROPOSAL"`
	DomainExit        uint64 `yaml:"DOMAIN_EXIT"`
	DomainRandao      uint64 `yaml:"DOMAIN_RANDAO"`
}

var defaultBeaconConfig = &BeaconChainConfig{
	ShardCount:              1024,
	TargetCommitteeSize:     128,
	MaxBalanceChurnQuotient: 32,

	MaxDepositAmount: 32 * 1e9,
	MinDepositAmount: 1 * 1e9,

	GenesisSlot:        0,
	GenesisEpoch:       0,
	GenesisForkVersion: 0,
	GenesisStartShard:  0,
	FarFutureEpoch:     1<<64 - 1,

	EpochLength:         64,
	MinSeedLookahead:    1,
	ActivationExitDelay: 4,

	LatestBlockRootsLength:       8192,
	LatestRandaoMixesLength:      8192,
	LatestActiveIndexRootsLength: 8192,
	LatestSlashedExitLength:      8192,

	DomainDeposit:     0,
	DomainAttestation: 1,
	DomainProposal:    2,
	DomainExit:        3,
	DomainRandao:      4,
}

var demoBeaconConfig = &BeaconChainConfig{
	ShardCount:              8,
	TargetCommitteeSize:     4,
	MaxBalanceChurnQuotient: 32,

	MaxDepositAmount: 32 * 1e9,
	MinDepositAmount: 1 * 1e9,

	GenesisSlot:        0,
	GenesisEpoch:       0,
	GenesisForkVersion: 0,
	GenesisStartShard:  0,
	FarFutureEpoch:     1<<64 - 1,

	EpochLength:         8,
	MinSeedLookahead:    1,
	ActivationExitDelay: 4,

	LatestBlockRootsLength:       64,
	LatestRandaoMixesLength:      64,
	LatestActiveIndexRootsLength: 64,
	LatestSlashedExitLength:      64,

	DomainDeposit:     0,
	DomainAttestation: 1,
	DomainProposal:    2,
	DomainExit:        3,
	DomainRandao:      4,
}

var beaconConfig = defaultBeaconConfig

// BeaconConfig retrieves the beacon chain config.
func BeaconConfig() *BeaconChainConfig {
	return beaconConfig
}

// DemoBeaconConfig retrieves a smaller config for local demo and testing.
func DemoBeaconConfig() *BeaconChainConfig {
	return demoBeaconConfig
}

// Copy returns a copy of the config object.
func (c *BeaconChainConfig) Copy() *BeaconChainConfig {
	config := *c
	return &config
}

// OverrideBeaconConfig by replacing the config. The preferred pattern is to
// call BeaconConfig(), change the specific parameters, and put the modified
// config back with this function. Any subsequent calls to params.BeaconConfig()
// will return this new configuration.
func OverrideBeaconConfig(c *BeaconChainConfig) {
	beaconConfig = c
}

// UseDemoBeaconConfig for beacon chain services.
func UseDemoBeaconConfig() {
	beaconConfig = DemoBeaconConfig()
}
