package helpers

import (
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
)

// ForkVersion returns the fork version of the given epoch number.
//
// Spec pseudocode definition:
//   def get_fork_version(fork: Fork, epoch: EpochNumber) -> int:
//     """
//     Return the fork version of the given ``epoch``.
//     """
//     if epoch < fork.epoch:
//         return fork.previous_version
//     else:
//         return fork.current_version
func ForkVersion(fork *types.Fork, epoch uint64) uint64 {
	if epoch < fork.Epoch {
		return fork.PreviousVersion
	}
	return fork.CurrentVersion
}

// DomainVersion returns the domain version tag used for signing messages:
// the fork version in the upper 32 bits, the domain type in the lower 32.
// This only namespaces signatures; no signature verification happens here.
//
// Spec pseudocode definition:
//   def get_domain(fork: Fork, epoch: EpochNumber, domain_type: int) -> int:
//     """
//     Get the domain number that represents the fork meta and signature domain.
//     """
//     fork_version = get_fork_version(fork, epoch)
//     return fork_version * 2**32 + domain_type
func DomainVersion(fork *types.Fork, epoch uint64, domainType uint64) uint64 {
	return ForkVersion(fork, epoch)*(1<<32) + domainType
}
