// Package state implements the whole state transition
// function which consists of per epoch transitions.
// It also bootstraps the genesis beacon state for slot 0.
package state

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/serenitylabs/serenity/beacon-chain/core/epoch"
	"github.com/serenitylabs/serenity/beacon-chain/core/helpers"
	"github.com/serenitylabs/serenity/beacon-chain/core/types"
)

var log = logrus.WithField("prefix", "state")

// EpochInputs carries the externally aggregated data that one epoch
// transition consumes: the epoch boundary attesting balances computed by
// the attestation aggregation pipeline, and the committee assignments
// produced by the shuffling service.
type EpochInputs struct {
	CurrentEpochBoundaryAttestingBalance uint64
	PrevEpochBoundaryAttestingBalance    uint64
	Committees                           helpers.CommitteeAssigner
}

// ProcessEpoch describes the per epoch operations that are performed on
// the beacon state. It is run at the last slot of every epoch and applies
// the four transitions in their required order: justification,
// crosslinks, validator registry, final updates. Any error aborts the
// whole transition; the input state is never mutated, so the caller's
// snapshot stays current on failure.
//
// Spec pseudocode definition:
//   process_justification(state)
//   process_crosslinks(state)
//   process_validator_registry(state)
//   process_final_updates(state)
func ProcessEpoch(ctx context.Context, state *types.BeaconState, inputs *EpochInputs) (*types.BeaconState, error) {
	ctx, span := trace.StartSpan(ctx, "state.ProcessEpoch")
	defer span.End()

	if !epoch.CanProcessEpoch(state) {
		return nil, errors.Errorf("epoch can only be processed at the last slot of an epoch, got slot %d", state.Slot)
	}

	state = epoch.ProcessJustification(
		ctx,
		state,
		inputs.CurrentEpochBoundaryAttestingBalance,
		inputs.PrevEpochBoundaryAttestingBalance,
	)

	state, err := epoch.ProcessCrosslinks(ctx, state, inputs.Committees)
	if err != nil {
		return nil, errors.Wrap(err, "could not process crosslinks")
	}

	state, err = epoch.ProcessValidatorRegistry(ctx, state)
	if err != nil {
		return nil, errors.Wrap(err, "could not process validator registry")
	}

	state, err = epoch.ProcessFinalUpdates(ctx, state)
	if err != nil {
		return nil, errors.Wrap(err, "could not process final updates")
	}

	log.WithFields(logrus.Fields{
		"epoch":          helpers.CurrentEpoch(state),
		"justifiedEpoch": state.JustifiedEpoch,
		"finalizedEpoch": state.FinalizedEpoch,
	}).Info("Processed epoch")

	return state, nil
}
