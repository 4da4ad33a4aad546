package helpers

import (
	"github.com/pkg/errors"
)

// Range errors returned by the state accessors below. They signal the caller
// requested data outside the window the protocol retains; there is nothing to
// recover locally, so transitions propagate them unchanged and the caller
// decides whether the request came from an invalid block or a programming
// error. Use errors.Is to detect them through wrapping.
var (
	// ErrEpochOutOfRange is returned when a ring buffer is read at an epoch
	// outside its retained lookback window.
	ErrEpochOutOfRange = errors.New("epoch out of range of the lookback window")
	// ErrSlotOutOfRange is returned when a block root is requested for a slot
	// that is not strictly in the retained past.
	ErrSlotOutOfRange = errors.New("slot out of range of the lookback window")
)
