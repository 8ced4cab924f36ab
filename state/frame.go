package state

import (
	"errors"

	"github.com/0xPolygon/evm-bridge/state/runtime"
)

// MaxCallDepth is the deepest frame the executor will enter. The top level
// frame has depth 1.
const MaxCallDepth = 1024 + 1

// FrameStatus is the state of a call frame
type FrameStatus int

const (
	FrameInit FrameStatus = iota
	FrameRunning
	FrameReturned
	FrameReverted
	FrameOutOfGas
	FrameHalted
)

func (s FrameStatus) String() string {
	switch s {
	case FrameInit:
		return "init"
	case FrameRunning:
		return "running"
	case FrameReturned:
		return "returned"
	case FrameReverted:
		return "reverted"
	case FrameOutOfGas:
		return "out-of-gas"
	case FrameHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Frame is a single CALL or CREATE in flight. It remembers the changeset
// snapshot and the refund counter at entry so a failed frame leaves no trace.
type Frame struct {
	Contract *runtime.Contract
	Status   FrameStatus

	snapshot int
	refund   uint64
}

// frameStatus maps the outcome of a frame to its final status
func frameStatus(err error) FrameStatus {
	switch {
	case err == nil:
		return FrameReturned
	case errors.Is(err, runtime.ErrExecutionReverted),
		errors.Is(err, runtime.ErrDepth),
		errors.Is(err, runtime.ErrInsufficientBalance):
		return FrameReverted
	case errors.Is(err, runtime.ErrOutOfGas),
		errors.Is(err, runtime.ErrCodeStoreOutOfGas):
		return FrameOutOfGas
	default:
		return FrameHalted
	}
}

// pushFrame enters a new frame for c
func (t *Transition) pushFrame(c *runtime.Contract) *Frame {
	f := &Frame{
		Contract: c,
		Status:   FrameInit,
		snapshot: t.state.Snapshot(),
		refund:   t.meter.Refund(),
	}

	t.frames = append(t.frames, f)

	return f
}

// popFrame leaves the innermost frame
func (t *Transition) popFrame() {
	t.frames = t.frames[:len(t.frames)-1]
}

// Depth returns the number of frames in flight
func (t *Transition) Depth() int {
	return len(t.frames)
}

// exitFrame settles f with the result of its execution. A failed frame
// restores the changeset and the refund counter it started with.
func (t *Transition) exitFrame(f *Frame, err error) error {
	f.Status = frameStatus(err)

	if f.Status == FrameReturned {
		return nil
	}

	t.meter.restoreRefund(f.refund)

	return t.state.RevertToSnapshot(f.snapshot)
}
