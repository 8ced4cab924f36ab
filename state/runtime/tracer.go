package runtime

import (
	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/evm-bridge/types"
)

// Tracer observes the interpreter. A nil Tracer disables tracing.
type Tracer interface {
	CaptureEnter(typ CallType, from, to types.Address, input []byte, gas uint64, depth int)
	CaptureState(pc uint64, op string, gas, cost uint64, depth int)
	CaptureExit(output []byte, gasUsed uint64, err error)
}

// LogTracer writes every step to an hclog logger at trace level
type LogTracer struct {
	logger hclog.Logger
}

func NewLogTracer(logger hclog.Logger) *LogTracer {
	return &LogTracer{logger: logger.Named("tracer")}
}

func (l *LogTracer) CaptureEnter(typ CallType, from, to types.Address, input []byte, gas uint64, depth int) {
	l.logger.Trace("enter", "type", typ, "from", from, "to", to, "input", len(input), "gas", gas, "depth", depth)
}

func (l *LogTracer) CaptureState(pc uint64, op string, gas, cost uint64, depth int) {
	l.logger.Trace("step", "pc", pc, "op", op, "gas", gas, "cost", cost, "depth", depth)
}

func (l *LogTracer) CaptureExit(output []byte, gasUsed uint64, err error) {
	l.logger.Trace("exit", "output", len(output), "gasUsed", gasUsed, "err", err)
}
