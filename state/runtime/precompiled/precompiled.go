package precompiled

import (
	"errors"
	"fmt"

	"github.com/armon/go-metrics"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/state/runtime"
	"github.com/0xPolygon/evm-bridge/types"
)

var _ runtime.Runtime = &Precompiled{}

// ErrNotPrecompile is returned by Dispatch for addresses without an active contract
var ErrNotPrecompile = errors.New("not a precompiled contract")

// Contract is a native contract living at a fixed address
type Contract interface {
	// Gas returns the cost of running the contract with the given input
	Gas(input []byte, config *chain.ForksInTime) uint64

	// Run executes the contract. An error is a precompile failure.
	Run(input []byte) ([]byte, error)
}

// Stateful is implemented by contracts that write state. They are refused
// inside a static call.
type Stateful interface {
	Contract

	Stateful()
}

type entry struct {
	contract Contract
	enabled  func(*chain.ForksInTime) bool
}

// Precompiled is the runtime for the precompiled contracts
type Precompiled struct {
	contracts map[types.Address]entry
}

// NewPrecompiled creates a new runtime with the base set of contracts
func NewPrecompiled() *Precompiled {
	p := &Precompiled{
		contracts: map[types.Address]entry{},
	}
	p.setupContracts()

	return p
}

func (p *Precompiled) setupContracts() {
	p.register("1", &ecrecover{}, nil)
	p.register("2", &sha256h{}, nil)
	p.register("3", &ripemd160h{}, nil)
	p.register("4", &identity{}, nil)

	// Byzantium fork
	p.register("5", &modExp{}, byzantium)
	p.register("6", &bn256Add{}, byzantium)
	p.register("7", &bn256Mul{}, byzantium)
	p.register("8", &bn256Pairing{}, byzantium)

	// Istanbul fork
	p.register("9", &blake2f{}, istanbul)

	// non standard
	p.register("400", &sha3fips{}, nil)
	p.register("401", &ecrecoverPublicKey{}, nil)
}

func byzantium(f *chain.ForksInTime) bool { return f.Byzantium }
func istanbul(f *chain.ForksInTime) bool  { return f.Istanbul }

func (p *Precompiled) register(addrStr string, c Contract, enabled func(*chain.ForksInTime) bool) {
	p.contracts[types.StringToAddress(addrStr)] = entry{contract: c, enabled: enabled}
}

// Register installs an extra contract at addr, always active. It replaces
// any contract already living there.
func (p *Precompiled) Register(addr types.Address, c Contract) {
	p.contracts[addr] = entry{contract: c}
}

// Addresses returns the addresses with an active contract under config
func (p *Precompiled) Addresses(config *chain.ForksInTime) []types.Address {
	addrs := make([]types.Address, 0, len(p.contracts))

	for addr, e := range p.contracts {
		if e.enabled == nil || e.enabled(config) {
			addrs = append(addrs, addr)
		}
	}

	return addrs
}

func (p *Precompiled) lookup(addr types.Address, config *chain.ForksInTime) (Contract, bool) {
	e, ok := p.contracts[addr]
	if !ok {
		return nil, false
	}

	if e.enabled != nil && !e.enabled(config) {
		return nil, false
	}

	return e.contract, true
}

// Dispatch runs the contract at addr. It returns the output and the gas used.
// On any failure all the gas is consumed and no output is returned.
func (p *Precompiled) Dispatch(
	addr types.Address,
	input []byte,
	gas uint64,
	isStatic bool,
	config *chain.ForksInTime,
) ([]byte, uint64, error) {
	contract, ok := p.lookup(addr, config)
	if !ok {
		return nil, 0, ErrNotPrecompile
	}

	metrics.IncrCounterWithLabels([]string{"evm", "precompile", "call"}, 1, []metrics.Label{
		{Name: "address", Value: addr.String()},
	})

	if _, ok := contract.(Stateful); ok && isStatic {
		return nil, gas, runtime.ErrWriteProtection
	}

	cost := contract.Gas(input, config)
	if gas < cost {
		return nil, gas, runtime.ErrOutOfGas
	}

	out, err := contract.Run(input)
	if err != nil {
		return nil, gas, fmt.Errorf("%w: %v", runtime.ErrPrecompileFailure, err)
	}

	return out, cost, nil
}

// CanRun implements the runtime interface
func (p *Precompiled) CanRun(c *runtime.Contract, _ runtime.Host, config *chain.ForksInTime) bool {
	_, ok := p.lookup(c.CodeAddress, config)

	return ok
}

// Name implements the runtime interface
func (p *Precompiled) Name() string {
	return "precompiled"
}

// Run implements the runtime interface
func (p *Precompiled) Run(c *runtime.Contract, _ runtime.Host, config *chain.ForksInTime) *runtime.ExecutionResult {
	out, used, err := p.Dispatch(c.CodeAddress, c.Input, c.Gas, c.Static, config)

	return &runtime.ExecutionResult{
		ReturnValue: out,
		GasLeft:     c.Gas - used,
		GasUsed:     used,
		Err:         err,
	}
}
