package chain

import (
	"fmt"
	"sort"
)

// Params are all the set of params for the chain
type Params struct {
	Forks   *Forks `json:"forks"`
	ChainID uint64 `json:"chainID"`
}

// predefined forks
const (
	Homestead      = "homestead"
	Byzantium      = "byzantium"
	Constantinople = "constantinople"
	Petersburg     = "petersburg"
	Istanbul       = "istanbul"
	EIP150         = "EIP150"
	EIP158         = "EIP158"
	EIP155         = "EIP155"
)

var knownForks = map[string]struct{}{
	Homestead:      {},
	Byzantium:      {},
	Constantinople: {},
	Petersburg:     {},
	Istanbul:       {},
	EIP150:         {},
	EIP158:         {},
	EIP155:         {},
}

// Forks specifies when each fork is activated
type Forks map[string]*Fork

func (f *Forks) IsHomestead(block uint64) bool {
	return f.Is(Homestead, block)
}

func (f *Forks) IsByzantium(block uint64) bool {
	return f.Is(Byzantium, block)
}

func (f *Forks) IsIstanbul(block uint64) bool {
	return f.Is(Istanbul, block)
}

func (f *Forks) IsEIP155(block uint64) bool {
	return f.Is(EIP155, block)
}

func (f *Forks) Is(name string, block uint64) bool {
	if f == nil {
		return false
	}

	return active((*f)[name], block)
}

// Validate rejects fork names the executor does not implement
func (f *Forks) Validate() error {
	if f == nil {
		return nil
	}

	names := make([]string, 0, len(*f))

	for name := range *f {
		if _, ok := knownForks[name]; !ok {
			names = append(names, name)
		}
	}

	if len(names) > 0 {
		sort.Strings(names)

		return fmt.Errorf("unsupported forks: %v", names)
	}

	return nil
}

func (f *Forks) At(block uint64) ForksInTime {
	return ForksInTime{
		Homestead:      f.Is(Homestead, block),
		Byzantium:      f.Is(Byzantium, block),
		Constantinople: f.Is(Constantinople, block),
		Petersburg:     f.Is(Petersburg, block),
		Istanbul:       f.Is(Istanbul, block),
		EIP150:         f.Is(EIP150, block),
		EIP158:         f.Is(EIP158, block),
		EIP155:         f.Is(EIP155, block),
	}
}

type Fork uint64

func NewFork(n uint64) *Fork {
	f := Fork(n)

	return &f
}

func (f Fork) Active(block uint64) bool {
	return block >= uint64(f)
}

// ForksInTime is the set of rules active at a given block
type ForksInTime struct {
	Homestead,
	Byzantium,
	Constantinople,
	Petersburg,
	Istanbul,
	EIP150,
	EIP158,
	EIP155 bool
}

// AllForksEnabled activates every supported fork from genesis, which yields the Istanbul rule set
var AllForksEnabled = &Forks{
	Homestead:      NewFork(0),
	EIP150:         NewFork(0),
	EIP155:         NewFork(0),
	EIP158:         NewFork(0),
	Byzantium:      NewFork(0),
	Constantinople: NewFork(0),
	Petersburg:     NewFork(0),
	Istanbul:       NewFork(0),
}

func active(ff *Fork, block uint64) bool {
	if ff == nil {
		return false
	}

	return ff.Active(block)
}
