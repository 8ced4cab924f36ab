package chain

import (
	"encoding/json"
	"fmt"
	"os"
)

// Chain is the chain configuration consumed by the bridge
type Chain struct {
	Name    string   `json:"name"`
	Genesis *Genesis `json:"genesis"`
	Params  *Params  `json:"params"`
}

// DefaultChain returns an Istanbul chain with the given id and an empty genesis
func DefaultChain(chainID uint64) *Chain {
	return &Chain{
		Name: "evm-bridge",
		Genesis: &Genesis{
			GasLimit: 30_000_000,
		},
		Params: &Params{
			Forks:   AllForksEnabled,
			ChainID: chainID,
		},
	}
}

// Import imports a chain from a filepath
func Import(chain string) (*Chain, error) {
	data, err := os.ReadFile(chain)
	if err != nil {
		return nil, err
	}

	return ImportFromJSON(data)
}

// ImportFromJSON parses and validates a chain description
func ImportFromJSON(content []byte) (*Chain, error) {
	var c Chain

	if err := json.Unmarshal(content, &c); err != nil {
		return nil, err
	}

	if c.Params == nil {
		return nil, fmt.Errorf("chain %q has no params", c.Name)
	}

	if c.Params.Forks == nil {
		c.Params.Forks = AllForksEnabled
	}

	if err := c.Params.Forks.Validate(); err != nil {
		return nil, err
	}

	if c.Genesis == nil {
		c.Genesis = &Genesis{}
	}

	return &c, nil
}
