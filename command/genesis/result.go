package genesis

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/evm-bridge/command/helper"
)

type GenesisResult struct {
	Path      string `json:"path"`
	Generated bool   `json:"generated"`
	ChainID   uint64 `json:"chain_id"`
	Accounts  int    `json:"accounts"`
}

func (r *GenesisResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[GENESIS SUCCESS]\n")

	if r.Generated {
		buffer.WriteString(fmt.Sprintf("Chain file written to %s\n", r.Path))
	}

	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Chain file|%s", r.Path),
		fmt.Sprintf("Chain ID|%d", r.ChainID),
		fmt.Sprintf("Genesis accounts|%d", r.Accounts),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
