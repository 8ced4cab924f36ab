package status

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/evm-bridge/command/helper"
)

type StatusResult struct {
	ChainID    uint64 `json:"chain_id"`
	Number     uint64 `json:"number"`
	ParentHash string `json:"parent_hash"`
	Genesis    bool   `json:"genesis"`
}

func (r *StatusResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[BRIDGE STATUS]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Chain ID|%d", r.ChainID),
		fmt.Sprintf("Next block|%d", r.Number),
		fmt.Sprintf("Parent hash|%s", r.ParentHash),
		fmt.Sprintf("Genesis written|%t", r.Genesis),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
