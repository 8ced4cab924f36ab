package apply

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/state"
	"github.com/0xPolygon/evm-bridge/types"
)

type RejectedResult struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BlockResult struct {
	Number   uint64            `json:"number"`
	Hash     types.Hash        `json:"hash"`
	GasUsed  uint64            `json:"gas_used"`
	Receipts []*types.Receipt  `json:"receipts"`
	Rejected []*RejectedResult `json:"rejected"`
}

func newBlockResult(number uint64, hash types.Hash, res *state.BlockResult) *BlockResult {
	rejected := make([]*RejectedResult, 0, len(res.Rejected))
	for _, r := range res.Rejected {
		rejected = append(rejected, &RejectedResult{Index: r.Index, Error: r.Err.Error()})
	}

	return &BlockResult{
		Number:   number,
		Hash:     hash,
		GasUsed:  res.GasUsed,
		Receipts: res.Receipts,
		Rejected: rejected,
	}
}

func (r *BlockResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[BLOCK]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Number|%d", r.Number),
		fmt.Sprintf("Hash|%s", r.Hash),
		fmt.Sprintf("Gas used|%d", r.GasUsed),
		fmt.Sprintf("Receipts|%d", len(r.Receipts)),
		fmt.Sprintf("Rejected|%d", len(r.Rejected)),
	}))
	buffer.WriteString("\n")

	if len(r.Receipts) > 0 {
		rows := []string{"Tx hash|Status|Gas used|Contract"}

		for _, receipt := range r.Receipts {
			contract := ""
			if receipt.ContractAddress != nil {
				contract = receipt.ContractAddress.String()
			}

			rows = append(rows, fmt.Sprintf("%s|%s|%d|%s", receipt.TxHash, receipt.Status, receipt.GasUsed, contract))
		}

		buffer.WriteString("\n[RECEIPTS]\n")
		buffer.WriteString(helper.FormatList(rows))
		buffer.WriteString("\n")
	}

	if len(r.Rejected) > 0 {
		rows := []string{"Index|Error"}

		for _, rej := range r.Rejected {
			rows = append(rows, fmt.Sprintf("%d|%s", rej.Index, rej.Error))
		}

		buffer.WriteString("\n[REJECTED]\n")
		buffer.WriteString(helper.FormatList(rows))
		buffer.WriteString("\n")
	}

	return buffer.String()
}
