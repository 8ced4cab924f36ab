package evm

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/types"
)

// ReceiptResult is the outcome of a dispatched message
type ReceiptResult struct {
	Receipt *types.Receipt `json:"receipt"`
	Events  []string       `json:"events"`
	Block   uint64         `json:"block"`
}

// NewReceiptResult builds the result of a message included in block
func NewReceiptResult(receipt *types.Receipt, events []host.Event, block uint64) *ReceiptResult {
	names := make([]string, 0, len(events))
	for _, evnt := range events {
		names = append(names, evnt.Name())
	}

	return &ReceiptResult{
		Receipt: receipt,
		Events:  names,
		Block:   block,
	}
}

func (r *ReceiptResult) GetOutput() string {
	var buffer bytes.Buffer

	receipt := r.Receipt

	buffer.WriteString("\n[RECEIPT]\n")

	rows := []string{
		fmt.Sprintf("Block|%d", r.Block),
		fmt.Sprintf("Status|%s", receipt.Status),
		fmt.Sprintf("Gas used|%d", receipt.GasUsed),
		fmt.Sprintf("From|%s", receipt.From),
	}

	if receipt.To != nil {
		rows = append(rows, fmt.Sprintf("To|%s", *receipt.To))
	}

	if receipt.ContractAddress != nil {
		rows = append(rows, fmt.Sprintf("Contract address|%s", *receipt.ContractAddress))
	}

	if !receipt.Succeeded() {
		rows = append(rows,
			fmt.Sprintf("Failure|%s", receipt.Failure),
			fmt.Sprintf("Error|%s", receipt.Error),
		)
	}

	rows = append(rows,
		fmt.Sprintf("Return value|%s", receipt.ReturnValue),
		fmt.Sprintf("Logs|%d", len(receipt.Logs)),
	)

	buffer.WriteString(helper.FormatKV(rows))
	buffer.WriteString("\n")

	if len(r.Events) > 0 {
		buffer.WriteString("\n[EVENTS]\n")
		buffer.WriteString(helper.FormatList(r.Events))
		buffer.WriteString("\n")
	}

	return buffer.String()
}
