package account

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/types"
)

type SlotResult struct {
	Key   types.Hash `json:"key"`
	Value types.Hash `json:"value"`
}

type AccountResult struct {
	Address   types.Address   `json:"address"`
	AccountID types.AccountID `json:"account_id"`
	Balance   string          `json:"balance"`
	Nonce     uint64          `json:"nonce"`
	Code      types.HexBytes  `json:"code"`
	Storage   []*SlotResult   `json:"storage"`
}

func (r *AccountResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[ACCOUNT]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Address|%s", r.Address),
		fmt.Sprintf("Account ID|%s", r.AccountID),
		fmt.Sprintf("Balance|%s", r.Balance),
		fmt.Sprintf("Nonce|%d", r.Nonce),
		fmt.Sprintf("Code size|%d", len(r.Code)),
	}))
	buffer.WriteString("\n")

	if len(r.Storage) > 0 {
		rows := []string{"Slot|Value"}

		for _, slot := range r.Storage {
			rows = append(rows, fmt.Sprintf("%s|%s", slot.Key, slot.Value))
		}

		buffer.WriteString("\n[STORAGE]\n")
		buffer.WriteString(helper.FormatList(rows))
		buffer.WriteString("\n")
	}

	return buffer.String()
}

type RemoveResult struct {
	Address types.Address `json:"address"`
	Removed bool          `json:"removed"`
}

func (r *RemoveResult) GetOutput() string {
	if r.Removed {
		return fmt.Sprintf("\n[ACCOUNT REMOVED]\n%s\n", r.Address)
	}

	return fmt.Sprintf("\n[ACCOUNT KEPT]\n%s is not empty\n", r.Address)
}

type ClaimResult struct {
	Address   types.Address   `json:"address"`
	AccountID types.AccountID `json:"account_id"`
}

func (r *ClaimResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[ADDRESS CLAIMED]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Address|%s", r.Address),
		fmt.Sprintf("Account ID|%s", r.AccountID),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
