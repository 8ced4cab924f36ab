package balance

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/evm-bridge/command/helper"
)

type BalanceResult struct {
	Operation string   `json:"operation"`
	Account   string   `json:"account"`
	Address   string   `json:"address"`
	Value     string   `json:"value"`
	Balance   string   `json:"balance"`
	Events    []string `json:"events"`
}

func (r *BalanceResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString(fmt.Sprintf("\n[%s]\n", r.Operation))
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Account|%s", r.Account),
		fmt.Sprintf("Address|%s", r.Address),
		fmt.Sprintf("Value|%s", r.Value),
		fmt.Sprintf("Address balance|%s", r.Balance),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
