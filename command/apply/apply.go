package apply

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/evm-bridge/command"
	"github.com/0xPolygon/evm-bridge/command/evm"
	"github.com/0xPolygon/evm-bridge/command/helper"
)

const txFlag = "tx"

var (
	rawTx string

	errTxMissing = errors.New("raw transaction is required")
)

// GetCommand returns the command applying a signed raw transaction
func GetCommand() *cobra.Command {
	applyCmd := &cobra.Command{
		Use:     "apply",
		Short:   "Applies a signed RLP encoded legacy transaction in its own block",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	applyCmd.Flags().StringVar(
		&rawTx,
		txFlag,
		"",
		"the RLP encoded signed transaction, hex encoded",
	)

	_ = applyCmd.MarkFlagRequired(txFlag)

	return applyCmd
}

func runPreRun(_ *cobra.Command, _ []string) error {
	if rawTx == "" {
		return errTxMissing
	}

	return nil
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	raw, err := helper.ParseBytes(rawTx)
	if err != nil {
		outputter.SetError(err)

		return
	}

	srv, err := helper.OpenInitializedServer(cmd)
	if err != nil {
		outputter.SetError(err)

		return
	}

	defer func() {
		if err := srv.Close(); err != nil {
			outputter.SetError(err)
		}
	}()

	number := srv.Executor().Header().Number

	receipt, err := srv.Pallet().SubmitTransaction(raw)
	if err != nil {
		outputter.SetError(fmt.Errorf("transaction rejected: %w", err))

		return
	}

	if _, err := srv.SealBlock(); err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(evm.NewReceiptResult(receipt, srv.DrainEvents(), number))
}
