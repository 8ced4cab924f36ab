package evm

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/evm-bridge/command"
	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/server"
	"github.com/0xPolygon/evm-bridge/types"
)

func setDispatchFlags(cmd *cobra.Command, p *dispatchParams) {
	cmd.Flags().StringVar(
		&p.signerRaw,
		signerFlag,
		"",
		"the native account id signing the dispatch (32 bytes hex)",
	)

	cmd.Flags().StringVar(
		&p.fromRaw,
		fromFlag,
		"",
		"the source address, defaults to the address of the signer",
	)

	cmd.Flags().StringVar(
		&p.valueRaw,
		valueFlag,
		"0",
		"the value transferred to the target, decimal or hex",
	)

	cmd.Flags().Uint64Var(
		&p.gas,
		gasFlag,
		defaultGas,
		"the gas limit of the message",
	)

	cmd.Flags().StringVar(
		&p.gasPriceRaw,
		gasPriceFlag,
		"0",
		"the gas price of the message, decimal or hex",
	)

	cmd.Flags().StringVar(
		&p.nonceRaw,
		nonceFlag,
		"",
		"the expected nonce of the source, not checked when empty",
	)

	cmd.Flags().StringVar(
		&p.inputRaw,
		inputFlag,
		"",
		"the call data or the init code, hex encoded",
	)

	_ = cmd.MarkFlagRequired(signerFlag)
}

// dispatch opens the node, runs fn and seals the block it ran in
func dispatch(
	cmd *cobra.Command,
	p *dispatchParams,
	fn func(srv *server.Server) (*types.Receipt, error),
) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

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

	p.resolveSource(srv.Mapper())

	number := srv.Executor().Header().Number

	receipt, err := fn(srv)
	if err != nil {
		outputter.SetError(fmt.Errorf("dispatch failed: %w", err))

		return
	}

	if _, err := srv.SealBlock(); err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(NewReceiptResult(receipt, srv.DrainEvents(), number))
}
