package evm

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/server"
	"github.com/0xPolygon/evm-bridge/types"
)

var callParams dispatchParams

func GetCallCommand() *cobra.Command {
	callCmd := &cobra.Command{
		Use:     "call",
		Short:   "Calls a contract on behalf of a signed native account",
		PreRunE: runCallPreRun,
		Run:     runCallCommand,
	}

	setDispatchFlags(callCmd, &callParams)

	callCmd.Flags().StringVar(
		&callParams.toRaw,
		toFlag,
		"",
		"the address called",
	)

	_ = callCmd.MarkFlagRequired(toFlag)

	return callCmd
}

func runCallPreRun(_ *cobra.Command, _ []string) error {
	if err := callParams.validateFlags(); err != nil {
		return err
	}

	to, err := helper.ParseAddress(callParams.toRaw)
	if err != nil {
		return err
	}

	callParams.to = to

	return nil
}

func runCallCommand(cmd *cobra.Command, _ []string) {
	dispatch(cmd, &callParams, func(srv *server.Server) (*types.Receipt, error) {
		return srv.Pallet().Call(callParams.origin(), callParams.callArgs(), callParams.to, callParams.input)
	})
}
