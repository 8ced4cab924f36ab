package evm

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/server"
	"github.com/0xPolygon/evm-bridge/types"
)

var (
	createParams  dispatchParams
	create2Params dispatchParams

	errInitCodeMissing = errors.New("init code is required")
)

func GetCreateCommand() *cobra.Command {
	createCmd := &cobra.Command{
		Use:     "create",
		Short:   "Deploys a contract at the address derived from the source nonce",
		PreRunE: runCreatePreRun,
		Run:     runCreateCommand,
	}

	setDispatchFlags(createCmd, &createParams)

	return createCmd
}

func GetCreate2Command() *cobra.Command {
	create2Cmd := &cobra.Command{
		Use:     "create2",
		Short:   "Deploys a contract at the address derived from a salt and the init code",
		PreRunE: runCreate2PreRun,
		Run:     runCreate2Command,
	}

	setDispatchFlags(create2Cmd, &create2Params)

	create2Cmd.Flags().StringVar(
		&create2Params.saltRaw,
		saltFlag,
		"",
		"the 32 byte salt of the deployment",
	)

	_ = create2Cmd.MarkFlagRequired(saltFlag)

	return create2Cmd
}

func validateCreate(p *dispatchParams) error {
	if err := p.validateFlags(); err != nil {
		return err
	}

	if len(p.input) == 0 {
		return errInitCodeMissing
	}

	return nil
}

func runCreatePreRun(_ *cobra.Command, _ []string) error {
	return validateCreate(&createParams)
}

func runCreate2PreRun(_ *cobra.Command, _ []string) error {
	if err := validateCreate(&create2Params); err != nil {
		return err
	}

	salt, err := helper.ParseHash(create2Params.saltRaw)
	if err != nil {
		return err
	}

	create2Params.salt = salt

	return nil
}

func runCreateCommand(cmd *cobra.Command, _ []string) {
	dispatch(cmd, &createParams, func(srv *server.Server) (*types.Receipt, error) {
		return srv.Pallet().Create(createParams.origin(), createParams.callArgs(), createParams.input)
	})
}

func runCreate2Command(cmd *cobra.Command, _ []string) {
	dispatch(cmd, &create2Params, func(srv *server.Server) (*types.Receipt, error) {
		return srv.Pallet().Create2(
			create2Params.origin(),
			create2Params.callArgs(),
			create2Params.input,
			create2Params.salt,
		)
	})
}
