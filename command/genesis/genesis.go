package genesis

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/evm-bridge/command"
	"github.com/0xPolygon/evm-bridge/command/helper"
)

var params = defaultParams()

// GetCommand returns the genesis command
func GetCommand() *cobra.Command {
	genesisCmd := &cobra.Command{
		Use: "genesis",
		Short: "Generates the chain file when missing and installs its genesis accounts " +
			"into the data directory",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(genesisCmd)

	return genesisCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.name,
		nameFlag,
		command.DefaultChainName,
		"the name for the chain",
	)

	cmd.Flags().Uint64Var(
		&params.chainID,
		chainIDFlag,
		command.DefaultChainID,
		"the ID of the chain",
	)

	cmd.Flags().Uint64Var(
		&params.gasLimit,
		gasLimitFlag,
		command.DefaultGenesisGasLimit,
		"the maximum amount of gas used by all messages in a block",
	)

	cmd.Flags().StringArrayVar(
		&params.premine,
		premineFlag,
		[]string{},
		"the premined accounts and balances (format: <address>[:<balance>]). Default premined balance: "+
			command.DefaultPremineBalance,
	)

	cmd.Flags().StringVar(
		&params.coinbase,
		coinbaseFlag,
		"",
		"the address credited with the priority fee of every message",
	)
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return params.validateFlags()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	path, err := helper.ChainPath(cmd)
	if err != nil {
		outputter.SetError(err)

		return
	}

	chainConfig, generated, err := params.loadOrGenerate(path)
	if err != nil {
		outputter.SetError(err)

		return
	}

	srv, err := helper.OpenServer(cmd)
	if err != nil {
		outputter.SetError(err)

		return
	}

	defer func() {
		if err := srv.Close(); err != nil {
			outputter.SetError(err)
		}
	}()

	if err := srv.WriteGenesis(); err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(&GenesisResult{
		Path:      path,
		Generated: generated,
		ChainID:   srv.Chain().Params.ChainID,
		Accounts:  len(chainConfig.Genesis.Alloc),
	})
}
