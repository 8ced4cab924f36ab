package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/evm-bridge/command/account"
	"github.com/0xPolygon/evm-bridge/command/apply"
	"github.com/0xPolygon/evm-bridge/command/balance"
	"github.com/0xPolygon/evm-bridge/command/evm"
	"github.com/0xPolygon/evm-bridge/command/genesis"
	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/command/status"
	"github.com/0xPolygon/evm-bridge/command/version"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:   "evm-bridge",
			Short: "EVM bridge executes Ethereum messages against native account balances",
		},
	}

	helper.RegisterJSONOutputFlag(rootCommand.baseCmd)
	helper.RegisterNodeFlags(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		status.GetCommand(),
		genesis.GetCommand(),
		account.GetCommand(),
		balance.GetDepositCommand(),
		balance.GetWithdrawCommand(),
		evm.GetCallCommand(),
		evm.GetCreateCommand(),
		evm.GetCreate2Command(),
		apply.GetCommand(),
		apply.GetReplayCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
