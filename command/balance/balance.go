package balance

import (
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/0xPolygon/evm-bridge/command"
	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/pallet"
	"github.com/0xPolygon/evm-bridge/server"
	"github.com/0xPolygon/evm-bridge/types"
)

const (
	signerFlag  = "signer"
	addressFlag = "address"
	valueFlag   = "value"
)

type balanceParams struct {
	signerRaw  string
	addressRaw string
	valueRaw   string

	signer  types.AccountID
	address types.Address
	value   *uint256.Int
}

var (
	depositParams  balanceParams
	withdrawParams balanceParams
)

func GetDepositCommand() *cobra.Command {
	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Moves funds from a native account to the balance of an EVM address",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return depositParams.validateFlags()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			run(cmd, "DEPOSIT", &depositParams, func(m *pallet.Module) error {
				return m.Deposit(pallet.SignedOrigin(depositParams.signer), depositParams.address, depositParams.value)
			})
		},
	}

	setFlags(depositCmd, &depositParams, "the EVM address credited")

	return depositCmd
}

func GetWithdrawCommand() *cobra.Command {
	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Moves funds from the balance of an EVM address to the signing native account",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return withdrawParams.validateFlags()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			run(cmd, "WITHDRAW", &withdrawParams, func(m *pallet.Module) error {
				return m.Withdraw(pallet.SignedOrigin(withdrawParams.signer), withdrawParams.address, withdrawParams.value)
			})
		},
	}

	setFlags(withdrawCmd, &withdrawParams, "the EVM address debited")

	return withdrawCmd
}

func setFlags(cmd *cobra.Command, p *balanceParams, addressUsage string) {
	cmd.Flags().StringVar(
		&p.signerRaw,
		signerFlag,
		"",
		"the native account id signing the dispatch (32 bytes hex)",
	)

	cmd.Flags().StringVar(
		&p.addressRaw,
		addressFlag,
		"",
		addressUsage,
	)

	cmd.Flags().StringVar(
		&p.valueRaw,
		valueFlag,
		"",
		"the amount moved, decimal or hex",
	)

	_ = cmd.MarkFlagRequired(signerFlag)
	_ = cmd.MarkFlagRequired(addressFlag)
	_ = cmd.MarkFlagRequired(valueFlag)
}

func (p *balanceParams) validateFlags() error {
	var err error

	if p.signer, err = helper.ParseAccountID(p.signerRaw); err != nil {
		return err
	}

	if p.address, err = helper.ParseAddress(p.addressRaw); err != nil {
		return err
	}

	if p.value, err = helper.ParseAmount(p.valueRaw); err != nil {
		return err
	}

	return nil
}

func run(cmd *cobra.Command, operation string, p *balanceParams, fn func(m *pallet.Module) error) {
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

	if err := fn(srv.Pallet()); err != nil {
		outputter.SetError(err)

		return
	}

	result, err := newResult(srv, operation, p)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(result)
}

func newResult(srv *server.Server, operation string, p *balanceParams) (*BalanceResult, error) {
	basic, err := srv.Pallet().AccountBasic(p.address)
	if err != nil {
		return nil, err
	}

	events := srv.DrainEvents()
	names := make([]string, 0, len(events))

	for _, evnt := range events {
		names = append(names, evnt.Name())
	}

	return &BalanceResult{
		Operation: operation,
		Account:   p.signer.String(),
		Address:   p.address.String(),
		Value:     p.value.Dec(),
		Balance:   basic.Balance.Dec(),
		Events:    names,
	}, nil
}
