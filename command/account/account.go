package account

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/evm-bridge/command"
	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/pallet"
	"github.com/0xPolygon/evm-bridge/types"
)

const (
	addressFlag = "address"
	slotFlag    = "slot"
	ifEmptyFlag = "if-empty"
	signerFlag  = "signer"
)

var (
	addressRaw string
	slotsRaw   []string
	ifEmpty    bool
	signerRaw  string
)

// GetCommand returns the account command
func GetCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Shows the balance, nonce, code and storage of an EVM address",
		Run:   runCommand,
	}

	setAddressFlag(accountCmd)

	accountCmd.Flags().StringArrayVar(
		&slotsRaw,
		slotFlag,
		[]string{},
		"storage slots to read, can be used multiple times",
	)

	accountCmd.AddCommand(getRemoveCommand(), getClaimCommand())

	return accountCmd
}

func getRemoveCommand() *cobra.Command {
	removeCmd := &cobra.Command{
		Use:   "remove",
		Short: "Removes the code and storage of an EVM address",
		Run:   runRemoveCommand,
	}

	setAddressFlag(removeCmd)

	removeCmd.Flags().BoolVar(
		&ifEmpty,
		ifEmptyFlag,
		false,
		"only remove the account when it has no balance, no nonce and no code",
	)

	return removeCmd
}

func getClaimCommand() *cobra.Command {
	claimCmd := &cobra.Command{
		Use:   "claim",
		Short: "Binds the truncated EVM address of a native account to that account",
		Run:   runClaimCommand,
	}

	claimCmd.Flags().StringVar(
		&signerRaw,
		signerFlag,
		"",
		"the native account id claiming its address",
	)

	_ = claimCmd.MarkFlagRequired(signerFlag)

	return claimCmd
}

func setAddressFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&addressRaw,
		addressFlag,
		"",
		"the EVM address",
	)

	_ = cmd.MarkFlagRequired(addressFlag)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	addr, err := helper.ParseAddress(addressRaw)
	if err != nil {
		outputter.SetError(err)

		return
	}

	slots := make([]types.Hash, 0, len(slotsRaw))

	for _, raw := range slotsRaw {
		slot, err := helper.ParseHash(raw)
		if err != nil {
			outputter.SetError(err)

			return
		}

		slots = append(slots, slot)
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

	m := srv.Pallet()

	basic, err := m.AccountBasic(addr)
	if err != nil {
		outputter.SetError(err)

		return
	}

	result := &AccountResult{
		Address:   addr,
		AccountID: srv.Mapper().ToAccountID(addr),
		Balance:   basic.Balance.Dec(),
		Nonce:     basic.Nonce,
		Code:      m.Code(addr),
		Storage:   make([]*SlotResult, 0, len(slots)),
	}

	for _, slot := range slots {
		result.Storage = append(result.Storage, &SlotResult{Key: slot, Value: m.Storage(addr, slot)})
	}

	outputter.SetCommandResult(result)
}

func runRemoveCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	addr, err := helper.ParseAddress(addressRaw)
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

	m := srv.Pallet()

	if ifEmpty {
		err = m.RemoveAccountIfEmpty(addr)
	} else {
		err = m.RemoveAccount(addr)
	}

	if err != nil {
		outputter.SetError(err)

		return
	}

	// an account that was kept still has code or funds
	empty, err := m.IsAccountEmpty(addr)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(&RemoveResult{
		Address: addr,
		Removed: !ifEmpty || empty,
	})
}

func runClaimCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	signer, err := helper.ParseAccountID(signerRaw)
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

	addr, err := srv.Pallet().ClaimAddress(pallet.SignedOrigin(signer))
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(&ClaimResult{
		Address:   addr,
		AccountID: signer,
	})
}
