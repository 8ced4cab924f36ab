package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/command"
	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/helper/common"
	"github.com/0xPolygon/evm-bridge/types"
)

type premineInfo struct {
	address types.Address
	amount  *uint256.Int
}

// parsePremineInfo parses <addr> or <addr>:<amount>
func parsePremineInfo(raw string) (*premineInfo, error) {
	addrRaw, amountRaw := raw, command.DefaultPremineBalance

	if delimiterIdx := strings.Index(raw, ":"); delimiterIdx != -1 {
		addrRaw, amountRaw = raw[:delimiterIdx], raw[delimiterIdx+1:]
	}

	address, err := parseAddress(addrRaw)
	if err != nil {
		return nil, err
	}

	amount, err := helper.ParseAmount(amountRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount %s: %w", amountRaw, err)
	}

	return &premineInfo{address: address, amount: amount}, nil
}

func parseAddress(raw string) (types.Address, error) {
	return helper.ParseAddress(strings.TrimSpace(raw))
}

func writeChainFile(path string, chainConfig *chain.Chain) error {
	data, err := json.MarshalIndent(chainConfig, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to generate genesis: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := common.SetupDataDir(dir, nil); err != nil {
			return err
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write genesis: %w", err)
	}

	return nil
}
