package genesis

import (
	"errors"
	"fmt"
	"os"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/command"
	"github.com/0xPolygon/evm-bridge/types"
)

const (
	nameFlag     = "name"
	chainIDFlag  = "chain-id"
	gasLimitFlag = "block-gas-limit"
	premineFlag  = "premine"
	coinbaseFlag = "coinbase"
)

var (
	errInvalidGasLimit = errors.New("block gas limit must be greater than 0")
	errInvalidChainID  = errors.New("chain id must be greater than 0")
)

type genesisParams struct {
	name     string
	chainID  uint64
	gasLimit uint64
	premine  []string
	coinbase string

	premineInfos []*premineInfo
	coinbaseAddr types.Address
}

func (p *genesisParams) validateFlags() error {
	if p.chainID == 0 {
		return errInvalidChainID
	}

	if p.gasLimit == 0 {
		return errInvalidGasLimit
	}

	p.premineInfos = make([]*premineInfo, 0, len(p.premine))

	for _, raw := range p.premine {
		info, err := parsePremineInfo(raw)
		if err != nil {
			return err
		}

		p.premineInfos = append(p.premineInfos, info)
	}

	if p.coinbase != "" {
		addr, err := parseAddress(p.coinbase)
		if err != nil {
			return fmt.Errorf("invalid coinbase: %w", err)
		}

		p.coinbaseAddr = addr
	}

	return nil
}

// buildChain generates the chain description from the flags
func (p *genesisParams) buildChain() *chain.Chain {
	chainConfig := chain.DefaultChain(p.chainID)
	chainConfig.Name = p.name
	chainConfig.Genesis.GasLimit = p.gasLimit
	chainConfig.Genesis.Coinbase = p.coinbaseAddr
	chainConfig.Genesis.Alloc = make(map[types.Address]*chain.GenesisAccount, len(p.premineInfos))

	for _, info := range p.premineInfos {
		account, ok := chainConfig.Genesis.Alloc[info.address]
		if !ok {
			account = &chain.GenesisAccount{Balance: new(uint256.Int)}
			chainConfig.Genesis.Alloc[info.address] = account
		}

		account.Balance.Add(account.Balance, info.amount)
	}

	return chainConfig
}

// loadOrGenerate reads the chain file when it exists, otherwise it writes a
// new one generated from the flags
func (p *genesisParams) loadOrGenerate(path string) (*chain.Chain, bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		chainConfig, err := chain.Import(path)

		return chainConfig, false, err
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("failed to stat (%s): %w", path, err)
	}

	chainConfig := p.buildChain()

	if err := writeChainFile(path, chainConfig); err != nil {
		return nil, false, err
	}

	return chainConfig, true, nil
}

func defaultParams() *genesisParams {
	return &genesisParams{
		name:     command.DefaultChainName,
		chainID:  command.DefaultChainID,
		gasLimit: command.DefaultGenesisGasLimit,
	}
}
