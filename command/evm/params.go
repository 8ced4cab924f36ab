package evm

import (
	"errors"
	"strconv"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/mapping"
	"github.com/0xPolygon/evm-bridge/pallet"
	"github.com/0xPolygon/evm-bridge/types"
)

const (
	signerFlag   = "signer"
	fromFlag     = "from"
	toFlag       = "to"
	valueFlag    = "value"
	gasFlag      = "gas"
	gasPriceFlag = "gas-price"
	nonceFlag    = "nonce"
	inputFlag    = "input"
	saltFlag     = "salt"
)

const defaultGas = 1_000_000

var errSignerMissing = errors.New("signer account id is required")

type dispatchParams struct {
	signerRaw   string
	fromRaw     string
	toRaw       string
	valueRaw    string
	gasPriceRaw string
	nonceRaw    string
	inputRaw    string
	saltRaw     string
	gas         uint64

	signer   types.AccountID
	from     types.Address
	to       types.Address
	value    *uint256.Int
	gasPrice *uint256.Int
	nonce    *uint64
	input    []byte
	salt     types.Hash
}

func (p *dispatchParams) validateFlags() error {
	if p.signerRaw == "" {
		return errSignerMissing
	}

	var err error

	if p.signer, err = helper.ParseAccountID(p.signerRaw); err != nil {
		return err
	}

	if p.fromRaw != "" {
		if p.from, err = helper.ParseAddress(p.fromRaw); err != nil {
			return err
		}
	}

	if p.value, err = helper.ParseAmount(p.valueRaw); err != nil {
		return err
	}

	if p.gasPrice, err = helper.ParseAmount(p.gasPriceRaw); err != nil {
		return err
	}

	if p.nonceRaw != "" {
		nonce, err := strconv.ParseUint(p.nonceRaw, 10, 64)
		if err != nil {
			return err
		}

		p.nonce = &nonce
	}

	if p.input, err = helper.ParseBytes(p.inputRaw); err != nil {
		return err
	}

	return nil
}

// resolveSource defaults the source to the address of the signer. The
// address resolves to the signer only once it was claimed with "account claim".
func (p *dispatchParams) resolveSource(mapper mapping.Mapper) {
	addr := mapper.ToEVMAddress(p.signer)

	if p.fromRaw == "" {
		p.from = addr
	}
}

func (p *dispatchParams) origin() pallet.Origin {
	return pallet.SignedOrigin(p.signer)
}

func (p *dispatchParams) callArgs() *pallet.CallArgs {
	return &pallet.CallArgs{
		Source:   p.from,
		Value:    p.value,
		GasLimit: p.gas,
		GasPrice: p.gasPrice,
		Nonce:    p.nonce,
	}
}
