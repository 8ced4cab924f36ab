package server

import (
	"net"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/types"
)

// Config is used to parametrize the bridge node
type Config struct {
	Chain *chain.Chain

	DataDir        string
	Storage        string
	AddressMapping string

	MinGasPrice *uint256.Int
	Escrow      types.Address
	// Coinbase overrides the block author of the genesis file when set
	Coinbase *types.Address

	Telemetry *Telemetry

	LogLevel      hclog.Level
	JSONLogFormat bool
}

// Telemetry holds the config details for metric services
type Telemetry struct {
	PrometheusAddr *net.TCPAddr
}
