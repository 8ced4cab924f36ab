// Package config holds the settings of the bridge node run by the CLI
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"github.com/0xPolygon/evm-bridge/helper/hex"
	"github.com/0xPolygon/evm-bridge/mapping"
	"github.com/0xPolygon/evm-bridge/types"
)

const (
	LevelDBStorage = "leveldb"
	BoltDBStorage  = "boltdb"
	MemoryStorage  = "memory"
)

var (
	errEmptyDataDir   = errors.New("data dir must be set for persistent storage")
	errUnknownStorage = errors.New("unknown storage backend")
	errUnknownMapping = errors.New("unknown address mapping")
)

// Config defines the node configuration params
type Config struct {
	GenesisPath    string     `json:"chain_config" yaml:"chain_config" hcl:"chain_config"`
	DataDir        string     `json:"data_dir" yaml:"data_dir" hcl:"data_dir"`
	Storage        string     `json:"storage" yaml:"storage" hcl:"storage"`
	AddressMapping string     `json:"address_mapping" yaml:"address_mapping" hcl:"address_mapping"`
	ChainID        uint64     `json:"chain_id" yaml:"chain_id" hcl:"chain_id"`
	MinGasPrice    string     `json:"min_gas_price" yaml:"min_gas_price" hcl:"min_gas_price"`
	Escrow         string     `json:"fee_escrow" yaml:"fee_escrow" hcl:"fee_escrow"`
	Coinbase       string     `json:"coinbase" yaml:"coinbase" hcl:"coinbase"`
	LogLevel       string     `json:"log_level" yaml:"log_level" hcl:"log_level"`
	JSONLogFormat  bool       `json:"json_log_format" yaml:"json_log_format" hcl:"json_log_format"`
	Telemetry      *Telemetry `json:"telemetry" yaml:"telemetry" hcl:"telemetry"`
}

// Telemetry holds the config details for metric services.
type Telemetry struct {
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr" hcl:"prometheus_addr"`
}

const (
	// DefaultEscrow holds the reserved fee of a running message
	DefaultEscrow = "0x00000000000000000000000000000000000fee00"

	DefaultLogLevel = "INFO"
)

// DefaultConfig returns the default node configuration
func DefaultConfig() *Config {
	return &Config{
		GenesisPath:    "./genesis.json",
		DataDir:        "./evm-bridge-data",
		Storage:        LevelDBStorage,
		AddressMapping: mapping.TruncatedStrategy,
		MinGasPrice:    "0",
		Escrow:         DefaultEscrow,
		LogLevel:       DefaultLogLevel,
		Telemetry:      &Telemetry{},
	}
}

// ReadConfigFile reads the config file from the specified path, builds a Config object
// and returns it.
//
// Supported file types: .json, .hcl, .yaml, .yml
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshalFunc func([]byte, interface{}) error

	switch {
	case strings.HasSuffix(path, ".hcl"):
		unmarshalFunc = hcl.Unmarshal
	case strings.HasSuffix(path, ".json"):
		unmarshalFunc = json.Unmarshal
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		unmarshalFunc = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("suffix of %s is neither hcl, json, yaml nor yml", path)
	}

	config := DefaultConfig()

	if err := unmarshalFunc(data, config); err != nil {
		return nil, err
	}

	if config.Telemetry == nil {
		config.Telemetry = &Telemetry{}
	}

	return config, nil
}

// Validate reports every problem of the configuration at once
func (c *Config) Validate() error {
	var result error

	switch c.Storage {
	case LevelDBStorage, BoltDBStorage:
		if c.DataDir == "" {
			result = multierror.Append(result, errEmptyDataDir)
		}
	case MemoryStorage:
	default:
		result = multierror.Append(result, fmt.Errorf("%w: %q", errUnknownStorage, c.Storage))
	}

	switch c.AddressMapping {
	case mapping.TruncatedStrategy, mapping.HashedStrategy, mapping.IdentityStrategy, "":
	default:
		result = multierror.Append(result, fmt.Errorf("%w: %q", errUnknownMapping, c.AddressMapping))
	}

	if _, err := c.MinGasPriceValue(); err != nil {
		result = multierror.Append(result, fmt.Errorf("min gas price: %w", err))
	}

	if _, err := parseAddress(c.Escrow); err != nil {
		result = multierror.Append(result, fmt.Errorf("fee escrow: %w", err))
	}

	if c.Coinbase != "" {
		if _, err := parseAddress(c.Coinbase); err != nil {
			result = multierror.Append(result, fmt.Errorf("coinbase: %w", err))
		}
	}

	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	if c.Telemetry != nil && c.Telemetry.PrometheusAddr != "" {
		if _, err := net.ResolveTCPAddr("tcp", c.Telemetry.PrometheusAddr); err != nil {
			result = multierror.Append(result, fmt.Errorf("prometheus address: %w", err))
		}
	}

	return result
}

// MinGasPriceValue parses the minimum gas price, in decimal or 0x prefixed hex
func (c *Config) MinGasPriceValue() (*uint256.Int, error) {
	return ParseUint256(c.MinGasPrice)
}

// EscrowAddress parses the fee escrow address
func (c *Config) EscrowAddress() (types.Address, error) {
	return parseAddress(c.Escrow)
}

// CoinbaseAddress parses the coinbase override, false when unset
func (c *Config) CoinbaseAddress() (types.Address, bool, error) {
	if c.Coinbase == "" {
		return types.ZeroAddress, false, nil
	}

	addr, err := parseAddress(c.Coinbase)

	return addr, err == nil, err
}

// ParseUint256 parses a decimal or 0x prefixed hex amount. Empty means zero.
func ParseUint256(str string) (*uint256.Int, error) {
	return hex.DecodeUint256(strings.TrimSpace(str))
}

func parseAddress(str string) (types.Address, error) {
	buf, err := hex.DecodeHex(str)
	if err != nil {
		return types.ZeroAddress, err
	}

	if len(buf) != types.AddressLength {
		return types.ZeroAddress, fmt.Errorf("incorrect address length: %d bytes", len(buf))
	}

	return types.BytesToAddress(buf), nil
}
