package helper

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/command"
	"github.com/0xPolygon/evm-bridge/config"
	"github.com/0xPolygon/evm-bridge/server"
)

// nodeParams are the flags shared by every command that opens the node
type nodeParams struct {
	configPath string
	dataDir    string
	chainPath  string
	storage    string
	logLevel   string
}

var params nodeParams

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// RegisterNodeFlags registers the flags locating the node data for all child commands
func RegisterNodeFlags(cmd *cobra.Command) {
	defaultConfig := config.DefaultConfig()

	cmd.PersistentFlags().StringVar(
		&params.configPath,
		command.ConfigFlag,
		"",
		"the path to the node config. Supports .json, .hcl, .yaml and .yml",
	)

	cmd.PersistentFlags().StringVar(
		&params.dataDir,
		command.DataDirFlag,
		defaultConfig.DataDir,
		"the data directory used for storing the EVM state",
	)

	cmd.PersistentFlags().StringVar(
		&params.chainPath,
		command.ChainFlag,
		defaultConfig.GenesisPath,
		"the chain file with the chain id, the fork schedule and the genesis accounts",
	)

	cmd.PersistentFlags().StringVar(
		&params.storage,
		command.StorageFlag,
		defaultConfig.Storage,
		fmt.Sprintf("the storage backend: %s, %s or %s",
			config.LevelDBStorage, config.BoltDBStorage, config.MemoryStorage),
	)

	cmd.PersistentFlags().StringVar(
		&params.logLevel,
		command.LogLevelFlag,
		defaultConfig.LogLevel,
		"the log level for console output",
	)
}

// ChainPath returns the chain file the node is started from
func ChainPath(cmd *cobra.Command) (string, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return "", err
	}

	return cfg.GenesisPath, nil
}

// LoadConfig reads the config file when given and applies the flags set on
// the command line over it
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if params.configPath != "" {
		fileConfig, err := config.ReadConfigFile(params.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", params.configPath, err)
		}

		cfg = fileConfig
	}

	flags := cmd.Flags()

	if params.configPath == "" || flags.Changed(command.DataDirFlag) {
		cfg.DataDir = params.dataDir
	}

	if params.configPath == "" || flags.Changed(command.ChainFlag) {
		cfg.GenesisPath = params.chainPath
	}

	if params.configPath == "" || flags.Changed(command.StorageFlag) {
		cfg.Storage = params.storage
	}

	if params.configPath == "" || flags.Changed(command.LogLevelFlag) {
		cfg.LogLevel = params.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// BuildServerConfig resolves a validated config into the node configuration
func BuildServerConfig(cfg *config.Config) (*server.Config, error) {
	chainConfig, err := chain.Import(cfg.GenesisPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("chain file %s not found, run the genesis command first", cfg.GenesisPath)
		}

		return nil, fmt.Errorf("failed to read chain file %s: %w", cfg.GenesisPath, err)
	}

	if cfg.ChainID != 0 {
		chainConfig.Params.ChainID = cfg.ChainID
	}

	minGasPrice, err := cfg.MinGasPriceValue()
	if err != nil {
		return nil, err
	}

	escrow, err := cfg.EscrowAddress()
	if err != nil {
		return nil, err
	}

	serverConfig := &server.Config{
		Chain:          chainConfig,
		DataDir:        cfg.DataDir,
		Storage:        cfg.Storage,
		AddressMapping: cfg.AddressMapping,
		MinGasPrice:    minGasPrice,
		Escrow:         escrow,
		Telemetry:      &server.Telemetry{},
		LogLevel:       hclog.LevelFromString(cfg.LogLevel),
		JSONLogFormat:  cfg.JSONLogFormat,
	}

	coinbase, ok, err := cfg.CoinbaseAddress()
	if err != nil {
		return nil, err
	}

	if ok {
		serverConfig.Coinbase = &coinbase
	}

	if cfg.Telemetry != nil && cfg.Telemetry.PrometheusAddr != "" {
		addr, err := net.ResolveTCPAddr("tcp", cfg.Telemetry.PrometheusAddr)
		if err != nil {
			return nil, err
		}

		serverConfig.Telemetry.PrometheusAddr = addr
	}

	return serverConfig, nil
}

// OpenServer opens the node the command line points at
func OpenServer(cmd *cobra.Command) (*server.Server, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, err
	}

	serverConfig, err := BuildServerConfig(cfg)
	if err != nil {
		return nil, err
	}

	return server.NewServer(serverConfig)
}

// OpenInitializedServer opens the node and checks its genesis was written
func OpenInitializedServer(cmd *cobra.Command) (*server.Server, error) {
	srv, err := OpenServer(cmd)
	if err != nil {
		return nil, err
	}

	if err := srv.EnsureGenesis(); err != nil {
		_ = srv.Close()

		return nil, err
	}

	return srv, nil
}

// FormatList formats a list into a string
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatKV formats key value pairs:
//
// Key = Value
//
// Key = <none>
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}
