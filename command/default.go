package command

const (
	DefaultGenesisFileName = "genesis.json"
	DefaultChainName       = "evm-bridge"
	DefaultChainID         = 100
	DefaultGenesisGasLimit = 30_000_000
)

const (
	JSONOutputFlag = "json"
	ConfigFlag     = "config"
	DataDirFlag    = "data-dir"
	ChainFlag      = "chain"
	StorageFlag    = "storage"
	LogLevelFlag   = "log-level"
)

// DefaultPremineBalance is 1M units at 18 decimals
const DefaultPremineBalance = "0xD3C21BCECCEDA1000000"
