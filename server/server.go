// Package server bootstraps the bridge node: storage, ledger, executor and
// pallet wired together over one data directory.
package server

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/helper/common"
	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/ledger"
	"github.com/0xPolygon/evm-bridge/mapping"
	"github.com/0xPolygon/evm-bridge/pallet"
	"github.com/0xPolygon/evm-bridge/state"
	"github.com/0xPolygon/evm-bridge/storage"
	"github.com/0xPolygon/evm-bridge/storage/boltdb"
	"github.com/0xPolygon/evm-bridge/storage/leveldb"
	"github.com/0xPolygon/evm-bridge/storage/memory"
	"github.com/0xPolygon/evm-bridge/types"
)

const (
	LevelDBStorage = "leveldb"
	BoltDBStorage  = "boltdb"
	MemoryStorage  = "memory"

	// blockHashWindow is how many past block hashes BLOCKHASH can see
	blockHashWindow = 256
)

var (
	ErrGenesisWritten    = errors.New("genesis already written")
	ErrGenesisNotWritten = errors.New("genesis not written, run the genesis command first")

	headKey    = storage.Key(storage.META, []byte("head"))
	genesisKey = storage.Key(storage.META, []byte("genesis"))
	hashPrefix = storage.Key(storage.META, []byte("hash"))
)

// Server is the central manager of the bridge node
type Server struct {
	logger hclog.Logger
	config *Config
	chain  *chain.Chain

	kv       storage.KV
	ledger   *ledger.Ledger
	mapper   mapping.Mapper
	backend  *state.Backend
	block    *ledger.Block
	executor *state.Executor
	pallet   *pallet.Module
	events   *pallet.MemorySink

	prometheusServer *http.Server
}

// newLoggerFromConfig creates the root logger of the node
func newLoggerFromConfig(config *Config) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "evm-bridge",
		Level:      config.LogLevel,
		JSONFormat: config.JSONLogFormat,
	})
}

// NewServer creates a new bridge node, using the passed in configuration
func NewServer(config *Config) (*Server, error) {
	return NewServerWithLogger(config, newLoggerFromConfig(config))
}

// NewServerWithLogger creates a new bridge node logging to logger
func NewServerWithLogger(config *Config, logger hclog.Logger) (*Server, error) {
	m := &Server{
		logger: logger.Named("server"),
		config: config,
		chain:  config.Chain,
	}

	m.logger.Info("Data dir", "path", config.DataDir)

	if config.Telemetry != nil && config.Telemetry.PrometheusAddr != nil {
		if err := m.setupTelemetry(); err != nil {
			return nil, err
		}

		m.prometheusServer = m.startPrometheusServer()
	}

	kv, err := openStorage(config, logger)
	if err != nil {
		_ = m.closePrometheus()

		return nil, err
	}

	m.kv = kv

	if err := m.setup(logger); err != nil {
		_ = m.Close()

		return nil, err
	}

	return m, nil
}

func openStorage(config *Config, logger hclog.Logger) (storage.KV, error) {
	switch config.Storage {
	case MemoryStorage:
		return memory.NewMemoryStorage(logger), nil
	case LevelDBStorage, "":
		if err := common.SetupDataDir(config.DataDir, nil); err != nil {
			return nil, err
		}

		return leveldb.NewLevelDBStorage(filepath.Join(config.DataDir, "state"), leveldb.DefaultOptions(), logger)
	case BoltDBStorage:
		if err := common.SetupDataDir(config.DataDir, nil); err != nil {
			return nil, err
		}

		return boltdb.NewBoltDBStorage(filepath.Join(config.DataDir, "state.db"), logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.Storage)
	}
}

func (s *Server) setup(logger hclog.Logger) error {
	s.ledger = ledger.NewLedger(s.kv, logger)

	mapper, err := mapping.NewMapper(s.config.AddressMapping, ledger.NewIndex(s.kv, logger))
	if err != nil {
		return err
	}

	s.mapper = mapper

	backend, err := state.NewBackend(s.kv, s.ledger, s.ledger, mapper, logger)
	if err != nil {
		return err
	}

	s.backend = backend

	head, err := s.loadHead()
	if err != nil {
		return err
	}

	s.block = ledger.NewBlock(head)

	if err := s.restoreHashes(head.Number); err != nil {
		return err
	}

	s.executor = state.NewExecutor(s.chain.Params, backend, s.block, logger)
	s.executor.Escrow = s.config.Escrow

	if s.config.MinGasPrice != nil && !s.config.MinGasPrice.IsZero() {
		s.executor.MinGasPrice = s.config.MinGasPrice
	}

	s.events = pallet.NewMemorySink()
	s.pallet = pallet.NewModule(logger, nil, s.executor, s.ledger, s.ledger, pallet.FanoutSink{
		s.events,
		pallet.NewLogSink(logger),
	})

	return nil
}

// loadHead returns the header of the block being built, the first block
// after genesis when nothing was sealed yet
func (s *Server) loadHead() (*types.Header, error) {
	data, ok, err := s.kv.Get(headKey)
	if err != nil {
		return nil, err
	}

	if ok {
		header := new(types.Header)
		if err := json.Unmarshal(data, header); err != nil {
			return nil, fmt.Errorf("failed to decode head: %w", err)
		}

		return header, nil
	}

	genesis := s.chain.Genesis

	header := &types.Header{
		Number:    1,
		Timestamp: genesis.Timestamp,
		GasLimit:  genesis.GasLimit,
		Coinbase:  genesis.Coinbase,
	}

	if s.config.Coinbase != nil {
		header.Coinbase = *s.config.Coinbase
	}

	return header, nil
}

func hashKey(number uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, number)

	return storage.Key(hashPrefix, buf)
}

func (s *Server) restoreHashes(head uint64) error {
	from := uint64(0)
	if head > blockHashWindow {
		from = head - blockHashWindow
	}

	for number := from; number < head; number++ {
		data, ok, err := s.kv.Get(hashKey(number))
		if err != nil {
			return err
		}

		if ok {
			s.block.Restore(number, types.BytesToHash(data))
		}
	}

	return nil
}

// Pallet returns the dispatch boundary of the node
func (s *Server) Pallet() *pallet.Module {
	return s.pallet
}

// Executor returns the message executor of the node
func (s *Server) Executor() *state.Executor {
	return s.executor
}

// DrainEvents returns the events emitted since the last call
func (s *Server) DrainEvents() []host.Event {
	return s.events.Drain()
}

// Mapper returns the address mapping of the node
func (s *Server) Mapper() mapping.Mapper {
	return s.mapper
}

// Ledger returns the native balance ledger of the node
func (s *Server) Ledger() *ledger.Ledger {
	return s.ledger
}

// Chain returns the chain configuration
func (s *Server) Chain() *chain.Chain {
	return s.chain
}

// Status is the current state of the node
type Status struct {
	ChainID uint64     `json:"chain_id"`
	Number  uint64     `json:"number"`
	Parent  types.Hash `json:"parent_hash"`
	Genesis bool       `json:"genesis"`
}

// Status returns the chain id and the block being built
func (s *Server) Status() (*Status, error) {
	written, err := s.GenesisWritten()
	if err != nil {
		return nil, err
	}

	header := s.block.Header()

	return &Status{
		ChainID: s.chain.Params.ChainID,
		Number:  header.Number,
		Parent:  header.Hash,
		Genesis: written,
	}, nil
}

// GenesisWritten reports whether the genesis accounts were installed
func (s *Server) GenesisWritten() (bool, error) {
	_, ok, err := s.kv.Get(genesisKey)

	return ok, err
}

// WriteGenesis installs the genesis accounts of the chain, once
func (s *Server) WriteGenesis() error {
	written, err := s.GenesisWritten()
	if err != nil {
		return err
	}

	if written {
		return ErrGenesisWritten
	}

	if err := s.pallet.BuildGenesis(s.chain.Genesis); err != nil {
		return err
	}

	return s.kv.Set(genesisKey, []byte{1})
}

// EnsureGenesis fails when the genesis accounts were not installed
func (s *Server) EnsureGenesis() error {
	written, err := s.GenesisWritten()
	if err != nil {
		return err
	}

	if !written {
		return ErrGenesisNotWritten
	}

	return nil
}

// SealBlock closes the current block and persists the next head
func (s *Server) SealBlock() (types.Hash, error) {
	current := s.block.Header()

	timestamp := uint64(time.Now().Unix())
	if timestamp <= current.Timestamp {
		timestamp = current.Timestamp + 1
	}

	hash := s.block.Seal(timestamp)

	data, err := json.Marshal(s.block.Header())
	if err != nil {
		return types.ZeroHash, err
	}

	batch := s.kv.NewBatch()
	batch.Put(hashKey(current.Number), hash.Bytes())
	batch.Put(headKey, data)

	if err := batch.Write(); err != nil {
		return types.ZeroHash, err
	}

	s.logger.Info("block sealed", "number", current.Number, "hash", hash)

	return hash, nil
}

func (s *Server) startPrometheusServer() *http.Server {
	addr := s.config.Telemetry.PrometheusAddr

	srv := &http.Server{
		Addr: addr.String(),
		Handler: promhttp.InstrumentMetricHandler(
			promRegisterer, promhttp.HandlerFor(
				promGatherer,
				promhttp.HandlerOpts{},
			),
		),
		ReadHeaderTimeout: 60 * time.Second,
	}

	go func() {
		s.logger.Info("Prometheus server started", "addr", addr.String())

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Prometheus HTTP server ListenAndServe", "err", err)
		}
	}()

	return srv
}

func (s *Server) closePrometheus() error {
	if s.prometheusServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.prometheusServer.Shutdown(ctx)
}

// Close closes the bridge node
func (s *Server) Close() error {
	var result error

	if err := s.closePrometheus(); err != nil {
		s.logger.Error("Prometheus server shutdown error", "err", err)
		result = multierror.Append(result, err)
	}

	if err := storage.CloseAll(s.logger, s.kv); err != nil {
		result = multierror.Append(result, err)
	}

	return result
}
