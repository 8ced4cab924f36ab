package pallet

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/types"
)

// LogEvent carries a log emitted by a contract
type LogEvent struct {
	Log *types.Log
}

func (LogEvent) Name() string { return "Log" }

// CreatedEvent is emitted when a contract was deployed
type CreatedEvent struct {
	Address types.Address
}

func (CreatedEvent) Name() string { return "Created" }

// CreatedFailedEvent is emitted when a deployment ran and failed
type CreatedFailedEvent struct {
	Address types.Address
}

func (CreatedFailedEvent) Name() string { return "CreatedFailed" }

// ExecutedEvent is emitted when a call returned
type ExecutedEvent struct {
	Address types.Address
}

func (ExecutedEvent) Name() string { return "Executed" }

// ExecutedFailedEvent is emitted when a call ran and failed
type ExecutedFailedEvent struct {
	Address types.Address
}

func (ExecutedFailedEvent) Name() string { return "ExecutedFailed" }

// BalanceDepositEvent is emitted when a native account funded an address
type BalanceDepositEvent struct {
	Account types.AccountID
	Address types.Address
	Value   *uint256.Int
}

func (BalanceDepositEvent) Name() string { return "BalanceDeposit" }

// BalanceWithdrawEvent is emitted when an address was drained into a native account
type BalanceWithdrawEvent struct {
	Account types.AccountID
	Address types.Address
	Value   *uint256.Int
}

func (BalanceWithdrawEvent) Name() string { return "BalanceWithdraw" }

// AddressClaimedEvent is emitted when a native account claimed its truncated address
type AddressClaimedEvent struct {
	Account types.AccountID
	Address types.Address
}

func (AddressClaimedEvent) Name() string { return "AddressClaimed" }

// MemorySink keeps the events it receives
type MemorySink struct {
	lock   sync.Mutex
	events []host.Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Emit(evnt host.Event) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.events = append(m.events, evnt)
}

// Events returns the events received so far
func (m *MemorySink) Events() []host.Event {
	m.lock.Lock()
	defer m.lock.Unlock()

	events := make([]host.Event, len(m.events))
	copy(events, m.events)

	return events
}

// Drain returns the events received so far and forgets them
func (m *MemorySink) Drain() []host.Event {
	m.lock.Lock()
	defer m.lock.Unlock()

	events := m.events
	m.events = nil

	return events
}

// LogSink writes the events to a logger
type LogSink struct {
	logger hclog.Logger
}

func NewLogSink(logger hclog.Logger) *LogSink {
	return &LogSink{logger: logger.Named("events")}
}

func (l *LogSink) Emit(evnt host.Event) {
	l.logger.Info(evnt.Name(), "event", evnt)
}

// FanoutSink delivers every event to all the sinks in order
type FanoutSink []host.EventSink

func (f FanoutSink) Emit(evnt host.Event) {
	for _, sink := range f {
		sink.Emit(evnt)
	}
}
