package state

import (
	"github.com/armon/go-metrics"

	"github.com/0xPolygon/evm-bridge/types"
)

// updateReceiptMetrics records a transaction that produced a receipt
func updateReceiptMetrics(receipt *types.Receipt) {
	metrics.IncrCounter([]string{"evm", "tx", "applied"}, 1)

	if !receipt.Succeeded() {
		metrics.IncrCounterWithLabels([]string{"evm", "tx", "reverted"}, 1, []metrics.Label{
			{Name: "failure", Value: string(receipt.Failure)},
		})
	}

	metrics.AddSample([]string{"evm", "gas", "used"}, float32(receipt.GasUsed))
}

// updateRejectedMetrics records a transaction that failed validation
func updateRejectedMetrics() {
	metrics.IncrCounter([]string{"evm", "tx", "invalid"}, 1)
}

// updateFatalMetrics records a host state fault
func updateFatalMetrics() {
	metrics.IncrCounter([]string{"evm", "tx", "fatal"}, 1)
}
