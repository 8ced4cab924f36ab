package types

import (
	goHex "encoding/hex"
	"errors"

	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/evm-bridge/helper/hex"
	"github.com/0xPolygon/evm-bridge/helper/keccak"
)

var (
	ErrInvalidLogFormat     = errors.New("invalid log format")
	ErrInvalidReceiptFormat = errors.New("invalid receipt format")
)

type ReceiptStatus uint64

const (
	ReceiptFailed ReceiptStatus = iota
	ReceiptSuccess
)

func (s ReceiptStatus) String() string {
	if s == ReceiptSuccess {
		return "success"
	}

	return "failed"
}

// FailureKind classifies why a receipt is not successful
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureRevert     FailureKind = "revert"
	FailureOutOfGas   FailureKind = "out-of-gas"
	FailurePrecompile FailureKind = "precompile-failure"
	FailureDepth      FailureKind = "depth-limit-exceeded"
	FailureHalted     FailureKind = "halted"
)

// Receipt is the outcome of a transaction that passed validation
type Receipt struct {
	Status          ReceiptStatus `json:"status"`
	Failure         FailureKind   `json:"failure,omitempty"`
	Error           string        `json:"error,omitempty"`
	GasUsed         uint64        `json:"gasUsed"`
	Logs            []*Log        `json:"logs"`
	LogsBloom       Bloom         `json:"logsBloom"`
	ReturnValue     HexBytes      `json:"returnValue"`
	ContractAddress *Address      `json:"contractAddress,omitempty"`
	TxHash          Hash          `json:"transactionHash"`
	From            Address       `json:"from"`
	To              *Address      `json:"to,omitempty"`
}

// Succeeded returns true when the top level frame returned
func (r *Receipt) Succeeded() bool {
	return r.Status == ReceiptSuccess
}

// MarshalRLP encodes the consensus fields of the receipt
func (r *Receipt) MarshalRLP() []byte {
	return r.MarshalRLPTo(nil)
}

func (r *Receipt) MarshalRLPTo(dst []byte) []byte {
	a := fastrlp.DefaultArenaPool.Get()
	dst = r.MarshalRLPWith(a).MarshalTo(dst)
	fastrlp.DefaultArenaPool.Put(a)

	return dst
}

func (r *Receipt) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	vv := a.NewArray()
	vv.Set(a.NewUint(uint64(r.Status)))
	vv.Set(a.NewUint(r.GasUsed))
	vv.Set(a.NewCopyBytes(r.LogsBloom[:]))

	if len(r.Logs) == 0 {
		// There are no logs, write the RLP null array entry
		vv.Set(a.NewNullArray())
	} else {
		logs := a.NewArray()
		for _, l := range r.Logs {
			logs.Set(l.MarshalRLPWith(a))
		}

		vv.Set(logs)
	}

	return vv
}

func (r *Receipt) UnmarshalRLP(input []byte) error {
	return UnmarshalRlp(r.UnmarshalRLPFrom, input)
}

func (r *Receipt) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) < 4 {
		return ErrInvalidReceiptFormat
	}

	status, err := elems[0].GetUint64()
	if err != nil {
		return err
	}

	r.Status = ReceiptStatus(status)

	if r.GasUsed, err = elems[1].GetUint64(); err != nil {
		return err
	}

	if _, err = elems[2].GetBytes(r.LogsBloom[:0], BloomByteLength); err != nil {
		return err
	}

	logsElems, err := v.Get(3).GetElems()
	if err != nil {
		return err
	}

	r.Logs = make([]*Log, 0, len(logsElems))

	for _, elem := range logsElems {
		log := &Log{}
		if err := log.UnmarshalRLPFrom(p, elem); err != nil {
			return err
		}

		r.Logs = append(r.Logs, log)
	}

	return nil
}

const BloomByteLength = 256

type Bloom [BloomByteLength]byte

func (b Bloom) String() string {
	return hex.EncodeToHex(b[:])
}

func (b Bloom) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bloom) UnmarshalText(input []byte) error {
	if len(input) < 2 {
		return ErrInvalidReceiptFormat
	}

	if _, err := goHex.Decode(b[:], input[2:]); err != nil {
		return err
	}

	return nil
}

// CreateBloom creates a new bloom filter from a set of receipts
func CreateBloom(receipts []*Receipt) (b Bloom) {
	for _, receipt := range receipts {
		b.AddLogs(receipt.Logs)
	}

	return
}

// AddLogs adds the address and topics of every log to the filter
func (b *Bloom) AddLogs(logs []*Log) {
	h := keccak.DefaultKeccakPool.Get()

	for _, log := range logs {
		b.setEncode(h, log.Address[:])

		for _, topic := range log.Topics {
			b.setEncode(h, topic[:])
		}
	}

	keccak.DefaultKeccakPool.Put(h)
}

func (b *Bloom) setEncode(hasher *keccak.Keccak, h []byte) {
	hasher.Reset()
	_, _ = hasher.Write(h)
	buf := hasher.Read()

	for i := 0; i < 6; i += 2 {
		// Find the global bit location
		bit := (uint(buf[i+1]) + (uint(buf[i]) << 8)) & 2047

		// Find where the bit maps in the [0..255] byte array
		byteLocation := 256 - 1 - bit/8
		bitLocation := bit % 8
		b[byteLocation] = b[byteLocation] | (1 << bitLocation)
	}
}

// IsLogInBloom checks if the log has a possible presence in the bloom filter
func (b *Bloom) IsLogInBloom(log *Log) bool {
	hasher := keccak.DefaultKeccakPool.Get()
	defer keccak.DefaultKeccakPool.Put(hasher)

	if !b.isByteArrPresent(hasher, log.Address.Bytes()) {
		return false
	}

	for _, topic := range log.Topics {
		if !b.isByteArrPresent(hasher, topic.Bytes()) {
			return false
		}
	}

	return true
}

func (b *Bloom) isByteArrPresent(hasher *keccak.Keccak, data []byte) bool {
	hasher.Reset()
	_, _ = hasher.Write(data)
	buf := hasher.Read()

	for i := 0; i < 6; i += 2 {
		bit := (uint(buf[i+1]) + (uint(buf[i]) << 8)) & 2047
		byteLocation := 256 - 1 - bit/8
		bitLocation := bit % 8

		if b[byteLocation]&(1<<bitLocation) == 0 {
			return false
		}
	}

	return true
}
