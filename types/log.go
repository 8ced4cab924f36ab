package types

import "github.com/umbracle/fastrlp"

// Log is an event emitted by LOG0..LOG4
type Log struct {
	Address Address  `json:"address"`
	Topics  []Hash   `json:"topics"`
	Data    HexBytes `json:"data"`
}

// Copy returns a deep copy of the log
func (l *Log) Copy() *Log {
	ll := &Log{
		Address: l.Address,
		Topics:  make([]Hash, len(l.Topics)),
		Data:    make([]byte, len(l.Data)),
	}

	copy(ll.Topics, l.Topics)
	copy(ll.Data, l.Data)

	return ll
}

func (l *Log) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	v := a.NewArray()
	v.Set(a.NewBytes(l.Address.Bytes()))

	topics := a.NewArray()
	for _, t := range l.Topics {
		topics.Set(a.NewBytes(t.Bytes()))
	}

	v.Set(topics)
	v.Set(a.NewBytes(l.Data))

	return v
}

func (l *Log) UnmarshalRLPFrom(_ *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) < 3 {
		return ErrInvalidLogFormat
	}

	if err := elems[0].GetAddr(l.Address[:]); err != nil {
		return err
	}

	topicElems, err := elems[1].GetElems()
	if err != nil {
		return err
	}

	l.Topics = make([]Hash, len(topicElems))

	for i, topic := range topicElems {
		if err := topic.GetHash(l.Topics[i][:]); err != nil {
			return err
		}
	}

	if l.Data, err = elems[2].GetBytes(l.Data[:0]); err != nil {
		return err
	}

	return nil
}
