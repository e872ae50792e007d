package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	OpCleared = "cleared"
)

var ErrUnknownOp = errors.New("unknown event operation")

// TransactionEvent announces a change to the transaction ledger. It
// carries only the ID; consumers load the current row themselves.
type TransactionEvent struct {
	Op        string    `json:"op"`
	ID        string    `json:"id,omitempty"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent stamps an event with the current time. Version is
// the unix nanosecond clock, so later events for one ID sort after
// earlier ones.
func NewTransactionEvent(op, id string) *TransactionEvent {
	now := time.Now().UTC()
	return &TransactionEvent{
		Op:        op,
		ID:        id,
		Version:   now.UnixNano(),
		Timestamp: now,
	}
}

func (e *TransactionEvent) Validate() error {
	switch e.Op {
	case OpCreated, OpUpdated, OpDeleted:
		if e.ID == "" {
			return errors.New("event without transaction id")
		}
		return nil
	case OpCleared:
		return nil
	default:
		return ErrUnknownOp
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and validates an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
