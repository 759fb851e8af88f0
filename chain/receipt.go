package chain

import (
	"fmt"

	"github.com/veralith/provenance/types"
)

// Event is a single named event emitted by a transaction. Args carry the
// decoded event arguments in emission order; the remote services guarantee
// stable field ordering, so positional access is part of the contract.
type Event struct {
	Name string `json:"name"`
	Args []any  `json:"args"`
}

// Receipt is the confirmed result of a submitted transaction, including
// the full set of events it emitted. A single transaction may emit events
// from several contracts; consumers must select events by name, never by
// position in the log set.
type Receipt struct {
	TxHash string   `json:"tx_hash"`
	Status TxStatus `json:"status"`
	Height int64    `json:"height"`
	Events []Event  `json:"events"`
}

// FindEvent locates the first event with the given name in the receipt's
// event set. This is the explicit decoding step for recovering values the
// remote service assigns during the transaction (such as a new content id).
func (r *Receipt) FindEvent(name string) (*Event, bool) {
	for i := range r.Events {
		if r.Events[i].Name == name {
			return &r.Events[i], true
		}
	}
	return nil, false
}

// Int64Arg decodes the argument at index i as an int64.
func (e *Event) Int64Arg(i int) (int64, error) {
	if i < 0 || i >= len(e.Args) {
		return 0, fmt.Errorf("chain: event %s has no argument %d", e.Name, i)
	}

	switch v := e.Args[i].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		// JSON round-trips land here.
		return int64(v), nil
	default:
		return 0, fmt.Errorf("chain: event %s argument %d is %T, not an integer", e.Name, i, v)
	}
}

// StringArg decodes the argument at index i as a string.
func (e *Event) StringArg(i int) (string, error) {
	if i < 0 || i >= len(e.Args) {
		return "", fmt.Errorf("chain: event %s has no argument %d", e.Name, i)
	}

	s, ok := e.Args[i].(string)
	if !ok {
		return "", fmt.Errorf("chain: event %s argument %d is %T, not a string", e.Name, i, e.Args[i])
	}
	return s, nil
}

// AmountArg decodes the argument at index i as an Amount.
func (e *Event) AmountArg(i int) (types.Amount, error) {
	if i < 0 || i >= len(e.Args) {
		return types.Amount{}, fmt.Errorf("chain: event %s has no argument %d", e.Name, i)
	}

	switch v := e.Args[i].(type) {
	case types.Amount:
		return v, nil
	case string:
		return types.ParseAmount(v)
	case int64:
		if v < 0 {
			return types.Amount{}, fmt.Errorf("chain: event %s argument %d is negative", e.Name, i)
		}
		return types.NewAmount(uint64(v)), nil
	case uint64:
		return types.NewAmount(v), nil
	default:
		return types.Amount{}, fmt.Errorf("chain: event %s argument %d is %T, not an amount", e.Name, i, v)
	}
}
