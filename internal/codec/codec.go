// Package codec is the serialization gateway: it owns the persisted JSON
// form of the transaction store and the import/export payload shape. Field
// names are the binding contract; both forms round-trip exactly.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"soquy/internal/core"
)

// ErrFormat marks a payload that fails structural validation. The whole
// payload is rejected; partial imports never happen.
var ErrFormat = errors.New("invalid payload format")

// ExportPayload is the snapshot form produced by Export. The embedded
// summary is informational only: imports read the transactions array and
// ignore the rest.
type ExportPayload struct {
	Transactions []core.Transaction `json:"transactions"`
	Summary      core.Summary       `json:"summary"`
	ExportDate   time.Time          `json:"exportDate"`
}

// Encode serializes the transaction collection in store order. An empty
// collection encodes as an empty array, never null.
func Encode(ts []core.Transaction) ([]byte, error) {
	if ts == nil {
		ts = []core.Transaction{}
	}
	data, err := json.Marshal(ts)
	if err != nil {
		return nil, fmt.Errorf("encode transactions: %w", err)
	}
	return data, nil
}

// Decode parses the bare persisted form back into transactions.
func Decode(data []byte) ([]core.Transaction, error) {
	var ts []core.Transaction
	if err := unmarshalStrict(data, &ts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if ts == nil {
		ts = []core.Transaction{}
	}
	return ts, nil
}

// EncodeSnapshot builds the export payload: the transactions plus their
// computed summary and an export timestamp.
func EncodeSnapshot(ts []core.Transaction, now time.Time) ([]byte, error) {
	if ts == nil {
		ts = []core.Transaction{}
	}
	payload := ExportPayload{
		Transactions: ts,
		Summary:      core.Summarize(ts),
		ExportDate:   now,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeImport parses an import payload, accepting either the bare array
// form or the export payload form. Every record must pass structural
// validation (valid kind, positive numeric amount, required fields,
// well-formed date); one bad record rejects the whole import. Category
// labels are trusted as historical and are not checked against the
// registry.
func DecodeImport(data []byte) ([]core.Transaction, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrFormat)
	}

	var ts []core.Transaction
	switch trimmed[0] {
	case '[':
		decoded, err := Decode(data)
		if err != nil {
			return nil, err
		}
		ts = decoded
	case '{':
		var raw struct {
			Transactions json.RawMessage `json:"transactions"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		if len(raw.Transactions) == 0 {
			return nil, fmt.Errorf("%w: missing transactions array", ErrFormat)
		}
		if err := unmarshalStrict(raw.Transactions, &ts); err != nil {
			return nil, fmt.Errorf("%w: transactions is not a valid array: %v", ErrFormat, err)
		}
		if ts == nil {
			return nil, fmt.Errorf("%w: transactions is not an array", ErrFormat)
		}
	default:
		return nil, fmt.Errorf("%w: expected array or object", ErrFormat)
	}

	for i, t := range ts {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: transaction %d: %v", ErrFormat, i+1, err)
		}
	}
	return ts, nil
}

// unmarshalStrict decodes into v and rejects trailing garbage after the
// first JSON value.
func unmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after payload")
	}
	return nil
}
