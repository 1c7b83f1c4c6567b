// Package record defines the two-variant wire format written to and read
// from generation files: {"Set":{"key":...,"value":...}} and
// {"Remove":{"key":...}}, written back-to-back with no separator.
package record

import (
	"encoding/json"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/ignitedb/ignite/pkg/errors"
)

// Kind distinguishes the two record variants.
type Kind int

const (
	// KindSet asserts that Key now maps to Value.
	KindSet Kind = iota
	// KindRemove asserts that Key is no longer mapped.
	KindRemove
)

// Record is a single decoded Set or Remove command. Value is only
// meaningful when Kind is KindSet.
type Record struct {
	Kind  Kind
	Key   string
	Value string
}

// Set builds a Set record.
func Set(key, value string) Record {
	return Record{Kind: KindSet, Key: key, Value: value}
}

// Remove builds a Remove record.
func Remove(key string) Record {
	return Record{Kind: KindRemove, Key: key}
}

// wireSet and wireRemove mirror the two tagged shapes the wire format uses.
type wireSet struct {
	Set struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"Set"`
}

type wireRemove struct {
	Remove struct {
		Key string `json:"key"`
	} `json:"Remove"`
}

// Encode serializes r to its on-disk JSON representation. It uses
// goccy/go-json rather than the standard library's encoder: this is the
// write path, which has no offset-tracking contract to honor, so the
// faster drop-in marshaler is free to use.
func Encode(r Record) ([]byte, error) {
	switch r.Kind {
	case KindSet:
		var w wireSet
		w.Set.Key = r.Key
		w.Set.Value = r.Value
		b, err := gojson.Marshal(w)
		if err != nil {
			return nil, errors.NewEncodeError(err, 0)
		}
		return b, nil
	case KindRemove:
		var w wireRemove
		w.Remove.Key = r.Key
		b, err := gojson.Marshal(w)
		if err != nil {
			return nil, errors.NewEncodeError(err, 0)
		}
		return b, nil
	default:
		panic("record: unknown kind")
	}
}

// Decode parses exactly one record from a byte slice already known to
// contain one complete record (and nothing else). This is the path used by
// random-access Get: the index already gives the exact length of the
// record, so there is no lookahead concern to reason about — no streaming
// decoder is involved at all.
func Decode(b []byte) (Record, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return Record{}, errors.NewDecodeError(err, 0, 0)
	}

	if _, ok := probe["Set"]; ok {
		var w wireSet
		if err := json.Unmarshal(b, &w); err != nil {
			return Record{}, errors.NewDecodeError(err, 0, 0)
		}
		return Set(w.Set.Key, w.Set.Value), nil
	}

	if _, ok := probe["Remove"]; ok {
		var w wireRemove
		if err := json.Unmarshal(b, &w); err != nil {
			return Record{}, errors.NewDecodeError(err, 0, 0)
		}
		return Remove(w.Remove.Key), nil
	}

	return Record{}, errors.NewSerdeError(
		nil, errors.ErrorCodeSerde, "record has neither a Set nor a Remove tag",
	)
}

// StreamDecoder decodes a sequence of back-to-back records from a reader,
// reporting the cumulative input offset reached after each record. It
// stays on the standard library's encoding/json.Decoder rather than
// goccy/go-json: InputOffset's documented contract ("the input stream
// byte offset of the current decoder position") is exactly what replay
// needs to reconstruct RecordLocation.Offset/.Length byte-for-byte, and
// switching encoders here would risk losing that guarantee.
type StreamDecoder struct {
	dec *json.Decoder
}

// NewStreamDecoder wraps r for sequential decoding.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{dec: json.NewDecoder(r)}
}

// Next decodes the next record and returns it along with the decoder's
// cumulative input offset immediately after it. io.EOF is returned,
// unwrapped, when the stream is exhausted with no partial record pending.
func (d *StreamDecoder) Next() (Record, int64, error) {
	var probe map[string]json.RawMessage
	if err := d.dec.Decode(&probe); err != nil {
		return Record{}, d.dec.InputOffset(), err
	}

	if raw, ok := probe["Set"]; ok {
		var body struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return Record{}, d.dec.InputOffset(), err
		}
		return Set(body.Key, body.Value), d.dec.InputOffset(), nil
	}

	if raw, ok := probe["Remove"]; ok {
		var body struct {
			Key string `json:"key"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return Record{}, d.dec.InputOffset(), err
		}
		return Remove(body.Key), d.dec.InputOffset(), nil
	}

	return Record{}, d.dec.InputOffset(), errors.NewSerdeError(
		nil, errors.ErrorCodeSerde, "record has neither a Set nor a Remove tag",
	)
}
