package docstore

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes documents for storage.
//
// EmptyObject recognizes the exact encoding of a document with no
// fields. Earlier firmware cleared records by writing an empty object
// instead of deleting the file, so stores read such bytes as absence.
type Codec interface {
	// Marshal encodes doc.
	Marshal(doc Document) ([]byte, error)

	// Unmarshal decodes a record.
	Unmarshal(data []byte) (Document, error)

	// EmptyObject reports whether data is exactly the encoding of an
	// object with no fields.
	EmptyObject(data []byte) bool

	// Ext is the record file extension, including the dot.
	Ext() string
}

// JSON is the default codec. Records stay readable by other tooling and
// by earlier releases.
type JSON struct{}

func (JSON) Marshal(doc Document) ([]byte, error) { return json.Marshal(doc) }

func (JSON) Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// EmptyObject matches the exact two bytes "{}". Whitespace variants are
// ordinary records.
func (JSON) EmptyObject(data []byte) bool {
	return len(data) == 2 && data[0] == '{' && data[1] == '}'
}

func (JSON) Ext() string { return ".json" }

// Msgpack encodes records as MessagePack: denser on flash and cheaper
// to decode, at the price of files other tooling cannot read.
type Msgpack struct{}

func (Msgpack) Marshal(doc Document) ([]byte, error) {
	return msgpack.Marshal(map[string]any(doc))
}

func (Msgpack) Unmarshal(data []byte) (Document, error) {
	var m map[string]any
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return Document(m), nil
}

// EmptyObject matches the one-byte fixmap encoding of an empty map.
func (Msgpack) EmptyObject(data []byte) bool {
	return len(data) == 1 && data[0] == 0x80
}

func (Msgpack) Ext() string { return ".msgpack" }

var (
	_ Codec = JSON{}
	_ Codec = Msgpack{}
)
