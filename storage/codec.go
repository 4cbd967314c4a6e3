package storage

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Records are stored as msgpack using their JSON field names, so the payload
// layout matches the API representation without a second set of struct tags.
const recordStructTag = "json"

func encodeRecord(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag(recordStructTag)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag(recordStructTag)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}
