package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound means the requested key does not exist.
var ErrNotFound = errors.New("object not found")

// SerializationError means the value could not be encoded for storage.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("blobstore: cannot serialize value for %s: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// UnavailableError wraps a backend read/write failure. The backend's
// native error never crosses this interface unwrapped.
type UnavailableError struct {
	Op  string
	Key string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("blobstore: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Store is a durable object writer/reader for JSON payloads. Each put
// is independently durable; re-writing a key overwrites it.
type Store interface {
	PutJSON(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// EncodeJSON produces the canonical stored form: UTF-8 JSON with HTML
// escaping disabled so non-ASCII titles and comments stay readable.
func EncodeJSON(key string, value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, &SerializationError{Key: key, Err: err}
	}
	// Encode appends a trailing newline; keys must map to exact bytes.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
