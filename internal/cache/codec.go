package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNilValue     = errors.New("cache: nil value")
	ErrTypeMismatch = errors.New("cache: type mismatch")
	ErrUnavailable  = errors.New("cache: unavailable")
)

// Kind — тег типа значения в конверте.
type Kind string

const (
	KindMovie     Kind = "movie"
	KindMovieList Kind = "movie.list"
)

// envelope — формат хранения: {"@type": "...", "payload": ...}.
type envelope struct {
	Type    Kind            `json:"@type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode — упаковывает значение в конверт с тегом kind. nil не кэшируется.
func Encode[T any](kind Kind, v T) ([]byte, error) {
	if isNil(v) {
		return nil, ErrNilValue
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return json.Marshal(envelope{Type: kind, Payload: payload})
}

// Decode — распаковывает конверт; тег должен совпадать с kind.
func Decode[T any](kind Kind, data []byte) (T, error) {
	var zero T

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type != kind {
		return zero, fmt.Errorf("%w: want %q, got %q", ErrTypeMismatch, kind, env.Type)
	}
	if len(env.Payload) == 0 || bytes.Equal(bytes.TrimSpace(env.Payload), []byte("null")) {
		return zero, ErrNilValue
	}

	var v T
	if err := json.Unmarshal(env.Payload, &v); err != nil {
		return zero, fmt.Errorf("decode %s: %w", kind, err)
	}
	return v, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
