package tmdb

import (
	"errors"
	"fmt"
)

// Sentinel-ошибки апстрима; сравнивать через errors.Is.
var (
	ErrUnavailable = errors.New("tmdb: unavailable")
	ErrMalformed   = errors.New("tmdb: malformed response")
	ErrNotFound    = errors.New("tmdb: not found")
)

// Kind — класс ошибки апстрима.
type Kind int

const (
	KindUnavailable Kind = iota + 1 // транспорт: DNS, соединение, таймаут
	KindMalformed                   // не-2xx (кроме 404) или тело не разбирается
	KindNotFound                    // 404
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindMalformed:
		return "malformed"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnavailable:
		return ErrUnavailable
	case KindMalformed:
		return ErrMalformed
	case KindNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// Error — ошибка обращения к TMDB.
type Error struct {
	Kind     Kind
	Endpoint string // upcoming | movie
	Status   int    // 0, если ответа не было
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("tmdb %s: %s", e.Endpoint, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is — сопоставляет ошибку с sentinel по Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}
