package ragErrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindLoad             Kind = "LOAD_ERROR"
	KindConfig           Kind = "CONFIG_ERROR"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindGeneration       Kind = "GENERATION_ERROR"
)

// Error is the single error type surfaced by the pipeline. Compare with errors.Is against the
// sentinels below, or errors.As to read Op and Recovered.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error

	// Recovered is set on StoreUnavailable errors after the index was rebuilt empty.
	Recovered bool
}

var (
	ErrLoad             = &Error{Kind: KindLoad}
	ErrConfig           = &Error{Kind: KindConfig}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrGeneration       = &Error{Kind: KindGeneration}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Load(op string, err error, message string) error {
	return &Error{Kind: KindLoad, Op: op, Message: message, Err: err}
}

func Config(op string, message string) error {
	return &Error{Kind: KindConfig, Op: op, Message: message}
}

func StoreUnavailable(op string, err error, message string) error {
	return &Error{Kind: KindStoreUnavailable, Op: op, Message: message, Err: err}
}

func Validation(op string, message string) error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func Generation(op string, err error, message string) error {
	return &Error{Kind: KindGeneration, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// WasRecovered reports whether err carries a StoreUnavailable error after which the index was rebuilt.
func WasRecovered(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindStoreUnavailable && e.Recovered
	}
	return false
}
