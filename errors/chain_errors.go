package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/mezonai/powchain/jsonx"
)

// ErrorCode classifies a ledger failure.
type ErrorCode string

const (
	// Storage errors
	ErrCodeStoreUnavailable ErrorCode = "store_unavailable"
	ErrCodeCorrupt          ErrorCode = "corrupt"
	ErrCodeNotFound         ErrorCode = "not_found"

	// Block construction errors
	ErrCodeClock ErrorCode = "clock_error"

	// Transaction errors
	ErrCodeInvalidTransaction ErrorCode = "invalid_transaction"
	ErrCodeInsufficientFunds  ErrorCode = "insufficient_funds"

	// Setup errors
	ErrCodeInvalidConfig ErrorCode = "invalid_config"
)

// ChainError is the typed error surfaced by the store, iterator and miner.
// None of them retry; the caller decides.
type ChainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *ChainError) Error() string {
	view := struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
		Cause   string    `json:"cause,omitempty"`
	}{Code: e.Code, Message: e.Message}
	if e.Err != nil {
		view.Cause = e.Err.Error()
	}
	out, err := jsonx.Marshal(view)
	if err != nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(out)
}

// Unwrap exposes the underlying cause.
func (e *ChainError) Unwrap() error {
	return e.Err
}

// Is reports whether error codes match.
func (e *ChainError) Is(target error) bool {
	t, ok := target.(*ChainError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrStoreUnavailable   = NewError(ErrCodeStoreUnavailable, "key-value store unavailable")
	ErrCorrupt            = NewError(ErrCodeCorrupt, "stored data is corrupt")
	ErrNotFound           = NewError(ErrCodeNotFound, "expected key not found")
	ErrClock              = NewError(ErrCodeClock, "system clock unusable")
	ErrInvalidTransaction = NewError(ErrCodeInvalidTransaction, "invalid transaction")
	ErrInsufficientFunds  = NewError(ErrCodeInsufficientFunds, "not enough funds")
	ErrInvalidConfig      = NewError(ErrCodeInvalidConfig, "invalid configuration")
)

// NewError creates a new ChainError and returns it as error interface
func NewError(code ErrorCode, message string) error {
	return &ChainError{
		Code:    code,
		Message: message,
	}
}

// Newf is NewError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to cause. A nil cause yields a plain coded error.
func Wrap(code ErrorCode, cause error, format string, args ...interface{}) error {
	return &ChainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// CodeOf returns the code of the first ChainError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ce *ChainError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
