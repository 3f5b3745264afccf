package services

import (
	"errors"
	"fmt"
)

// ErrorKind はサービス層のエラー分類です。
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindNotFound        ErrorKind = "not_found"
	KindUpstream        ErrorKind = "upstream_error"
	KindRateLimited     ErrorKind = "rate_limited"
	KindPaymentRequired ErrorKind = "payment_required"
	KindParse           ErrorKind = "parse_error"
	KindPersistence     ErrorKind = "persistence_error"
)

// Fixed messages surfaced to callers for gateway quota failures.
const (
	RateLimitMessage       = "Rate limit exceeded. Please try again later."
	PaymentRequiredMessage = "Payment required. Please add credits to continue."
)

// Error はハンドラ境界でJSONエラーに変換されるサービスエラーです。
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is は同じ Kind の *Error と一致させます（errors.Is(err, &Error{Kind: KindNotFound})）。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func newError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf はエラーチェーンから ErrorKind を取り出します。分類できないエラーは空文字を返します。
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// Sentinels usable with errors.Is.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrUpstream        = &Error{Kind: KindUpstream}
	ErrRateLimited     = &Error{Kind: KindRateLimited}
	ErrPaymentRequired = &Error{Kind: KindPaymentRequired}
	ErrParse           = &Error{Kind: KindParse}
	ErrPersistence     = &Error{Kind: KindPersistence}
)
