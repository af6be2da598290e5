package model

import "fmt"

// RejectionKind classifies why a ledger operation was rejected.
type RejectionKind string

// Rejection kinds. Each one is distinct so clients can render an actionable
// message.
const (
	KindNotFound            RejectionKind = "not_found"
	KindInvalidInput        RejectionKind = "invalid_input"
	KindInsufficientPayment RejectionKind = "insufficient_payment"
	KindInvalidState        RejectionKind = "invalid_state"
	KindUnauthorized        RejectionKind = "unauthorized"
	KindTransferFailed      RejectionKind = "transfer_failed"
)

// Rejection is returned when an operation's preconditions do not hold. A
// rejected operation changes nothing.
type Rejection struct {
	Kind    RejectionKind
	Message string
}

func (r *Rejection) Error() string {
	if r.Message == "" {
		return string(r.Kind)
	}
	return string(r.Kind) + ": " + r.Message
}

// Is matches any rejection of the same kind, so errors.Is(err, ErrNotFound)
// works for rejections carrying a specific message.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Kind == r.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound            = &Rejection{Kind: KindNotFound}
	ErrInvalidInput        = &Rejection{Kind: KindInvalidInput}
	ErrInsufficientPayment = &Rejection{Kind: KindInsufficientPayment}
	ErrInvalidState        = &Rejection{Kind: KindInvalidState}
	ErrUnauthorized        = &Rejection{Kind: KindUnauthorized}
	ErrTransferFailed      = &Rejection{Kind: KindTransferFailed}
)

// Reject builds a rejection with a formatted message.
func Reject(kind RejectionKind, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
