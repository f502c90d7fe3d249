package entity

import "fmt"

// FailureKind discriminates expected domain failures so HTTP handlers can
// map them to statuses and clients can branch without string matching.
type FailureKind string

const (
	KindMissingIdentity     FailureKind = "missing_identity"
	KindDuplicateUser       FailureKind = "duplicate_user"
	KindInvalidInviteCode   FailureKind = "invalid_invite_code"
	KindInvalidRole         FailureKind = "invalid_role"
	KindInvalidParties      FailureKind = "invalid_parties"
	KindSelfTransfer        FailureKind = "self_transfer"
	KindInvalidAmount       FailureKind = "invalid_amount"
	KindSenderNotFound      FailureKind = "sender_not_found"
	KindRecipientNotFound   FailureKind = "recipient_not_found"
	KindInsufficientBalance FailureKind = "insufficient_balance"
)

// DomainError is an expected business failure. It is returned, never
// panicked; anything that is not a DomainError is treated as an internal
// error by the HTTP layer.
type DomainError struct {
	Kind    FailureKind
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Is lets errors.Is match two DomainErrors by kind.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Kind == e.Kind
}

func newDomainError(kind FailureKind, format string, args ...any) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Registration failures.
var (
	ErrMissingIdentity   = newDomainError(KindMissingIdentity, "username and email are required")
	ErrDuplicateUser     = newDomainError(KindDuplicateUser, "username or email is already taken")
	ErrInvalidInviteCode = newDomainError(KindInvalidInviteCode, "invite code does not match any user")
	ErrInvalidRole       = newDomainError(KindInvalidRole, "role must be renter or provider")
)

// Transfer failures, in validation order.
var (
	ErrInvalidParties      = newDomainError(KindInvalidParties, "sender and recipient are required")
	ErrSelfTransfer        = newDomainError(KindSelfTransfer, "cannot transfer funds to yourself")
	ErrInvalidAmount       = newDomainError(KindInvalidAmount, "amount must be a positive number")
	ErrSenderNotFound      = newDomainError(KindSenderNotFound, "sender not found")
	ErrRecipientNotFound   = newDomainError(KindRecipientNotFound, "recipient not found")
	ErrInsufficientBalance = newDomainError(KindInsufficientBalance, "insufficient balance")
)

// KindOf extracts the failure kind from err, or "" if err is not a DomainError.
func KindOf(err error) FailureKind {
	if de, ok := err.(*DomainError); ok {
		return de.Kind
	}
	return ""
}
