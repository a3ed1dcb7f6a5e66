package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflicting resource state")

// ErrForbidden indicates the actor is not allowed to perform the operation.
var ErrForbidden = errors.New("operation forbidden")

// Posting and ledger errors. These carry the identifiers an operator needs,
// callers wrap them with fmt.Errorf("%w: ...") to add context.
var (
	// ErrUnbalancedEntry is returned when an entry's debits do not equal its credits.
	ErrUnbalancedEntry = errors.New("entry debits do not equal credits")

	// ErrEmptyEntry is returned when an entry has no lines.
	ErrEmptyEntry = errors.New("entry has no lines")

	// ErrAccountNotFound is returned when a line references a missing or inactive account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccountCode is returned when creating an account with an existing code.
	ErrDuplicateAccountCode = errors.New("account code already exists")

	// ErrInvalidParent is returned when a parent account is missing or would create a cycle.
	ErrInvalidParent = errors.New("invalid parent account")

	// ErrAccountInUse is returned when retiring an account that posted lines reference.
	ErrAccountInUse = errors.New("account is referenced by journal lines")

	// ErrPeriodLocked is returned when posting into a closed or locked period.
	ErrPeriodLocked = errors.New("period is closed or locked")

	// ErrStaleInvoiceState is returned when confirming a match whose invoice changed since proposal.
	ErrStaleInvoiceState = errors.New("invoice state changed since match was proposed")

	// ErrReconciliationAmbiguous is returned when two candidates score within the ambiguity window.
	ErrReconciliationAmbiguous = errors.New("reconciliation candidates are ambiguous")

	// ErrProjectorDrift is returned when a rebuild detects the maintained balances diverging
	// from the journal. Posting halts until an operator reconciles the discrepancy.
	ErrProjectorDrift = errors.New("ledger projection drift detected")
)

// AppError wraps a lower-level error with an HTTP-ish status code and a message.
// Used by the repository layer where the pgx error alone lacks context.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
