package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrHasReceipts refuses admission deletion while receipts reference it.
	ErrHasReceipts = errors.New("admission has receipts")
)
