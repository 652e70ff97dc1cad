package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validation errors — rejected before any balance write
var (
	ErrInvalidUserID          = errors.New("invalid user ID")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrMissingTransactionDate = errors.New("transaction date is required")
	ErrEmptyWalletSet         = errors.New("income and expense transactions must affect at least one wallet")
	ErrWalletSetShape         = errors.New("income and expense transactions must affect exactly one physical and one logical wallet")
)

// Transfer constraint errors — rejected before any balance write
var (
	ErrMissingTransferWallets = errors.New("transfer requires source and destination wallets")
	ErrSelfTransfer           = errors.New("transfer source and destination must differ")
	ErrTransferKindMismatch   = errors.New("transfer wallets must be of the same kind")
)

// Lookup and ownership errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrNotOwner            = errors.New("transaction does not belong to user")
)

// PartialMutationError reports the dangerous failure mode: some wallet
// balances were changed but the operation did not complete and the
// compensating writes failed too. The named transaction needs manual
// reconciliation.
type PartialMutationError struct {
	TransactionID uuid.UUID
	Op            string // "create", "edit" or "delete"
	Err           error
}

func (e *PartialMutationError) Error() string {
	return fmt.Sprintf("partial mutation during %s of transaction %s: %v", e.Op, e.TransactionID, e.Err)
}

func (e *PartialMutationError) Unwrap() error {
	return e.Err
}
