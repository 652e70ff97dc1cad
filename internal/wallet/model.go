package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind says which side of the dual view a wallet belongs to.
//
// Physical wallets mirror real-world accounts; logical wallets are virtual
// budget buckets over the same funds. The sum of physical balances must
// equal the sum of logical balances for every user.
type Kind string

const (
	KindPhysical Kind = "physical"
	KindLogical  Kind = "logical"
)

// IsValid checks if the wallet kind is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindPhysical, KindLogical:
		return true
	}
	return false
}

// Wallet represents a single balance bucket owned by a user.
type Wallet struct {
	ID     uuid.UUID `json:"id" db:"id"`
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	Name   string    `json:"name" db:"name"`
	Kind   Kind      `json:"kind" db:"kind"`

	// InitialBalance is set once at creation and never mutated by
	// transactions. It is excluded from transaction-driven analytics.
	InitialBalance decimal.Decimal `json:"initial_balance" db:"initial_balance"`

	// Balance is InitialBalance plus the sum of all applied transaction
	// deltas. Only the ledger engine writes this field.
	Balance decimal.Decimal `json:"balance" db:"balance"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidateCreate validates wallet fields for creation
func (w *Wallet) ValidateCreate() error {
	if w.UserID == uuid.Nil {
		return ErrInvalidUserID
	}

	if w.Name == "" {
		return ErrMissingWalletName
	}

	if len(w.Name) > 100 {
		return ErrWalletNameTooLong
	}

	if !w.Kind.IsValid() {
		return ErrInvalidWalletKind
	}

	return nil
}

// ValidateUpdate validates wallet fields for updates
func (w *Wallet) ValidateUpdate() error {
	if w.ID == uuid.Nil {
		return ErrInvalidWalletID
	}

	if w.Name == "" {
		return ErrMissingWalletName
	}

	if len(w.Name) > 100 {
		return ErrWalletNameTooLong
	}

	return nil
}
