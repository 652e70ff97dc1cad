package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type identifies how a transaction moves money. The set is closed:
// the mutator and the analyzer switch exhaustively over it, and an
// unknown type is an error, not a no-op.
type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeTransfer Type = "transfer"
)

// IsValid checks if the transaction type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// Direction selects whether a transaction's effect is applied or undone.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

// Transaction is a single money movement owned by a user.
//
// Amount is always a non-negative magnitude; sign is derived from Type and
// the wallet's role, never stored. Income and expense carry
// AffectedWalletIDs (one physical + one logical in the enforced mode, a
// single id in the legacy form). Transfers carry source and destination
// wallets of the same kind.
type Transaction struct {
	ID     uuid.UUID       `json:"id" db:"id"`
	UserID uuid.UUID       `json:"user_id" db:"user_id"`
	Type   Type            `json:"type" db:"type"`
	Amount decimal.Decimal `json:"amount" db:"amount"`

	AffectedWalletIDs   []uuid.UUID `json:"affected_wallet_ids,omitempty" db:"affected_wallet_ids"`
	SourceWalletID      *uuid.UUID  `json:"source_wallet_id,omitempty" db:"source_wallet_id"`
	DestinationWalletID *uuid.UUID  `json:"destination_wallet_id,omitempty" db:"destination_wallet_id"`

	Note string `json:"note,omitempty" db:"note"`

	// TransactionDate is the user-asserted effective date. Replay order is
	// (TransactionDate, RecordCreatedAt) ascending; RecordCreatedAt is only
	// a tie-breaker and audit stamp, never the financial ordering.
	TransactionDate time.Time `json:"transaction_date" db:"transaction_date"`
	RecordCreatedAt time.Time `json:"record_created_at" db:"record_created_at"`
	RecordUpdatedAt time.Time `json:"record_updated_at" db:"record_updated_at"`
}

// Validate checks the transaction's own shape: type, amount and the
// per-type wallet references. Wallet kinds need a store lookup and are
// checked by the service's validator.
func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrInvalidUserID
	}

	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}

	if t.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	if t.TransactionDate.IsZero() {
		return ErrMissingTransactionDate
	}

	switch t.Type {
	case TypeIncome, TypeExpense:
		if len(t.AffectedWalletIDs) == 0 {
			return ErrEmptyWalletSet
		}
		if len(t.AffectedWalletIDs) > 2 {
			return ErrWalletSetShape
		}
		seen := make(map[uuid.UUID]bool, len(t.AffectedWalletIDs))
		for _, id := range t.AffectedWalletIDs {
			if id == uuid.Nil {
				return ErrEmptyWalletSet
			}
			if seen[id] {
				return ErrWalletSetShape
			}
			seen[id] = true
		}
		if t.SourceWalletID != nil || t.DestinationWalletID != nil {
			return ErrWalletSetShape
		}
	case TypeTransfer:
		if t.SourceWalletID == nil || t.DestinationWalletID == nil {
			return ErrMissingTransferWallets
		}
		if *t.SourceWalletID == *t.DestinationWalletID {
			return ErrSelfTransfer
		}
		if len(t.AffectedWalletIDs) != 0 {
			return ErrWalletSetShape
		}
	}

	return nil
}

// WalletIDs returns every wallet id the transaction touches.
func (t *Transaction) WalletIDs() []uuid.UUID {
	switch t.Type {
	case TypeTransfer:
		ids := make([]uuid.UUID, 0, 2)
		if t.SourceWalletID != nil {
			ids = append(ids, *t.SourceWalletID)
		}
		if t.DestinationWalletID != nil {
			ids = append(ids, *t.DestinationWalletID)
		}
		return ids
	default:
		return t.AffectedWalletIDs
	}
}

// ListFilter narrows a transaction listing. Nil fields match everything.
// Date bounds are inclusive and compare TransactionDate, not
// RecordCreatedAt.
type ListFilter struct {
	Type     *Type
	WalletID *uuid.UUID
	From     *time.Time
	To       *time.Time
}

// Matches reports whether the transaction passes every set field.
func (f ListFilter) Matches(tx *Transaction) bool {
	if f.Type != nil && tx.Type != *f.Type {
		return false
	}
	if f.From != nil && tx.TransactionDate.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.TransactionDate.After(*f.To) {
		return false
	}
	if f.WalletID != nil {
		found := false
		for _, id := range tx.WalletIDs() {
			if id == *f.WalletID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SortChronological sorts transactions in replay order: TransactionDate
// ascending, ties broken by RecordCreatedAt ascending.
func SortChronological(txs []*Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].TransactionDate.Equal(txs[j].TransactionDate) {
			return txs[i].RecordCreatedAt.Before(txs[j].RecordCreatedAt)
		}
		return txs[i].TransactionDate.Before(txs[j].TransactionDate)
	})
}
