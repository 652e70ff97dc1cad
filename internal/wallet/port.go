package wallet

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for wallet persistence operations
type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Wallet, error)
	Update(ctx context.Context, w *Wallet) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByUserAndName(ctx context.Context, userID uuid.UUID, name string) (bool, error)
}

// TransactionRefChecker reports whether any transaction still references a
// wallet. Implemented by the ledger store; used to refuse deleting wallets
// with history.
type TransactionRefChecker interface {
	WalletReferenced(ctx context.Context, walletID uuid.UUID) (bool, error)
}
