package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrukv/walletbook/internal/wallet"
)

// WalletStore is the narrow persistence surface the engine reads and
// writes balances through. Balance writes go through UpdateBalance only.
type WalletStore interface {
	GetWallet(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error)
	GetWalletsByUser(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, newBalance decimal.Decimal) error
}

// TransactionStore persists transaction records. Listing is an unordered
// set per user; the engine sorts chronologically itself.
type TransactionStore interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)
	CreateTransaction(ctx context.Context, tx *Transaction) error
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}
