package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrukv/walletbook/internal/ledger"
)

// LedgerRepository implements transaction persistence using PostgreSQL
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

const txColumns = `id, user_id, type, amount, affected_wallet_ids, source_wallet_id,
		destination_wallet_id, note, transaction_date, record_created_at, record_updated_at`

// CreateTransaction creates a new transaction record
func (r *LedgerRepository) CreateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	affected, err := json.Marshal(tx.AffectedWalletIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet set: %w", err)
	}

	query := `
		INSERT INTO transactions (` + txColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.pool.Exec(ctx, query,
		tx.ID,
		tx.UserID,
		string(tx.Type),
		tx.Amount,
		affected,
		tx.SourceWalletID,
		tx.DestinationWalletID,
		tx.Note,
		tx.TransactionDate,
		tx.RecordCreatedAt,
		tx.RecordUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetTransaction retrieves a transaction by ID
func (r *LedgerRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// GetTransactionsByUser retrieves all transactions for a user. Callers
// order the result themselves.
func (r *LedgerRepository) GetTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

// UpdateTransaction replaces a transaction record in place
func (r *LedgerRepository) UpdateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	affected, err := json.Marshal(tx.AffectedWalletIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet set: %w", err)
	}

	query := `
		UPDATE transactions
		SET type = $2, amount = $3, affected_wallet_ids = $4, source_wallet_id = $5,
		    destination_wallet_id = $6, note = $7, transaction_date = $8, record_updated_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		tx.ID,
		string(tx.Type),
		tx.Amount,
		affected,
		tx.SourceWalletID,
		tx.DestinationWalletID,
		tx.Note,
		tx.TransactionDate,
		tx.RecordUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ledger.ErrTransactionNotFound
	}

	return nil
}

// DeleteTransaction deletes a transaction record
func (r *LedgerRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ledger.ErrTransactionNotFound
	}

	return nil
}

// WalletReferenced reports whether any transaction still touches the
// wallet, either via the affected set or as a transfer endpoint.
func (r *LedgerRepository) WalletReferenced(ctx context.Context, walletID uuid.UUID) (bool, error) {
	idJSON, err := json.Marshal(walletID)
	if err != nil {
		return false, fmt.Errorf("failed to marshal wallet id: %w", err)
	}

	query := `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE affected_wallet_ids @> $1::jsonb
			   OR source_wallet_id = $2
			   OR destination_wallet_id = $2
		)
	`

	var referenced bool
	if err := r.pool.QueryRow(ctx, query, idJSON, walletID).Scan(&referenced); err != nil {
		return false, fmt.Errorf("failed to check wallet references: %w", err)
	}

	return referenced, nil
}

func scanTransaction(row rowScanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction
	var txType string
	var affected []byte

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&txType,
		&tx.Amount,
		&affected,
		&tx.SourceWalletID,
		&tx.DestinationWalletID,
		&tx.Note,
		&tx.TransactionDate,
		&tx.RecordCreatedAt,
		&tx.RecordUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Type = ledger.Type(txType)
	if len(affected) > 0 {
		if err := json.Unmarshal(affected, &tx.AffectedWalletIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal wallet set: %w", err)
		}
	}

	return &tx, nil
}
