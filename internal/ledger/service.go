package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrukv/walletbook/internal/wallet"
	"github.com/dmitrukv/walletbook/pkg/logger"
)

// ReportInvalidator drops cached audit reports when a user's history
// changes. Wired to the Redis report cache in production; optional.
type ReportInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// Service is the ledger engine's mutation coordinator.
//
// Every create, edit and delete is serialized per user: the reverse step
// and the reapply step of an edit are not atomic across wallet writes, so
// interleaving two operations on the same user's wallets could transiently
// break the dual-view invariant. Audits take the same lock so the analyzer
// always sees a settled snapshot.
type Service struct {
	wallets  WalletStore
	txs      TransactionStore
	analyzer *Analyzer
	locks    *userLocks
	log      *logger.Logger

	invalidator ReportInvalidator
}

// NewService creates a new ledger service
func NewService(wallets WalletStore, txs TransactionStore, log *logger.Logger) *Service {
	return &Service{
		wallets:  wallets,
		txs:      txs,
		analyzer: NewAnalyzer(log),
		locks:    newUserLocks(),
		log:      log.WithField("component", "ledger"),
	}
}

// SetReportInvalidator wires a report cache to be invalidated on mutations.
func (s *Service) SetReportInvalidator(inv ReportInvalidator) {
	s.invalidator = inv
}

// CreateInput carries the caller-supplied fields of a new or edited
// transaction. The record timestamps are owned by the service.
type CreateInput struct {
	Type                Type
	Amount              decimal.Decimal
	AffectedWalletIDs   []uuid.UUID
	SourceWalletID      *uuid.UUID
	DestinationWalletID *uuid.UUID
	Note                string
	TransactionDate     time.Time
}

// Create validates the input, applies its forward effect to the wallet
// balances and then persists the record. If persisting fails the applied
// effect is undone, so a failure never leaves phantom balances behind.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*Transaction, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	now := time.Now()
	tx := &Transaction{
		ID:                  uuid.New(),
		UserID:              userID,
		Type:                input.Type,
		Amount:              input.Amount,
		AffectedWalletIDs:   input.AffectedWalletIDs,
		SourceWalletID:      input.SourceWalletID,
		DestinationWalletID: input.DestinationWalletID,
		Note:                input.Note,
		TransactionDate:     input.TransactionDate,
		RecordCreatedAt:     now,
		RecordUpdatedAt:     now,
	}

	if err := s.validate(ctx, tx); err != nil {
		return nil, err
	}

	deltas, err := Deltas(tx, Forward)
	if err != nil {
		return nil, err
	}

	applied, err := applyDeltas(ctx, s.wallets, deltas)
	if err != nil {
		return nil, s.compensate(ctx, tx.ID, "create", applied, err)
	}

	if err := s.txs.CreateTransaction(ctx, tx); err != nil {
		err = fmt.Errorf("failed to persist transaction: %w", err)
		return nil, s.compensate(ctx, tx.ID, "create", applied, err)
	}

	s.invalidateReports(ctx, userID)
	s.log.Info("transaction created", "transaction_id", tx.ID, "type", tx.Type, "user_id", userID)
	return tx, nil
}

// Edit atomically replaces a transaction's effect: it reverses the
// original snapshot's deltas, applies the updated transaction's forward
// deltas and persists the updated record.
//
// The new fields are validated before any balance is touched, so plain
// validation failures never enter the dangerous window. Failures after the
// reversal are compensated by re-applying the original snapshot; if that
// compensation itself fails a PartialMutationError is surfaced and the
// record is left unchanged.
func (s *Service) Edit(ctx context.Context, userID uuid.UUID, id uuid.UUID, input CreateInput) (*Transaction, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	original, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated := &Transaction{
		ID:                  original.ID,
		UserID:              original.UserID,
		Type:                input.Type,
		Amount:              input.Amount,
		AffectedWalletIDs:   input.AffectedWalletIDs,
		SourceWalletID:      input.SourceWalletID,
		DestinationWalletID: input.DestinationWalletID,
		Note:                input.Note,
		TransactionDate:     input.TransactionDate,
		RecordCreatedAt:     original.RecordCreatedAt,
		RecordUpdatedAt:     time.Now(),
	}

	if err := s.validate(ctx, updated); err != nil {
		return nil, err
	}

	reverse, err := Deltas(original, Reverse)
	if err != nil {
		return nil, fmt.Errorf("failed to derive reversal of %s: %w", original.ID, err)
	}
	forward, err := Deltas(updated, Forward)
	if err != nil {
		return nil, err
	}

	appliedRev, err := applyDeltas(ctx, s.wallets, reverse)
	if err != nil {
		return nil, s.compensate(ctx, original.ID, "edit", appliedRev, err)
	}

	appliedFwd, err := applyDeltas(ctx, s.wallets, forward)
	if err != nil {
		// Undo the partial forward and the completed reversal.
		undo := append(negate(appliedFwd), negate(appliedRev)...)
		return nil, s.compensate(ctx, original.ID, "edit", nil, err, undo...)
	}

	if err := s.txs.UpdateTransaction(ctx, updated); err != nil {
		err = fmt.Errorf("failed to persist updated transaction: %w", err)
		undo := append(negate(appliedFwd), negate(appliedRev)...)
		return nil, s.compensate(ctx, original.ID, "edit", nil, err, undo...)
	}

	s.invalidateReports(ctx, userID)
	s.log.Info("transaction edited", "transaction_id", updated.ID, "type", updated.Type, "user_id", userID)
	return updated, nil
}

// Delete reverses the transaction's effect and removes the record. If the
// reversal fails the record is kept: deleting a record whose effect was
// never reversed would silently corrupt the dual-view invariant.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	original, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	reverse, err := Deltas(original, Reverse)
	if err != nil {
		return fmt.Errorf("failed to derive reversal of %s: %w", original.ID, err)
	}

	applied, err := applyDeltas(ctx, s.wallets, reverse)
	if err != nil {
		return s.compensate(ctx, original.ID, "delete", applied, err)
	}

	if err := s.txs.DeleteTransaction(ctx, id); err != nil {
		err = fmt.Errorf("failed to delete transaction record: %w", err)
		return s.compensate(ctx, original.ID, "delete", applied, err)
	}

	s.invalidateReports(ctx, userID)
	s.log.Info("transaction deleted", "transaction_id", id, "user_id", userID)
	return nil
}

// Get returns a single transaction after an ownership check.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Transaction, error) {
	return s.getOwned(ctx, userID, id)
}

// List returns the user's transactions matching the filter, sorted
// newest-first for presentation. Replay always re-sorts oldest-first
// internally.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	all, err := s.txs.GetTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := all[:0:0]
	for _, tx := range all {
		if filter.Matches(tx) {
			txs = append(txs, tx)
		}
	}

	SortChronological(txs)
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
	return txs, nil
}

// AuditDiscrepancy replays the user's full history and returns the id of
// the first transaction after which the physical and logical totals
// diverge, or nil if the views never diverge. Runs under the user's
// mutation lock so in-flight edits cannot produce false positives.
func (s *Service) AuditDiscrepancy(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	txs, wallets, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.analyzer.FindFirstDiscrepancy(txs, wallets), nil
}

// RunningBalances replays the user's history and returns one snapshot per
// transaction in oldest-first order. Callers reverse for display.
func (s *Service) RunningBalances(ctx context.Context, userID uuid.UUID) ([]BalanceSnapshot, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	txs, wallets, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.analyzer.RunningBalances(txs, wallets), nil
}

func (s *Service) snapshot(ctx context.Context, userID uuid.UUID) ([]*Transaction, []*wallet.Wallet, error) {
	txs, err := s.txs.GetTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	wallets, err := s.wallets.GetWalletsByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load wallets: %w", err)
	}

	return txs, wallets, nil
}

func (s *Service) getOwned(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Transaction, error) {
	tx, err := s.txs.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	if tx.UserID != userID {
		// Report not-found to avoid confirming foreign ids
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

// compensate undoes already-applied deltas after a failed operation. When
// the undo list is given explicitly it is used as-is; otherwise the
// negation of applied is used. If compensation fails the error escalates
// to a PartialMutationError, logged loudly for manual reconciliation.
func (s *Service) compensate(ctx context.Context, txID uuid.UUID, op string, applied []WalletDelta, cause error, undo ...WalletDelta) error {
	if len(undo) == 0 {
		undo = negate(applied)
	}
	if len(undo) == 0 {
		return cause
	}

	if _, cerr := applyDeltas(ctx, s.wallets, undo); cerr != nil {
		perr := &PartialMutationError{
			TransactionID: txID,
			Op:            op,
			Err:           errors.Join(cause, cerr),
		}
		s.log.Error("wallet balances left inconsistent, manual reconciliation required",
			"transaction_id", txID,
			"op", op,
			"error", perr.Error(),
		)
		return perr
	}

	return cause
}

func (s *Service) invalidateReports(ctx context.Context, userID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userID)
	}
}

// validate checks the transaction's own shape plus the constraints that
// need wallet lookups: ownership, the one-physical-one-logical pair for
// income and expense, and matching kinds for transfers.
func (s *Service) validate(ctx context.Context, tx *Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	kinds := make(map[uuid.UUID]wallet.Kind)
	for _, id := range tx.WalletIDs() {
		w, err := s.wallets.GetWallet(ctx, id)
		if err != nil {
			return fmt.Errorf("wallet %s: %w", id, err)
		}
		if w == nil || w.UserID != tx.UserID {
			return fmt.Errorf("wallet %s: %w", id, ErrWalletNotFound)
		}
		kinds[id] = w.Kind
	}

	switch tx.Type {
	case TypeIncome, TypeExpense:
		if len(tx.AffectedWalletIDs) != 2 {
			return ErrWalletSetShape
		}
		if kinds[tx.AffectedWalletIDs[0]] == kinds[tx.AffectedWalletIDs[1]] {
			return ErrWalletSetShape
		}
	case TypeTransfer:
		if kinds[*tx.SourceWalletID] != kinds[*tx.DestinationWalletID] {
			return ErrTransferKindMismatch
		}
	}

	return nil
}

// userLocks serializes financial operations per user.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// lock acquires the user's mutex and returns the unlock func.
func (l *userLocks) lock(userID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
