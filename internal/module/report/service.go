package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrukv/walletbook/internal/ledger"
	"github.com/dmitrukv/walletbook/pkg/logger"
)

// LedgerReader is the slice of the ledger service the reports are built
// from.
type LedgerReader interface {
	RunningBalances(ctx context.Context, userID uuid.UUID) ([]ledger.BalanceSnapshot, error)
	List(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error)
}

// Cache holds prebuilt report payloads per user. The ledger service
// invalidates it on every mutation.
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID, kind string, dest any) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, kind string, report any) error
}

const (
	cacheKindAudit    = "audit"
	cacheKindBalances = "running_balances"
)

// Service builds read-only reports over a user's transaction history
type Service struct {
	ledger LedgerReader
	cache  Cache
	log    *logger.Logger
}

// NewService creates a new report service. The cache is optional.
func NewService(ledgerSvc LedgerReader, cache Cache, log *logger.Logger) *Service {
	return &Service{
		ledger: ledgerSvc,
		cache:  cache,
		log:    log.WithField("component", "report_service"),
	}
}

// Audit replays the full history and reports whether the physical and
// logical views ever diverged, and at which transaction they first did.
func (s *Service) Audit(ctx context.Context, userID uuid.UUID) (*AuditReport, error) {
	if s.cache != nil {
		var cached AuditReport
		if ok, err := s.cache.Get(ctx, userID, cacheKindAudit, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	snaps, err := s.ledger.RunningBalances(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to replay history: %w", err)
	}

	rep := &AuditReport{
		Consistent:          true,
		TransactionsAudited: len(snaps),
		GeneratedAt:         time.Now().UTC(),
	}
	for _, snap := range snaps {
		if snap.IsFirstDiscrepancy {
			id := snap.Transaction.ID
			rep.Consistent = false
			rep.FirstDiscrepancyID = &id
			break
		}
	}

	s.store(ctx, userID, cacheKindAudit, rep)
	return rep, nil
}

// RunningBalances returns per-transaction running totals, newest first.
func (s *Service) RunningBalances(ctx context.Context, userID uuid.UUID) (*RunningBalanceReport, error) {
	if s.cache != nil {
		var cached RunningBalanceReport
		if ok, err := s.cache.Get(ctx, userID, cacheKindBalances, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	snaps, err := s.ledger.RunningBalances(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to replay history: %w", err)
	}

	entries := make([]RunningBalanceEntry, 0, len(snaps))
	// The replay is oldest-first; display wants newest-first.
	for i := len(snaps) - 1; i >= 0; i-- {
		snap := snaps[i]
		entries = append(entries, RunningBalanceEntry{
			TransactionID:      snap.Transaction.ID,
			Type:               snap.Transaction.Type,
			Amount:             snap.Transaction.Amount,
			Note:               snap.Transaction.Note,
			TransactionDate:    snap.Transaction.TransactionDate,
			PhysicalTotal:      snap.PhysicalTotal,
			LogicalTotal:       snap.LogicalTotal,
			IsFirstDiscrepancy: snap.IsFirstDiscrepancy,
		})
	}

	rep := &RunningBalanceReport{
		Entries:     entries,
		GeneratedAt: time.Now().UTC(),
	}

	s.store(ctx, userID, cacheKindBalances, rep)
	return rep, nil
}

// Monthly aggregates one calendar month by effective transaction date.
func (s *Service) Monthly(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*MonthlySummary, error) {
	kind := fmt.Sprintf("summary:%04d-%02d", year, int(month))
	if s.cache != nil {
		var cached MonthlySummary
		if ok, err := s.cache.Get(ctx, userID, kind, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	txs, err := s.ledger.List(ctx, userID, ledger.ListFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	sum := &MonthlySummary{
		Year:         year,
		Month:        month,
		IncomeTotal:  decimal.Zero,
		ExpenseTotal: decimal.Zero,
		GeneratedAt:  time.Now().UTC(),
	}

	for _, tx := range txs {
		switch tx.Type {
		case ledger.TypeIncome:
			sum.IncomeTotal = sum.IncomeTotal.Add(tx.Amount)
			sum.IncomeCount++
		case ledger.TypeExpense:
			sum.ExpenseTotal = sum.ExpenseTotal.Add(tx.Amount)
			sum.ExpenseCount++
		case ledger.TypeTransfer:
			sum.TransferCount++
		}
	}
	sum.Net = sum.IncomeTotal.Sub(sum.ExpenseTotal)

	s.store(ctx, userID, kind, sum)
	return sum, nil
}

func (s *Service) store(ctx context.Context, userID uuid.UUID, kind string, rep any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, userID, kind, rep); err != nil {
		s.log.Warn("failed to cache report", "user_id", userID, "kind", kind, "error", err)
	}
}
