package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrukv/walletbook/internal/ledger"
)

// AuditReport is the result of replaying a user's full history against
// the dual-view invariant.
type AuditReport struct {
	Consistent          bool       `json:"consistent"`
	FirstDiscrepancyID  *uuid.UUID `json:"first_discrepancy_id,omitempty"`
	TransactionsAudited int        `json:"transactions_audited"`
	GeneratedAt         time.Time  `json:"generated_at"`
}

// RunningBalanceEntry is one row of the running-balance report.
type RunningBalanceEntry struct {
	TransactionID      uuid.UUID       `json:"transaction_id"`
	Type               ledger.Type     `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	Note               string          `json:"note,omitempty"`
	TransactionDate    time.Time       `json:"transaction_date"`
	PhysicalTotal      decimal.Decimal `json:"physical_total"`
	LogicalTotal       decimal.Decimal `json:"logical_total"`
	IsFirstDiscrepancy bool            `json:"is_first_discrepancy"`
}

// RunningBalanceReport lists per-transaction running totals, newest
// first for display.
type RunningBalanceReport struct {
	Entries     []RunningBalanceEntry `json:"entries"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// MonthlySummary aggregates a calendar month by effective transaction
// date. Transfers move money within one view, so they are counted but
// excluded from the income and expense totals.
type MonthlySummary struct {
	Year          int             `json:"year"`
	Month         time.Month      `json:"month"`
	IncomeTotal   decimal.Decimal `json:"income_total"`
	ExpenseTotal  decimal.Decimal `json:"expense_total"`
	Net           decimal.Decimal `json:"net"`
	IncomeCount   int             `json:"income_count"`
	ExpenseCount  int             `json:"expense_count"`
	TransferCount int             `json:"transfer_count"`
	GeneratedAt   time.Time       `json:"generated_at"`
}
