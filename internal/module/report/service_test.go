package report

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrukv/walletbook/internal/ledger"
	"github.com/dmitrukv/walletbook/pkg/logger"
)

type fakeLedger struct {
	snaps []ledger.BalanceSnapshot
	txs   []*ledger.Transaction
}

func (f *fakeLedger) RunningBalances(ctx context.Context, userID uuid.UUID) ([]ledger.BalanceSnapshot, error) {
	return f.snaps, nil
}

func (f *fakeLedger) List(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	out := make([]*ledger.Transaction, 0, len(f.txs))
	for _, tx := range f.txs {
		if filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

type fakeCache struct {
	entries map[string][]byte
	gets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, userID uuid.UUID, kind string, dest any) (bool, error) {
	c.gets++
	data, ok := c.entries[userID.String()+kind]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(ctx context.Context, userID uuid.UUID, kind string, report any) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	c.entries[userID.String()+kind] = data
	return nil
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(txType ledger.Type, amount string, day int) *ledger.Transaction {
	return &ledger.Transaction{
		ID:              uuid.New(),
		Type:            txType,
		Amount:          amt(amount),
		TransactionDate: time.Date(2025, 5, day, 0, 0, 0, 0, time.UTC),
	}
}

func snap(t *ledger.Transaction, physical, logical string, first bool) ledger.BalanceSnapshot {
	return ledger.BalanceSnapshot{
		Transaction:        t,
		PhysicalTotal:      amt(physical),
		LogicalTotal:       amt(logical),
		IsFirstDiscrepancy: first,
	}
}

func testLogger() *logger.Logger {
	return logger.New("development", io.Discard)
}

func TestAudit_Consistent(t *testing.T) {
	t1 := tx(ledger.TypeIncome, "100", 1)
	led := &fakeLedger{snaps: []ledger.BalanceSnapshot{snap(t1, "100", "100", false)}}
	svc := NewService(led, nil, testLogger())

	rep, err := svc.Audit(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, rep.Consistent)
	assert.Nil(t, rep.FirstDiscrepancyID)
	assert.Equal(t, 1, rep.TransactionsAudited)
}

func TestAudit_ReportsFirstDivergence(t *testing.T) {
	t1 := tx(ledger.TypeIncome, "100", 1)
	t2 := tx(ledger.TypeIncome, "40", 2)
	led := &fakeLedger{snaps: []ledger.BalanceSnapshot{
		snap(t1, "100", "100", false),
		snap(t2, "140", "100", true),
	}}
	svc := NewService(led, nil, testLogger())

	rep, err := svc.Audit(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, rep.Consistent)
	require.NotNil(t, rep.FirstDiscrepancyID)
	assert.Equal(t, t2.ID, *rep.FirstDiscrepancyID)
}

func TestRunningBalances_NewestFirst(t *testing.T) {
	t1 := tx(ledger.TypeIncome, "100", 1)
	t2 := tx(ledger.TypeExpense, "30", 2)
	led := &fakeLedger{snaps: []ledger.BalanceSnapshot{
		snap(t1, "100", "100", false),
		snap(t2, "70", "70", false),
	}}
	svc := NewService(led, nil, testLogger())

	rep, err := svc.RunningBalances(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, rep.Entries, 2)
	assert.Equal(t, t2.ID, rep.Entries[0].TransactionID)
	assert.Equal(t, t1.ID, rep.Entries[1].TransactionID)
	assert.True(t, rep.Entries[1].PhysicalTotal.Equal(amt("100")))
}

func TestMonthly_AggregatesByEffectiveDate(t *testing.T) {
	may := []*ledger.Transaction{
		tx(ledger.TypeIncome, "1000", 1),
		tx(ledger.TypeExpense, "250.50", 10),
		tx(ledger.TypeExpense, "49.50", 20),
		tx(ledger.TypeTransfer, "500", 15),
	}
	june := tx(ledger.TypeExpense, "999", 1)
	june.TransactionDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	led := &fakeLedger{txs: append(may, june)}
	svc := NewService(led, nil, testLogger())

	sum, err := svc.Monthly(context.Background(), uuid.New(), 2025, time.May)
	require.NoError(t, err)
	assert.True(t, sum.IncomeTotal.Equal(amt("1000")))
	assert.True(t, sum.ExpenseTotal.Equal(amt("300")))
	assert.True(t, sum.Net.Equal(amt("700")))
	assert.Equal(t, 1, sum.IncomeCount)
	assert.Equal(t, 2, sum.ExpenseCount)
	assert.Equal(t, 1, sum.TransferCount, "transfers counted but excluded from totals")
}

func TestAudit_UsesCacheOnSecondCall(t *testing.T) {
	t1 := tx(ledger.TypeIncome, "100", 1)
	led := &fakeLedger{snaps: []ledger.BalanceSnapshot{snap(t1, "100", "100", false)}}
	cache := newFakeCache()
	svc := NewService(led, cache, testLogger())
	userID := uuid.New()

	first, err := svc.Audit(context.Background(), userID)
	require.NoError(t, err)
	second, err := svc.Audit(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.Consistent, second.Consistent)
}
