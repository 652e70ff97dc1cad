package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrukv/walletbook/internal/ledger"
	"github.com/dmitrukv/walletbook/internal/wallet"
)

func testWallets(userID uuid.UUID) (physical, logical *wallet.Wallet) {
	physical = &wallet.Wallet{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "Cash",
		Kind:           wallet.KindPhysical,
		InitialBalance: amount("0"),
	}
	logical = &wallet.Wallet{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "Groceries",
		Kind:           wallet.KindLogical,
		InitialBalance: amount("0"),
	}
	return physical, logical
}

func incomeTx(userID uuid.UUID, amt string, day int, walletIDs ...uuid.UUID) *ledger.Transaction {
	return &ledger.Transaction{
		ID:                uuid.New(),
		UserID:            userID,
		Type:              ledger.TypeIncome,
		Amount:            amount(amt),
		AffectedWalletIDs: walletIDs,
		TransactionDate:   date(day),
		RecordCreatedAt:   date(day),
	}
}

func TestAnalyzer_BalancedHistoryHasNoDiscrepancy(t *testing.T) {
	userID := uuid.New()
	p, l := testWallets(userID)
	an := ledger.NewAnalyzer(testLogger())

	txs := []*ledger.Transaction{
		incomeTx(userID, "100", 1, p.ID, l.ID),
		incomeTx(userID, "50", 2, p.ID, l.ID),
	}

	first := an.FindFirstDiscrepancy(txs, []*wallet.Wallet{p, l})
	assert.Nil(t, first)

	snaps := an.RunningBalances(txs, []*wallet.Wallet{p, l})
	require.Len(t, snaps, 2)
	assert.True(t, snaps[0].PhysicalTotal.Equal(amount("100")))
	assert.True(t, snaps[0].LogicalTotal.Equal(amount("100")))
	assert.True(t, snaps[1].PhysicalTotal.Equal(amount("150")))
	assert.True(t, snaps[1].LogicalTotal.Equal(amount("150")))
}

// A historical record that credited only the physical side marks the exact
// point where the two views diverged.
func TestAnalyzer_OneSidedRecordIsTheFirstDiscrepancy(t *testing.T) {
	userID := uuid.New()
	p, l := testWallets(userID)
	an := ledger.NewAnalyzer(testLogger())

	good := incomeTx(userID, "100", 1, p.ID, l.ID)
	bad := incomeTx(userID, "40", 2, p.ID)
	later := incomeTx(userID, "10", 3, p.ID, l.ID)
	txs := []*ledger.Transaction{good, bad, later}

	first := an.FindFirstDiscrepancy(txs, []*wallet.Wallet{p, l})
	require.NotNil(t, first)
	assert.Equal(t, bad.ID, *first)

	snaps := an.RunningBalances(txs, []*wallet.Wallet{p, l})
	require.Len(t, snaps, 3)
	assert.False(t, snaps[0].IsFirstDiscrepancy)
	assert.True(t, snaps[1].IsFirstDiscrepancy)
	assert.False(t, snaps[2].IsFirstDiscrepancy, "only the first divergence point is flagged")
	assert.True(t, snaps[2].PhysicalTotal.Equal(amount("150")))
	assert.True(t, snaps[2].LogicalTotal.Equal(amount("110")))
}

func TestAnalyzer_TransferWithinViewIsNeutral(t *testing.T) {
	userID := uuid.New()
	p1, l := testWallets(userID)
	p2 := &wallet.Wallet{ID: uuid.New(), UserID: userID, Name: "Savings", Kind: wallet.KindPhysical, InitialBalance: amount("0")}
	an := ledger.NewAnalyzer(testLogger())

	transfer := &ledger.Transaction{
		ID:                  uuid.New(),
		UserID:              userID,
		Type:                ledger.TypeTransfer,
		Amount:              amount("60"),
		SourceWalletID:      &p1.ID,
		DestinationWalletID: &p2.ID,
		TransactionDate:     date(2),
		RecordCreatedAt:     date(2),
	}
	txs := []*ledger.Transaction{
		incomeTx(userID, "100", 1, p1.ID, l.ID),
		transfer,
	}

	first := an.FindFirstDiscrepancy(txs, []*wallet.Wallet{p1, p2, l})
	assert.Nil(t, first)

	snaps := an.RunningBalances(txs, []*wallet.Wallet{p1, p2, l})
	require.Len(t, snaps, 2)
	assert.True(t, snaps[1].PhysicalTotal.Equal(amount("100")), "transfer moves money, totals unchanged")
	assert.True(t, snaps[1].LogicalTotal.Equal(amount("100")))
}

// Replay order follows the transaction date, not the order records were
// inserted or handed to the analyzer.
func TestAnalyzer_ReplayOrderedByTransactionDate(t *testing.T) {
	userID := uuid.New()
	p, l := testWallets(userID)
	an := ledger.NewAnalyzer(testLogger())

	// The backdated one-sided record comes last in slice order but first
	// chronologically, so it must be the flagged divergence point.
	backdated := incomeTx(userID, "5", 1, p.ID)
	recent := incomeTx(userID, "20", 5, l.ID)
	txs := []*ledger.Transaction{recent, backdated}

	first := an.FindFirstDiscrepancy(txs, []*wallet.Wallet{p, l})
	require.NotNil(t, first)
	assert.Equal(t, backdated.ID, *first)

	snaps := an.RunningBalances(txs, []*wallet.Wallet{p, l})
	require.Len(t, snaps, 2)
	assert.Equal(t, backdated.ID, snaps[0].Transaction.ID)
	assert.Equal(t, recent.ID, snaps[1].Transaction.ID)
}

func TestAnalyzer_SameDateTieBrokenByRecordCreation(t *testing.T) {
	userID := uuid.New()
	p, l := testWallets(userID)
	an := ledger.NewAnalyzer(testLogger())

	older := incomeTx(userID, "10", 1, p.ID, l.ID)
	older.RecordCreatedAt = date(1).Add(1 * time.Hour)
	newer := incomeTx(userID, "20", 1, p.ID, l.ID)
	newer.RecordCreatedAt = date(1).Add(2 * time.Hour)

	snaps := an.RunningBalances([]*ledger.Transaction{newer, older}, []*wallet.Wallet{p, l})
	require.Len(t, snaps, 2)
	assert.Equal(t, older.ID, snaps[0].Transaction.ID)
	assert.True(t, snaps[0].PhysicalTotal.Equal(amount("10")))
	assert.True(t, snaps[1].PhysicalTotal.Equal(amount("30")))
}

func TestAnalyzer_InitialBalancesSeedTheReplay(t *testing.T) {
	userID := uuid.New()
	p, l := testWallets(userID)
	p.InitialBalance = amount("500")
	l.InitialBalance = amount("500")
	an := ledger.NewAnalyzer(testLogger())

	txs := []*ledger.Transaction{incomeTx(userID, "25", 1, p.ID, l.ID)}

	snaps := an.RunningBalances(txs, []*wallet.Wallet{p, l})
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].PhysicalTotal.Equal(amount("525")))
	assert.True(t, snaps[0].LogicalTotal.Equal(amount("525")))
	assert.Nil(t, an.FindFirstDiscrepancy(txs, []*wallet.Wallet{p, l}))
}

func TestAnalyzer_UnknownWalletReferenceContributesNothing(t *testing.T) {
	userID := uuid.New()
	p, l := testWallets(userID)
	an := ledger.NewAnalyzer(testLogger())

	// References a wallet that was hard-deleted out of band. Its share of
	// the credit has nowhere to land, which itself shows up as divergence.
	txs := []*ledger.Transaction{incomeTx(userID, "100", 1, p.ID, uuid.New())}

	first := an.FindFirstDiscrepancy(txs, []*wallet.Wallet{p, l})
	require.NotNil(t, first)
	assert.Equal(t, txs[0].ID, *first)

	snaps := an.RunningBalances(txs, []*wallet.Wallet{p, l})
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].PhysicalTotal.Equal(amount("100")))
	assert.True(t, snaps[0].LogicalTotal.Equal(amount("0")))
}

func TestAnalyzer_EmptyHistory(t *testing.T) {
	userID := uuid.New()
	p, l := testWallets(userID)
	an := ledger.NewAnalyzer(testLogger())

	assert.Nil(t, an.FindFirstDiscrepancy(nil, []*wallet.Wallet{p, l}))
	assert.Empty(t, an.RunningBalances(nil, []*wallet.Wallet{p, l}))
}

func TestAnalyzer_ReplayIsReadOnly(t *testing.T) {
	userID := uuid.New()
	p, l := testWallets(userID)
	an := ledger.NewAnalyzer(testLogger())

	recent := incomeTx(userID, "20", 5, p.ID, l.ID)
	backdated := incomeTx(userID, "10", 1, p.ID, l.ID)
	txs := []*ledger.Transaction{recent, backdated}

	first := an.RunningBalances(txs, []*wallet.Wallet{p, l})
	second := an.RunningBalances(txs, []*wallet.Wallet{p, l})

	assert.Equal(t, recent.ID, txs[0].ID, "input slice order untouched")
	require.Len(t, second, 2)
	for i := range first {
		assert.Equal(t, first[i].Transaction.ID, second[i].Transaction.ID)
		assert.True(t, first[i].PhysicalTotal.Equal(second[i].PhysicalTotal))
	}
}
