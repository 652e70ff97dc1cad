package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrukv/walletbook/internal/ledger"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeltas_Income(t *testing.T) {
	p, l := uuid.New(), uuid.New()
	tx := &ledger.Transaction{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		Type:              ledger.TypeIncome,
		Amount:            amount("100"),
		AffectedWalletIDs: []uuid.UUID{p, l},
		TransactionDate:   time.Now(),
	}

	deltas, err := ledger.Deltas(tx, ledger.Forward)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.Equal(t, p, deltas[0].WalletID)
	assert.True(t, deltas[0].Delta.Equal(amount("100")))
	assert.Equal(t, l, deltas[1].WalletID)
	assert.True(t, deltas[1].Delta.Equal(amount("100")))
}

func TestDeltas_Expense(t *testing.T) {
	p, l := uuid.New(), uuid.New()
	tx := &ledger.Transaction{
		Type:              ledger.TypeExpense,
		Amount:            amount("42.50"),
		AffectedWalletIDs: []uuid.UUID{p, l},
	}

	deltas, err := ledger.Deltas(tx, ledger.Forward)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	for _, d := range deltas {
		assert.True(t, d.Delta.Equal(amount("-42.50")))
	}
}

func TestDeltas_Transfer(t *testing.T) {
	src, dst := uuid.New(), uuid.New()
	tx := &ledger.Transaction{
		Type:                ledger.TypeTransfer,
		Amount:              amount("50"),
		SourceWalletID:      &src,
		DestinationWalletID: &dst,
	}

	deltas, err := ledger.Deltas(tx, ledger.Forward)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.Equal(t, src, deltas[0].WalletID)
	assert.True(t, deltas[0].Delta.Equal(amount("-50")))
	assert.Equal(t, dst, deltas[1].WalletID)
	assert.True(t, deltas[1].Delta.Equal(amount("50")))
}

func TestDeltas_ReverseNegatesForward(t *testing.T) {
	src, dst := uuid.New(), uuid.New()
	p, l := uuid.New(), uuid.New()

	txs := []*ledger.Transaction{
		{Type: ledger.TypeIncome, Amount: amount("100"), AffectedWalletIDs: []uuid.UUID{p, l}},
		{Type: ledger.TypeExpense, Amount: amount("33.33"), AffectedWalletIDs: []uuid.UUID{p, l}},
		{Type: ledger.TypeTransfer, Amount: amount("7"), SourceWalletID: &src, DestinationWalletID: &dst},
	}

	for _, tx := range txs {
		fwd, err := ledger.Deltas(tx, ledger.Forward)
		require.NoError(t, err)
		rev, err := ledger.Deltas(tx, ledger.Reverse)
		require.NoError(t, err)

		require.Len(t, rev, len(fwd))
		for i := range fwd {
			assert.Equal(t, fwd[i].WalletID, rev[i].WalletID)
			assert.True(t, fwd[i].Delta.Add(rev[i].Delta).IsZero(),
				"forward and reverse deltas must cancel exactly")
		}
	}
}

func TestDeltas_Rejections(t *testing.T) {
	src := uuid.New()

	tests := []struct {
		name    string
		tx      *ledger.Transaction
		wantErr error
	}{
		{
			name:    "zero amount",
			tx:      &ledger.Transaction{Type: ledger.TypeIncome, Amount: decimal.Zero, AffectedWalletIDs: []uuid.UUID{uuid.New()}},
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			tx:      &ledger.Transaction{Type: ledger.TypeExpense, Amount: amount("-5"), AffectedWalletIDs: []uuid.UUID{uuid.New()}},
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name:    "income with no wallets",
			tx:      &ledger.Transaction{Type: ledger.TypeIncome, Amount: amount("5")},
			wantErr: ledger.ErrEmptyWalletSet,
		},
		{
			name:    "transfer without destination",
			tx:      &ledger.Transaction{Type: ledger.TypeTransfer, Amount: amount("5"), SourceWalletID: &src},
			wantErr: ledger.ErrMissingTransferWallets,
		},
		{
			name:    "self transfer",
			tx:      &ledger.Transaction{Type: ledger.TypeTransfer, Amount: amount("5"), SourceWalletID: &src, DestinationWalletID: &src},
			wantErr: ledger.ErrSelfTransfer,
		},
		{
			name:    "unknown type",
			tx:      &ledger.Transaction{Type: ledger.Type("refund"), Amount: amount("5")},
			wantErr: ledger.ErrInvalidTransactionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.Deltas(tt.tx, ledger.Forward)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
