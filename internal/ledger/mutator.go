package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletDelta is the signed balance change a transaction applies to one
// wallet.
type WalletDelta struct {
	WalletID uuid.UUID
	Delta    decimal.Decimal
}

// Deltas computes the per-wallet balance changes for a transaction.
//
// Forward applies the transaction's effect; Reverse is the exact negation
// computed from the same snapshot, so reversing stays correct even when
// later transactions have touched the same wallets since. The switch is
// exhaustive over the closed type set.
func Deltas(tx *Transaction, dir Direction) ([]WalletDelta, error) {
	if tx.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	var deltas []WalletDelta

	switch tx.Type {
	case TypeIncome:
		if len(tx.AffectedWalletIDs) == 0 {
			return nil, ErrEmptyWalletSet
		}
		for _, id := range tx.AffectedWalletIDs {
			deltas = append(deltas, WalletDelta{WalletID: id, Delta: tx.Amount})
		}

	case TypeExpense:
		if len(tx.AffectedWalletIDs) == 0 {
			return nil, ErrEmptyWalletSet
		}
		for _, id := range tx.AffectedWalletIDs {
			deltas = append(deltas, WalletDelta{WalletID: id, Delta: tx.Amount.Neg()})
		}

	case TypeTransfer:
		if tx.SourceWalletID == nil || tx.DestinationWalletID == nil {
			return nil, ErrMissingTransferWallets
		}
		if *tx.SourceWalletID == *tx.DestinationWalletID {
			return nil, ErrSelfTransfer
		}
		deltas = []WalletDelta{
			{WalletID: *tx.SourceWalletID, Delta: tx.Amount.Neg()},
			{WalletID: *tx.DestinationWalletID, Delta: tx.Amount},
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransactionType, tx.Type)
	}

	if dir == Reverse {
		for i := range deltas {
			deltas[i].Delta = deltas[i].Delta.Neg()
		}
	}

	return deltas, nil
}

// applyDeltas performs the read-modify-write of each delta against the
// wallet store. It returns the deltas that were actually written, so a
// failing call can be compensated exactly.
func applyDeltas(ctx context.Context, store WalletStore, deltas []WalletDelta) ([]WalletDelta, error) {
	applied := make([]WalletDelta, 0, len(deltas))

	for _, d := range deltas {
		w, err := store.GetWallet(ctx, d.WalletID)
		if err != nil {
			return applied, fmt.Errorf("wallet %s: %w", d.WalletID, err)
		}

		if err := store.UpdateBalance(ctx, d.WalletID, w.Balance.Add(d.Delta)); err != nil {
			return applied, fmt.Errorf("failed to update balance of wallet %s: %w", d.WalletID, err)
		}

		applied = append(applied, d)
	}

	return applied, nil
}

// negate returns the arithmetic negation of a delta list.
func negate(deltas []WalletDelta) []WalletDelta {
	out := make([]WalletDelta, len(deltas))
	for i, d := range deltas {
		out[i] = WalletDelta{WalletID: d.WalletID, Delta: d.Delta.Neg()}
	}
	return out
}
