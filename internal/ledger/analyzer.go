package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrukv/walletbook/internal/wallet"
	"github.com/dmitrukv/walletbook/pkg/logger"
	"github.com/dmitrukv/walletbook/pkg/money"
)

// BalanceSnapshot is the state of both views after one transaction in the
// replay. IsFirstDiscrepancy marks only the first divergence; later
// divergent states are reported but not flagged.
type BalanceSnapshot struct {
	Transaction        *Transaction    `json:"transaction"`
	PhysicalTotal      decimal.Decimal `json:"physical_total"`
	LogicalTotal       decimal.Decimal `json:"logical_total"`
	IsFirstDiscrepancy bool            `json:"is_first_discrepancy"`
}

// Analyzer localizes the first point in transaction history where the
// dual-view invariant breaks, by folding the full history oldest-first
// over the wallets' initial balances.
//
// The analyzer never touches the wallet store's live balances; it works on
// a local map so that a corrupted stored balance cannot mask or fake a
// discrepancy in history.
type Analyzer struct {
	log *logger.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(log *logger.Logger) *Analyzer {
	return &Analyzer{log: log.WithField("component", "analyzer")}
}

// FindFirstDiscrepancy returns the id of the first transaction after which
// the physical and logical totals diverge beyond epsilon, or nil if the
// history is empty or never diverges.
func (a *Analyzer) FindFirstDiscrepancy(txs []*Transaction, wallets []*wallet.Wallet) *uuid.UUID {
	for _, snap := range a.RunningBalances(txs, wallets) {
		if snap.IsFirstDiscrepancy {
			id := snap.Transaction.ID
			return &id
		}
	}
	return nil
}

// RunningBalances replays all transactions in chronological order and
// returns one snapshot per transaction, oldest-first. Presentation layers
// reverse the slice for newest-first display; the computation itself must
// always proceed oldest-first.
func (a *Analyzer) RunningBalances(txs []*Transaction, wallets []*wallet.Wallet) []BalanceSnapshot {
	ordered := make([]*Transaction, len(txs))
	copy(ordered, txs)
	SortChronological(ordered)

	running := make(map[uuid.UUID]decimal.Decimal, len(wallets))
	kinds := make(map[uuid.UUID]wallet.Kind, len(wallets))
	for _, w := range wallets {
		running[w.ID] = w.InitialBalance
		kinds[w.ID] = w.Kind
	}

	snapshots := make([]BalanceSnapshot, 0, len(ordered))
	found := false

	for _, tx := range ordered {
		deltas, err := Deltas(tx, Forward)
		if err != nil {
			// Malformed historical record: contributes nothing, but the
			// replay keeps going so later history is still audited.
			a.log.Warn("skipping malformed transaction during replay",
				"transaction_id", tx.ID, "error", err)
			deltas = nil
		}

		for _, d := range deltas {
			if _, ok := running[d.WalletID]; !ok {
				// Reference to a wallet that no longer exists. Zero
				// contribution, flagged rather than silently "correct".
				a.log.Warn("transaction references unknown wallet",
					"transaction_id", tx.ID, "wallet_id", d.WalletID)
				continue
			}
			running[d.WalletID] = running[d.WalletID].Add(d.Delta)
		}

		physical, logical := decimal.Zero, decimal.Zero
		for id, bal := range running {
			switch kinds[id] {
			case wallet.KindPhysical:
				physical = physical.Add(bal)
			case wallet.KindLogical:
				logical = logical.Add(bal)
			}
		}

		snap := BalanceSnapshot{
			Transaction:   tx,
			PhysicalTotal: physical,
			LogicalTotal:  logical,
		}
		if !found && !money.Equal(physical, logical) {
			snap.IsFirstDiscrepancy = true
			found = true
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots
}
