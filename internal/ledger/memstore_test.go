package ledger_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrukv/walletbook/internal/ledger"
	"github.com/dmitrukv/walletbook/internal/wallet"
	"github.com/dmitrukv/walletbook/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("development", io.Discard)
}

// memWalletStore is an in-memory WalletStore with failure injection.
type memWalletStore struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*wallet.Wallet

	// failBalanceWrite makes UpdateBalance fail for the given wallet.
	failBalanceWrite map[uuid.UUID]error
}

func newMemWalletStore() *memWalletStore {
	return &memWalletStore{
		wallets:          make(map[uuid.UUID]*wallet.Wallet),
		failBalanceWrite: make(map[uuid.UUID]error),
	}
}

func (s *memWalletStore) add(w *wallet.Wallet) *wallet.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.ID] = w
	return w
}

func (s *memWalletStore) GetWallet(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok {
		return nil, wallet.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *memWalletStore) GetWalletsByUser(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*wallet.Wallet
	for _, w := range s.wallets {
		if w.UserID == userID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memWalletStore) UpdateBalance(ctx context.Context, id uuid.UUID, newBalance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failBalanceWrite[id]; err != nil {
		return err
	}
	w, ok := s.wallets[id]
	if !ok {
		return wallet.ErrWalletNotFound
	}
	w.Balance = newBalance
	w.UpdatedAt = time.Now()
	return nil
}

func (s *memWalletStore) balance(id uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets[id].Balance
}

// memTxStore is an in-memory TransactionStore with failure injection.
type memTxStore struct {
	mu  sync.Mutex
	txs map[uuid.UUID]*ledger.Transaction

	createErr error
	updateErr error
	deleteErr error
}

func newMemTxStore() *memTxStore {
	return &memTxStore{txs: make(map[uuid.UUID]*ledger.Transaction)}
}

func (s *memTxStore) GetTransaction(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok {
		return nil, ledger.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (s *memTxStore) GetTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ledger.Transaction
	for _, tx := range s.txs {
		if tx.UserID == userID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memTxStore) CreateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	cp := *tx
	s.txs[tx.ID] = &cp
	return nil
}

func (s *memTxStore) UpdateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.txs[tx.ID]; !ok {
		return ledger.ErrTransactionNotFound
	}
	cp := *tx
	s.txs[tx.ID] = &cp
	return nil
}

func (s *memTxStore) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.txs[id]; !ok {
		return ledger.ErrTransactionNotFound
	}
	delete(s.txs, id)
	return nil
}

func (s *memTxStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

// physicalLogicalPair seeds a physical and a logical wallet for a user.
func physicalLogicalPair(store *memWalletStore, userID uuid.UUID, initial string) (*wallet.Wallet, *wallet.Wallet) {
	bal := decimal.RequireFromString(initial)
	p := store.add(&wallet.Wallet{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "Checking",
		Kind:           wallet.KindPhysical,
		InitialBalance: bal,
		Balance:        bal,
	})
	l := store.add(&wallet.Wallet{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "Budget",
		Kind:           wallet.KindLogical,
		InitialBalance: bal,
		Balance:        bal,
	})
	return p, l
}
