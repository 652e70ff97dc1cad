package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service provides business logic for wallet operations
type Service struct {
	repo     Repository
	refCheck TransactionRefChecker
}

// NewService creates a new wallet service
func NewService(repo Repository, refCheck TransactionRefChecker) *Service {
	return &Service{repo: repo, refCheck: refCheck}
}

// Create creates a new wallet for a user. The current balance starts at the
// initial balance; from then on only the ledger engine moves it.
func (s *Service) Create(ctx context.Context, w *Wallet) (*Wallet, error) {
	if err := w.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	exists, err := s.repo.ExistsByUserAndName(ctx, w.UserID, w.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check wallet existence: %w", err)
	}

	if exists {
		return nil, ErrDuplicateWalletName
	}

	w.ID = uuid.New()
	w.Balance = w.InitialBalance
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	return w, nil
}

// GetByID retrieves a wallet by ID and validates user ownership
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Wallet, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if w.UserID != userID {
		return nil, ErrUnauthorizedAccess
	}

	return w, nil
}

// List retrieves all wallets for a user
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Wallet, error) {
	wallets, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	return wallets, nil
}

// Rename changes a wallet's name. Kind, initial balance and balance are
// immutable through this path.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, userID uuid.UUID, name string) (*Wallet, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.UserID != userID {
		return nil, ErrUnauthorizedAccess
	}

	if name != existing.Name {
		exists, err := s.repo.ExistsByUserAndName(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check wallet name: %w", err)
		}
		if exists {
			return nil, ErrDuplicateWalletName
		}
	}

	existing.Name = name
	if err := existing.ValidateUpdate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	return existing, nil
}

// Delete deletes a wallet. Wallets still referenced by transactions cannot
// be deleted; reversing history against a missing wallet would corrupt the
// dual-view invariant.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if w.UserID != userID {
		return ErrUnauthorizedAccess
	}

	referenced, err := s.refCheck.WalletReferenced(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check wallet references: %w", err)
	}
	if referenced {
		return ErrWalletInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}

	return nil
}
