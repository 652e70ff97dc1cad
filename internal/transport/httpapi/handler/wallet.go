package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrukv/walletbook/internal/transport/httpapi/middleware"
	"github.com/dmitrukv/walletbook/internal/wallet"
	"github.com/dmitrukv/walletbook/pkg/money"
)

// WalletServiceInterface defines the interface for wallet operations
type WalletServiceInterface interface {
	Create(ctx context.Context, w *wallet.Wallet) (*wallet.Wallet, error)
	List(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error)
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*wallet.Wallet, error)
	Rename(ctx context.Context, id uuid.UUID, userID uuid.UUID, name string) (*wallet.Wallet, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

// WalletHandler handles wallet-related HTTP requests
type WalletHandler struct {
	walletService WalletServiceInterface
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService WalletServiceInterface) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// CreateWalletRequest represents the wallet creation request
type CreateWalletRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	InitialBalance string `json:"initial_balance"`
}

// UpdateWalletRequest represents the wallet update request
type UpdateWalletRequest struct {
	Name string `json:"name"`
}

// WalletResponse represents a wallet response
type WalletResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	InitialBalance string `json:"initial_balance"`
	Balance        string `json:"balance"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// WalletsListResponse represents the response for listing wallets
type WalletsListResponse struct {
	Wallets []WalletResponse `json:"wallets"`
}

func toWalletResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:             w.ID.String(),
		UserID:         w.UserID.String(),
		Name:           w.Name,
		Kind:           string(w.Kind),
		InitialBalance: w.InitialBalance.String(),
		Balance:        w.Balance.String(),
		CreatedAt:      w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      w.UpdatedAt.Format(time.RFC3339),
	}
}

func respondWalletError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wallet.ErrWalletNotFound),
		errors.Is(err, wallet.ErrUnauthorizedAccess):
		// Foreign wallets look identical to missing ones.
		respondError(w, "wallet not found", http.StatusNotFound)
	case errors.Is(err, wallet.ErrDuplicateWalletName):
		respondError(w, "wallet name already exists", http.StatusConflict)
	case errors.Is(err, wallet.ErrWalletInUse):
		respondError(w, "wallet has transaction history and cannot be deleted", http.StatusConflict)
	case errors.Is(err, wallet.ErrInvalidWalletKind):
		respondError(w, "wallet kind must be physical or logical", http.StatusBadRequest)
	case errors.Is(err, wallet.ErrMissingWalletName):
		respondError(w, "wallet name is required", http.StatusBadRequest)
	case errors.Is(err, wallet.ErrWalletNameTooLong):
		respondError(w, "wallet name is too long", http.StatusBadRequest)
	default:
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}

// CreateWallet handles POST /wallets
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	initial := decimal.Zero
	if req.InitialBalance != "" {
		var err error
		initial, err = money.Parse(req.InitialBalance)
		if err != nil {
			respondError(w, "invalid initial balance", http.StatusBadRequest)
			return
		}
	}

	created, err := h.walletService.Create(r.Context(), &wallet.Wallet{
		UserID:         userID,
		Name:           req.Name,
		Kind:           wallet.Kind(req.Kind),
		InitialBalance: initial,
	})
	if err != nil {
		respondWalletError(w, err)
		return
	}

	respondJSON(w, toWalletResponse(created), http.StatusCreated)
}

// GetWallets handles GET /wallets
func (h *WalletHandler) GetWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	wallets, err := h.walletService.List(r.Context(), userID)
	if err != nil {
		respondWalletError(w, err)
		return
	}

	resp := WalletsListResponse{Wallets: make([]WalletResponse, 0, len(wallets))}
	for _, wlt := range wallets {
		resp.Wallets = append(resp.Wallets, toWalletResponse(wlt))
	}

	respondJSON(w, resp, http.StatusOK)
}

// GetWallet handles GET /wallets/{id}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid wallet id", http.StatusBadRequest)
		return
	}

	wlt, err := h.walletService.GetByID(r.Context(), id, userID)
	if err != nil {
		respondWalletError(w, err)
		return
	}

	respondJSON(w, toWalletResponse(wlt), http.StatusOK)
}

// UpdateWallet handles PUT /wallets/{id}
func (h *WalletHandler) UpdateWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid wallet id", http.StatusBadRequest)
		return
	}

	var req UpdateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.walletService.Rename(r.Context(), id, userID, req.Name)
	if err != nil {
		respondWalletError(w, err)
		return
	}

	respondJSON(w, toWalletResponse(updated), http.StatusOK)
}

// DeleteWallet handles DELETE /wallets/{id}
func (h *WalletHandler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid wallet id", http.StatusBadRequest)
		return
	}

	if err := h.walletService.Delete(r.Context(), id, userID); err != nil {
		respondWalletError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
