package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrukv/walletbook/internal/ledger"
	"github.com/dmitrukv/walletbook/internal/transport/httpapi/middleware"
	"github.com/dmitrukv/walletbook/internal/wallet"
	"github.com/dmitrukv/walletbook/pkg/money"
)

// LedgerServiceInterface defines the ledger operations the handler needs
type LedgerServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, input ledger.CreateInput) (*ledger.Transaction, error)
	Edit(ctx context.Context, userID uuid.UUID, id uuid.UUID, input ledger.CreateInput) (*ledger.Transaction, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*ledger.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	ledgerService LedgerServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledgerService LedgerServiceInterface) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// TransactionRequest represents a create or edit request body
type TransactionRequest struct {
	Type                string   `json:"type"`
	Amount              string   `json:"amount"`
	AffectedWalletIDs   []string `json:"affected_wallet_ids,omitempty"`
	SourceWalletID      *string  `json:"source_wallet_id,omitempty"`
	DestinationWalletID *string  `json:"destination_wallet_id,omitempty"`
	Note                string   `json:"note,omitempty"`
	TransactionDate     string   `json:"transaction_date"`
}

// TransactionResponse represents a transaction response
type TransactionResponse struct {
	ID                  string   `json:"id"`
	UserID              string   `json:"user_id"`
	Type                string   `json:"type"`
	Amount              string   `json:"amount"`
	AffectedWalletIDs   []string `json:"affected_wallet_ids,omitempty"`
	SourceWalletID      *string  `json:"source_wallet_id,omitempty"`
	DestinationWalletID *string  `json:"destination_wallet_id,omitempty"`
	Note                string   `json:"note,omitempty"`
	TransactionDate     string   `json:"transaction_date"`
	RecordCreatedAt     string   `json:"record_created_at"`
	RecordUpdatedAt     string   `json:"record_updated_at"`
}

// TransactionsListResponse represents the response for listing transactions
type TransactionsListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

func toTransactionResponse(tx *ledger.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              tx.ID.String(),
		UserID:          tx.UserID.String(),
		Type:            string(tx.Type),
		Amount:          tx.Amount.String(),
		Note:            tx.Note,
		TransactionDate: tx.TransactionDate.Format(time.RFC3339),
		RecordCreatedAt: tx.RecordCreatedAt.Format(time.RFC3339),
		RecordUpdatedAt: tx.RecordUpdatedAt.Format(time.RFC3339),
	}
	for _, id := range tx.AffectedWalletIDs {
		resp.AffectedWalletIDs = append(resp.AffectedWalletIDs, id.String())
	}
	if tx.SourceWalletID != nil {
		s := tx.SourceWalletID.String()
		resp.SourceWalletID = &s
	}
	if tx.DestinationWalletID != nil {
		s := tx.DestinationWalletID.String()
		resp.DestinationWalletID = &s
	}
	return resp
}

func (h *TransactionHandler) parseInput(w http.ResponseWriter, r *http.Request) (ledger.CreateInput, bool) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return ledger.CreateInput{}, false
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondError(w, "invalid amount", http.StatusBadRequest)
		return ledger.CreateInput{}, false
	}

	txDate, err := time.Parse(time.RFC3339, req.TransactionDate)
	if err != nil {
		respondError(w, "transaction_date must be RFC 3339", http.StatusBadRequest)
		return ledger.CreateInput{}, false
	}

	input := ledger.CreateInput{
		Type:            ledger.Type(req.Type),
		Amount:          amount,
		Note:            req.Note,
		TransactionDate: txDate,
	}

	for _, raw := range req.AffectedWalletIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, "invalid wallet id in affected set", http.StatusBadRequest)
			return ledger.CreateInput{}, false
		}
		input.AffectedWalletIDs = append(input.AffectedWalletIDs, id)
	}

	if req.SourceWalletID != nil {
		id, err := uuid.Parse(*req.SourceWalletID)
		if err != nil {
			respondError(w, "invalid source wallet id", http.StatusBadRequest)
			return ledger.CreateInput{}, false
		}
		input.SourceWalletID = &id
	}
	if req.DestinationWalletID != nil {
		id, err := uuid.Parse(*req.DestinationWalletID)
		if err != nil {
			respondError(w, "invalid destination wallet id", http.StatusBadRequest)
			return ledger.CreateInput{}, false
		}
		input.DestinationWalletID = &id
	}

	return input, true
}

func respondLedgerError(w http.ResponseWriter, err error) {
	var partial *ledger.PartialMutationError

	switch {
	case errors.As(err, &partial):
		// Balances may be inconsistent; surface loudly rather than
		// pretending the operation cleanly failed.
		respondError(w, "operation partially applied, manual reconciliation required", http.StatusInternalServerError)
	case errors.Is(err, ledger.ErrTransactionNotFound):
		respondError(w, "transaction not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, wallet.ErrWalletNotFound):
		respondError(w, "wallet not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrInvalidTransactionType):
		respondError(w, "type must be income, expense or transfer", http.StatusBadRequest)
	case errors.Is(err, ledger.ErrInvalidAmount):
		respondError(w, "amount must be positive", http.StatusBadRequest)
	case errors.Is(err, ledger.ErrMissingTransactionDate):
		respondError(w, "transaction date is required", http.StatusBadRequest)
	case errors.Is(err, ledger.ErrEmptyWalletSet),
		errors.Is(err, ledger.ErrWalletSetShape):
		respondError(w, "exactly one physical and one logical wallet are required", http.StatusBadRequest)
	case errors.Is(err, ledger.ErrMissingTransferWallets):
		respondError(w, "transfer requires source and destination wallets", http.StatusBadRequest)
	case errors.Is(err, ledger.ErrSelfTransfer):
		respondError(w, "transfer source and destination must differ", http.StatusBadRequest)
	case errors.Is(err, ledger.ErrTransferKindMismatch):
		respondError(w, "transfer wallets must be of the same kind", http.StatusBadRequest)
	default:
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}

// CreateTransaction handles POST /transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	input, ok := h.parseInput(w, r)
	if !ok {
		return
	}

	tx, err := h.ledgerService.Create(r.Context(), userID, input)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, toTransactionResponse(tx), http.StatusCreated)
}

func parseListFilter(r *http.Request) (ledger.ListFilter, error) {
	var filter ledger.ListFilter
	q := r.URL.Query()

	if raw := q.Get("type"); raw != "" {
		t := ledger.Type(raw)
		if !t.IsValid() {
			return filter, errors.New("type must be income, expense or transfer")
		}
		filter.Type = &t
	}
	if raw := q.Get("wallet_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("invalid wallet_id")
		}
		filter.WalletID = &id
	}
	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("from must be RFC 3339")
		}
		filter.From = &ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("to must be RFC 3339")
		}
		filter.To = &ts
	}

	return filter, nil
}

// GetTransactions handles GET /transactions with optional type, wallet_id,
// from and to query filters.
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	txs, err := h.ledgerService.List(r.Context(), userID, filter)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	resp := TransactionsListResponse{Transactions: make([]TransactionResponse, 0, len(txs))}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(tx))
	}

	respondJSON(w, resp, http.StatusOK)
}

// GetTransaction handles GET /transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	tx, err := h.ledgerService.Get(r.Context(), userID, id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, toTransactionResponse(tx), http.StatusOK)
}

// UpdateTransaction handles PUT /transactions/{id}
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	input, ok := h.parseInput(w, r)
	if !ok {
		return
	}

	tx, err := h.ledgerService.Edit(r.Context(), userID, id, input)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, toTransactionResponse(tx), http.StatusOK)
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	if err := h.ledgerService.Delete(r.Context(), userID, id); err != nil {
		respondLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
