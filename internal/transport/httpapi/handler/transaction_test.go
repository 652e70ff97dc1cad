package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrukv/walletbook/internal/ledger"
	"github.com/dmitrukv/walletbook/internal/transport/httpapi/middleware"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type fakeLedgerService struct {
	createFn func(ctx context.Context, userID uuid.UUID, input ledger.CreateInput) (*ledger.Transaction, error)
	deleteFn func(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

func (f *fakeLedgerService) Create(ctx context.Context, userID uuid.UUID, input ledger.CreateInput) (*ledger.Transaction, error) {
	return f.createFn(ctx, userID, input)
}

func (f *fakeLedgerService) Edit(ctx context.Context, userID uuid.UUID, id uuid.UUID, input ledger.CreateInput) (*ledger.Transaction, error) {
	return nil, nil
}

func (f *fakeLedgerService) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	return f.deleteFn(ctx, userID, id)
}

func (f *fakeLedgerService) Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*ledger.Transaction, error) {
	return nil, ledger.ErrTransactionNotFound
}

func (f *fakeLedgerService) List(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	return nil, nil
}

func authedRequest(t *testing.T, method, target string, body any, userID uuid.UUID) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestCreateTransaction_Success(t *testing.T) {
	userID := uuid.New()
	p, l := uuid.New(), uuid.New()

	svc := &fakeLedgerService{
		createFn: func(ctx context.Context, gotUser uuid.UUID, input ledger.CreateInput) (*ledger.Transaction, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, ledger.TypeIncome, input.Type)
			assert.True(t, input.Amount.Equal(decimalFromString(t, "100.50")))
			return &ledger.Transaction{
				ID:                uuid.New(),
				UserID:            gotUser,
				Type:              input.Type,
				Amount:            input.Amount,
				AffectedWalletIDs: input.AffectedWalletIDs,
				TransactionDate:   input.TransactionDate,
				RecordCreatedAt:   time.Now(),
				RecordUpdatedAt:   time.Now(),
			}, nil
		},
	}
	h := NewTransactionHandler(svc)

	req := authedRequest(t, http.MethodPost, "/api/v1/transactions", TransactionRequest{
		Type:              "income",
		Amount:            "100.50",
		AffectedWalletIDs: []string{p.String(), l.String()},
		TransactionDate:   "2025-05-01T00:00:00Z",
	}, userID)
	rec := httptest.NewRecorder()

	h.CreateTransaction(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "income", resp.Type)
	assert.Equal(t, "100.5", resp.Amount)
	assert.Len(t, resp.AffectedWalletIDs, 2)
}

func TestCreateTransaction_StatusMapping(t *testing.T) {
	userID := uuid.New()
	p, l := uuid.New(), uuid.New()

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"shape violation", ledger.ErrWalletSetShape, http.StatusBadRequest},
		{"kind mismatch", ledger.ErrTransferKindMismatch, http.StatusBadRequest},
		{"unknown wallet", ledger.ErrWalletNotFound, http.StatusNotFound},
		{"partial mutation", &ledger.PartialMutationError{TransactionID: uuid.New(), Op: "create"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeLedgerService{
				createFn: func(ctx context.Context, _ uuid.UUID, _ ledger.CreateInput) (*ledger.Transaction, error) {
					return nil, tt.serviceErr
				},
			}
			h := NewTransactionHandler(svc)

			req := authedRequest(t, http.MethodPost, "/api/v1/transactions", TransactionRequest{
				Type:              "income",
				Amount:            "10",
				AffectedWalletIDs: []string{p.String(), l.String()},
				TransactionDate:   "2025-05-01T00:00:00Z",
			}, userID)
			rec := httptest.NewRecorder()

			h.CreateTransaction(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCreateTransaction_BadPayloads(t *testing.T) {
	userID := uuid.New()
	h := NewTransactionHandler(&fakeLedgerService{})

	tests := []struct {
		name string
		req  TransactionRequest
	}{
		{"bad amount", TransactionRequest{Type: "income", Amount: "not-a-number", TransactionDate: "2025-05-01T00:00:00Z"}},
		{"bad date", TransactionRequest{Type: "income", Amount: "10", TransactionDate: "yesterday"}},
		{"bad wallet id", TransactionRequest{Type: "income", Amount: "10", AffectedWalletIDs: []string{"nope"}, TransactionDate: "2025-05-01T00:00:00Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, http.MethodPost, "/api/v1/transactions", tt.req, userID)
			rec := httptest.NewRecorder()
			h.CreateTransaction(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateTransaction_Unauthenticated(t *testing.T) {
	h := NewTransactionHandler(&fakeLedgerService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()

	h.CreateTransaction(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	svc := &fakeLedgerService{
		deleteFn: func(ctx context.Context, _ uuid.UUID, _ uuid.UUID) error {
			return ledger.ErrTransactionNotFound
		},
	}
	h := NewTransactionHandler(svc)

	req := authedRequest(t, http.MethodDelete, "/api/v1/transactions/"+uuid.NewString(), nil, uuid.New())
	req = withURLParam(req, "id", uuid.NewString())
	rec := httptest.NewRecorder()

	h.DeleteTransaction(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
