package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrukv/walletbook/internal/module/report"
	"github.com/dmitrukv/walletbook/internal/transport/httpapi/middleware"
)

// ReportServiceInterface defines the report operations the handler needs
type ReportServiceInterface interface {
	Audit(ctx context.Context, userID uuid.UUID) (*report.AuditReport, error)
	RunningBalances(ctx context.Context, userID uuid.UUID) (*report.RunningBalanceReport, error)
	Monthly(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*report.MonthlySummary, error)
}

// ReportHandler handles report-related HTTP requests
type ReportHandler struct {
	reportService ReportServiceInterface
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService ReportServiceInterface) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetAudit handles GET /reports/audit
func (h *ReportHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rep, err := h.reportService.Audit(r.Context(), userID)
	if err != nil {
		respondError(w, "failed to build audit report", http.StatusInternalServerError)
		return
	}

	respondJSON(w, rep, http.StatusOK)
}

// GetRunningBalances handles GET /reports/running-balances
func (h *ReportHandler) GetRunningBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rep, err := h.reportService.RunningBalances(r.Context(), userID)
	if err != nil {
		respondError(w, "failed to build running balance report", http.StatusInternalServerError)
		return
	}

	respondJSON(w, rep, http.StatusOK)
}

// GetMonthlySummary handles GET /reports/summary?year=YYYY&month=M
func (h *ReportHandler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	year, month := now.Year(), now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, "invalid year", http.StatusBadRequest)
			return
		}
		year = y
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			respondError(w, "invalid month", http.StatusBadRequest)
			return
		}
		month = time.Month(m)
	}

	sum, err := h.reportService.Monthly(r.Context(), userID, year, month)
	if err != nil {
		respondError(w, "failed to build monthly summary", http.StatusInternalServerError)
		return
	}

	respondJSON(w, sum, http.StatusOK)
}
