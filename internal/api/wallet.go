package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// WalletHandler serves the caller's own wallet.
type WalletHandler struct {
	DB *sql.DB
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

// Get handles GET /api/wallet.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	wallet, err := store.GetWallet(r.Context(), h.DB, claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, wallet)
}

// Entries handles GET /api/wallet/entries.
func (h *WalletHandler) Entries(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	entries, err := store.ListAccountEntries(r.Context(), h.DB, model.WalletAccount(claims.UserID))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Withdraw handles POST /api/wallet/withdraw.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, model.Reject(model.KindInvalidInput, "invalid request body"))
		return
	}

	claims := GetClaims(r.Context())
	wallet, err := store.Withdraw(r.Context(), h.DB, claims.UserID, req.Amount)
	observeOperation("withdraw", err)
	if err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("wallet withdrawal", "user", claims.Username, "amount", req.Amount)
	jsonResponse(w, http.StatusOK, wallet)
}

// AdminHandler handles treasury and bookkeeping endpoints (admin only).
type AdminHandler struct {
	DB *sql.DB
}

// Deposit handles POST /api/users/{id}/deposit.
func (h *AdminHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, model.Reject(model.KindInvalidInput, "invalid request body"))
		return
	}

	wallet, err := store.Deposit(r.Context(), h.DB, id, req.Amount)
	observeOperation("deposit", err)
	if err != nil {
		respondError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("wallet deposit", "user", claims.Username, "target_user", id, "amount", req.Amount)
	jsonResponse(w, http.StatusOK, wallet)
}

// Revenue handles GET /api/revenue.
func (h *AdminHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	revenue, err := store.Revenue(r.Context(), h.DB)
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"revenue": revenue})
}

// Sweep handles POST /api/revenue/sweep. Revenue goes to the calling admin's
// wallet.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	swept, err := store.SweepRevenue(r.Context(), h.DB, claims.UserID)
	observeOperation("sweep", err)
	if err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("revenue swept", "user", claims.Username, "amount", swept)
	jsonResponse(w, http.StatusOK, map[string]int64{"swept": swept})
}

// Audit handles GET /api/audit.
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	report, err := store.Audit(r.Context(), h.DB)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !report.OK() {
		slog.Warn("ledger audit found problems", "count", len(report.Problems))
	}
	jsonResponse(w, http.StatusOK, report)
}
