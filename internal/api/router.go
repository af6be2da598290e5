package api

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/lostfound/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	walletHandler := &WalletHandler{DB: db}
	adminHandler := &AdminHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login, fee schedule and item reads.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/fees", itemsHandler.Fees)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/count", itemsHandler.Count)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/items/{id}/image", itemsHandler.GetImage)
	mux.HandleFunc("GET /api/items/{id}/history", itemsHandler.GetHistory)

	// Authenticated account routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Ledger operations; the caller is the token's user.
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Register)))
	mux.Handle("POST /api/items/{id}/found", authMW(http.HandlerFunc(itemsHandler.ReportFound)))
	mux.Handle("POST /api/items/{id}/claim", authMW(http.HandlerFunc(itemsHandler.Release)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))

	// Own wallet.
	mux.Handle("GET /api/wallet", authMW(http.HandlerFunc(walletHandler.Get)))
	mux.Handle("GET /api/wallet/entries", authMW(http.HandlerFunc(walletHandler.Entries)))
	mux.Handle("POST /api/wallet/withdraw", authMW(http.HandlerFunc(walletHandler.Withdraw)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))
	mux.Handle("POST /api/users/{id}/restore", authMW(requireAdmin(http.HandlerFunc(usersHandler.Restore))))

	// Treasury and books (admin only).
	mux.Handle("POST /api/users/{id}/deposit", authMW(requireAdmin(http.HandlerFunc(adminHandler.Deposit))))
	mux.Handle("GET /api/revenue", authMW(requireAdmin(http.HandlerFunc(adminHandler.Revenue))))
	mux.Handle("POST /api/revenue/sweep", authMW(requireAdmin(http.HandlerFunc(adminHandler.Sweep))))
	mux.Handle("GET /api/audit", authMW(requireAdmin(http.HandlerFunc(adminHandler.Audit))))

	// Operations.
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
