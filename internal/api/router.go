package api

import (
	"database/sql"
	"net/http"

	"github.com/zalar/inventar/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	movementsHandler := &MovementsHandler{DB: db}
	invitationsHandler := &InvitationsHandler{DB: db}
	reportsHandler := &ReportsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login and invitation-based registration.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Invitations (admin only).
	mux.Handle("GET /api/invitations", authMW(requireAdmin(http.HandlerFunc(invitationsHandler.List))))
	mux.Handle("POST /api/invitations", authMW(requireAdmin(http.HandlerFunc(invitationsHandler.Create))))
	mux.Handle("DELETE /api/invitations/{id}", authMW(requireAdmin(http.HandlerFunc(invitationsHandler.Delete))))

	// Items: read (all roles), write (manager+).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireManager(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Delete))))
	mux.Handle("POST /api/items/{id}/stock", authMW(requireManager(http.HandlerFunc(itemsHandler.Restock))))
	mux.Handle("PUT /api/items/{id}/image", authMW(requireManager(http.HandlerFunc(itemsHandler.UploadImage))))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))
	mux.Handle("GET /api/items/{id}/history", authMW(http.HandlerFunc(itemsHandler.GetHistory)))

	// Movements: checkout/checkin/list (all roles), clearing the log (admin).
	mux.Handle("GET /api/movements", authMW(http.HandlerFunc(movementsHandler.List)))
	mux.Handle("GET /api/movements/overdue", authMW(http.HandlerFunc(movementsHandler.ListOverdue)))
	mux.Handle("POST /api/movements/checkout", authMW(http.HandlerFunc(movementsHandler.Checkout)))
	mux.Handle("POST /api/movements/{id}/checkin", authMW(http.HandlerFunc(movementsHandler.CheckIn)))
	mux.Handle("DELETE /api/movements", authMW(requireAdmin(http.HandlerFunc(movementsHandler.Clear))))

	// Reports (all roles).
	mux.Handle("GET /api/reports/summary", authMW(http.HandlerFunc(reportsHandler.Summary)))
	mux.Handle("GET /api/reports/movements.csv", authMW(http.HandlerFunc(reportsHandler.ExportMovements)))

	return mux
}
