package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/velihant/financehub-api/internal/authz"
	"github.com/velihant/financehub-api/internal/handlers"
	"github.com/velihant/financehub-api/internal/middleware"
	"github.com/velihant/financehub-api/internal/models"
)

// NewRouter sets up the API routes
func NewRouter(
	auth *handlers.AuthHandler,
	profile *handlers.ProfileHandler,
	notifications *handlers.NotificationHandler,
	transactions *handlers.TransactionHandler,
	reports *handlers.ReportHandler,
	risks *handlers.RiskHandler,
	analytics *handlers.AnalyticsHandler,
	auditLog *handlers.AuditHandler,
	limiter *middleware.RateLimiter,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public auth endpoints, rate-limited per client IP
	router.Handle("/api/auth/register", limiter.Middleware(http.HandlerFunc(auth.Register))).Methods(http.MethodPost)
	router.Handle("/api/auth/login", limiter.Middleware(http.HandlerFunc(auth.Login))).Methods(http.MethodPost)

	// Everything below requires a valid session token.
	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware)

	// Own profile
	api.HandleFunc("/profile", profile.Get).Methods(http.MethodGet)
	api.Handle("/profile",
		authz.RequirePermissionHandler(models.PermProfileEdit, http.HandlerFunc(profile.Update))).Methods(http.MethodPut)

	// Notifications: snapshot, create (for collaborating subsystems),
	// read-state mutations, and the SSE push channel.
	api.HandleFunc("/notifications", notifications.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications", notifications.Create).Methods(http.MethodPost)
	api.HandleFunc("/notifications", notifications.MarkRead).Methods(http.MethodPut)
	api.HandleFunc("/notifications/stream", notifications.Stream).Methods(http.MethodGet)

	// Transaction ledger
	api.Handle("/transactions",
		authz.RequirePermissionHandler(models.PermTransactionView, http.HandlerFunc(transactions.List))).Methods(http.MethodGet)
	api.Handle("/transactions",
		authz.RequirePermissionHandler(models.PermTransactionCreate, http.HandlerFunc(transactions.Create))).Methods(http.MethodPost)
	api.Handle("/transactions/{id}",
		authz.RequirePermissionHandler(models.PermTransactionUpdate, http.HandlerFunc(transactions.Update))).Methods(http.MethodPut)
	api.Handle("/transactions/{id}",
		authz.RequirePermissionHandler(models.PermTransactionDelete, http.HandlerFunc(transactions.Delete))).Methods(http.MethodDelete)

	// Scheduled reports (persistence only, nothing runs them)
	api.HandleFunc("/reports/schedule", reports.List).Methods(http.MethodGet)
	api.Handle("/reports/schedule",
		authz.RequirePermissionHandler(models.PermReportSchedule, http.HandlerFunc(reports.Create))).Methods(http.MethodPost)
	api.Handle("/reports/schedule/{id}",
		authz.RequirePermissionHandler(models.PermReportSchedule, http.HandlerFunc(reports.Update))).Methods(http.MethodPut)
	api.Handle("/reports/schedule/{id}",
		authz.RequirePermissionHandler(models.PermReportSchedule, http.HandlerFunc(reports.Delete))).Methods(http.MethodDelete)

	// Risk scores
	api.HandleFunc("/risk-scores", risks.List).Methods(http.MethodGet)
	api.Handle("/risk-scores/{category}",
		authz.RequirePermissionHandler(models.PermSettingsManage, http.HandlerFunc(risks.Update))).Methods(http.MethodPut)

	// Dashboard aggregates
	api.HandleFunc("/stats", analytics.Stats).Methods(http.MethodGet)
	api.HandleFunc("/revenue", analytics.Revenue).Methods(http.MethodGet)
	api.HandleFunc("/portfolio", analytics.Portfolio).Methods(http.MethodGet)
	api.HandleFunc("/analytics", analytics.Analytics).Methods(http.MethodGet)
	api.HandleFunc("/insights", analytics.Insights).Methods(http.MethodGet)

	// Audit trail
	api.Handle("/audit-log",
		authz.RequirePermissionHandler(models.PermUserManage, http.HandlerFunc(auditLog.List))).Methods(http.MethodGet)

	return router
}
