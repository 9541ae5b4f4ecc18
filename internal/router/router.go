package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jsilmaro/c6/internal/budgets"
	handlers "github.com/jsilmaro/c6/internal/http"
	"github.com/jsilmaro/c6/internal/reports"
	"github.com/jsilmaro/c6/internal/transactions"
)

type Router struct {
	AuthHandler    *handlers.AuthHandler
	TxHandler      *transactions.Handler
	BudgetHandler  *budgets.Handler
	ReportsHandler *reports.Handler
	AuthMW         fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	if r.AuthHandler != nil {
		authLimit := RateLimitAuth()
		app.Post("/api/auth/register", authLimit, r.AuthHandler.Register)
		app.Post("/api/auth/login", authLimit, r.AuthHandler.Login)
		app.Post("/api/auth/logout", r.AuthHandler.Logout)
		app.Post("/api/auth/token/refresh", authLimit, r.AuthHandler.Refresh)
		app.Get("/api/auth/user", r.AuthMW, r.AuthHandler.ActiveAccounts)
		app.Get("/api/auth/active-accounts", r.AuthMW, r.AuthHandler.ActiveAccounts)
		app.Put("/api/auth/profile", r.AuthMW, r.AuthHandler.UpdateProfile)
		app.Put("/api/auth/password", r.AuthMW, r.AuthHandler.ChangePassword)
		app.Put("/api/auth/preferences", r.AuthMW, r.AuthHandler.UpdatePreferences)
	}

	writeLimit := RateLimitWrite()

	if r.TxHandler != nil {
		app.Get("/api/transactions", r.AuthMW, r.TxHandler.List)
		app.Post("/api/transactions", writeLimit, r.AuthMW, r.TxHandler.Create)
		app.Put("/api/transactions/:id", writeLimit, r.AuthMW, r.TxHandler.Update)
		app.Delete("/api/transactions/:id", writeLimit, r.AuthMW, r.TxHandler.Delete)
	}

	if r.BudgetHandler != nil {
		app.Get("/api/budgets", r.AuthMW, r.BudgetHandler.List)
		app.Post("/api/budgets", writeLimit, r.AuthMW, r.BudgetHandler.Create)
		app.Put("/api/budgets/:id", writeLimit, r.AuthMW, r.BudgetHandler.Update)
		app.Delete("/api/budgets/:id", writeLimit, r.AuthMW, r.BudgetHandler.Delete)
	}

	if r.ReportsHandler != nil {
		app.Get("/api/reports/:report_type", r.AuthMW, r.ReportsHandler.Get)
	}
}
