package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/investor-portal/internal/handler"
	"github.com/iliyamo/investor-portal/internal/middleware"
	"github.com/iliyamo/investor-portal/internal/utils"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterEnlistment registers the public credential endpoints: enlistment,
// status polling, login and invite acceptance. These carry their own
// in-handler rate limiting and need no session middleware.
func RegisterEnlistment(e *echo.Echo, en *handler.EnlistHandler, a *handler.AuthHandler, inv *handler.InviteHandler) {
	e.POST("/v1/enlist", en.Enlist)
	e.POST("/v1/enlist/status", en.Status)
	e.POST("/v1/auth/login", a.Login)
	e.POST("/v1/invites/accept", inv.Accept)
}

// RegisterAdmin registers the administrator-only surface behind the session
// middleware and the admin role gate.
func RegisterAdmin(e *echo.Echo, ad *handler.AdminHandler, inv *handler.InviteHandler, p *handler.PropertyHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(utils.ClaimRoleAdmin))

	g.POST("/accounts", ad.Provision)
	g.POST("/accounts/:id/approve", ad.Approve)
	g.POST("/accounts/:id/reject", ad.Reject)
	g.GET("/overview", ad.Overview)

	g.POST("/invites", inv.Issue)
	g.GET("/invites", inv.List)
	g.POST("/invites/:id/revoke", inv.Revoke)

	g.POST("/properties", p.Create)
}

// RegisterPublic registers the unauthenticated catalog endpoints.
func RegisterPublic(e *echo.Echo, p *handler.PropertyHandler) {
	e.GET("/v1/properties/available", p.Available)
}
