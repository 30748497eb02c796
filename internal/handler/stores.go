package handler // handler defines the portal's HTTP handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/investor-portal/internal/model"
)

// The handlers depend on narrow store interfaces rather than the concrete
// repositories so the credential workflows can be exercised against
// in-memory fakes. The repository types satisfy these at compile time in
// cmd/server.

// AccountStore is the persistence surface the credential workflows need.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) error
	GetByCode(ctx context.Context, code string) (model.Account, error)
	GetByID(ctx context.Context, id uint64) (model.Account, error)
	ConsumeEnlistToken(ctx context.Context, id uint64, fullName, email string) error
	Activate(ctx context.Context, id uint64) (bool, error)
	Reject(ctx context.Context, id uint64) (bool, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// InviteStore is the persistence surface for standing invites.
type InviteStore interface {
	Create(ctx context.Context, inv *model.Invite) error
	List(ctx context.Context) ([]model.Invite, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (model.Invite, error)
	Accept(ctx context.Context, id string) error
	Revoke(ctx context.Context, id string) error
	MarkExpired(ctx context.Context, id string) error
}

// PropertyStore is the persistence surface for the catalog.
type PropertyStore interface {
	Create(ctx context.Context, p *model.Property) error
	ListAvailable(ctx context.Context) ([]model.Property, error)
	Count(ctx context.Context) (int, error)
}

// clientIP returns the caller's address for rate-limit keying.
func clientIP(c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return ip
}

// tooManyRequests writes the uniform 429 response with a machine-readable
// retry hint. The body never reveals which underlying key tripped.
func tooManyRequests(c echo.Context, retryAfter int) error {
	c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"error":       "too_many_requests",
		"message":     "too many attempts, try again later",
		"retry_after": retryAfter,
	})
}

// invalidCredentials writes the uniform 401 response. Every credential
// rejection path returns this exact body regardless of cause.
func invalidCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
}
