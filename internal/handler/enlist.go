package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/investor-portal/internal/config"
	"github.com/iliyamo/investor-portal/internal/credential"
	"github.com/iliyamo/investor-portal/internal/model"
	"github.com/iliyamo/investor-portal/internal/ratelimit"
	"github.com/iliyamo/investor-portal/internal/repository"
)

// EnlistHandler implements the activation workflow: a holder of freshly
// issued credentials claims their identity exactly once, then waits for
// administrative approval.
type EnlistHandler struct {
	Accounts AccountStore
	Limiter  *ratelimit.Limiter
	Limits   config.AbuseLimits
}

func NewEnlistHandler(accounts AccountStore, l *ratelimit.Limiter, limits config.AbuseLimits) *EnlistHandler {
	return &EnlistHandler{Accounts: accounts, Limiter: l, Limits: limits}
}

// ----- DTOs -----

type enlistReq struct {
	UserID      string `json:"userId"`
	AccessKey   string `json:"accessKey"`
	AccessToken string `json:"accessToken"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
}

type statusReq struct {
	UserID    string `json:"userId"`
	AccessKey string `json:"accessKey"`
}

// Enlist consumes the one-time token and records the holder's identity.
// The flow is rate limited per identifier+IP; all credential failures
// collapse into the same generic 401 so callers cannot distinguish an
// unknown identifier from a wrong secret or token.
func (h *EnlistHandler) Enlist(c echo.Context) error {
	var req enlistReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := credential.Normalize(req.UserID)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if code == "" || req.AccessKey == "" || req.AccessToken == "" || req.FullName == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId, accessKey, accessToken, fullName and email are required"})
	}

	key := ratelimit.Key("enlist", code, clientIP(c))
	if r := h.Limiter.Consume(key, h.Limits.Enlist); !r.Allowed {
		return tooManyRequests(c, r.RetryAfter)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Accounts.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalidCredentials(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !credential.Verify(req.AccessKey, a.AccessKeyHash) ||
		!credential.Verify(req.AccessToken, a.EnlistTokenHash) {
		return invalidCredentials(c)
	}
	if a.TokenConsumed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token_already_used"})
	}
	if a.Status == model.StatusActive {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account_already_active"})
	}

	if err := h.Accounts.ConsumeEnlistToken(ctx, a.ID, req.FullName, req.Email); err != nil {
		switch {
		case errors.Is(err, repository.ErrTokenAlreadyUsed):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "token_already_used"})
		case errors.Is(err, repository.ErrEmailInUse):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email_in_use"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "enlist failed"})
		}
	}

	// A successful use must not count against future legitimate attempts.
	h.Limiter.Reset(key)

	return c.JSON(http.StatusOK, echo.Map{"message": "enlistment recorded, awaiting approval"})
}

// Status returns the account's lifecycle status to a caller who proves
// possession of the access key. It is throttled on its own composite key so
// it cannot be used as a cheap probing oracle.
func (h *EnlistHandler) Status(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := credential.Normalize(req.UserID)
	if code == "" || req.AccessKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId and accessKey are required"})
	}

	key := ratelimit.Key("status", code, clientIP(c))
	if r := h.Limiter.Consume(key, h.Limits.Status); !r.Allowed {
		return tooManyRequests(c, r.RetryAfter)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Accounts.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalidCredentials(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !credential.Verify(req.AccessKey, a.AccessKeyHash) {
		return invalidCredentials(c)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": a.Status})
}
