package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/investor-portal/internal/config"
	"github.com/iliyamo/investor-portal/internal/credential"
	"github.com/iliyamo/investor-portal/internal/model"
	"github.com/iliyamo/investor-portal/internal/ratelimit"
	"github.com/iliyamo/investor-portal/internal/utils"
)

// AuthHandler validates login credentials and issues signed session claims.
// Every attempt is charged against three independent limiter dimensions:
// the identifier, the client IP, and the identifier+IP pair. One IP probing
// many accounts and many IPs probing one account both hit a ceiling.
type AuthHandler struct {
	Cfg      config.Config
	Accounts AccountStore
	Limiter  *ratelimit.Limiter
	Limits   config.AbuseLimits
}

func NewAuthHandler(cfg config.Config, accounts AccountStore, l *ratelimit.Limiter, limits config.AbuseLimits) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: accounts, Limiter: l, Limits: limits}
}

// ----- DTOs -----

type loginReq struct {
	Identifier   string `json:"identifier"`
	UserID       string `json:"userId"` // older clients still send this name
	AccessKey    string `json:"accessKey"`
	RequireAdmin bool   `json:"requireAdmin"`
}

type accountPart struct {
	ID       uint64 `json:"id"`
	UserCode string `json:"user_code"`
	Role     string `json:"role"`
}

type sessionPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type loginResp struct {
	Account accountPart `json:"account"`
	Session sessionPart `json:"session"`
}

// Login authenticates an account and returns a session claim. All rejection
// paths produce the identical opaque 401; differing causes are visible only
// in server-side logs.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := credential.Normalize(req.Identifier)
	if code == "" {
		code = credential.Normalize(req.UserID)
	}
	ip := clientIP(c)

	idKey := ratelimit.Key("login", code)
	ipKey := ratelimit.Key("login", ip)
	pairKey := ratelimit.Key("login", code, ip)
	if r := h.Limiter.ConsumeAll(h.Limits.Login, idKey, ipKey, pairKey); !r.Allowed {
		return tooManyRequests(c, r.RetryAfter)
	}

	if code == "" || req.AccessKey == "" {
		return invalidCredentials(c)
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
	if !a.CanAuthenticate() {
		return invalidCredentials(c)
	}
	if !credential.Verify(req.AccessKey, a.AccessKeyHash) {
		return invalidCredentials(c)
	}
	if req.RequireAdmin && a.Role != model.RoleAdmin {
		return invalidCredentials(c)
	}

	// Clear the identifier and pair counters, but leave the bare IP
	// counter: an IP that just succeeded for one identifier is not
	// exonerated against probing other identifiers.
	h.Limiter.Reset(idKey, pairKey)

	session, err := utils.NewSessionToken(h.Cfg.JWTSecret, a.ID, a.Role, h.Cfg.SessionTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}

	return c.JSON(http.StatusOK, loginResp{
		Account: accountPart{ID: a.ID, UserCode: a.UserCode, Role: a.Role},
		Session: sessionPart{Token: session.Token, Expires: session.Exp},
	})
}
