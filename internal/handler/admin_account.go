package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/investor-portal/internal/cache"
	"github.com/iliyamo/investor-portal/internal/config"
	"github.com/iliyamo/investor-portal/internal/credential"
	"github.com/iliyamo/investor-portal/internal/model"
	"github.com/iliyamo/investor-portal/internal/queue"
	"github.com/iliyamo/investor-portal/internal/repository"
	queue_publisher "github.com/iliyamo/investor-portal/internal/service"
)

// AdminHandler bundles the administrator-only account operations:
// provisioning credential triples, approving or rejecting enlistments, and
// the cached overview aggregate.
type AdminHandler struct {
	Cfg        config.Config
	Accounts   AccountStore
	Properties PropertyStore
	Cache      cache.Store
	CacheCfg   config.CacheConfig
}

func NewAdminHandler(cfg config.Config, accounts AccountStore, props PropertyStore, cs cache.Store, cc config.CacheConfig) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Accounts: accounts, Properties: props, Cache: cs, CacheCfg: cc}
}

// ----- DTOs -----

type provisionReq struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type credentialsPart struct {
	UserID      string `json:"userId"`
	AccessKey   string `json:"accessKey"`
	AccessToken string `json:"accessToken"`
}

type provisionResp struct {
	Account     accountPart     `json:"account"`
	Status      string          `json:"status"`
	Credentials credentialsPart `json:"credentials"`
}

// overview is the cached admin aggregate.
type overview struct {
	Accounts    map[string]int `json:"accounts"`
	Properties  int            `json:"properties"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Provision mints a new identifier/secret/token triple. Only hashed forms
// are persisted; the plaintext credentials appear in this response exactly
// once and are not recoverable afterwards. CLIENT accounts start PENDING
// and must enlist; other roles are active immediately.
func (h *AdminHandler) Provision(c echo.Context) error {
	var req provisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN, CLIENT or AGENT"})
	}

	accessKey, err := credential.NewAccessKey()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate credentials failed"})
	}
	enlistToken, err := credential.NewEnlistToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate credentials failed"})
	}
	keyHash, err := credential.Hash(accessKey, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash credentials failed"})
	}
	tokenHash, err := credential.Hash(enlistToken, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash credentials failed"})
	}

	status := model.StatusActive
	if role == model.RoleClient {
		status = model.StatusPending
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := model.Account{
		FullName:        strings.TrimSpace(req.Name),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		AccessKeyHash:   keyHash,
		EnlistTokenHash: tokenHash,
		Role:            role,
		Status:          status,
	}
	// A generated code can collide; regenerate and retry a few times.
	for attempt := 0; ; attempt++ {
		a.UserCode, err = credential.NewUserCode()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate credentials failed"})
		}
		err = h.Accounts.Create(ctx, &a)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrCodeExists) && attempt < 3 {
			continue
		}
		if errors.Is(err, repository.ErrEmailInUse) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email_in_use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}

	// The overview counts accounts by status; drop it before reporting
	// success so the next read recomputes.
	h.Cache.Invalidate(ctx, cache.AdminOverview)

	_ = queue_publisher.PublishAccountProvisioned(ctx, queue.AccountProvisionedEvent{
		AccountID:     a.ID,
		UserCode:      a.UserCode,
		Role:          a.Role,
		Status:        a.Status,
		ProvisionedBy: adminCode(c),
		ProvisionedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, provisionResp{
		Account:     accountPart{ID: a.ID, UserCode: a.UserCode, Role: a.Role},
		Status:      a.Status,
		Credentials: credentialsPart{UserID: a.UserCode, AccessKey: accessKey, AccessToken: enlistToken},
	})
}

// Approve flips an account to ACTIVE. PENDING and REJECTED accounts may be
// activated; approving an already active account is a no-op.
func (h *AdminHandler) Approve(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Accounts.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	changed, err := h.Accounts.Activate(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if changed {
		h.Cache.Invalidate(ctx, cache.AdminOverview)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": model.StatusActive, "changed": changed})
}

// Reject flips a PENDING account to REJECTED. Anything else conflicts.
func (h *AdminHandler) Reject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Accounts.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	changed, err := h.Accounts.Reject(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !changed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "account is not pending"})
	}
	h.Cache.Invalidate(ctx, cache.AdminOverview)
	return c.JSON(http.StatusOK, echo.Map{"status": model.StatusRejected})
}

// Overview serves the account/property counts through the cache-aside
// layer. A cache hit skips the store entirely; a miss recomputes and
// repopulates with the configured TTL.
func (h *AdminHandler) Overview(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var ov overview
	if h.Cache.Get(ctx, cache.AdminOverview, &ov) {
		c.Response().Header().Set("X-Cache", "HIT")
		return c.JSON(http.StatusOK, ov)
	}

	counts, err := h.Accounts.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	props, err := h.Properties.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	ov = overview{Accounts: counts, Properties: props, GeneratedAt: time.Now().UTC()}
	h.Cache.Set(ctx, cache.AdminOverview, ov, h.CacheCfg.OverviewTTL)

	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSON(http.StatusOK, ov)
}

func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// adminCode returns the acting administrator's account id from the session
// claims for the audit event, or "unknown" when unavailable.
func adminCode(c echo.Context) string {
	switch v := c.Get("account_id").(type) {
	case string:
		return v
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	}
	return "unknown"
}
