package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/investor-portal/internal/config"
	"github.com/iliyamo/investor-portal/internal/credential"
	"github.com/iliyamo/investor-portal/internal/model"
	"github.com/iliyamo/investor-portal/internal/queue"
	"github.com/iliyamo/investor-portal/internal/ratelimit"
	queue_publisher "github.com/iliyamo/investor-portal/internal/service"
)

// InviteHandler manages standing invites: an offer of access tied to an
// email and role, independent of the one-time enlistment token flow. The
// invite token is returned to the issuing administrator exactly once and
// stored only as a hash.
type InviteHandler struct {
	Invites InviteStore
	Limiter *ratelimit.Limiter
	Limits  config.AbuseLimits
}

func NewInviteHandler(invites InviteStore, l *ratelimit.Limiter, limits config.AbuseLimits) *InviteHandler {
	return &InviteHandler{Invites: invites, Limiter: l, Limits: limits}
}

// ----- DTOs -----

type issueInviteReq struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	OrgRef   string `json:"orgRef"`
	TTLHours int    `json:"ttlHours"`
}

type invitePart struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	OrgRef    string     `json:"org_ref,omitempty"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type acceptInviteReq struct {
	Token string `json:"token"`
}

func toInvitePart(inv model.Invite) invitePart {
	return invitePart{
		ID: inv.ID, Email: inv.Email, Role: inv.Role, OrgRef: inv.OrgRef,
		Status: inv.Status, ExpiresAt: inv.ExpiresAt, CreatedAt: inv.CreatedAt,
	}
}

// Issue creates a standing invite and returns the plaintext token once.
func (h *InviteHandler) Issue(c echo.Context) error {
	var req issueInviteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN, CLIENT or AGENT"})
	}

	token, err := credential.NewInviteToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate token failed"})
	}

	inv := model.Invite{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Role:      role,
		OrgRef:    strings.TrimSpace(req.OrgRef),
		TokenHash: credential.LookupHash(token),
		Status:    model.InviteSent,
	}
	if req.TTLHours > 0 {
		exp := time.Now().UTC().Add(time.Duration(req.TTLHours) * time.Hour)
		inv.ExpiresAt = &exp
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Invites.Create(ctx, &inv); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create invite failed"})
	}

	expires := ""
	if inv.ExpiresAt != nil {
		expires = inv.ExpiresAt.Format(time.RFC3339)
	}
	_ = queue_publisher.PublishInviteIssued(ctx, queue.InviteIssuedEvent{
		InviteID:  inv.ID,
		Email:     inv.Email,
		Role:      inv.Role,
		ExpiresAt: expires,
		IssuedAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"invite": toInvitePart(inv),
		"token":  token, // returned exactly once, stored only as a hash
	})
}

// List returns all invites without their token hashes.
func (h *InviteHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	invites, err := h.Invites.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]invitePart, 0, len(invites))
	for _, inv := range invites {
		out = append(out, toInvitePart(inv))
	}
	return c.JSON(http.StatusOK, echo.Map{"invites": out})
}

// Revoke withdraws a SENT invite.
func (h *InviteHandler) Revoke(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invite id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Invites.Revoke(ctx, id); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invite is not revocable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": model.InviteRevoked})
}

// Accept consumes an invite token presented by its holder. Unknown,
// expired, revoked and already accepted tokens all produce the same
// generic 401 so the endpoint cannot be used to probe invite state.
func (h *InviteHandler) Accept(c echo.Context) error {
	var req acceptInviteReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	key := ratelimit.Key("invite", clientIP(c))
	if r := h.Limiter.Consume(key, h.Limits.Status); !r.Allowed {
		return tooManyRequests(c, r.RetryAfter)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	inv, err := h.Invites.GetByTokenHash(ctx, credential.LookupHash(req.Token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid invite"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if inv.Expired() {
		_ = h.Invites.MarkExpired(ctx, inv.ID)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid invite"})
	}
	if err := h.Invites.Accept(ctx, inv.ID); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid invite"})
	}

	h.Limiter.Reset(key)

	return c.JSON(http.StatusOK, echo.Map{"email": inv.Email, "role": inv.Role})
}
