package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/investor-portal/internal/model"
)

// InviteRepo persists standing invites (single deterministic 'token_hash'
// column so invites can be found by the token the holder presents).
type InviteRepo struct{ DB *sql.DB }

func NewInviteRepo(db *sql.DB) *InviteRepo { return &InviteRepo{DB: db} }

const inviteColumns = "id,email,role,org_ref,token_hash,status,expires_at,created_at"

// Create inserts a new invite row. The caller supplies the UUID and the
// token hash; the plaintext token never reaches this layer.
func (r *InviteRepo) Create(ctx context.Context, inv *model.Invite) error {
	var exp any
	if inv.ExpiresAt != nil {
		exp = inv.ExpiresAt.UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO invites (id, email, role, org_ref, token_hash, status, expires_at) VALUES (?,?,?,?,?,?,?)",
		inv.ID, strings.ToLower(strings.TrimSpace(inv.Email)), inv.Role,
		nullable(inv.OrgRef), inv.TokenHash, inv.Status, exp)
	return err
}

// List returns all invites, newest first.
func (r *InviteRepo) List(ctx context.Context) ([]model.Invite, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+inviteColumns+" FROM invites ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// GetByTokenHash fetches an invite by the deterministic hash of its token.
func (r *InviteRepo) GetByTokenHash(ctx context.Context, tokenHash string) (model.Invite, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM invites WHERE token_hash=? LIMIT 1", tokenHash)
	return scanInvite(row)
}

// Accept flips a SENT invite to ACCEPTED. The conditional update means a
// token presented twice loses the second time with ErrConflict.
func (r *InviteRepo) Accept(ctx context.Context, id string) error {
	return r.transition(ctx, id, model.InviteSent, model.InviteAccepted)
}

// Revoke withdraws a SENT invite.
func (r *InviteRepo) Revoke(ctx context.Context, id string) error {
	return r.transition(ctx, id, model.InviteSent, model.InviteRevoked)
}

// MarkExpired records that a SENT invite has passed its expiry. Called
// lazily when an expired invite is presented.
func (r *InviteRepo) MarkExpired(ctx context.Context, id string) error {
	return r.transition(ctx, id, model.InviteSent, model.InviteExpired)
}

func (r *InviteRepo) transition(ctx context.Context, id, from, to string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE invites SET status=? WHERE id=? AND status=?", to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvite(row rowScanner) (model.Invite, error) {
	var inv model.Invite
	var orgRef sql.NullString
	var expiresAt sql.NullTime
	err := row.Scan(&inv.ID, &inv.Email, &inv.Role, &orgRef, &inv.TokenHash,
		&inv.Status, &expiresAt, &inv.CreatedAt)
	if err != nil {
		return model.Invite{}, err
	}
	inv.OrgRef = orgRef.String
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		inv.ExpiresAt = &t
	}
	return inv, nil
}
