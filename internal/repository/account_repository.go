package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/investor-portal/internal/model"
)

// AccountRepo provides persistence for accounts. All timestamps are stored
// in UTC; the user_code and email columns carry uniqueness constraints.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = "id,user_code,full_name,email,access_key_hash,enlist_token_hash,token_consumed,role,status,created_at,updated_at"

// Create inserts a freshly provisioned account and populates its ID. Only
// hashed credential forms are ever written. A duplicate user code maps to
// ErrCodeExists so the caller can regenerate.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (user_code, full_name, email, access_key_hash, enlist_token_hash, token_consumed, role, status) VALUES (?,?,?,?,?,0,?,?)",
		a.UserCode, a.FullName, nullable(a.Email), a.AccessKeyHash, nullable(a.EnlistTokenHash), a.Role, a.Status)
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(err.Error(), "email") {
				return ErrEmailInUse
			}
			return ErrCodeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByCode fetches an account by its user code. The code is normalized to
// upper case before the lookup.
func (r *AccountRepo) GetByCode(ctx context.Context, code string) (model.Account, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE user_code=? LIMIT 1", code))
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id=? LIMIT 1", id))
}

// ConsumeEnlistToken records the one-shot use of the enlistment token:
// it persists the holder's name and email and flips token_consumed in a
// single conditional update. The WHERE guard makes the flip atomic: when
// two requests race, RowsAffected is zero for the loser, which observes
// ErrTokenAlreadyUsed. An email collision maps to ErrEmailInUse.
func (r *AccountRepo) ConsumeEnlistToken(ctx context.Context, id uint64, fullName, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET full_name=?, email=?, token_consumed=1 WHERE id=? AND token_consumed=0",
		fullName, email, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailInUse
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenAlreadyUsed
	}
	return nil
}

// Activate flips an account to ACTIVE. Allowed from PENDING and from
// REJECTED (administrative re-activation). Activating an already active
// account is a no-op; changed reports whether a row was updated.
func (r *AccountRepo) Activate(ctx context.Context, id uint64) (changed bool, err error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET status=? WHERE id=? AND status IN (?,?)",
		model.StatusActive, id, model.StatusPending, model.StatusRejected)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Reject flips a PENDING account to REJECTED; changed is false when the
// account was not pending.
func (r *AccountRepo) Reject(ctx context.Context, id uint64) (changed bool, err error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET status=? WHERE id=? AND status=?",
		model.StatusRejected, id, model.StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountByStatus returns the number of accounts per lifecycle status. The
// admin overview aggregate is built from this and cached.
func (r *AccountRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM accounts GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *AccountRepo) scanOne(row *sql.Row) (model.Account, error) {
	var a model.Account
	var email, tokenHash sql.NullString
	err := row.Scan(&a.ID, &a.UserCode, &a.FullName, &email, &a.AccessKeyHash,
		&tokenHash, &a.TokenConsumed, &a.Role, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Account{}, err
	}
	a.Email = email.String
	a.EnlistTokenHash = tokenHash.String
	return a, nil
}

// isDuplicate detects MySQL error 1062 (duplicate entry).
func isDuplicate(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}

// nullable maps an empty string to SQL NULL so unique columns stay sparse.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
