package model

import "time"

// Account roles. CLIENT accounts go through the enlistment flow; ADMIN and
// AGENT accounts are activated at provisioning time.
const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
	RoleAgent  = "AGENT"
)

// Account lifecycle statuses. PENDING accounts cannot authenticate.
// Permitted transitions are PENDING->ACTIVE, PENDING->REJECTED and the
// administrative re-activation REJECTED->ACTIVE.
const (
	StatusPending  = "PENDING"
	StatusActive   = "ACTIVE"
	StatusRejected = "REJECTED"
)

// Account represents an application principal as stored in the `accounts`
// table. Each field corresponds to a column. Handlers define separate
// response types with JSON tags; only hashed credential forms appear here.
//
// Fields:
//
//	ID              - primary key identifier.
//	UserCode        - unique human-typeable identifier (INV-XXXXXX), immutable.
//	FullName        - display name, set during enlistment for clients.
//	Email           - unique address; empty until enlistment for clients.
//	AccessKeyHash   - bcrypt hash of the access key (legacy rows may hold plaintext).
//	EnlistTokenHash - bcrypt hash of the one-time enlistment token; empty once never issued.
//	TokenConsumed   - flips false->true exactly once when the token is used.
//	Role            - ADMIN, CLIENT or AGENT.
//	Status          - PENDING, ACTIVE or REJECTED.
//	CreatedAt       - timestamp of creation.
//	UpdatedAt       - timestamp of last update.
type Account struct {
	ID              uint64    // accounts.id
	UserCode        string    // accounts.user_code
	FullName        string    // accounts.full_name
	Email           string    // accounts.email (nullable)
	AccessKeyHash   string    // accounts.access_key_hash
	EnlistTokenHash string    // accounts.enlist_token_hash (nullable)
	TokenConsumed   bool      // accounts.token_consumed
	Role            string    // accounts.role
	Status          string    // accounts.status
	CreatedAt       time.Time // accounts.created_at
	UpdatedAt       time.Time // accounts.updated_at
}

// CanAuthenticate reports whether the account may be issued a session.
func (a Account) CanAuthenticate() bool {
	return a.Status == StatusActive
}

// ValidRole reports whether r is one of the known account roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleClient || r == RoleAgent
}
