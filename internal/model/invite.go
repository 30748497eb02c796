package model

import "time"

// Invite lifecycle statuses. A SENT invite can be accepted, revoked or
// expire; every other status is terminal.
const (
	InviteSent     = "SENT"
	InviteAccepted = "ACCEPTED"
	InviteExpired  = "EXPIRED"
	InviteRevoked  = "REVOKED"
)

// Invite models a row in the `invites` table: a standing offer of access
// tied to an email and role. The token embedded in the invite link is stored
// only as a hash; the plaintext is returned to the issuing administrator
// once and never retrievable again.
//
// Fields:
//
//	ID        - UUID primary key.
//	Email     - address the invite was issued to.
//	Role      - role the resulting account will receive.
//	OrgRef    - optional reference to the inviting organization.
//	TokenHash - SHA-256 lookup hash of the invite token.
//	Status    - SENT, ACCEPTED, EXPIRED or REVOKED.
//	ExpiresAt - optional expiry; nil means the invite does not expire.
//	CreatedAt - timestamp of issuance.
type Invite struct {
	ID        string     // invites.id
	Email     string     // invites.email
	Role      string     // invites.role
	OrgRef    string     // invites.org_ref (nullable)
	TokenHash string     // invites.token_hash
	Status    string     // invites.status
	ExpiresAt *time.Time // invites.expires_at (nullable)
	CreatedAt time.Time  // invites.created_at
}

// Expired reports whether the invite has passed its expiry timestamp.
func (i Invite) Expired() bool {
	return i.ExpiresAt != nil && time.Now().UTC().After(*i.ExpiresAt)
}

// Acceptable reports whether the invite can still be accepted.
func (i Invite) Acceptable() bool {
	return i.Status == InviteSent && !i.Expired()
}
