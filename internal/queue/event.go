// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names for portal audit events.
const (
	AccountProvisionedQueue = "account.provisioned"
	InviteIssuedQueue       = "invite.issued"
)

// AccountProvisionedEvent is published when an administrator mints a new
// account. It deliberately carries no credential material; the plaintext
// access key and token exist only in the provisioning response.
type AccountProvisionedEvent struct {
	AccountID     uint64 `json:"account_id"`
	UserCode      string `json:"user_code"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	ProvisionedBy string `json:"provisioned_by"`
	ProvisionedAt string `json:"provisioned_at"`
}

// InviteIssuedEvent is published when a standing invite is created so the
// mail worker can notify the invitee. The invite token itself is delivered
// out of band and never appears on the broker.
type InviteIssuedEvent struct {
	InviteID  string `json:"invite_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at,omitempty"`
	IssuedAt  string `json:"issued_at"`
}
