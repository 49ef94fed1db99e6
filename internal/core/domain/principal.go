package domain

import (
	"time"
)

// User is an account that can authenticate against the management API.
// Authentication is by access key; the secret is stored hashed only.
type User struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName"`
	Email     *string   `json:"email,omitempty"`
	KeyHash   string    `json:"-"`         // SHA-256 of the access key, never the raw value
	KeyPrefix string    `json:"keyPrefix"` // first chars of the key, for identification
	IsSuper   bool      `json:"isSuper"`
	Active    bool      `json:"active"`
	Created   time.Time `json:"created"`
}

// Group is a named set of users. Zones reference a group as their admin
// group and ACL rules may reference groups; both are non-owning references.
type Group struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Created time.Time `json:"created"`
}

// AuthPrincipal is the resolved identity of a requester: the user, the set
// of groups the user belongs to, and the super-user flag from the user
// record. Authorization decisions take the principal explicitly rather than
// reading ambient identity.
type AuthPrincipal struct {
	UserID   string
	GroupIDs []string
	IsSuper  bool
}

// IsGroupMember reports whether the principal belongs to the given group.
func (p AuthPrincipal) IsGroupMember(groupID string) bool {
	for _, id := range p.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
