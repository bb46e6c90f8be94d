// Package tokens manages upstream access credentials: cached reuse until
// expiry, refresh grants for users, and the client-credentials grant for
// the shared service identity.
package tokens

import "fmt"

// Principal identifies whose credential a call should use: a specific
// user (delegated access) or the shared service account used for public
// lookups. The service account is a distinct variant, not a reserved
// user id.
type Principal struct {
	userID  int64
	service bool
}

// User returns the principal for a specific account.
func User(id int64) Principal {
	return Principal{userID: id}
}

// ServiceAccount returns the shared non-user principal.
func ServiceAccount() Principal {
	return Principal{service: true}
}

// IsService reports whether p is the shared service identity.
func (p Principal) IsService() bool {
	return p.service
}

// UserID returns the user id and true for user principals.
func (p Principal) UserID() (int64, bool) {
	if p.service {
		return 0, false
	}
	return p.userID, true
}

func (p Principal) String() string {
	if p.service {
		return "service"
	}
	return fmt.Sprintf("user:%d", p.userID)
}
