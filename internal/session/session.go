// Package session answers "who is acting now" and "what family view should
// they see". Sessions are explicit values passed into calls, never ambient
// process state, so one process can serve multiple sessions without
// cross-contamination.
package session

import (
	"lobohub/internal/models"
)

// Resolver maps a session credential to the acting user. Authentication
// itself is external to the local core; the JWT-backed TokenManager is the
// on-device implementation.
type Resolver interface {
	ResolveSession(token string) (*models.User, error)
}

// Context carries the acting user for one sequence of operations
type Context struct {
	user *models.User
}

// NewContext creates a session context for the given user. A nil user models
// the signed-out state.
func NewContext(user *models.User) Context {
	return Context{user: user}
}

// CurrentUser returns the acting user, or nil when signed out
func (c Context) CurrentUser() *models.User {
	return c.user
}

// CurrentFamilyScope returns the family id whose aggregated view the user
// sees. ok is false when the user belongs to no family and only sees their
// own records.
func (c Context) CurrentFamilyScope() (string, bool) {
	if c.user == nil || !c.user.HasFamily() {
		return "", false
	}
	return c.user.FamilyID, true
}
