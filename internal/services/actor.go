package services

import (
	"investment-service/internal/models"
)

// Actor is the authenticated caller. Every operation receives it explicitly.
type Actor struct {
	UserID uint
	Role   string
}

// System is used by scheduled jobs that act on behalf of no user.
var System = Actor{Role: models.RoleAdmin}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanAccess reports whether the actor may read or act on userID's records.
func (a Actor) CanAccess(userID uint) bool {
	return a.IsAdmin() || a.UserID == userID
}

func requireAdmin(a Actor) error {
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func requireAccess(a Actor, userID uint) error {
	if !a.CanAccess(userID) {
		return ErrForbidden
	}
	return nil
}
