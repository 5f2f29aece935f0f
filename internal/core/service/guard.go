package service

import "github.com/cpms/cpms-api/internal/core/domain"

// authorize is the ownership gate every resource operation goes through.
// Callers must have loaded the row first so that a missing row reports
// NotFound before any AccessDenied.
func authorize(actor *domain.User, ownerID int64, resource string) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !actor.CanAccess(ownerID) {
		return domain.AccessDenied(resource)
	}
	return nil
}

// scopeOwner returns the owner filter for list queries: 0 (everything) for
// admins, the actor's own id otherwise.
func scopeOwner(actor *domain.User) int64 {
	if actor.IsAdmin() {
		return 0
	}
	return actor.ID
}
