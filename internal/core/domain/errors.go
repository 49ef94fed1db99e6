package domain

import (
	"fmt"
	"strings"
)

// ZoneAlreadyExistsError means a create collided with an existing
// non-deleted zone of the same name.
type ZoneAlreadyExistsError struct {
	Name string
}

func (e *ZoneAlreadyExistsError) Error() string {
	return fmt.Sprintf("zone with name %q already exists", e.Name)
}

// ZoneNotFoundError means the operation targeted a zone ID that is not in
// the repository.
type ZoneNotFoundError struct {
	ID string
}

func (e *ZoneNotFoundError) Error() string {
	return fmt.Sprintf("zone %q not found", e.ID)
}

// InvalidZoneAdminError means the referenced admin group does not exist.
type InvalidZoneAdminError struct {
	GroupID string
}

func (e *InvalidZoneAdminError) Error() string {
	return fmt.Sprintf("admin group %q does not exist", e.GroupID)
}

// InvalidRequestError is a structural validation failure: a bad record mask
// regex or too many ACL rules. Reasons are client-safe.
type InvalidRequestError struct {
	Reasons []string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + strings.Join(e.Reasons, "; ")
}

// NotAuthorizedError means the principal lacks the required permission for
// the attempted action.
type NotAuthorizedError struct {
	UserID string
	Action string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("user %q is not authorized to %s", e.UserID, e.Action)
}

// ConnectionFailedError means the live DNS connectivity probe failed for
// the attempted zone.
type ConnectionFailedError struct {
	Zone    Zone
	Message string
}

func (e *ConnectionFailedError) Error() string {
	return fmt.Sprintf("unable to connect to zone %q: %s", e.Zone.Name, e.Message)
}
