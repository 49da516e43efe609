package auth

import "github.com/google/uuid"

// Action is an operation attempted against an owned record.
type Action string

const (
	ActionRead          Action = "read"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionReassignOwner Action = "reassign_owner"
)

// CanAccess decides whether p may perform action on a record owned by
// ownerID. A nil ownerID means the record is orphaned (its owner was
// deprovisioned).
//
// The rules are checked in order:
//   - a superuser may do anything, including reassigning ownership and
//     touching orphaned records;
//   - a non-superuser may read, update and delete records it owns;
//   - ownership reassignment is never available to non-superusers, even
//     on their own records;
//   - everything else is denied.
//
// Callers translate a denial on read/update/delete into a not-found
// response so that non-owners cannot learn whether a record exists.
func CanAccess(p Principal, ownerID *uuid.UUID, action Action) bool {
	if p.Superuser {
		return true
	}
	if ownerID == nil || *ownerID != p.ID {
		return false
	}
	return action != ActionReassignOwner
}
