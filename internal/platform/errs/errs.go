// Package errs defines the sentinel errors shared by the domain services.
// Handlers translate these into HTTP statuses; the services themselves never
// produce user-facing text.
package errs

import "errors"

var (
	// ErrNotFound covers both "no such row" and "row exists but the caller
	// may not see it". Non-owners of a patient record receive ErrNotFound,
	// never ErrForbidden, so record existence is not revealed.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials merges unknown-login and wrong-secret failures
	// on the login path so login identifiers cannot be enumerated.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when the caller is authenticated and the
	// target's existence is not hidden, but the action is not permitted
	// (e.g. an owner attempting to reassign their own record).
	ErrForbidden = errors.New("forbidden")

	// ErrDuplicateKey is returned when a create collides with an existing
	// unique key. The existing row is left unmodified.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInconsistentState signals a broken multi-row invariant, e.g. a
	// deprovision that would leave records pointing at a removed identity.
	// It should never surface while the transactional boundary holds.
	ErrInconsistentState = errors.New("inconsistent state")
)
