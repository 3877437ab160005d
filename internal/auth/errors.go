// ABOUTME: Error values surfaced by setup, discovery, login and registration
// ABOUTME: Access control failures for role-gated operations live here too

package auth

import (
	"errors"

	"github.com/2389/schoolbook/internal/records"
)

var (
	// ErrInvalidAccessCode is returned when discovery does not match the stored school
	ErrInvalidAccessCode = errors.New("invalid school access code")

	// ErrInvalidCredentials is returned when no principal matches the login
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPendingApproval is returned when a matching staff login awaits headmaster approval
	ErrPendingApproval = errors.New("account pending approval by headmaster")

	// ErrDuplicateEmail is returned when a teacher with the same email already exists
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrUnauthenticated is returned when an operation needs a principal and none is present
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the principal lacks the required role
	ErrForbidden = errors.New("permission denied")

	// ErrSetupRequired is returned by discovery while no headmaster exists
	ErrSetupRequired = errors.New("school setup required")

	// ErrAlreadySetUp is returned when setup runs after a headmaster exists
	ErrAlreadySetUp = records.ErrAlreadyBootstrapped
)
