package rbac

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrDBNil is returned when a nil database handle is passed in.
	ErrDBNil = errors.New("db is nil")

	// ErrUnauthenticated is returned when no valid authenticated session can
	// be resolved for a request.
	ErrUnauthenticated = errors.New("no authenticated session")

	// ErrPermissionDenied is the sentinel matched by errors.Is for every
	// *PermissionDeniedError. Gates translate it to a 403; anything else
	// coming out of an authorization check is an infrastructure failure.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnknownPermission is returned by the bootstrap when a default role
	// references a permission name missing from the catalog.
	ErrUnknownPermission = errors.New("permission is not part of the catalog")
)

// PermissionDeniedError is returned when an authenticated user lacks the
// permissions a gate requires. It names the required permissions, not the
// ones the user holds.
type PermissionDeniedError struct {
	Required []string
	// All marks a gate requiring every listed permission instead of any one.
	All bool
}

// Error implements the error interface.
func (e *PermissionDeniedError) Error() string {
	mode := "one"
	if e.All {
		mode = "all"
	}

	return fmt.Sprintf("permission denied, requires %s of: %s", mode, strings.Join(e.Required, ", "))
}

// Is makes errors.Is(err, ErrPermissionDenied) match.
func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}
