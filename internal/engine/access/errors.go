package access

import "errors"

var (
	// ErrNotFound is returned when a referenced room, user, organization,
	// group, or role id does not resolve in the store. Distinct from a
	// denied decision: callers map it to 404, not 403.
	ErrNotFound = errors.New("not found")

	// ErrUnknownPermission is returned when a permission name is not part
	// of the seeded catalog. This is a caller programming error, not a
	// denial.
	ErrUnknownPermission = errors.New("unknown permission")
)
