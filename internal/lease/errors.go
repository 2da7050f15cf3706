package lease

import "errors"

// ErrNotFound reports that no record in the remote collection matched
// the requested identifier.
var ErrNotFound = errors.New("not found")
