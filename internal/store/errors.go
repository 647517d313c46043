package store

import "errors"

// ErrNotFound is returned by the Get* methods when no row matches the key.
// Constraint violations (duplicate keys, foreign-key failures) are not
// translated; they surface as the driver's errors so callers see the
// store's standard constraint failure.
var ErrNotFound = errors.New("not found")
