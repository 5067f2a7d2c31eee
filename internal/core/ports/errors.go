package ports

import "errors"

// ErrDuplicateEntry is returned by repositories when an insert violates an
// idempotency uniqueness constraint. Callers resolve it by re-reading the
// winning row; it is never surfaced to clients.
var ErrDuplicateEntry = errors.New("duplicate entry for idempotency key")
