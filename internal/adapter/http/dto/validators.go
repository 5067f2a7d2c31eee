package dto

import "regexp"

// Idempotency keys travel in a header, so binding tags never see them.
var idempotencyKeyRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.:]+$`)

const maxIdempotencyKeyLen = 255

// ValidIdempotencyKey reports whether key is a usable idempotency key:
// nonempty, bounded, and limited to URL-safe characters plus ':'.
func ValidIdempotencyKey(key string) bool {
	if key == "" || len(key) > maxIdempotencyKeyLen {
		return false
	}
	return idempotencyKeyRe.MatchString(key)
}
