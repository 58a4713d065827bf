package utils

import "github.com/google/uuid"

// NewAPIKeyValue returns a fresh random API key value.  Keys are plain
// UUIDv4 strings; uniqueness is additionally guaranteed by the unique
// index on api_keys.key.
func NewAPIKeyValue() string {
	return uuid.NewString()
}
