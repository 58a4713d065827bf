// Package repository implements data access over the relational store.
// Sentinel errors defined here let handlers distinguish failure scenarios
// without inspecting driver errors: duplicates surface as conflicts, missing
// rows as not-found.  Handlers translate them into typed API errors.
package repository

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when an insert loses a race on a unique index
// (username, email or key value).  Which column collided is deliberately
// not reported; the original API answers "user already exists" for both.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is returned when a targeted row does not exist, or when it
// exists but is not visible to the caller (another user's API key).
var ErrNotFound = errors.New("record not found")

// ErrKeyLimitReached is returned when a user already holds the maximum
// number of active API keys.
var ErrKeyLimitReached = errors.New("api key limit reached")

// isDuplicateErr detects MySQL error 1062 (duplicate entry for a unique
// index) without depending on the driver's error type.
func isDuplicateErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
