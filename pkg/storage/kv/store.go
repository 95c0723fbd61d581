// Package kv is the device-local key-value storage that keeps the session
// token and the onboarding flag across restarts.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for keys that were never set or were deleted.
var ErrNotFound = errors.New("kv: key not found")

// Store is the persistence surface shared by every driver.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
