// Package draftstore persists editor draft snapshots outside the server.
// Values are opaque byte blobs keyed by a draft key such as
// "admin.homestays.new.draft".
package draftstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no draft exists for the key
	ErrNotFound = errors.New("draft not found")

	// ErrQuotaExceeded indicates the store refused a write because of its size limit
	ErrQuotaExceeded = errors.New("draft storage quota exceeded")

	// ErrEmptyKey indicates a blank draft key
	ErrEmptyKey = errors.New("draft key cannot be empty")
)

// Store defines draft snapshot storage operations
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
