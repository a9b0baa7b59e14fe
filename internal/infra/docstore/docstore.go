// Package docstore provides whole-document durable storage. Each named
// document is read and overwritten as a unit, and the store itself
// serializes read-modify-write cycles so that concurrent updates of the
// same document never lose writes.
package docstore

import (
	"context"

	"coupon-shop-bot/internal/pkg/errs"
)

// ErrAbort can be returned from an UpdateFn to leave the document untouched
// without surfacing an error to the caller of Update.
var ErrAbort = errs.New("document update aborted")

// UpdateFn receives the current document body (nil when the document does
// not exist yet) and returns the body to persist.
type UpdateFn func(current []byte) ([]byte, error)

type Store interface {
	// Load returns the current document body, or nil when the document
	// does not exist. A missing document is not an error.
	Load(ctx context.Context, name string) ([]byte, error)

	// Update atomically applies fn to the named document and persists the
	// result before returning. The write is durable by the time Update
	// returns nil. Concurrent Update calls on the same name are serialized
	// by the store.
	Update(ctx context.Context, name string, fn UpdateFn) error
}
