package ports

import (
	"context"
)

// ModelStore loads and persists trained model bundles.
//
// Load fails with a MODEL_NOT_TRAINED error when artifacts are absent; the
// surrounding system recovers by training on demand. Save must replace the
// bundle atomically: an in-flight assessment always completes against one
// consistent bundle version, never a mix of old and new artifacts.
type ModelStore interface {
	// Load reads the persisted bundle, validates the feature-name manifest
	// pairing, and makes it the current bundle.
	Load(ctx context.Context) (*ModelBundle, error)

	// Save persists a bundle and swaps it in as current in one step
	Save(ctx context.Context, bundle *ModelBundle) error

	// Current returns the in-memory bundle, or nil if none is loaded.
	// Read-only and safe for concurrent use from assessment workers.
	Current() *ModelBundle
}
