// Package store is the durable-storage boundary of the portal: a
// hierarchical, path-addressed store holding one folder per submission
// (a metadata object plus its attachment files). Writes go through a
// staging area and become visible in a single atomic publish step, so a
// concurrent reader either sees a complete record or no record at all.
package store

import "errors"

// ErrExists is returned by Publish when the target location is already
// taken. Locations are never overwritten or reused.
var ErrExists = errors.New("store: location already exists")

// MetadataFile is the name of the per-record metadata object.
const MetadataFile = "metadata.yaml"

// Staging is a not-yet-visible record under construction. Either every
// write succeeds and Publish makes the whole set visible at once, or
// Discard throws the set away; no intermediate state is ever observable.
type Staging interface {
	// WriteFile stages one file under the record's folder.
	WriteFile(name string, data []byte) error
	// Publish atomically moves the staged folder to location, making
	// it visible to Walk and Exists. Fails with ErrExists if the
	// location is taken; the staged set survives for a retry with a
	// different location.
	Publish(location string) error
	// Discard removes the staged set. Safe after a failed Publish.
	Discard()
}

// Store is the durable store consumed by the submission workflow and
// the history query. Locations are store-relative, slash-separated paths.
type Store interface {
	Stage() (Staging, error)
	// Exists reports whether a published record occupies location.
	Exists(location string) bool
	// FileExists reports whether a published record at location still
	// holds the named file. Content is never read.
	FileExists(location, name string) bool
	// Walk calls fn for every published metadata object with the
	// record's location and the raw metadata bytes. Staged (unpublished)
	// records are never walked. Returning an error from fn stops the walk.
	Walk(fn func(location string, raw []byte) error) error
}
