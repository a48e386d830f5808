// Package store persists grid sessions for the HTTP API.
//
// Implementations:
//   - [MemoryStore]: in-process map, for development and tests
//   - [FileStore]: one JSON file per session, for single-host deployments
//   - [MongoStore]: MongoDB collection, for multi-instance deployments
//
// Every backend stores a [Record]: the session's [grid.Snapshot] plus its
// ID and timestamps. Records are copied on the way in and out, so callers
// never share cell slices with the store.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gridstudio/pkg/errors"
	"github.com/matzehuels/gridstudio/pkg/grid"
)

// Record is a persisted session.
type Record struct {
	ID        string        `json:"id" bson:"_id"`
	Snapshot  grid.Snapshot `json:"snapshot" bson:"snapshot"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// NewRecord wraps snap in a record with a fresh ID.
func NewRecord(snap grid.Snapshot) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        NewID(),
		Snapshot:  snap,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewID returns a random session ID.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an ID from NewID. File paths and
// Mongo keys are built from IDs, so anything else is rejected early.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Store persists session records.
type Store interface {
	// Get returns the record for id, or an error with
	// errors.ErrCodeSessionNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Put inserts or replaces rec.
	Put(ctx context.Context, rec *Record) error

	// Delete removes id. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
}

// IsNotFound reports whether err means the session does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeSessionNotFound)
}

// clone deep-copies a record.
func clone(rec *Record) *Record {
	out := *rec
	out.Snapshot.Cells = append([]grid.Cell(nil), rec.Snapshot.Cells...)
	if rec.Snapshot.Active != nil {
		a := *rec.Snapshot.Active
		out.Snapshot.Active = &a
	}
	return &out
}

func checkID(id string) error {
	if !ValidID(id) {
		return notFound(id)
	}
	return nil
}
