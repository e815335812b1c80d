// Package storage persists profiling run reports. Backends register
// themselves by kind; the rest of the application only sees the Repository
// interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config selects and configures a storage backend.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// RunReport is the persisted record of one clean-and-profile run.
type RunReport struct {
	ID                uuid.UUID `json:"id"`
	Dataset           string    `json:"dataset"`
	CreatedAt         time.Time `json:"created_at"`
	Sector            string    `json:"sector"`
	RowsBefore        int       `json:"rows_before"`
	RowsAfter         int       `json:"rows_after"`
	DuplicatesRemoved int       `json:"duplicates_removed"`
	MissingPct        float64   `json:"missing_pct"`
	AvgCorrelation    float64   `json:"avg_correlation"`

	// CleaningLog is the run's cleaning log serialized as JSON.
	CleaningLog []byte `json:"cleaning_log,omitempty"`
}

// ErrNotFound is returned by GetRun for an unknown run id.
var ErrNotFound = errors.New("storage: run not found")

// Repository is the backend-agnostic persistence surface.
//
// IMPORTANT: this interface is intentionally minimal. Each backend implements
// the semantics in its own idiomatic way (Postgres ON CONFLICT, SQLite OR
// IGNORE, MSSQL IF NOT EXISTS).
type Repository interface {
	// Close releases backend resources. Treat as "call once".
	Close()

	// EnsureSchema creates the run table when absent. Idempotent.
	EnsureSchema(ctx context.Context) error

	// SaveRun persists one report. Saving the same ID twice is a no-op.
	SaveRun(ctx context.Context, r RunReport) error

	// GetRun fetches a report by id, or ErrNotFound.
	GetRun(ctx context.Context, id uuid.UUID) (RunReport, error)

	// ListRuns returns the most recent reports, newest first, without the
	// cleaning log payload.
	ListRuns(ctx context.Context, limit int) ([]RunReport, error)
}

// ---- backend factories ----

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// Call Register from an init() function in a backend package. Registering the
// same kind more than once panics, to fail fast on ambiguous backend
// selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Errors:
//   - If cfg.Kind is empty or not registered.
//   - Whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing storage.kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
