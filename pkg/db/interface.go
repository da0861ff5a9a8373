package db

import (
	"context"
	"database/sql"

	"doc-narrator/pkg/domain"
)

// DefaultRunLimit is used when a caller asks for a non-positive number of runs
const DefaultRunLimit = 20

// MaxRunLimit caps a single RecentRuns query
const MaxRunLimit = 200

// DBProvider is an interface for database clients that provide access to a sql.DB handle.
// This allows both PostgresClient and SupabaseClient to be used interchangeably.
type DBProvider interface {
	DB() *sql.DB
}

// RunStore persists run metadata
type RunStore interface {
	SaveRun(ctx context.Context, record domain.RunRecord) error
	RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
	Close(ctx context.Context) error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRunLimit
	}
	if limit > MaxRunLimit {
		return MaxRunLimit
	}
	return limit
}

var (
	_ RunStore = (*MongoStore)(nil)
	_ RunStore = (*PostgresStore)(nil)
	_ RunStore = (*SupabaseStore)(nil)
)
