package db

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const (
	DriverNone     = ""
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSupabase = "supabase"
)

// DefaultMongoDatabase is used when no database name is configured
const DefaultMongoDatabase = "narrator"

// Options selects and configures the run history backend
type Options struct {
	Driver string
	// URI is a MongoDB URI, a Postgres DSN, or a Supabase project URL or DSN
	URI string
	// Database is the MongoDB database name
	Database string
	// Collection is the MongoDB collection or the SQL table
	Collection string
	// APIKey and Password are only used by the supabase driver
	APIKey   string
	Password string
}

// Open connects the configured run store. It returns (nil, nil) when history is disabled.
func Open(ctx context.Context, opts Options) (RunStore, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverNone:
		return nil, nil
	case DriverMongo:
		return openMongo(ctx, opts)
	case DriverPostgres:
		return openPostgres(ctx, opts)
	case DriverSupabase:
		return openSupabase(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown history driver %q", opts.Driver)
	}
}

func openMongo(ctx context.Context, opts Options) (RunStore, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("mongo history needs a URI")
	}
	database := opts.Database
	if database == "" {
		database = DefaultMongoDatabase
	}
	collection := opts.Collection
	if collection == "" {
		collection = DefaultRunsTable
	}

	store := NewMongoStore(opts.URI, database, collection)
	if err := store.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	log.Printf("History: Connected to MongoDB (%s.%s)", database, collection)
	return store, nil
}

func openPostgres(ctx context.Context, opts Options) (RunStore, error) {
	client := NewPostgresClient(PostgresConfig{DSN: opts.URI, MaxOpenConns: 2})
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	store, err := NewPostgresStore(client, opts.Collection, client.Close)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	log.Printf("History: Connected to Postgres (table %s)", store.table)
	return store, nil
}

func openSupabase(ctx context.Context, opts Options) (RunStore, error) {
	cfg := SupabaseConfig{
		SupabaseKey:  opts.APIKey,
		Password:     opts.Password,
		MaxOpenConns: 2,
	}
	if strings.HasPrefix(opts.URI, "postgres") {
		cfg.ConnectionString = opts.URI
	} else {
		cfg.SupabaseURL = opts.URI
	}

	client := NewSupabaseClient(cfg)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	store, err := NewSupabaseStore(client, opts.Collection)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	mode := "REST API"
	if client.HasDirectDB() {
		mode = "direct connection"
	}
	log.Printf("History: Connected to Supabase via %s (table %s)", mode, store.table)
	return store, nil
}
