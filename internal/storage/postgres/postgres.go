// Package postgres implements storage.Store against the CRM-owned Postgres
// schema. The portal does not own these tables: referrer accounts and lead
// records share the "customer" table with ordinary CRM customers, and the
// "referral" table predates this portal. Every query here is written to
// coexist with whatever else the CRM does to those rows.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // Postgres driver

	"github.com/eternalgy/referral-portal/internal/storage"
)

// Marker and actor conventions shared with the CRM. Lookup accepts both
// markers for rows created before the rename; writes always normalize to
// referralMarker.
const (
	referralMarker       = "REFERRAL_ACCOUNT"
	legacyReferrerMarker = "REFERRER_ACCOUNT"
	referralAccountName  = "Referral"
	appActor             = "referral_portal"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using Postgres.
type Store struct {
	db   *sql.DB
	caps storage.Capabilities
}

// New opens a connection pool for the given DSN, probes the schema
// capabilities once, and returns the store. A probe failure fails
// construction rather than being cached.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	caps, err := DetectCapabilities(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, caps: caps}, nil
}

// NewWithDB wraps an existing handle with explicit capabilities. Used by
// tests to skip the probe.
func NewWithDB(db *sql.DB, caps storage.Capabilities) *Store {
	return &Store{db: db, caps: caps}
}

// DetectCapabilities checks whether the shared customer table carries the
// optional linked_referrer column. The CRM added it in a later migration
// and some deployments still run the older shape, so writes must know
// which one they are talking to.
func DetectCapabilities(ctx context.Context, db *sql.DB) (storage.Capabilities, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.columns
			WHERE table_schema = 'public'
			  AND table_name = 'customer'
			  AND column_name = 'linked_referrer'
		)
	`

	var caps storage.Capabilities
	if err := db.QueryRowContext(ctx, query).Scan(&caps.HasLinkedReferrer); err != nil {
		return storage.Capabilities{}, fmt.Errorf("failed to probe customer schema: %w", err)
	}

	return caps, nil
}

// Capabilities returns the schema capabilities detected at construction.
func (s *Store) Capabilities() storage.Capabilities {
	return s.caps
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// randomID generates an opaque prefixed id like "ref_1f8a0c2d9b3e". Twelve
// hex chars of a v4 UUID make collisions negligible, so callers treat the
// result as unique without a pre-check.
func randomID(prefix string) string {
	segment := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return prefix + "_" + segment
}
