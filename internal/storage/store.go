// Package storage provides abstractions for the referral portal's
// persistence layer.
package storage

import (
	"context"

	"github.com/eternalgy/referral-portal/internal/models"
)

// Capabilities describes what the shared customer schema supports. The
// table belongs to the external CRM and is migrated on its schedule, so the
// optional linked_referrer column may or may not exist; writes consult this
// value and never mention a column it reports absent.
//
// Capabilities are detected once at store construction and injected
// explicitly in tests - there is no hidden process-global cache.
type Capabilities struct {
	HasLinkedReferrer bool
}

// Store defines the referral portal's persistence operations.
// This abstraction keeps the handlers independent of the Postgres
// implementation and lets tests substitute a fake.
type Store interface {
	// ResolveReferrer finds or lazily creates the caller's canonical
	// referrer account by phone. Resolution is idempotent: resolving the
	// same identity twice yields the same customer id.
	ResolveReferrer(ctx context.Context, identity *models.Identity) (*models.ReferrerAccount, error)

	// UpdateReferrerProfile saves the payout profile onto the referrer's
	// account row.
	UpdateReferrerProfile(ctx context.Context, referrer *models.ReferrerAccount, profile models.ReferrerProfile) error

	// ListReferrals returns every referral linked to the given referrer,
	// newest first.
	ListReferrals(ctx context.Context, referrerCustomerID string) ([]models.Referral, error)

	// CreateReferral validates the input and atomically creates the lead
	// record plus its referral row. Status always starts Pending.
	CreateReferral(ctx context.Context, referrer *models.ReferrerAccount, input models.ReferralInput) error

	// UpdateReferral mutates a referral the caller owns, propagating lead
	// fields into the linked lead record where ownership still holds.
	UpdateReferral(ctx context.Context, referrer *models.ReferrerAccount, input models.ReferralUpdate) error

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
