package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/eternalgy/referral-portal/internal/models"
)

// accountNotes is the JSON blob stored in a referrer account's notes
// column. It carries provenance plus the payout profile, since the shared
// customer table has no columns for either.
type accountNotes struct {
	Kind           string `json:"kind"`
	Source         string `json:"source"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	BankAccount    string `json:"bankAccount,omitempty"`
	BankerName     string `json:"bankerName,omitempty"`
}

// parseAccountNotes tolerates legacy free-text notes: anything that is not
// valid JSON yields an empty blob rather than an error.
func parseAccountNotes(raw string) accountNotes {
	var notes accountNotes
	if raw == "" {
		return notes
	}
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return accountNotes{}
	}
	return notes
}

func (n accountNotes) profile() models.ReferrerProfile {
	return models.ReferrerProfile{
		DisplayName:    n.DisplayName,
		ProfilePicture: n.ProfilePicture,
		BankAccount:    n.BankAccount,
		BankerName:     n.BankerName,
	}
}

// ResolveReferrer finds or creates the canonical referrer account for a
// verified identity.
//
// The whole find-or-create runs in one transaction holding an advisory
// lock keyed on the phone, so two concurrent first logins for the same
// number cannot both insert. Pre-existing duplicates from before that
// guard are tolerated: the newest row (highest id) wins and older ones are
// left alone.
func (s *Store) ResolveReferrer(ctx context.Context, identity *models.Identity) (*models.ReferrerAccount, error) {
	phone := models.NormalizePhone(identity.Phone)
	if phone == "" {
		return nil, models.NewValidationError("Your WhatsApp phone is missing from the auth token.")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", phone); err != nil {
		return nil, fmt.Errorf("failed to lock phone for resolution: %w", err)
	}

	account, err := findReferrerAccount(ctx, tx, phone)
	if err != nil {
		return nil, err
	}

	if account == nil {
		account, err = insertReferrerAccount(ctx, tx, phone)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// findReferrerAccount looks up an existing account row by phone and marker,
// normalizing drifted name/phone/marker values in place. Returns nil when
// no row matches.
func findReferrerAccount(ctx context.Context, tx *sql.Tx, phone string) (*models.ReferrerAccount, error) {
	query := `
		SELECT customer_id, name, phone, COALESCE(notes, '')
		FROM customer
		WHERE phone = $1
		  AND remark = ANY($2::text[])
		ORDER BY id DESC
		LIMIT 1
	`

	var (
		customerID  string
		name        sql.NullString
		storedPhone sql.NullString
		rawNotes    string
	)
	err := tx.QueryRowContext(ctx, query,
		phone,
		pq.Array([]string{referralMarker, legacyReferrerMarker}),
	).Scan(&customerID, &name, &storedPhone, &rawNotes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up referrer account: %w", err)
	}

	// Heal drift from legacy rows: display name, phone spacing, and the
	// old marker all normalize back to current conventions.
	if name.String != referralAccountName || storedPhone.String != phone {
		update := `
			UPDATE customer
			SET name = $1,
			    phone = $2,
			    remark = $3,
			    updated_by = $4,
			    updated_at = NOW()
			WHERE customer_id = $5
		`
		if _, err := tx.ExecContext(ctx, update,
			referralAccountName,
			phone,
			referralMarker,
			appActor,
			customerID,
		); err != nil {
			return nil, fmt.Errorf("failed to normalize referrer account: %w", err)
		}
	}

	return &models.ReferrerAccount{
		CustomerID: customerID,
		Name:       referralAccountName,
		Phone:      phone,
		Profile:    parseAccountNotes(rawNotes).profile(),
	}, nil
}

func insertReferrerAccount(ctx context.Context, tx *sql.Tx, phone string) (*models.ReferrerAccount, error) {
	customerID := randomID("ref")
	notes, err := json.Marshal(accountNotes{
		Kind:      "referral_account",
		Source:    "whatsapp_auth",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode account notes: %w", err)
	}

	query := `
		INSERT INTO customer (
			customer_id,
			name,
			phone,
			lead_source,
			remark,
			notes,
			created_by,
			updated_by
		)
		VALUES ($1, $2, $3, 'other', $4, $5, $6, $6)
	`
	if _, err := tx.ExecContext(ctx, query,
		customerID,
		referralAccountName,
		phone,
		referralMarker,
		string(notes),
		appActor,
	); err != nil {
		return nil, fmt.Errorf("failed to create referrer account: %w", err)
	}

	return &models.ReferrerAccount{
		CustomerID: customerID,
		Name:       referralAccountName,
		Phone:      phone,
	}, nil
}

// UpdateReferrerProfile merges the payout profile into the account's notes
// blob. Only the profile fields are replaced; provenance fields survive.
func (s *Store) UpdateReferrerProfile(ctx context.Context, referrer *models.ReferrerAccount, profile models.ReferrerProfile) error {
	profile.DisplayName = strings.TrimSpace(profile.DisplayName)
	profile.ProfilePicture = strings.TrimSpace(profile.ProfilePicture)
	profile.BankAccount = strings.TrimSpace(profile.BankAccount)
	profile.BankerName = strings.TrimSpace(profile.BankerName)
	if profile.DisplayName != "" && len(profile.DisplayName) < 2 {
		return models.NewValidationError("Display name is too short")
	}

	if err := s.updateReferrerProfile(ctx, referrer, profile); err != nil {
		if _, ok := models.AsReferralError(err); ok {
			return err
		}
		slog.Error("update referrer profile failed", "referrer_id", referrer.CustomerID, "error", err)
		return models.NewUnavailableError("Unable to update your profile right now.")
	}

	referrer.Profile = profile
	return nil
}

func (s *Store) updateReferrerProfile(ctx context.Context, referrer *models.ReferrerAccount, profile models.ReferrerProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var rawNotes string
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(notes, '')
		FROM customer
		WHERE customer_id = $1
		  AND remark = ANY($2::text[])
		FOR UPDATE
	`, referrer.CustomerID, pq.Array([]string{referralMarker, legacyReferrerMarker})).Scan(&rawNotes)
	if err == sql.ErrNoRows {
		return models.NewNotFoundError("Referral account not found.")
	}
	if err != nil {
		return fmt.Errorf("failed to load referrer account: %w", err)
	}

	notes := parseAccountNotes(rawNotes)
	if notes.Kind == "" {
		notes.Kind = "referral_account"
		notes.Source = "whatsapp_auth"
	}
	notes.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	notes.DisplayName = profile.DisplayName
	notes.ProfilePicture = profile.ProfilePicture
	notes.BankAccount = profile.BankAccount
	notes.BankerName = profile.BankerName

	encoded, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("failed to encode account notes: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE customer
		SET notes = $1,
		    updated_by = $2,
		    updated_at = NOW()
		WHERE customer_id = $3
	`, string(encoded), appActor, referrer.CustomerID); err != nil {
		return fmt.Errorf("failed to update referrer profile: %w", err)
	}

	return tx.Commit()
}
