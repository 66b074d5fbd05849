package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eternalgy/referral-portal/internal/models"
)

// leadMetadata is the JSON blob stored in a lead record's notes column.
// Field order matters: the ownership clause below matches the serialized
// text with LIKE, so linkedReferrer and syncedFromReferralPortal must keep
// their exact key names and compact encoding.
type leadMetadata struct {
	Relationship             string `json:"relationship"`
	LivingRegion             string `json:"livingRegion"`
	LinkedReferrer           string `json:"linkedReferrer"`
	SyncedFromReferralPortal bool   `json:"syncedFromReferralPortal"`
	CreatedAt                string `json:"createdAt,omitempty"`
	UpdatedAt                string `json:"updatedAt,omitempty"`
}

func encodeLeadMetadata(m leadMetadata) (string, error) {
	encoded, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode lead metadata: %w", err)
	}
	return string(encoded), nil
}

// leadOwnershipClause builds the WHERE fragment that decides whether a lead
// row still belongs to a referrer. The customer table has no dedicated
// foreign key for this, so ownership is a heuristic: the row must look like
// a portal-created lead (lead_source tag or the synced flag in its notes)
// AND trace back to the referrer (created_by or the linkedReferrer field in
// its notes). next is the first free placeholder index; the returned args
// line up with the placeholders used in the fragment.
func leadOwnershipClause(referrerCustomerID string, next int) (string, []interface{}) {
	clause := fmt.Sprintf(`(
			lead_source = 'referral'
			OR notes LIKE '%%"syncedFromReferralPortal":true%%'
		)
		AND (
			created_by = $%d
			OR notes LIKE $%d
		)`, next, next+1)

	args := []interface{}{
		referrerCustomerID,
		`%"linkedReferrer":"` + referrerCustomerID + `"%`,
	}
	return clause, args
}

// CreateReferral validates the input, then atomically inserts the lead
// pseudo-customer and its referral row. The caller cannot choose a status:
// new referrals always start Pending.
func (s *Store) CreateReferral(ctx context.Context, referrer *models.ReferrerAccount, input models.ReferralInput) error {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return err
	}

	if err := s.createReferral(ctx, referrer, input); err != nil {
		if _, ok := models.AsReferralError(err); ok {
			return err
		}
		slog.Error("create referral failed", "referrer_id", referrer.CustomerID, "error", err)
		return models.NewUnavailableError("Unable to add this referral right now.")
	}
	return nil
}

func (s *Store) createReferral(ctx context.Context, referrer *models.ReferrerAccount, input models.ReferralInput) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	leadCustomerID := randomID("cust")
	bubbleID := randomID("reflead")

	metadata, err := encodeLeadMetadata(leadMetadata{
		Relationship:             input.Relationship,
		LivingRegion:             input.LivingRegion,
		LinkedReferrer:           referrer.CustomerID,
		SyncedFromReferralPortal: true,
		CreatedAt:                time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	columns := []string{
		"customer_id",
		"name",
		"phone",
		"state",
		"lead_source",
		"remark",
		"notes",
		"created_by",
		"updated_by",
	}
	values := []interface{}{
		leadCustomerID,
		input.LeadName,
		input.LeadMobileNumber,
		input.LivingRegion,
		"referral",
		input.Relationship,
		metadata,
		referrer.CustomerID,
		referrer.CustomerID,
	}

	// Only mention linked_referrer when the schema has it; older CRM
	// deployments reject unknown columns outright.
	if s.caps.HasLinkedReferrer {
		columns = append(columns, "linked_referrer")
		values = append(values, referrer.CustomerID)
	}

	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	insertLead := fmt.Sprintf(
		"INSERT INTO customer (%s) VALUES (%s)",
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	if _, err := tx.ExecContext(ctx, insertLead, values...); err != nil {
		return fmt.Errorf("failed to insert lead record: %w", err)
	}

	insertReferral := `
		INSERT INTO referral (
			bubble_id,
			linked_customer_profile,
			name,
			relationship,
			mobile_number,
			status,
			linked_invoice
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, insertReferral,
		bubbleID,
		referrer.CustomerID,
		input.LeadName,
		input.Relationship,
		input.LeadMobileNumber,
		models.StatusPending,
		leadCustomerID,
	); err != nil {
		return fmt.Errorf("failed to insert referral: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListReferrals returns every referral linked to the referrer, newest
// first. The lead's customer row is left-joined for the living region: a
// referral has no region column of its own, and the join must not drop
// referrals whose lead row disappeared on the CRM side.
func (s *Store) ListReferrals(ctx context.Context, referrerCustomerID string) ([]models.Referral, error) {
	query := `
		SELECT
			r.id,
			r.bubble_id,
			COALESCE(r.name, ''),
			COALESCE(r.mobile_number, ''),
			COALESCE(c.state, ''),
			COALESCE(r.relationship, ''),
			COALESCE(r.status, ''),
			COALESCE(r.linked_invoice, ''),
			r.created_at
		FROM referral r
		LEFT JOIN customer c ON c.customer_id = r.linked_invoice
		WHERE r.linked_customer_profile = $1
		ORDER BY r.created_at DESC, r.id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, referrerCustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	defer rows.Close()

	var referrals []models.Referral
	for rows.Next() {
		var (
			referral  models.Referral
			createdAt sql.NullTime
		)
		if err := rows.Scan(
			&referral.ID,
			&referral.BubbleID,
			&referral.LeadName,
			&referral.LeadMobile,
			&referral.LivingRegion,
			&referral.Relationship,
			&referral.Status,
			&referral.LeadCustomerID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referral.CreatedAt = createdAt.Time
		referrals = append(referrals, referral)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referrals: %w", err)
	}

	return referrals, nil
}

// UpdateReferral mutates a referral the caller owns. The target row is
// locked for the duration of the transaction and the ownership check runs
// under that lock, before any write, so a concurrent change cannot slip
// between the read and the update.
func (s *Store) UpdateReferral(ctx context.Context, referrer *models.ReferrerAccount, input models.ReferralUpdate) error {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return err
	}

	if err := s.updateReferral(ctx, referrer, input); err != nil {
		if _, ok := models.AsReferralError(err); ok {
			return err
		}
		slog.Error("update referral failed",
			"referrer_id", referrer.CustomerID,
			"referral_id", input.ReferralID,
			"error", err,
		)
		return models.NewUnavailableError("Unable to update this referral right now.")
	}
	return nil
}

func (s *Store) updateReferral(ctx context.Context, referrer *models.ReferrerAccount, input models.ReferralUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		id            int64
		ownerID       string
		leadInvoiceID sql.NullString
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, linked_customer_profile, linked_invoice
		FROM referral
		WHERE id = $1
		FOR UPDATE
	`, input.ReferralID).Scan(&id, &ownerID, &leadInvoiceID)
	if err == sql.ErrNoRows {
		return models.NewNotFoundError("Referral record not found.")
	}
	if err != nil {
		return fmt.Errorf("failed to lock referral: %w", err)
	}

	if ownerID != referrer.CustomerID {
		return models.NewUnauthorizedError("You can only edit your own referrals.")
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE referral
		SET name = $1,
		    mobile_number = $2,
		    relationship = $3,
		    status = $4,
		    updated_at = NOW()
		WHERE id = $5
	`,
		input.LeadName,
		input.LeadMobileNumber,
		input.Relationship,
		input.Status,
		input.ReferralID,
	); err != nil {
		return fmt.Errorf("failed to update referral: %w", err)
	}

	if leadInvoiceID.Valid && leadInvoiceID.String != "" {
		if err := updateLeadRecord(ctx, tx, s.caps.HasLinkedReferrer, leadInvoiceID.String, referrer.CustomerID, input); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// updateLeadRecord propagates lead fields into the linked customer row,
// guarded by the ownership clause. A lead row that was reassigned on the
// CRM side simply fails the guard and matches zero rows; that is not an
// error, the referral update itself still commits.
func updateLeadRecord(ctx context.Context, tx *sql.Tx, hasLinkedReferrer bool, leadCustomerID, referrerCustomerID string, input models.ReferralUpdate) error {
	metadata, err := encodeLeadMetadata(leadMetadata{
		Relationship:             input.Relationship,
		LivingRegion:             input.LivingRegion,
		LinkedReferrer:           referrerCustomerID,
		SyncedFromReferralPortal: true,
		UpdatedAt:                time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	setClauses := []string{
		"name = $1",
		"phone = $2",
		"state = $3",
		"remark = $4",
		"notes = $5",
		"updated_by = $6",
		"updated_at = NOW()",
	}
	args := []interface{}{
		input.LeadName,
		input.LeadMobileNumber,
		input.LivingRegion,
		input.Relationship,
		metadata,
		referrerCustomerID,
	}

	if hasLinkedReferrer {
		setClauses = append(setClauses, fmt.Sprintf("linked_referrer = $%d", len(args)+1))
		args = append(args, referrerCustomerID)
	}

	args = append(args, leadCustomerID)
	leadIDPlaceholder := len(args)

	ownership, ownershipArgs := leadOwnershipClause(referrerCustomerID, leadIDPlaceholder+1)
	args = append(args, ownershipArgs...)

	query := fmt.Sprintf(`
		UPDATE customer
		SET %s
		WHERE customer_id = $%d
		  AND %s
	`, strings.Join(setClauses, ", "), leadIDPlaceholder, ownership)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update lead record: %w", err)
	}

	return nil
}
