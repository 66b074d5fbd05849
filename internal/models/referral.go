package models

import (
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Referral statuses, in pipeline order. New referrals always start Pending;
// the remaining values are driven by the sales side through the dashboard.
const (
	StatusPending   = "Pending"
	StatusQualified = "Qualified"
	StatusProposal  = "Proposal"
	StatusWon       = "Won"
	StatusLost      = "Lost"
)

// ReferralStatuses lists every status the update form accepts.
var ReferralStatuses = []string{StatusPending, StatusQualified, StatusProposal, StatusWon, StatusLost}

// RelationshipOptions is the fixed set offered by the dashboard forms.
var RelationshipOptions = []string{"Family", "Friend", "Colleague", "Neighbour", "Customer", "Other"}

// IsValidStatus reports whether s is one of the recognized statuses.
func IsValidStatus(s string) bool {
	return slices.Contains(ReferralStatuses, s)
}

// NormalizeRelationship maps free-form input onto the fixed option list,
// falling back to "Other" for anything unrecognized.
func NormalizeRelationship(value string) string {
	if slices.Contains(RelationshipOptions, value) {
		return value
	}
	return "Other"
}

// Referral is one submitted lead as seen by its referrer. LivingRegion is
// not stored on the referral row itself; it is read via a join from the
// lead's customer record.
type Referral struct {
	ID             int64     `json:"id"`
	BubbleID       string    `json:"bubbleId"`
	LeadName       string    `json:"leadName"`
	LeadMobile     string    `json:"leadMobile"`
	LivingRegion   string    `json:"livingRegion"`
	Relationship   string    `json:"relationship"`
	Status         string    `json:"status"`
	LeadCustomerID string    `json:"leadCustomerId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ReferralInput is the submit-a-lead form payload.
type ReferralInput struct {
	LeadName         string `json:"leadName"`
	LeadMobileNumber string `json:"leadMobileNumber"`
	LivingRegion     string `json:"livingRegion"`
	Relationship     string `json:"relationship"`
}

// ReferralUpdate is the edit form payload. ReferralID normally comes from
// the route, not the body.
type ReferralUpdate struct {
	ReferralInput
	ReferralID int64  `json:"referralId"`
	Status     string `json:"status"`
}

var validate = validator.New()

// fieldRule pairs one form field with its shape rule and the user-facing
// message shown when the rule fails. Rules are checked in declaration
// order and the first failure wins.
type fieldRule struct {
	value   string
	rule    string
	message string
}

func checkRules(rules []fieldRule) error {
	for _, r := range rules {
		if err := validate.Var(r.value, r.rule); err != nil {
			return NewValidationError(r.message)
		}
	}
	return nil
}

// Normalize trims every field. Call it before Validate. The relationship
// is kept verbatim; folding onto the option list is a form concern and
// happens in the handler, so direct store callers can persist free-form
// values.
func (in *ReferralInput) Normalize() {
	in.LeadName = strings.TrimSpace(in.LeadName)
	in.LeadMobileNumber = strings.TrimSpace(in.LeadMobileNumber)
	in.LivingRegion = strings.TrimSpace(in.LivingRegion)
	in.Relationship = strings.TrimSpace(in.Relationship)
}

// Validate checks the submit-form shape rules and returns the first failing
// rule's message as a validation error.
func (in ReferralInput) Validate() error {
	return checkRules([]fieldRule{
		{in.LeadName, "min=2", "Lead name is required"},
		{in.LeadMobileNumber, "min=6", "Lead mobile number is required"},
		{in.LivingRegion, "min=2", "Living region is required"},
		{in.Relationship, "min=2", "Relationship is required"},
	})
}

// Normalize trims the embedded input fields.
func (in *ReferralUpdate) Normalize() {
	in.ReferralInput.Normalize()
	in.Status = strings.TrimSpace(in.Status)
}

// Validate checks the edit-form rules: the embedded input rules first, then
// the id and status constraints.
func (in ReferralUpdate) Validate() error {
	if err := in.ReferralInput.Validate(); err != nil {
		return err
	}
	if in.ReferralID <= 0 {
		return NewValidationError("Referral id is invalid")
	}
	if !IsValidStatus(in.Status) {
		return NewValidationError("Referral status is invalid")
	}
	return nil
}
