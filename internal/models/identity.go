package models

import "strings"

// Identity is the verified result of an auth hub credential. It is derived
// per request and never persisted; Phone is the only field guaranteed to be
// present, and is always in normalized (whitespace-free) form.
type Identity struct {
	UserID  string `json:"userId,omitempty"`
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone"`
	Role    string `json:"role,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

// NormalizePhone strips all whitespace from a phone number. The auth hub and
// the CRM disagree about spacing, so every lookup key goes through this.
func NormalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}
