// Package models defines the domain types shared across the referral portal.
//
// The portal stores its data in a CRM-owned schema it does not control:
// referral-program participants and referred leads both live in the shared
// "customer" table, distinguished by marker and lead-source values, while
// submitted referrals live in the "referral" table. The types here mirror
// that shape without exposing the raw columns.
//
//   - Identity: what the WhatsApp auth hub asserts about the caller
//   - ReferrerAccount: the participant's canonical customer row
//   - Referral: one submitted lead, joined with its region
//   - ReferralInput / ReferralUpdate: validated form payloads
//
// Validation messages defined here are user-facing and surface verbatim
// through the API, so they are phrased for the dashboard, not for logs.
package models
