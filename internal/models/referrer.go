package models

// ReferrerProfile holds the payout details a referrer maintains from the
// dashboard. The shared customer table has no columns for these, so the
// store keeps them inside the account row's notes blob.
type ReferrerProfile struct {
	DisplayName    string `json:"displayName"`
	ProfilePicture string `json:"profilePicture"`
	BankAccount    string `json:"bankAccount"`
	BankerName     string `json:"bankerName"`
}

// ReferrerAccount is a referral-program participant's canonical row in the
// shared customer table. CustomerID is the opaque generated key every
// referral links back to.
type ReferrerAccount struct {
	CustomerID string          `json:"customerId"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Profile    ReferrerProfile `json:"profile"`
}
