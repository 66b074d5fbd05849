package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Referral program constants quoted throughout the portal copy.
const (
	CompanyLegalName = "Eternalgy Sdn Bhd"
	ReferralFeeRate  = "2%"
)

// TermsSection is one titled block of the program terms.
type TermsSection struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

var referralTerms = []TermsSection{
	{
		Title: "Program Scope",
		Items: []string{
			CompanyLegalName + " operates this referral program to reward approved external referrals for successful projects.",
			"The standard referral fee is " + ReferralFeeRate + " of the final project total amount that is fully paid and not cancelled.",
		},
	},
	{
		Title: "Referrer Responsibilities",
		Items: []string{
			"Referrer must sign in using WhatsApp and keep profile and bank details accurate.",
			"Referrer confirms they have permission to share the referred lead contact details.",
			"Referrer must provide truthful lead information and must not submit duplicate, fake, or unauthorized leads.",
		},
	},
	{
		Title: "Lead Qualification",
		Items: []string{
			"A lead is only eligible when accepted by the company and converted into a valid project.",
			"Leads already in company records or sourced through other internal channels may be rejected for referral fee eligibility.",
		},
	},
	{
		Title: "Referral Fee and Payment",
		Items: []string{
			"Referral fee calculation is based on " + ReferralFeeRate + " of the project total amount after validation and internal approval.",
			"Payment timing and method are determined by company finance procedures and may require complete supporting information.",
			"Any tax obligations related to referral income remain the referrer's responsibility unless required otherwise by law.",
		},
	},
	{
		Title: "Revision, Dispute, and Cancellation",
		Items: []string{
			CompanyLegalName + " reserves the right to revise, withhold, offset, or cancel referral fees in the event of project cancellation, pricing adjustment, payment default, duplicate claim, dispute, fraud concern, compliance issue, or any material inaccuracy in referral submission.",
			"All company decisions on referral fee eligibility and final payable amount are final after internal review.",
		},
	},
	{
		Title: "General",
		Items: []string{
			CompanyLegalName + " may update these Terms and Conditions at any time, and updated terms apply once published in the referral portal.",
			"Participation in the referral program constitutes acceptance of these Terms and Conditions.",
		},
	},
}

// Terms returns the referral program terms. Public: the terms page renders
// before sign-in.
func Terms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"company": CompanyLegalName,
		"feeRate": ReferralFeeRate,
		"terms":   referralTerms,
	})
}
