package referral

import (
	"encoding/json"

	"github.com/ManuelReschke/LeadFox/app/models"
)

// PublicInput is the body of a web form submission.
type PublicInput struct {
	LeadName      string `json:"lead_name" form:"lead_name" validate:"required,max=200"`
	LeadEmail     string `json:"lead_email" form:"lead_email" validate:"required,email,max=200"`
	LeadPhone     string `json:"lead_phone" form:"lead_phone" validate:"max=50"`
	LeadCompany   string `json:"lead_company" form:"lead_company" validate:"max=200"`
	LeadMessage   string `json:"lead_message" form:"lead_message" validate:"max=5000"`
	ReferrerName  string `json:"referrer_name" form:"referrer_name" validate:"max=200"`
	ReferrerEmail string `json:"referrer_email" form:"referrer_email" validate:"omitempty,email,max=200"`
	ReferrerPhone string `json:"referrer_phone" form:"referrer_phone" validate:"max=50"`
	ReferralCode  string `json:"referral_code" form:"referral_code" validate:"max=64"`
	UTMSource     string `json:"utm_source" form:"utm_source" validate:"max=100"`
	UTMMedium     string `json:"utm_medium" form:"utm_medium" validate:"max=100"`
	UTMCampaign   string `json:"utm_campaign" form:"utm_campaign" validate:"max=100"`
	CaptchaToken  string `json:"captcha_token" form:"h-captcha-response"`
}

// AdminInput is the body of an admin-entered lead.
type AdminInput struct {
	LeadName        string   `json:"lead_name" validate:"required,max=200"`
	LeadEmail       string   `json:"lead_email" validate:"required,email,max=200"`
	LeadPhone       string   `json:"lead_phone" validate:"max=50"`
	LeadCompany     string   `json:"lead_company" validate:"max=200"`
	LeadJobTitle    string   `json:"lead_job_title" validate:"max=200"`
	Industry        string   `json:"industry" validate:"max=100"`
	CompanySize     string   `json:"company_size" validate:"max=50"`
	BudgetRange     string   `json:"budget_range" validate:"max=50"`
	Timeline        string   `json:"timeline" validate:"max=50"`
	PainPoints      string   `json:"pain_points" validate:"max=5000"`
	LinkedInURL     string   `json:"linkedin_url" validate:"max=255"`
	LeadMessage     string   `json:"lead_message" validate:"max=5000"`
	ReferrerName    string   `json:"referrer_name" validate:"max=200"`
	ReferrerEmail   string   `json:"referrer_email" validate:"omitempty,email,max=200"`
	ReferrerPhone   string   `json:"referrer_phone" validate:"max=50"`
	ReferralCode    string   `json:"referral_code" validate:"max=64"`
	PartnerID       *uint    `json:"partner_id"`
	UserID          string   `json:"user_id" validate:"max=64"`
	QualityScore    *int     `json:"quality_score" validate:"omitempty,gte=0,lte=100"`
	Status          string   `json:"status"`
	AdminNotes      string   `json:"admin_notes"`
	ConversionValue *float64 `json:"conversion_value" validate:"omitempty,gte=0"`
}

// UpdateInput is a partial status workflow update. Absent fields are left
// alone; present fields overwrite, including empty strings, zero and null.
type UpdateInput struct {
	Status          *string         `json:"status"`
	AdminNotes      *string         `json:"admin_notes"`
	ConversionValue json.RawMessage `json:"conversion_value"`
}

// RequestMeta carries the provenance captured from the HTTP request.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// SubmitResult is returned by a public submission.
type SubmitResult struct {
	ID           string `json:"id"`
	QualityScore int    `json:"quality_score"`
	IsAccounted  bool   `json:"is_accounted"`
}

// ListQuery filters a paginated submission list.
type ListQuery struct {
	Status string
	Limit  int
	Offset int
}

// ListResult is one page of submissions.
type ListResult struct {
	Submissions []models.Submission `json:"submissions"`
	Total       int64               `json:"total"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}
