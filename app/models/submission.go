package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmissionStatus is the lifecycle state of a lead. The column carries two
// groups of values: the review group used for admin-entered leads and the
// pipeline group used for web leads and the status workflow.
type SubmissionStatus string

const (
	// review group
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusDenied   SubmissionStatus = "denied"

	// pipeline group
	SubmissionStatusNew       SubmissionStatus = "new"
	SubmissionStatusContacted SubmissionStatus = "contacted"
	SubmissionStatusQualified SubmissionStatus = "qualified"
	SubmissionStatusConverted SubmissionStatus = "converted"
	SubmissionStatusLost      SubmissionStatus = "lost"
	SubmissionStatusSpam      SubmissionStatus = "spam"
)

const (
	StatusGroupReview   = "review"
	StatusGroupPipeline = "pipeline"
)

const (
	SourceWebForm    = "web_form"
	SourceAdminEntry = "admin_entry"
)

// UnknownClientValue is stored when the request carried no IP or user agent.
const UnknownClientValue = "unknown"

var submissionStatusGroups = map[SubmissionStatus]string{
	SubmissionStatusPending:   StatusGroupReview,
	SubmissionStatusApproved:  StatusGroupReview,
	SubmissionStatusDenied:    StatusGroupReview,
	SubmissionStatusNew:       StatusGroupPipeline,
	SubmissionStatusContacted: StatusGroupPipeline,
	SubmissionStatusQualified: StatusGroupPipeline,
	SubmissionStatusConverted: StatusGroupPipeline,
	SubmissionStatusLost:      StatusGroupPipeline,
	SubmissionStatusSpam:      StatusGroupPipeline,
}

// submissionTransitions lists the statuses reachable from each status.
// Every known status may currently move to every known status, including itself.
var submissionTransitions = func() map[SubmissionStatus][]SubmissionStatus {
	all := AllSubmissionStatuses()
	table := make(map[SubmissionStatus][]SubmissionStatus, len(all))
	for _, from := range all {
		table[from] = all
	}
	return table
}()

// AllSubmissionStatuses returns every known status, review group first.
func AllSubmissionStatuses() []SubmissionStatus {
	return []SubmissionStatus{
		SubmissionStatusPending,
		SubmissionStatusApproved,
		SubmissionStatusDenied,
		SubmissionStatusNew,
		SubmissionStatusContacted,
		SubmissionStatusQualified,
		SubmissionStatusConverted,
		SubmissionStatusLost,
		SubmissionStatusSpam,
	}
}

// ParseSubmissionStatus normalizes raw input and reports whether it names a known status.
func ParseSubmissionStatus(raw string) (SubmissionStatus, bool) {
	s := SubmissionStatus(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := submissionStatusGroups[s]
	return s, ok
}

// Group returns the status group, or an empty string for unknown values.
func (s SubmissionStatus) Group() string {
	return submissionStatusGroups[s]
}

// IsValid reports whether s is a known status.
func (s SubmissionStatus) IsValid() bool {
	_, ok := submissionStatusGroups[s]
	return ok
}

// CanTransitionTo reports whether the transition table permits s -> next.
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	for _, candidate := range submissionTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// NormalizeReviewStatus maps admin-entry input onto the review group, defaulting to pending.
func NormalizeReviewStatus(raw string) SubmissionStatus {
	s, ok := ParseSubmissionStatus(raw)
	if !ok || s.Group() != StatusGroupReview {
		return SubmissionStatusPending
	}
	return s
}

// Submission is a lead record.
type Submission struct {
	ID                string           `gorm:"primaryKey;type:char(36)" json:"id"`
	PartnerID         *uint            `gorm:"index" json:"partner_id"`
	Partner           *ChannelPartner  `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	ReferralCode      *string          `gorm:"type:varchar(64)" json:"referral_code"`
	SubmittedByUserID *string          `gorm:"type:varchar(64);index" json:"submitted_by_user_id"`
	LeadName          string           `gorm:"type:varchar(200);not null" json:"lead_name" validate:"required,max=200"`
	LeadEmail         string           `gorm:"type:varchar(200);not null" json:"lead_email" validate:"required,max=200"`
	LeadPhone         string           `gorm:"type:varchar(50)" json:"lead_phone" validate:"max=50"`
	LeadCompany       string           `gorm:"type:varchar(200)" json:"lead_company" validate:"max=200"`
	LeadJobTitle      string           `gorm:"type:varchar(200)" json:"lead_job_title" validate:"max=200"`
	Industry          string           `gorm:"type:varchar(100)" json:"industry" validate:"max=100"`
	CompanySize       string           `gorm:"type:varchar(50)" json:"company_size" validate:"max=50"`
	BudgetRange       string           `gorm:"type:varchar(50)" json:"budget_range" validate:"max=50"`
	Timeline          string           `gorm:"type:varchar(50)" json:"timeline" validate:"max=50"`
	PainPoints        string           `gorm:"type:text" json:"pain_points"`
	LinkedInURL       string           `gorm:"column:linkedin_url;type:varchar(255)" json:"linkedin_url" validate:"max=255"`
	LeadMessage       string           `gorm:"type:text" json:"lead_message"`
	ReferrerName      string           `gorm:"type:varchar(200)" json:"referrer_name" validate:"max=200"`
	ReferrerEmail     string           `gorm:"type:varchar(200)" json:"referrer_email" validate:"max=200"`
	ReferrerPhone     string           `gorm:"type:varchar(50)" json:"referrer_phone" validate:"max=50"`
	SubmissionSource  string           `gorm:"type:varchar(20);not null;default:'web_form'" json:"submission_source" validate:"oneof=web_form admin_entry"`
	IPAddress         string           `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent         string           `gorm:"type:varchar(512)" json:"user_agent"`
	UTMSource         string           `gorm:"type:varchar(100)" json:"utm_source"`
	UTMMedium         string           `gorm:"type:varchar(100)" json:"utm_medium"`
	UTMCampaign       string           `gorm:"type:varchar(100)" json:"utm_campaign"`
	Status            SubmissionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	AdminNotes        string           `gorm:"type:text" json:"admin_notes"`
	ConversionValue   *float64         `gorm:"type:decimal(12,2)" json:"conversion_value"`
	QualityScore      *int             `json:"quality_score"`
	IsAuthenticated   bool             `gorm:"not null;default:false" json:"is_authenticated"`
	IsAccounted       bool             `gorm:"not null;default:false" json:"is_accounted"`
	ContactedAt       *time.Time       `json:"contacted_at"`
	ConvertedAt       *time.Time       `json:"converted_at"`
	CreatedAt         time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the opaque id.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *Submission) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// ApplyStatus sets the status and stamps the workflow timestamps the first
// time a lead reaches contacted or converted. It reports whether
// contacted_at or converted_at were stamped.
func (s *Submission) ApplyStatus(next SubmissionStatus, now time.Time) (stampedContacted, stampedConverted bool) {
	s.Status = next
	if next == SubmissionStatusContacted && s.ContactedAt == nil {
		t := now
		s.ContactedAt = &t
		stampedContacted = true
	}
	if next == SubmissionStatusConverted && s.ConvertedAt == nil {
		t := now
		s.ConvertedAt = &t
		stampedConverted = true
	}
	return stampedContacted, stampedConverted
}
