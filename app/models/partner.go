package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ROLE_ADMIN   = "admin"
	ROLE_PARTNER = "partner"
	ROLE_VIEWER  = "viewer"
)

const (
	PARTNER_STATUS_PENDING  = "pending"
	PARTNER_STATUS_ACTIVE   = "active"
	PARTNER_STATUS_INACTIVE = "inactive"
	PARTNER_STATUS_REJECTED = "rejected"
)

// ChannelPartner is a referring organization.
// TotalReferrals, TotalConversions and TotalRevenue are not maintained by this
// application; dashboards derive partner performance from submissions.
type ChannelPartner struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CompanyName      string    `gorm:"type:varchar(200);not null" json:"company_name" validate:"required,max=200"`
	ContactName      string    `gorm:"type:varchar(200)" json:"contact_name" validate:"max=200"`
	Email            string    `gorm:"type:varchar(200)" json:"email" validate:"omitempty,email,max=200"`
	ReferralCode     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"referral_code" validate:"required,max=64"`
	Status           string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status" validate:"oneof=pending active inactive rejected"`
	CommissionRate   float64   `gorm:"type:decimal(5,2);default:0" json:"commission_rate"`
	TotalReferrals   int       `gorm:"default:0" json:"total_referrals"`
	TotalConversions int       `gorm:"default:0" json:"total_conversions"`
	TotalRevenue     float64   `gorm:"type:decimal(12,2);default:0" json:"total_revenue"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *ChannelPartner) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// IsActive reports whether the partner may receive attributed leads
func (p *ChannelPartner) IsActive() bool {
	return p.Status == PARTNER_STATUS_ACTIVE
}

// PartnerUser links an identity-store user to a role, an optional partner
// organization and the user's points balance.
type PartnerUser struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"user_id"`
	PartnerID   *uint           `gorm:"index" json:"partner_id"`
	Partner     *ChannelPartner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Role        string          `gorm:"type:varchar(20);not null;default:'viewer'" json:"role" validate:"oneof=admin partner viewer"`
	Points      int             `gorm:"not null;default:0" json:"points" validate:"gte=0"`
	LastLoginAt *time.Time      `json:"last_login_at"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *PartnerUser) IsAdmin() bool {
	return u != nil && u.Role == ROLE_ADMIN
}

// PartnerPerformance is one row of the partner_performance rollup.
type PartnerPerformance struct {
	PartnerID        uint    `json:"partner_id"`
	CompanyName      string  `json:"company_name"`
	ReferralCode     string  `json:"referral_code"`
	TotalReferrals   int64   `json:"total_referrals"`
	TotalConversions int64   `json:"total_conversions"`
	TotalRevenue     float64 `json:"total_revenue"`
}
