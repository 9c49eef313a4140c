package repository

import (
	"context"

	"github.com/ManuelReschke/LeadFox/app/models"
	"gorm.io/gorm"
)

// channelPartnerRepository implements the ChannelPartnerRepository interface
type channelPartnerRepository struct {
	db *gorm.DB
}

// NewChannelPartnerRepository creates a new channel partner repository instance
func NewChannelPartnerRepository(db *gorm.DB) ChannelPartnerRepository {
	return &channelPartnerRepository{db: db}
}

// Create inserts a partner
func (r *channelPartnerRepository) Create(ctx context.Context, partner *models.ChannelPartner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

// GetByID retrieves a partner by ID
func (r *channelPartnerRepository) GetByID(ctx context.Context, id uint) (*models.ChannelPartner, error) {
	var partner models.ChannelPartner
	err := r.db.WithContext(ctx).First(&partner, id).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

// GetActiveByReferralCode retrieves an active partner by its referral code
func (r *channelPartnerRepository) GetActiveByReferralCode(ctx context.Context, code string) (*models.ChannelPartner, error) {
	var partner models.ChannelPartner
	err := r.db.WithContext(ctx).
		Where("referral_code = ? AND status = ?", code, models.PARTNER_STATUS_ACTIVE).
		First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

// CountActive returns the number of active partners
func (r *channelPartnerRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChannelPartner{}).
		Where("status = ?", models.PARTNER_STATUS_ACTIVE).Count(&count).Error
	return count, err
}
