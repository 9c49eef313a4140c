package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/LeadFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// partnerUserRepository implements the PartnerUserRepository interface
type partnerUserRepository struct {
	db *gorm.DB
}

// NewPartnerUserRepository creates a new partner user repository instance
func NewPartnerUserRepository(db *gorm.DB) PartnerUserRepository {
	return &partnerUserRepository{db: db}
}

// GetByUserID retrieves the role row of an identity user
func (r *partnerUserRepository) GetByUserID(ctx context.Context, userID string) (*models.PartnerUser, error) {
	var user models.PartnerUser
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetPoints returns the balance of a user, 0 when the user has no row
func (r *partnerUserRepository) GetPoints(ctx context.Context, userID string) (int, error) {
	var user models.PartnerUser
	err := r.db.WithContext(ctx).Select("points").Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return user.Points, nil
}

// AddPoints credits amount in one statement, creating a viewer row when the
// user has none yet.
func (r *partnerUserRepository) AddPoints(ctx context.Context, userID string, amount int) error {
	user := models.PartnerUser{
		UserID: userID,
		Role:   models.ROLE_VIEWER,
		Points: amount,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"points":     gorm.Expr("points + ?", amount),
			"updated_at": time.Now(),
		}),
	}).Create(&user).Error
}

// DeductPoints debits amount only if the balance covers it. The returned bool
// is false when the balance was insufficient or the user has no row.
func (r *partnerUserRepository) DeductPoints(ctx context.Context, userID string, amount int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.PartnerUser{}).
		Where("user_id = ? AND points >= ?", userID, amount).
		UpdateColumns(map[string]any{
			"points":     gorm.Expr("points - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// TouchLastLogin stamps last_login_at; users without a row are ignored
func (r *partnerUserRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.PartnerUser{}).
		Where("user_id = ?", userID).
		UpdateColumn("last_login_at", at).Error
}

// Create inserts a partner user
func (r *partnerUserRepository) Create(ctx context.Context, user *models.PartnerUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}
