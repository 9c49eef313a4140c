package repository

import (
	"context"

	"github.com/ManuelReschke/LeadFox/app/models"
	"gorm.io/gorm"
)

// activityLogRepository implements the ActivityLogRepository interface
type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new activity log repository instance
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

// Create appends an entry
func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByEntity returns the entries of one entity, oldest first
func (r *activityLogRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").Find(&entries).Error
	return entries, err
}
