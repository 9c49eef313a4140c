package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/LeadFox/app/models"
	"gorm.io/gorm"
)

const maxListLimit = 200

// partnerPerformanceView is created by the schema migration and by database.CreateViews
const partnerPerformanceView = "partner_performance"

// submissionRepository implements the SubmissionRepository interface
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository instance
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create inserts a new submission
func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// GetByID retrieves a submission with its partner
func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).Preload("Partner").Where("id = ?", id).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// UpdateFields writes the given columns of one submission. Callers load the
// row first; an update that changes nothing is not an error.
func (r *submissionRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).Updates(fields).Error
}

// List returns one page of submissions, newest first, and the total matching count
func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Submission{})
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Scope != nil {
			query = applyOwnerScope(query, *filter.Scope)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var submissions []models.Submission
	err := base().Preload("Partner").Order("created_at DESC").Offset(offset).Limit(limit).Find(&submissions).Error
	return submissions, total, err
}

// ListOwned returns every submission of the caller or the caller's partner, newest first
func (r *submissionRepository) ListOwned(ctx context.Context, scope OwnerScope) ([]models.Submission, error) {
	var submissions []models.Submission
	err := applyOwnerScope(r.db.WithContext(ctx).Preload("Partner"), scope).
		Order("created_at DESC").Find(&submissions).Error
	return submissions, err
}

// ListByUser returns the submissions made by one identity user, newest first
func (r *submissionRepository) ListByUser(ctx context.Context, userID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).Preload("Partner").Where("submitted_by_user_id = ?", userID).
		Order("created_at DESC").Find(&submissions).Error
	return submissions, err
}

// ListWithSubmitter returns all submissions made by a logged-in user, newest first
func (r *submissionRepository) ListWithSubmitter(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).Where("submitted_by_user_id IS NOT NULL AND submitted_by_user_id <> ''").
		Order("created_at DESC").Find(&submissions).Error
	return submissions, err
}

// ListRecent returns the latest submissions with partner display fields
func (r *submissionRepository) ListRecent(ctx context.Context, limit int) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).Preload("Partner").Order("created_at DESC").Limit(limit).Find(&submissions).Error
	return submissions, err
}

// ListConverted returns id and conversion value of every converted submission
func (r *submissionRepository) ListConverted(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).Select("id", "conversion_value").
		Where("status = ?", models.SubmissionStatusConverted).Find(&submissions).Error
	return submissions, err
}

// ListStatuses returns the status of every submission
func (r *submissionRepository) ListStatuses(ctx context.Context) ([]string, error) {
	var statuses []string
	err := r.db.WithContext(ctx).Model(&models.Submission{}).Pluck("status", &statuses).Error
	return statuses, err
}

// Count returns the total number of submissions
func (r *submissionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).Count(&count).Error
	return count, err
}

// CountSince returns the number of submissions created at or after since
func (r *submissionRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// PartnerPerformance reads the partner_performance view, ordered by revenue.
func (r *submissionRepository) PartnerPerformance(ctx context.Context, limit int) ([]models.PartnerPerformance, error) {
	var rows []models.PartnerPerformance
	err := r.db.WithContext(ctx).Table(partnerPerformanceView).
		Order("total_revenue DESC, partner_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func applyOwnerScope(query *gorm.DB, scope OwnerScope) *gorm.DB {
	switch {
	case scope.PartnerID != nil && scope.UserID != "":
		return query.Where("(partner_id = ? OR submitted_by_user_id = ?)", *scope.PartnerID, scope.UserID)
	case scope.PartnerID != nil:
		return query.Where("partner_id = ?", *scope.PartnerID)
	case scope.UserID != "":
		return query.Where("submitted_by_user_id = ?", scope.UserID)
	default:
		// an empty scope owns nothing
		return query.Where("1 = 0")
	}
}
