package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/LeadFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// siteMediaRepository implements the SiteMediaRepository interface
type siteMediaRepository struct {
	db *gorm.DB
}

// NewSiteMediaRepository creates a new site media repository instance
func NewSiteMediaRepository(db *gorm.DB) SiteMediaRepository {
	return &siteMediaRepository{db: db}
}

// List returns all media ordered by key
func (r *siteMediaRepository) List(ctx context.Context) ([]models.SiteMedia, error) {
	var media []models.SiteMedia
	err := r.db.WithContext(ctx).Order("media_key ASC").Find(&media).Error
	return media, err
}

// GetByKey retrieves one media entry
func (r *siteMediaRepository) GetByKey(ctx context.Context, key string) (*models.SiteMedia, error) {
	var media models.SiteMedia
	err := r.db.WithContext(ctx).Where("media_key = ?", key).First(&media).Error
	if err != nil {
		return nil, err
	}
	return &media, nil
}

// Upsert sets the URL of a key, creating the entry if needed
func (r *siteMediaRepository) Upsert(ctx context.Context, key, url string) (*models.SiteMedia, error) {
	media := models.SiteMedia{Key: key, URL: url}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "media_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"url":        url,
			"updated_at": time.Now(),
		}),
	}).Create(&media).Error
	if err != nil {
		return nil, err
	}
	return r.GetByKey(ctx, key)
}
