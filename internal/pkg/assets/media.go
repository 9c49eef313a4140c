package assets

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/LeadFox/app/models"
	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

// MediaService manages the key to URL pairs of marketing assets
type MediaService struct {
	repo     repository.SiteMediaRepository
	store    ObjectStore
	maxWidth int
	validate *validator.Validate
}

// NewMediaService creates the service. store may be nil, which disables uploads.
func NewMediaService(repo repository.SiteMediaRepository, store ObjectStore, maxWidth int) *MediaService {
	return &MediaService{repo: repo, store: store, maxWidth: maxWidth, validate: validator.New()}
}

// UploadsEnabled reports whether an object store is configured
func (s *MediaService) UploadsEnabled() bool {
	return s.store != nil
}

// List returns all pairs. Admin only.
func (s *MediaService) List(ctx context.Context, caller usercontext.UserContext) ([]models.SiteMedia, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.Public(ctx)
}

// Public returns all pairs for page rendering
func (s *MediaService) Public(ctx context.Context) ([]models.SiteMedia, error) {
	media, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to load site media", err)
	}
	if media == nil {
		media = []models.SiteMedia{}
	}
	return media, nil
}

// Upsert stores url under key. Admin only.
func (s *MediaService) Upsert(ctx context.Context, caller usercontext.UserContext, key, url string) (*models.SiteMedia, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	m := &models.SiteMedia{Key: strings.TrimSpace(key), URL: strings.TrimSpace(url)}
	if err := m.Validate(); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "key and a valid url are required", err)
	}

	saved, err := s.repo.Upsert(ctx, m.Key, m.URL)
	if err != nil {
		return nil, apperror.Internal("failed to save site media", err)
	}
	log.Infow("site media updated", "key", saved.Key, "actor_id", caller.UserID)
	return saved, nil
}

// Upload resizes the image, stores it and points key at its URL. Admin only.
func (s *MediaService) Upload(ctx context.Context, caller usercontext.UserContext, key, filename string, r io.Reader) (*models.SiteMedia, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, apperror.InvalidState("asset storage is not configured")
	}
	key = strings.TrimSpace(key)
	if err := s.validate.Var(key, "required,max=100"); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "key is required", err)
	}

	img, err := PrepareImage(r, filename, s.maxWidth)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "file must be a jpeg, png, gif, bmp or tiff image", err)
	}

	objectKey := fmt.Sprintf("site-media/%s%s", uuid.NewString(), img.Ext)
	url, err := s.store.Put(ctx, objectKey, img.Body, img.ContentType)
	if err != nil {
		return nil, apperror.Internal("failed to store image", err)
	}

	return s.Upsert(ctx, caller, key, url)
}

func requireAdmin(caller usercontext.UserContext) error {
	if !caller.IsLoggedIn {
		return apperror.Unauthorized("authentication required")
	}
	if !caller.IsAdmin {
		return apperror.Forbidden("admin role required")
	}
	return nil
}
