package raffle

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LeadFox/app/models"
	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/points"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

// CreateInput is the body of a new raffle.
type CreateInput struct {
	Name            string `json:"name" validate:"required,max=200"`
	Description     string `json:"description"`
	EntryCostPoints int    `json:"entry_cost_points" validate:"gt=0"`
	MaxEntries      int    `json:"max_entries" validate:"gt=0"`
	ImageURL        string `json:"image_url" validate:"omitempty,url,max=1024"`
}

// EntryResult is returned by a successful entry.
type EntryResult struct {
	Entry           *models.RaffleEntry `json:"entry"`
	RemainingPoints int                 `json:"remaining_points"`
}

// Service lists raffles and sells entries for points.
type Service struct {
	repos    *repository.Repositories
	validate *validator.Validate
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos, validate: validator.New()}
}

// List returns every raffle, newest first, with live entry counts. Admin only.
func (s *Service) List(ctx context.Context, caller usercontext.UserContext) ([]models.Raffle, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.list(ctx, "")
}

// ListActive returns the raffles accepting entries.
func (s *Service) ListActive(ctx context.Context, caller usercontext.UserContext) ([]models.Raffle, error) {
	if !caller.IsLoggedIn {
		return nil, apperror.Unauthorized("authentication required")
	}
	return s.list(ctx, models.RaffleStatusActive)
}

func (s *Service) list(ctx context.Context, status string) ([]models.Raffle, error) {
	raffles, err := s.repos.Raffle.List(ctx, status)
	if err != nil {
		return nil, apperror.Internal("failed to list raffles", err)
	}
	if raffles == nil {
		raffles = []models.Raffle{}
	}
	return raffles, nil
}

// Create adds an active raffle. Admin only.
func (s *Service) Create(ctx context.Context, caller usercontext.UserContext, in CreateInput) (*models.Raffle, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "name, entry_cost_points and max_entries are required", err)
	}

	raffle := &models.Raffle{
		Name:            in.Name,
		Description:     in.Description,
		EntryCostPoints: in.EntryCostPoints,
		MaxEntries:      in.MaxEntries,
		Status:          models.RaffleStatusActive,
		ImageURL:        in.ImageURL,
		CreatedBy:       caller.UserID,
	}
	if err := s.repos.Raffle.Create(ctx, raffle); err != nil {
		return nil, apperror.Internal("failed to create raffle", err)
	}
	log.Infow("raffle created", "raffle_id", raffle.ID, "cost", raffle.EntryCostPoints, "max_entries", raffle.MaxEntries)
	return raffle, nil
}

// Enter spends the raffle's cost from the caller's balance and records an
// entry. The raffle row stays locked from the capacity check until the entry
// is written, and the debit only succeeds when the balance covers it, so
// concurrent entries can neither overfill a raffle nor overdraw a balance.
func (s *Service) Enter(ctx context.Context, caller usercontext.UserContext, raffleID uint) (*EntryResult, error) {
	if !caller.IsLoggedIn || caller.UserID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}

	var result EntryResult
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		raffle, err := tx.Raffle.GetByIDForUpdate(ctx, raffleID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("raffle not found")
		}
		if err != nil {
			return apperror.Internal("failed to load raffle", err)
		}
		if !raffle.IsActive() {
			return apperror.InvalidState("raffle is not active")
		}
		if raffle.IsFull() {
			return apperror.Capacity("raffle is full")
		}

		ledger := points.NewLedger(tx.PartnerUser)
		if err := ledger.Debit(ctx, caller.UserID, raffle.EntryCostPoints); err != nil {
			return err
		}

		entry := &models.RaffleEntry{
			RaffleID:    raffle.ID,
			UserID:      caller.UserID,
			PointsSpent: raffle.EntryCostPoints,
		}
		if err := tx.Raffle.CreateEntry(ctx, entry); err != nil {
			return apperror.Internal("failed to create entry", err)
		}

		logEntry, err := models.NewActivityLog(models.ActionRaffleEntered, models.EntityRaffle,
			strconv.FormatUint(uint64(raffle.ID), 10), &caller.UserID, map[string]any{
				"entry_id":     entry.ID,
				"points_spent": entry.PointsSpent,
			})
		if err != nil {
			return apperror.Internal("failed to encode activity", err)
		}
		if err := tx.ActivityLog.Create(ctx, logEntry); err != nil {
			return apperror.Internal("failed to write activity log", err)
		}

		remaining, err := ledger.Balance(ctx, caller.UserID)
		if err != nil {
			return err
		}
		result = EntryResult{Entry: entry, RemainingPoints: remaining}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infow("raffle entered", "raffle_id", raffleID, "user_id", caller.UserID, "remaining_points", result.RemainingPoints)
	return &result, nil
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
