package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/LeadFox/app/models"
	"gorm.io/gorm"
)

// SubmissionRepository defines the interface for lead-related database operations
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error)
	ListOwned(ctx context.Context, scope OwnerScope) ([]models.Submission, error)
	ListByUser(ctx context.Context, userID string) ([]models.Submission, error)
	ListWithSubmitter(ctx context.Context) ([]models.Submission, error)
	ListRecent(ctx context.Context, limit int) ([]models.Submission, error)
	ListConverted(ctx context.Context) ([]models.Submission, error)
	ListStatuses(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	PartnerPerformance(ctx context.Context, limit int) ([]models.PartnerPerformance, error)
}

// PartnerUserRepository defines role lookups and the points balance storage.
// Balance changes are single statements; callers never read-modify-write.
type PartnerUserRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.PartnerUser, error)
	GetPoints(ctx context.Context, userID string) (int, error)
	AddPoints(ctx context.Context, userID string, amount int) error
	DeductPoints(ctx context.Context, userID string, amount int) (bool, error)
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
	Create(ctx context.Context, user *models.PartnerUser) error
}

// ChannelPartnerRepository defines the interface for partner organizations
type ChannelPartnerRepository interface {
	Create(ctx context.Context, partner *models.ChannelPartner) error
	GetByID(ctx context.Context, id uint) (*models.ChannelPartner, error)
	GetActiveByReferralCode(ctx context.Context, code string) (*models.ChannelPartner, error)
	CountActive(ctx context.Context) (int64, error)
}

// RaffleRepository defines raffle and entry operations. Raffles returned by
// the read methods carry their live EntryCount.
type RaffleRepository interface {
	Create(ctx context.Context, raffle *models.Raffle) error
	GetByID(ctx context.Context, id uint) (*models.Raffle, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Raffle, error)
	List(ctx context.Context, status string) ([]models.Raffle, error)
	CountEntries(ctx context.Context, raffleID uint) (int64, error)
	CreateEntry(ctx context.Context, entry *models.RaffleEntry) error
}

// ActivityLogRepository appends audit entries
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]models.ActivityLog, error)
}

// SiteMediaRepository stores marketing asset URLs by key
type SiteMediaRepository interface {
	List(ctx context.Context) ([]models.SiteMedia, error)
	GetByKey(ctx context.Context, key string) (*models.SiteMedia, error)
	Upsert(ctx context.Context, key, url string) (*models.SiteMedia, error)
}

// SubmissionFilter narrows a paginated submission list. A nil Scope lists everything.
type SubmissionFilter struct {
	Status models.SubmissionStatus
	Scope  *OwnerScope
	Limit  int
	Offset int
}

// OwnerScope matches submissions attributed to PartnerID or submitted by UserID.
type OwnerScope struct {
	PartnerID *uint
	UserID    string
}

// Repositories struct holds all repository instances
type Repositories struct {
	db             *gorm.DB
	Submission     SubmissionRepository
	PartnerUser    PartnerUserRepository
	ChannelPartner ChannelPartnerRepository
	Raffle         RaffleRepository
	ActivityLog    ActivityLogRepository
	SiteMedia      SiteMediaRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:             db,
		Submission:     NewSubmissionRepository(db),
		PartnerUser:    NewPartnerUserRepository(db),
		ChannelPartner: NewChannelPartnerRepository(db),
		Raffle:         NewRaffleRepository(db),
		ActivityLog:    NewActivityLogRepository(db),
		SiteMedia:      NewSiteMediaRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
