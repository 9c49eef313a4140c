package repository

import (
	"context"

	"github.com/ManuelReschke/LeadFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// raffleRepository implements the RaffleRepository interface
type raffleRepository struct {
	db *gorm.DB
}

// NewRaffleRepository creates a new raffle repository instance
func NewRaffleRepository(db *gorm.DB) RaffleRepository {
	return &raffleRepository{db: db}
}

// Create inserts a raffle
func (r *raffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	return r.db.WithContext(ctx).Create(raffle).Error
}

// GetByID retrieves a raffle with its entry count
func (r *raffleRepository) GetByID(ctx context.Context, id uint) (*models.Raffle, error) {
	return r.get(ctx, r.db.WithContext(ctx), id)
}

// GetByIDForUpdate retrieves a raffle and locks its row until the surrounding
// transaction ends. Entries into the same raffle are serialized by this lock.
func (r *raffleRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Raffle, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *raffleRepository) get(ctx context.Context, query *gorm.DB, id uint) (*models.Raffle, error) {
	var raffle models.Raffle
	if err := query.First(&raffle, id).Error; err != nil {
		return nil, err
	}
	count, err := r.CountEntries(ctx, raffle.ID)
	if err != nil {
		return nil, err
	}
	raffle.EntryCount = count
	return &raffle, nil
}

// List returns raffles newest first with their entry counts. An empty status lists all.
func (r *raffleRepository) List(ctx context.Context, status string) ([]models.Raffle, error) {
	var raffles []models.Raffle
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&raffles).Error; err != nil {
		return nil, err
	}
	if len(raffles) == 0 {
		return raffles, nil
	}

	ids := make([]uint, len(raffles))
	for i, raffle := range raffles {
		ids[i] = raffle.ID
	}

	var counts []struct {
		RaffleID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.RaffleEntry{}).
		Select("raffle_id, COUNT(*) AS total").
		Where("raffle_id IN ?", ids).
		Group("raffle_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byRaffle := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byRaffle[c.RaffleID] = c.Total
	}
	for i := range raffles {
		raffles[i].EntryCount = byRaffle[raffles[i].ID]
	}
	return raffles, nil
}

// CountEntries returns the number of entries of one raffle
func (r *raffleRepository) CountEntries(ctx context.Context, raffleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RaffleEntry{}).Where("raffle_id = ?", raffleID).Count(&count).Error
	return count, err
}

// CreateEntry inserts a raffle entry
func (r *raffleRepository) CreateEntry(ctx context.Context, entry *models.RaffleEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
