package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	RaffleStatusActive = "active"
	RaffleStatusClosed = "closed"
	RaffleStatusDrawn  = "drawn"
)

// Raffle is a prize drawing that users enter by spending points.
type Raffle struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Description     string    `gorm:"type:text" json:"description"`
	EntryCostPoints int       `gorm:"not null" json:"entry_cost_points" validate:"gt=0"`
	MaxEntries      int       `gorm:"not null" json:"max_entries" validate:"gt=0"`
	Status          string    `gorm:"type:varchar(20);not null;default:'active';index" json:"status" validate:"oneof=active closed drawn"`
	ImageURL        string    `gorm:"type:varchar(1024)" json:"image_url" validate:"omitempty,url,max=1024"`
	CreatedBy       string    `gorm:"type:varchar(64)" json:"created_by"`
	EntryCount      int64     `gorm:"-:all" json:"entry_count"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Raffle) Validate() error {
	v := validator.New()

	return v.Struct(r)
}

// IsActive reports whether the raffle accepts entries
func (r *Raffle) IsActive() bool {
	return r.Status == RaffleStatusActive
}

// IsFull reports whether the raffle reached its capacity
func (r *Raffle) IsFull() bool {
	return r.EntryCount >= int64(r.MaxEntries)
}

// RaffleEntry records one paid entry. Rows are never updated.
type RaffleEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RaffleID    uint      `gorm:"index;not null" json:"raffle_id"`
	UserID      string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	PointsSpent int       `gorm:"not null" json:"points_spent"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
