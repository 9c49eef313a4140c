package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// SiteMedia maps a marketing asset key (e.g. "home.hero") to its public URL
type SiteMedia struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:media_key;size:100;not null;uniqueIndex" json:"key" validate:"required,min=1,max=100"`
	URL       string    `gorm:"type:varchar(1024);not null" json:"url" validate:"required,url,max=1024"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the plural table name readable
func (SiteMedia) TableName() string {
	return "site_media"
}

func (m *SiteMedia) Validate() error {
	v := validator.New()

	return v.Struct(m)
}
