package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	ActionSubmissionCreated = "submission_created"
	ActionSubmissionUpdated = "submission_updated"
	ActionRaffleEntered     = "raffle_entered"

	EntitySubmission = "submission"
	EntityRaffle     = "raffle"
)

// ActivityLog is an append-only audit trail entry.
type ActivityLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Action     string         `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType string         `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   string         `gorm:"type:varchar(64);index" json:"entity_id"`
	Details    datatypes.JSON `json:"details"`
	ActorID    *string        `gorm:"type:varchar(64);index" json:"actor_id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// NewActivityLog marshals details into a log entry.
func NewActivityLog(action, entityType, entityID string, actorID *string, details any) (*ActivityLog, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}
	return &ActivityLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    datatypes.JSON(raw),
		ActorID:    actorID,
	}, nil
}
