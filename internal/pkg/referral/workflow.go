package referral

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LeadFox/app/models"
	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

// UpdateSubmission moves a submission through the status workflow and edits
// its notes and conversion value. contacted_at and converted_at are stamped
// the first time the status reaches contacted or converted and never again.
func (s *Service) UpdateSubmission(ctx context.Context, caller usercontext.UserContext, id string, in UpdateInput) (*models.Submission, error) {
	if !caller.IsLoggedIn {
		return nil, apperror.Unauthorized("authentication required")
	}
	if !caller.IsAdmin {
		return nil, apperror.Forbidden("admin role required")
	}

	var next models.SubmissionStatus
	if in.Status != nil {
		status, ok := models.ParseSubmissionStatus(*in.Status)
		if !ok {
			return nil, apperror.Validation("unknown status: " + *in.Status)
		}
		next = status
	}

	value, hasValue, err := ParseConversionValue(in.ConversionValue)
	if err != nil {
		return nil, err
	}
	if in.Status == nil && in.AdminNotes == nil && !hasValue {
		return nil, apperror.Validation("nothing to update")
	}

	var updated *models.Submission
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		current, err := tx.Submission.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("submission not found")
		}
		if err != nil {
			return apperror.Internal("failed to load submission", err)
		}

		changes := map[string]any{}
		if in.Status != nil {
			if current.Status.IsValid() && !current.Status.CanTransitionTo(next) {
				return apperror.InvalidState("status cannot change from " + string(current.Status) + " to " + string(next))
			}
			stampedContacted, stampedConverted := current.ApplyStatus(next, s.now().UTC())
			changes["status"] = next
			if stampedContacted {
				changes["contacted_at"] = *current.ContactedAt
			}
			if stampedConverted {
				changes["converted_at"] = *current.ConvertedAt
			}
		}
		if in.AdminNotes != nil {
			changes["admin_notes"] = *in.AdminNotes
		}
		if hasValue {
			changes["conversion_value"] = value
		}

		if err := tx.Submission.UpdateFields(ctx, id, changes); err != nil {
			return apperror.Internal("failed to update submission", err)
		}

		entry, err := models.NewActivityLog(models.ActionSubmissionUpdated, models.EntitySubmission, id,
			optional(caller.UserID), changes)
		if err != nil {
			return apperror.Internal("failed to encode activity", err)
		}
		if err := tx.ActivityLog.Create(ctx, entry); err != nil {
			return apperror.Internal("failed to write activity log", err)
		}

		updated, err = tx.Submission.GetByID(ctx, id)
		if err != nil {
			return apperror.Internal("failed to reload submission", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infow("submission updated", "submission_id", id, "status", updated.Status, "actor", caller.UserID)
	return updated, nil
}

// ParseConversionValue decodes conversion_value from a number, a numeric
// string or null. ok is false when the field was absent. A nil value with
// ok set clears the column.
func ParseConversionValue(raw json.RawMessage) (value *float64, ok bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, true, nil
	}

	var number float64
	if err := json.Unmarshal(trimmed, &number); err != nil {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, false, apperror.Validation("conversion_value must be a number")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, true, nil
		}
		number, err = strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
			return nil, false, apperror.Validation("conversion_value must be a number")
		}
	}
	if number < 0 {
		return nil, false, apperror.Validation("conversion_value must not be negative")
	}
	return &number, true, nil
}
