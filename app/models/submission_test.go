package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubmissionStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   SubmissionStatus
		wantOK bool
	}{
		{in: "new", want: SubmissionStatusNew, wantOK: true},
		{in: " Converted ", want: SubmissionStatusConverted, wantOK: true},
		{in: "APPROVED", want: SubmissionStatusApproved, wantOK: true},
		{in: "archived", want: SubmissionStatus("archived"), wantOK: false},
		{in: "", want: SubmissionStatus(""), wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseSubmissionStatus(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func TestSubmissionStatusGroups(t *testing.T) {
	for _, s := range []SubmissionStatus{SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusDenied} {
		assert.Equal(t, StatusGroupReview, s.Group())
	}
	for _, s := range []SubmissionStatus{SubmissionStatusNew, SubmissionStatusContacted, SubmissionStatusQualified,
		SubmissionStatusConverted, SubmissionStatusLost, SubmissionStatusSpam} {
		assert.Equal(t, StatusGroupPipeline, s.Group())
	}
	assert.Empty(t, SubmissionStatus("bogus").Group())
	assert.Len(t, AllSubmissionStatuses(), 9)
}

func TestSubmissionStatusTransitions(t *testing.T) {
	for _, from := range AllSubmissionStatuses() {
		for _, to := range AllSubmissionStatuses() {
			assert.True(t, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
		assert.False(t, from.CanTransitionTo("bogus"))
	}
	assert.False(t, SubmissionStatus("bogus").CanTransitionTo(SubmissionStatusNew))
}

func TestNormalizeReviewStatus(t *testing.T) {
	assert.Equal(t, SubmissionStatusApproved, NormalizeReviewStatus("approved"))
	assert.Equal(t, SubmissionStatusDenied, NormalizeReviewStatus("DENIED"))
	assert.Equal(t, SubmissionStatusPending, NormalizeReviewStatus("converted"))
	assert.Equal(t, SubmissionStatusPending, NormalizeReviewStatus(""))
}

func TestSubmissionApplyStatusStampsOnce(t *testing.T) {
	s := &Submission{Status: SubmissionStatusNew}
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	contacted, converted := s.ApplyStatus(SubmissionStatusContacted, first)
	assert.True(t, contacted)
	assert.False(t, converted)
	require.NotNil(t, s.ContactedAt)
	assert.Equal(t, first, *s.ContactedAt)

	later := first.Add(48 * time.Hour)
	contacted, _ = s.ApplyStatus(SubmissionStatusContacted, later)
	assert.False(t, contacted)
	assert.Equal(t, first, *s.ContactedAt)

	_, converted = s.ApplyStatus(SubmissionStatusConverted, later)
	assert.True(t, converted)
	require.NotNil(t, s.ConvertedAt)

	// moving back to contacted after conversion keeps the original stamp
	s.ApplyStatus(SubmissionStatusContacted, later.Add(time.Hour))
	assert.Equal(t, first, *s.ContactedAt)
	assert.Equal(t, later, *s.ConvertedAt)
	assert.Equal(t, SubmissionStatusContacted, s.Status)
}

func TestSubmissionValidate(t *testing.T) {
	s := &Submission{LeadName: "Jane Doe", LeadEmail: "jane@x.com", SubmissionSource: SourceWebForm}
	require.NoError(t, s.Validate())

	s.LeadEmail = ""
	assert.Error(t, s.Validate())

	s.LeadEmail = "jane@x.com"
	s.SubmissionSource = "fax"
	assert.Error(t, s.Validate())
}

func TestNewActivityLog(t *testing.T) {
	actor := "user-1"
	entry, err := NewActivityLog(ActionSubmissionUpdated, EntitySubmission, "abc", &actor, map[string]any{"status": "contacted"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"contacted"}`, string(entry.Details))
	assert.Equal(t, "abc", entry.EntityID)
	assert.Equal(t, &actor, entry.ActorID)
}

func TestRaffleCapacity(t *testing.T) {
	r := &Raffle{Name: "Headphones", EntryCostPoints: 10, MaxEntries: 2, Status: RaffleStatusActive}
	require.NoError(t, r.Validate())
	assert.True(t, r.IsActive())
	assert.False(t, r.IsFull())

	r.EntryCount = 2
	assert.True(t, r.IsFull())

	r.EntryCostPoints = 0
	assert.Error(t, r.Validate())
}
