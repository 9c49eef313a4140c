package jobqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/LeadFox/app/models"
	"github.com/ManuelReschke/LeadFox/internal/pkg/mail"
)

type recordingDeliverer struct {
	mu       sync.Mutex
	failures int
	sent     []mail.LeadMail
	done     chan struct{}
}

func newRecordingDeliverer(failures int) *recordingDeliverer {
	return &recordingDeliverer{failures: failures, done: make(chan struct{}, 1)}
}

func (d *recordingDeliverer) Deliver(m mail.LeadMail) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failures > 0 {
		d.failures--
		return errors.New("smtp unavailable")
	}
	d.sent = append(d.sent, m)
	d.done <- struct{}{}
	return nil
}

func TestNewQueueDefaults(t *testing.T) {
	q := NewQueue(nil, 0)
	assert.Equal(t, DefaultWorkers, q.workers)
	assert.Equal(t, time.Minute, q.retryDelay)
	assert.False(t, q.running)

	assert.Equal(t, 4, NewQueue(nil, 4).workers)
}

func TestJobRetryable(t *testing.T) {
	job := &Job{MaxRetries: 2}
	job.MarkAsFailed("boom")
	assert.True(t, job.IsRetryable())
	assert.Equal(t, "boom", job.ErrorMsg)

	job.MarkAsFailed("boom")
	assert.False(t, job.IsRetryable())

	job.MarkAsCompleted()
	assert.Empty(t, job.ErrorMsg)
	assert.NotNil(t, job.CompletedAt)
}

func TestLeadNotificationPayloadFromMap(t *testing.T) {
	code := "ACME"
	score := 55
	lead := mail.LeadMailFromSubmission(&models.Submission{
		ID: "abc", LeadName: "Jane", LeadEmail: "jane@x.com", ReferralCode: &code, QualityScore: &score,
	})

	got, err := LeadNotificationPayloadFromMap(LeadNotificationPayloadToMap(lead))
	require.NoError(t, err)
	assert.Equal(t, lead, *got)
}

func TestQueueDeliversLeadNotification(t *testing.T) {
	client := newTestRedis(t)
	q := NewQueue(client, 1)
	d := newRecordingDeliverer(0)
	RegisterLeadNotifications(q, d)
	q.Start()
	defer q.Stop()

	NewLeadNotifier(q).NotifyNewLead(&models.Submission{ID: "s-1", LeadName: "Jane", LeadEmail: "jane@x.com"})

	select {
	case <-d.done:
	case <-time.After(5 * time.Second):
		t.Fatal("notification not delivered")
	}
	d.mu.Lock()
	assert.Equal(t, "s-1", d.sent[0].SubmissionID)
	d.mu.Unlock()

	require.Eventually(t, func() bool {
		stats, err := q.GetJobStats(context.Background())
		return err == nil && stats[JobStatusCompleted] == 1
	}, 5*time.Second, 20*time.Millisecond)

	size, err := q.GetProcessingSize(context.Background())
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestQueueRetriesFailedDelivery(t *testing.T) {
	client := newTestRedis(t)
	q := NewQueue(client, 1)
	q.retryDelay = 10 * time.Millisecond
	d := newRecordingDeliverer(1)
	RegisterLeadNotifications(q, d)
	q.Start()
	defer q.Stop()

	NewLeadNotifier(q).NotifyNewLead(&models.Submission{ID: "s-2", LeadName: "Max", LeadEmail: "max@x.com"})

	select {
	case <-d.done:
	case <-time.After(5 * time.Second):
		t.Fatal("notification not retried")
	}
	d.mu.Lock()
	assert.Len(t, d.sent, 1)
	assert.Zero(t, d.failures)
	d.mu.Unlock()
}

func TestProcessUnknownJobFailsPermanently(t *testing.T) {
	client := newTestRedis(t)
	q := NewQueue(client, 1)
	ctx := context.Background()

	job, err := q.EnqueueJob(ctx, JobType("bogus"), map[string]interface{}{})
	require.NoError(t, err)

	dequeued, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	q.processJob(ctx, dequeued)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMsg, "unknown job type")

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[JobStatusFailed])
}

func TestRecoverStuckJobs(t *testing.T) {
	client := newTestRedis(t)
	q := NewQueue(client, 1)
	ctx := context.Background()

	job, err := q.EnqueueJob(ctx, JobTypeLeadNotification, map[string]interface{}{})
	require.NoError(t, err)
	dequeued, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	dequeued.MarkAsProcessing()
	q.updateJob(ctx, dequeued)

	assert.Zero(t, q.recoverStuckJobs(ctx, time.Hour, time.Now()))
	assert.Equal(t, 1, q.recoverStuckJobs(ctx, time.Hour, time.Now().Add(2*time.Hour)))

	pending, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, stored.Status)
}
