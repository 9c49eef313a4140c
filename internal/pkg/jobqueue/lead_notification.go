package jobqueue

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LeadFox/app/models"
	"github.com/ManuelReschke/LeadFox/internal/pkg/mail"
)

const enqueueTimeout = 2 * time.Second

// LeadMailDeliverer sends one lead notification mail.
type LeadMailDeliverer interface {
	Deliver(m mail.LeadMail) error
}

// RegisterLeadNotifications installs the handler that mails queued leads
func RegisterLeadNotifications(q *Queue, deliverer LeadMailDeliverer) {
	q.Register(JobTypeLeadNotification, func(ctx context.Context, job *Job) error {
		payload, err := LeadNotificationPayloadFromMap(job.Payload)
		if err != nil {
			return err
		}
		return deliverer.Deliver(*payload)
	})
}

// LeadNotifier queues new lead notifications so failed sends are retried.
type LeadNotifier struct {
	queue *Queue
}

func NewLeadNotifier(queue *Queue) *LeadNotifier {
	return &LeadNotifier{queue: queue}
}

// NotifyNewLead enqueues the notification. Enqueue failures are only logged.
func (n *LeadNotifier) NotifyNewLead(s *models.Submission) {
	if n == nil || s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	payload := LeadNotificationPayloadToMap(mail.LeadMailFromSubmission(s))
	if _, err := n.queue.EnqueueJob(ctx, JobTypeLeadNotification, payload); err != nil {
		log.Warnw("lead notification not queued", "submission_id", s.ID, "error", err)
	}
}
