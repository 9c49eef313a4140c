package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LeadFox/app/models"
)

var leadTemplate = template.Must(template.New("lead").Parse(`<h2>New lead: {{.LeadName}}</h2>
<p><strong>Email:</strong> {{.LeadEmail}}<br>
{{if .LeadPhone}}<strong>Phone:</strong> {{.LeadPhone}}<br>{{end}}
{{if .LeadCompany}}<strong>Company:</strong> {{.LeadCompany}}<br>{{end}}
{{if .ReferralCode}}<strong>Referral code:</strong> {{.ReferralCode}}<br>{{end}}
{{if .QualityScore}}<strong>Quality score:</strong> {{.QualityScore}}{{end}}</p>
{{if .LeadMessage}}<pre>{{.LeadMessage}}</pre>{{end}}`))

var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

// LeadNotifier mails new web leads to the sales inbox
type LeadNotifier struct {
	mailer *Mailer
	to     string
}

// NewLeadNotifier returns nil when no recipient or SMTP host is configured
func NewLeadNotifier(mailer *Mailer, to string) *LeadNotifier {
	if to == "" || !mailer.Configured() {
		return nil
	}
	return &LeadNotifier{mailer: mailer, to: to}
}

// LeadMail holds the submission fields rendered into the notification.
type LeadMail struct {
	SubmissionID string `json:"submission_id"`
	LeadName     string `json:"lead_name"`
	LeadEmail    string `json:"lead_email"`
	LeadPhone    string `json:"lead_phone"`
	LeadCompany  string `json:"lead_company"`
	LeadMessage  string `json:"lead_message"`
	ReferralCode string `json:"referral_code"`
	QualityScore int    `json:"quality_score"`
}

// LeadMailFromSubmission copies the mailed fields out of s
func LeadMailFromSubmission(s *models.Submission) LeadMail {
	m := LeadMail{
		SubmissionID: s.ID,
		LeadName:     s.LeadName,
		LeadEmail:    s.LeadEmail,
		LeadPhone:    s.LeadPhone,
		LeadCompany:  s.LeadCompany,
		LeadMessage:  s.LeadMessage,
	}
	if s.ReferralCode != nil {
		m.ReferralCode = *s.ReferralCode
	}
	if s.QualityScore != nil {
		m.QualityScore = *s.QualityScore
	}
	return m
}

// Deliver renders and sends one notification
func (n *LeadNotifier) Deliver(m LeadMail) error {
	var body bytes.Buffer
	if err := leadTemplate.Execute(&body, m); err != nil {
		return fmt.Errorf("render lead notification: %w", err)
	}
	subject := "New lead: " + headerSafe.Replace(m.LeadName)
	return n.mailer.SendMail(n.to, subject, body.String())
}

// NotifyNewLead sends the notification in the background. Failures are only logged.
func (n *LeadNotifier) NotifyNewLead(s *models.Submission) {
	if n == nil || s == nil {
		return
	}
	m := LeadMailFromSubmission(s)

	go func() {
		if err := n.Deliver(m); err != nil {
			log.Warnw("lead notification not sent", "submission_id", m.SubmissionID, "error", err)
		}
	}()
}
