package referral

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LeadFox/app/models"
	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/points"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200

	pointsPerAdminEntry = 1
	pointsApprovedBonus = 2

	maxUserAgentLength = 512
)

// CaptchaVerifier checks a guest's captcha token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// Notifier is told about every new web lead.
type Notifier interface {
	NotifyNewLead(s *models.Submission)
}

// Service runs lead intake and the status workflow.
type Service struct {
	repos    *repository.Repositories
	validate *validator.Validate
	captcha  CaptchaVerifier
	notifier Notifier
	now      func() time.Time
}

type Option func(*Service)

// WithCaptcha requires guests to pass captcha verification.
func WithCaptcha(v CaptchaVerifier) Option {
	return func(s *Service) { s.captcha = v }
}

// WithNotifier sends new web leads to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repos *repository.Repositories, opts ...Option) *Service {
	s := &Service{
		repos:    repos,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitPublic stores a web lead. Attribution is best effort and never fails
// the submission. No points are awarded on this path.
func (s *Service) SubmitPublic(ctx context.Context, caller usercontext.UserContext, in PublicInput, meta RequestMeta) (*SubmitResult, error) {
	in = trimPublic(in)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "lead_name and a valid lead_email are required", err)
	}

	if !caller.IsLoggedIn && s.captcha != nil {
		ok, err := s.captcha.Verify(ctx, in.CaptchaToken)
		if !ok {
			return nil, apperror.Wrap(apperror.KindValidation, "captcha verification failed", err)
		}
	}

	var codeMatch *models.ChannelPartner
	if in.ReferralCode != "" && !caller.IsLoggedIn {
		codeMatch = s.lookupReferralCode(ctx, in.ReferralCode)
	}

	ref := Referrer{Name: in.ReferrerName, Email: in.ReferrerEmail, Phone: in.ReferrerPhone}
	message := MergeMessage(in.LeadMessage, ref)
	score := QualityScore(in.LeadPhone, ref, message)

	submission := &models.Submission{
		PartnerID:        ResolveAttribution(caller, codeMatch),
		ReferralCode:     optional(in.ReferralCode),
		LeadName:         in.LeadName,
		LeadEmail:        in.LeadEmail,
		LeadPhone:        in.LeadPhone,
		LeadCompany:      in.LeadCompany,
		LeadMessage:      message,
		SubmissionSource: models.SourceWebForm,
		IPAddress:        clientIP(meta.IPAddress),
		UserAgent:        clientUserAgent(meta.UserAgent),
		UTMSource:        in.UTMSource,
		UTMMedium:        in.UTMMedium,
		UTMCampaign:      in.UTMCampaign,
		Status:           models.SubmissionStatusNew,
		QualityScore:     &score,
		IsAuthenticated:  caller.IsLoggedIn,
		IsAccounted:      caller.IsLoggedIn,
	}
	if caller.IsLoggedIn {
		submission.SubmittedByUserID = optional(caller.UserID)
	}

	if err := s.repos.Submission.Create(ctx, submission); err != nil {
		return nil, apperror.Internal("failed to submit referral", err)
	}
	log.Infow("submission created", "submission_id", submission.ID, "source", submission.SubmissionSource,
		"partner_id", submission.PartnerID, "quality_score", score)

	if s.notifier != nil {
		s.notifier.NotifyNewLead(submission)
	}

	return &SubmitResult{ID: submission.ID, QualityScore: score, IsAccounted: submission.IsAccounted}, nil
}

// SubmitAsAdmin stores an admin-entered lead. When UserID names a partner
// user, that user earns one point plus a bonus when the lead is approved.
func (s *Service) SubmitAsAdmin(ctx context.Context, caller usercontext.UserContext, in AdminInput, meta RequestMeta) (*models.Submission, error) {
	if !caller.IsLoggedIn {
		return nil, apperror.Unauthorized("authentication required")
	}
	if !caller.IsAdmin {
		return nil, apperror.Forbidden("admin role required")
	}
	in = trimAdmin(in)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "invalid submission", err)
	}

	status := models.NormalizeReviewStatus(in.Status)
	submission := &models.Submission{
		PartnerID:        in.PartnerID,
		ReferralCode:     optional(in.ReferralCode),
		LeadName:         in.LeadName,
		LeadEmail:        in.LeadEmail,
		LeadPhone:        in.LeadPhone,
		LeadCompany:      in.LeadCompany,
		LeadJobTitle:     in.LeadJobTitle,
		Industry:         in.Industry,
		CompanySize:      in.CompanySize,
		BudgetRange:      in.BudgetRange,
		Timeline:         in.Timeline,
		PainPoints:       in.PainPoints,
		LinkedInURL:      in.LinkedInURL,
		LeadMessage:      in.LeadMessage,
		ReferrerName:     in.ReferrerName,
		ReferrerEmail:    in.ReferrerEmail,
		ReferrerPhone:    in.ReferrerPhone,
		SubmissionSource: models.SourceAdminEntry,
		IPAddress:        clientIP(meta.IPAddress),
		UserAgent:        clientUserAgent(meta.UserAgent),
		Status:           status,
		AdminNotes:       in.AdminNotes,
		ConversionValue:  in.ConversionValue,
		QualityScore:     in.QualityScore,
		IsAuthenticated:  true,
		IsAccounted:      in.UserID != "",
	}

	award := 0
	if in.UserID != "" {
		award = pointsPerAdminEntry
		if status == models.SubmissionStatusApproved {
			award += pointsApprovedBonus
		}
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if in.UserID != "" {
			owner, err := tx.PartnerUser.GetByUserID(ctx, in.UserID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Validation("user_id does not name a partner user")
			}
			if err != nil {
				return apperror.Internal("failed to load partner user", err)
			}
			submission.SubmittedByUserID = optional(in.UserID)
			if submission.PartnerID == nil {
				submission.PartnerID = owner.PartnerID
			}
		}
		if submission.PartnerID == nil && in.ReferralCode != "" {
			if partner, err := tx.ChannelPartner.GetActiveByReferralCode(ctx, in.ReferralCode); err == nil {
				submission.PartnerID = &partner.ID
			}
		}

		if err := tx.Submission.Create(ctx, submission); err != nil {
			return apperror.Internal("failed to create submission", err)
		}

		if award > 0 {
			if err := points.NewLedger(tx.PartnerUser).Credit(ctx, in.UserID, award); err != nil {
				return err
			}
		}

		entry, err := models.NewActivityLog(models.ActionSubmissionCreated, models.EntitySubmission, submission.ID,
			optional(caller.UserID), submission)
		if err != nil {
			return apperror.Internal("failed to encode activity", err)
		}
		if err := tx.ActivityLog.Create(ctx, entry); err != nil {
			return apperror.Internal("failed to write activity log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infow("admin submission created", "submission_id", submission.ID, "status", status,
		"user_id", in.UserID, "points_awarded", award, "actor", caller.UserID)
	return submission, nil
}

// Get returns one submission with its partner.
func (s *Service) Get(ctx context.Context, caller usercontext.UserContext, id string) (*models.Submission, error) {
	if !caller.IsLoggedIn {
		return nil, apperror.Unauthorized("authentication required")
	}
	submission, err := s.repos.Submission.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("submission not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to load submission", err)
	}
	return submission, nil
}

// List returns one page of submissions. Non-admins only see submissions they
// made or that are attributed to their partner.
func (s *Service) List(ctx context.Context, caller usercontext.UserContext, q ListQuery) (*ListResult, error) {
	if !caller.IsLoggedIn {
		return nil, apperror.Unauthorized("authentication required")
	}

	filter := repository.SubmissionFilter{Limit: q.Limit, Offset: q.Offset}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if q.Status != "" {
		status, ok := models.ParseSubmissionStatus(q.Status)
		if !ok {
			return nil, apperror.Validation("unknown status filter")
		}
		filter.Status = status
	}
	if !caller.IsAdmin {
		filter.Scope = ownerScope(caller)
	}

	submissions, total, err := s.repos.Submission.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("failed to list submissions", err)
	}
	if submissions == nil {
		submissions = []models.Submission{}
	}
	return &ListResult{Submissions: submissions, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Mine returns every submission made by the caller or attributed to the caller's partner.
func (s *Service) Mine(ctx context.Context, caller usercontext.UserContext) ([]models.Submission, error) {
	if !caller.IsLoggedIn {
		return nil, apperror.Unauthorized("authentication required")
	}
	submissions, err := s.repos.Submission.ListOwned(ctx, *ownerScope(caller))
	if err != nil {
		return nil, apperror.Internal("failed to list submissions", err)
	}
	if submissions == nil {
		submissions = []models.Submission{}
	}
	return submissions, nil
}

func (s *Service) lookupReferralCode(ctx context.Context, code string) *models.ChannelPartner {
	partner, err := s.repos.ChannelPartner.GetActiveByReferralCode(ctx, code)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnw("referral code lookup failed", "code", code, "error", err)
		}
		return nil
	}
	return partner
}

func ownerScope(caller usercontext.UserContext) *repository.OwnerScope {
	return &repository.OwnerScope{PartnerID: caller.PartnerID, UserID: caller.UserID}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// clientIP keeps only a parseable address, IPv4-mapped addresses in dotted form.
func clientIP(v string) string {
	ip := net.ParseIP(strings.TrimSpace(v))
	if ip == nil {
		return models.UnknownClientValue
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.String()
	}
	return ip.String()
}

// clientUserAgent trims the header to the user_agent column width
func clientUserAgent(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return models.UnknownClientValue
	}
	if utf8.RuneCountInString(v) > maxUserAgentLength {
		v = string([]rune(v)[:maxUserAgentLength])
	}
	return v
}

func trimPublic(in PublicInput) PublicInput {
	in.LeadName = strings.TrimSpace(in.LeadName)
	in.LeadEmail = strings.TrimSpace(in.LeadEmail)
	in.LeadPhone = strings.TrimSpace(in.LeadPhone)
	in.LeadCompany = strings.TrimSpace(in.LeadCompany)
	in.ReferrerName = strings.TrimSpace(in.ReferrerName)
	in.ReferrerEmail = strings.TrimSpace(in.ReferrerEmail)
	in.ReferrerPhone = strings.TrimSpace(in.ReferrerPhone)
	in.ReferralCode = strings.TrimSpace(in.ReferralCode)
	return in
}

func trimAdmin(in AdminInput) AdminInput {
	in.LeadName = strings.TrimSpace(in.LeadName)
	in.LeadEmail = strings.TrimSpace(in.LeadEmail)
	in.LeadPhone = strings.TrimSpace(in.LeadPhone)
	in.ReferralCode = strings.TrimSpace(in.ReferralCode)
	in.UserID = strings.TrimSpace(in.UserID)
	return in
}
