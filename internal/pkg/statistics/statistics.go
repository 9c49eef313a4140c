package statistics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LeadFox/app/models"
	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/identity"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

const (
	recentWindow       = 7 * 24 * time.Hour
	latestSubmissions  = 10
	topPartnersOnBoard = 10
)

// DashboardSummary is the admin dashboard rollup. Everything is recomputed per call.
type DashboardSummary struct {
	TotalSubmissions  int64                       `json:"total_submissions"`
	SubmissionsLast7d int64                       `json:"submissions_last_7_days"`
	ConvertedCount    int64                       `json:"converted_count"`
	TotalRevenue      float64                     `json:"total_revenue"`
	ActivePartners    int64                       `json:"active_partners"`
	ConversionRate    string                      `json:"conversion_rate"`
	RecentSubmissions []models.Submission         `json:"recent_submissions"`
	TopPartners       []models.PartnerPerformance `json:"top_partners"`
	StatusCounts      map[string]int64            `json:"status_counts"`
}

// UserSubmissions groups the submissions of one identity user.
type UserSubmissions struct {
	UserID      string              `json:"user_id"`
	Email       string              `json:"email"`
	Submissions []models.Submission `json:"submissions"`
}

// Service computes admin rollups from the submission table.
type Service struct {
	repos    *repository.Repositories
	resolver *identity.Resolver
	now      func() time.Time
}

func NewService(repos *repository.Repositories, resolver *identity.Resolver) *Service {
	return &Service{repos: repos, resolver: resolver, now: time.Now}
}

// ConversionRate formats converted/total as a percentage with two decimals.
func ConversionRate(converted, total int64) string {
	if total == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(converted)/float64(total)*100)
}

// SumRevenue adds up conversion values, counting missing values as zero.
func SumRevenue(submissions []models.Submission) float64 {
	total := 0.0
	for _, s := range submissions {
		if s.ConversionValue != nil {
			total += *s.ConversionValue
		}
	}
	return total
}

// StatusHistogram counts submissions per status.
func StatusHistogram(statuses []string) map[string]int64 {
	counts := make(map[string]int64)
	for _, status := range statuses {
		counts[status]++
	}
	return counts
}

// Dashboard returns the admin dashboard summary.
func (s *Service) Dashboard(ctx context.Context, caller usercontext.UserContext) (*DashboardSummary, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	total, err := s.repos.Submission.Count(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to count submissions", err)
	}
	lastWeek, err := s.repos.Submission.CountSince(ctx, s.now().Add(-recentWindow))
	if err != nil {
		return nil, apperror.Internal("failed to count recent submissions", err)
	}
	converted, err := s.repos.Submission.ListConverted(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to load conversions", err)
	}
	activePartners, err := s.repos.ChannelPartner.CountActive(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to count partners", err)
	}
	recent, err := s.repos.Submission.ListRecent(ctx, latestSubmissions)
	if err != nil {
		return nil, apperror.Internal("failed to load recent submissions", err)
	}
	top, err := s.repos.Submission.PartnerPerformance(ctx, topPartnersOnBoard)
	if err != nil {
		return nil, apperror.Internal("failed to load partner performance", err)
	}
	statuses, err := s.repos.Submission.ListStatuses(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to load statuses", err)
	}

	if recent == nil {
		recent = []models.Submission{}
	}
	if top == nil {
		top = []models.PartnerPerformance{}
	}

	return &DashboardSummary{
		TotalSubmissions:  total,
		SubmissionsLast7d: lastWeek,
		ConvertedCount:    int64(len(converted)),
		TotalRevenue:      SumRevenue(converted),
		ActivePartners:    activePartners,
		ConversionRate:    ConversionRate(int64(len(converted)), total),
		RecentSubmissions: recent,
		TopPartners:       top,
		StatusCounts:      StatusHistogram(statuses),
	}, nil
}

// UsersWithSubmissions groups all submissions by the user who made them and
// attaches each user's email from the identity store.
func (s *Service) UsersWithSubmissions(ctx context.Context, caller usercontext.UserContext) ([]UserSubmissions, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	submissions, err := s.repos.Submission.ListWithSubmitter(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to load submissions", err)
	}

	byUser := make(map[string][]models.Submission)
	var order []string
	for _, sub := range submissions {
		userID := *sub.SubmittedByUserID
		if _, ok := byUser[userID]; !ok {
			order = append(order, userID)
		}
		byUser[userID] = append(byUser[userID], sub)
	}

	profiles, err := s.resolver.Session().Resolve(ctx, order)
	if err != nil {
		return nil, apperror.Internal("failed to resolve users", err)
	}

	out := make([]UserSubmissions, 0, len(order))
	for _, userID := range order {
		out = append(out, UserSubmissions{
			UserID:      userID,
			Email:       profiles[userID].Email,
			Submissions: byUser[userID],
		})
	}
	// users with the most recent activity first; submissions arrive newest first
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Submissions[0].CreatedAt.After(out[j].Submissions[0].CreatedAt)
	})

	log.Debugw("users with submissions", "users", len(out), "submissions", len(submissions))
	return out, nil
}

// UserDetail returns one user's profile and submissions, newest first.
func (s *Service) UserDetail(ctx context.Context, caller usercontext.UserContext, userID string) (*UserSubmissions, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperror.Validation("user id is required")
	}

	profile, err := s.resolver.Session().Lookup(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to resolve user", err)
	}
	submissions, err := s.repos.Submission.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load submissions", err)
	}
	if submissions == nil {
		submissions = []models.Submission{}
	}
	return &UserSubmissions{UserID: userID, Email: profile.Email, Submissions: submissions}, nil
}

func requireAdmin(caller usercontext.UserContext) error {
	if !caller.IsLoggedIn {
		return apperror.Unauthorized("authentication required")
	}
	if !caller.IsAdmin {
		return apperror.Forbidden("admin role required")
	}
	return nil
}
