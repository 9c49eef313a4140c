package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/LeadFox/app/models"
	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/database"
	"github.com/ManuelReschke/LeadFox/internal/pkg/identity"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

var admin = usercontext.UserContext{UserID: "admin-1", Role: models.ROLE_ADMIN, IsLoggedIn: true, IsAdmin: true}

type emailDirectory map[string]string

func (d emailDirectory) LookupUser(_ context.Context, id string) (*identity.User, error) {
	email, ok := d[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return &identity.User{ID: id, Email: email}, nil
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, "0.00", ConversionRate(0, 0))
	assert.Equal(t, "25.00", ConversionRate(1, 4))
	assert.Equal(t, "33.33", ConversionRate(1, 3))
	assert.Equal(t, "100.00", ConversionRate(7, 7))
}

func TestSumRevenueAndHistogram(t *testing.T) {
	a, b := 100.25, 0.75
	assert.InDelta(t, 101.0, SumRevenue([]models.Submission{{ConversionValue: &a}, {}, {ConversionValue: &b}}), 0.0001)
	assert.Zero(t, SumRevenue(nil))

	assert.Equal(t, map[string]int64{"new": 2, "converted": 1}, StatusHistogram([]string{"new", "converted", "new"}))
}

func seed(t *testing.T, repos *repository.Repositories, s models.Submission) models.Submission {
	t.Helper()
	if s.LeadName == "" {
		s.LeadName, s.LeadEmail = "Lead", "lead@x.com"
	}
	if s.SubmissionSource == "" {
		s.SubmissionSource = models.SourceWebForm
	}
	if s.Status == "" {
		s.Status = models.SubmissionStatusNew
	}
	require.NoError(t, repos.Submission.Create(context.Background(), &s))
	return s
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories(database.NewTestDB(t))
	svc := NewService(repos, identity.NewResolver(emailDirectory{}, 2))

	empty, err := svc.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "0.00", empty.ConversionRate)
	assert.Empty(t, empty.RecentSubmissions)

	partner := &models.ChannelPartner{CompanyName: "Acme", ReferralCode: "ACME", Status: models.PARTNER_STATUS_ACTIVE}
	require.NoError(t, repos.ChannelPartner.Create(ctx, partner))

	value := 1200.0
	seed(t, repos, models.Submission{PartnerID: &partner.ID, Status: models.SubmissionStatusConverted, ConversionValue: &value})
	seed(t, repos, models.Submission{PartnerID: &partner.ID, Status: models.SubmissionStatusConverted})
	seed(t, repos, models.Submission{Status: models.SubmissionStatusContacted})
	seed(t, repos, models.Submission{})

	// one submission outside the trailing week
	old := seed(t, repos, models.Submission{})
	require.NoError(t, repos.Submission.UpdateFields(ctx, old.ID, map[string]any{"created_at": time.Now().Add(-30 * 24 * time.Hour)}))

	summary, err := svc.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 5, summary.TotalSubmissions)
	assert.EqualValues(t, 4, summary.SubmissionsLast7d)
	assert.EqualValues(t, 2, summary.ConvertedCount)
	assert.InDelta(t, 1200.0, summary.TotalRevenue, 0.001)
	assert.EqualValues(t, 1, summary.ActivePartners)
	assert.Equal(t, "40.00", summary.ConversionRate)
	assert.Len(t, summary.RecentSubmissions, 5)
	assert.Equal(t, map[string]int64{"converted": 2, "contacted": 1, "new": 2}, summary.StatusCounts)
	require.Len(t, summary.TopPartners, 1)
	assert.EqualValues(t, 2, summary.TopPartners[0].TotalConversions)
}

func TestAdminGate(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories(database.NewTestDB(t))
	svc := NewService(repos, identity.NewResolver(emailDirectory{}, 2))

	partner := usercontext.UserContext{UserID: "p1", Role: models.ROLE_PARTNER, IsLoggedIn: true}
	_, err := svc.Dashboard(ctx, partner)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.UsersWithSubmissions(ctx, usercontext.Anonymous)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = svc.UserDetail(ctx, partner, "u1")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestUsersWithSubmissions(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories(database.NewTestDB(t))
	svc := NewService(repos, identity.NewResolver(emailDirectory{"u1": "one@x.com", "u2": "two@x.com"}, 2))

	u1, u2, ghost := "u1", "u2", "ghost"
	seed(t, repos, models.Submission{SubmittedByUserID: &u1})
	seed(t, repos, models.Submission{SubmittedByUserID: &u2})
	seed(t, repos, models.Submission{SubmittedByUserID: &u1})
	seed(t, repos, models.Submission{SubmittedByUserID: &ghost})
	seed(t, repos, models.Submission{})

	groups, err := svc.UsersWithSubmissions(ctx, admin)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	byUser := map[string]UserSubmissions{}
	for _, g := range groups {
		byUser[g.UserID] = g
	}
	assert.Equal(t, "one@x.com", byUser["u1"].Email)
	assert.Len(t, byUser["u1"].Submissions, 2)
	assert.Equal(t, "two@x.com", byUser["u2"].Email)
	assert.Equal(t, "", byUser["ghost"].Email)

	detail, err := svc.UserDetail(ctx, admin, "u1")
	require.NoError(t, err)
	assert.Equal(t, "one@x.com", detail.Email)
	assert.Len(t, detail.Submissions, 2)
}

type mapCache struct {
	values map[string]string
	sets   int
}

func (m *mapCache) Get(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (m *mapCache) Set(key string, value interface{}, _ time.Duration) error {
	m.sets++
	m.values[key] = value.(string)
	return nil
}

func TestGetPublicStats(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories(database.NewTestDB(t))
	seed(t, repos, models.Submission{})

	c := &mapCache{values: map[string]string{CacheKeyPartnersActive: "12"}}
	stats := GetPublicStats(ctx, c, repos)
	assert.Equal(t, 12, stats.ActivePartners)
	assert.Equal(t, 1, stats.TotalLeads)
	assert.Equal(t, 1, c.sets)

	// served from cache now
	seed(t, repos, models.Submission{})
	assert.Equal(t, 1, GetPublicStats(ctx, c, repos).TotalLeads)

	assert.Equal(t, 2, GetPublicStats(ctx, nil, repos).TotalLeads)
}
