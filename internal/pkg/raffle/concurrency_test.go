package raffle_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/database"
	"github.com/ManuelReschke/LeadFox/internal/pkg/raffle"
)

const contenders = 8

// enterAll starts every entry at once and returns the error of each.
func enterAll(svc *raffle.Service, raffleID uint, users []string) []error {
	errs := make([]error, len(users))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, user := range users {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Enter(context.Background(), partner(user), raffleID)
		}(i, user)
	}
	close(start)
	wg.Wait()
	return errs
}

func splitErrors(t *testing.T, errs []error, want error) int {
	t.Helper()
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, want)
	}
	return succeeded
}

func checkConcurrentCapacity(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	repos := repository.NewRepositories(db)
	svc := raffle.NewService(repos)

	r, err := svc.Create(ctx, admin, raffle.CreateInput{Name: "Console", EntryCostPoints: 3, MaxEntries: 1})
	require.NoError(t, err)

	users := make([]string, contenders)
	for i := range users {
		users[i] = fmt.Sprintf("user-%d", i)
		require.NoError(t, repos.PartnerUser.AddPoints(ctx, users[i], 5))
	}

	errs := enterAll(svc, r.ID, users)
	assert.Equal(t, 1, splitErrors(t, errs, apperror.ErrCapacityExceeded))
	assert.EqualValues(t, 1, countEntries(t, repos, r.ID))

	total := 0
	for _, user := range users {
		balance, err := repos.PartnerUser.GetPoints(ctx, user)
		require.NoError(t, err)
		total += balance
	}
	assert.Equal(t, contenders*5-3, total)
}

func checkConcurrentOverspend(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	repos := repository.NewRepositories(db)
	svc := raffle.NewService(repos)

	r, err := svc.Create(ctx, admin, raffle.CreateInput{Name: "Mug", EntryCostPoints: 10, MaxEntries: 100})
	require.NoError(t, err)
	require.NoError(t, repos.PartnerUser.AddPoints(ctx, "u1", 15))

	users := make([]string, contenders)
	for i := range users {
		users[i] = "u1"
	}

	errs := enterAll(svc, r.ID, users)
	assert.Equal(t, 1, splitErrors(t, errs, apperror.ErrInsufficientFunds))
	assert.EqualValues(t, 1, countEntries(t, repos, r.ID))

	balance, err := repos.PartnerUser.GetPoints(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

func TestEnterConcurrentCapacity(t *testing.T) {
	checkConcurrentCapacity(t, database.NewTestDB(t))
}

func TestEnterConcurrentOverspend(t *testing.T) {
	checkConcurrentOverspend(t, database.NewTestDB(t))
}

func TestEnterConcurrentCapacityMySQL(t *testing.T) {
	checkConcurrentCapacity(t, database.NewMySQLTestDB(t))
}

func TestEnterConcurrentOverspendMySQL(t *testing.T) {
	checkConcurrentOverspend(t, database.NewMySQLTestDB(t))
}
