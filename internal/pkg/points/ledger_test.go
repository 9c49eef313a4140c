package points_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/database"
	"github.com/ManuelReschke/LeadFox/internal/pkg/points"
)

func newLedger(t *testing.T) *points.Ledger {
	t.Helper()
	return points.NewLedger(repository.NewPartnerUserRepository(database.NewTestDB(t)))
}

func TestLedgerSequence(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	steps := []struct {
		delta   int
		want    int
		wantErr error
	}{
		{delta: 3, want: 3},
		{delta: 1, want: 4},
		{delta: -2, want: 2},
		{delta: -5, want: 2, wantErr: apperror.ErrInsufficientFunds},
		{delta: 0, want: 2},
		{delta: -2, want: 0},
		{delta: -1, want: 0, wantErr: apperror.ErrInsufficientFunds},
	}

	for i, step := range steps {
		err := ledger.Adjust(ctx, "u1", step.delta)
		if step.wantErr != nil {
			assert.ErrorIs(t, err, step.wantErr, "step %d", i)
		} else {
			require.NoError(t, err, "step %d", i)
		}
		balance, err := ledger.Balance(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, step.want, balance, "step %d", i)
	}
}

func TestLedgerUnknownUser(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	balance, err := ledger.Balance(ctx, "ghost")
	require.NoError(t, err)
	assert.Zero(t, balance)

	assert.ErrorIs(t, ledger.Debit(ctx, "ghost", 1), apperror.ErrInsufficientFunds)
	assert.ErrorIs(t, ledger.Credit(ctx, "ghost", 0), apperror.ErrValidation)
}

func checkConcurrentDebits(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	ledger := points.NewLedger(repository.NewPartnerUserRepository(db))
	require.NoError(t, ledger.Credit(ctx, "u1", 3))

	const debits = 10
	errs := make([]error, debits)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < debits; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = ledger.Debit(ctx, "u1", 1)
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrInsufficientFunds)
	}
	assert.Equal(t, 3, succeeded)

	balance, err := ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestLedgerConcurrentDebits(t *testing.T) {
	checkConcurrentDebits(t, database.NewTestDB(t))
}

func TestLedgerConcurrentDebitsMySQL(t *testing.T) {
	checkConcurrentDebits(t, database.NewMySQLTestDB(t))
}
