package points

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
)

// Ledger keeps one non-negative balance per user. Every change is a single
// statement in the store, so concurrent credits and debits never lose updates.
type Ledger struct {
	store repository.PartnerUserRepository
}

func NewLedger(store repository.PartnerUserRepository) *Ledger {
	return &Ledger{store: store}
}

// Balance returns the user's points, 0 for users without a row.
func (l *Ledger) Balance(ctx context.Context, userID string) (int, error) {
	points, err := l.store.GetPoints(ctx, userID)
	if err != nil {
		return 0, apperror.Internal("failed to load points", err)
	}
	return points, nil
}

// Credit adds amount to the balance, creating the row when missing.
func (l *Ledger) Credit(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return apperror.Validation("credit amount must be positive")
	}
	if err := l.store.AddPoints(ctx, userID, amount); err != nil {
		return apperror.Internal("failed to credit points", err)
	}
	log.Infow("points credited", "user_id", userID, "amount", amount)
	return nil
}

// Debit removes amount from the balance. It fails with an insufficient funds
// error, leaving the balance untouched, when the balance does not cover amount.
func (l *Ledger) Debit(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return apperror.Validation("debit amount must be positive")
	}
	ok, err := l.store.DeductPoints(ctx, userID, amount)
	if err != nil {
		return apperror.Internal("failed to debit points", err)
	}
	if !ok {
		return apperror.Insufficient("insufficient points")
	}
	log.Infow("points debited", "user_id", userID, "amount", amount)
	return nil
}

// Adjust applies a signed delta. A zero delta is a no-op.
func (l *Ledger) Adjust(ctx context.Context, userID string, delta int) error {
	switch {
	case delta > 0:
		return l.Credit(ctx, userID, delta)
	case delta < 0:
		return l.Debit(ctx, userID, -delta)
	default:
		return nil
	}
}
