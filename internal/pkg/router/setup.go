package router

import (
	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/assets"
	"github.com/ManuelReschke/LeadFox/internal/pkg/middleware"
	"github.com/ManuelReschke/LeadFox/internal/pkg/points"
	"github.com/ManuelReschke/LeadFox/internal/pkg/raffle"
	"github.com/ManuelReschke/LeadFox/internal/pkg/ratelimit"
	"github.com/ManuelReschke/LeadFox/internal/pkg/referral"
	"github.com/ManuelReschke/LeadFox/internal/pkg/statistics"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies carries everything the routes are wired to
type Dependencies struct {
	Repos      *repository.Repositories
	Verifier   middleware.TokenVerifier
	Sessions   *fibersession.Store
	Limiter    ratelimit.Limiter
	Referrals  *referral.Service
	Raffles    *raffle.Service
	Ledger     *points.Ledger
	Statistics *statistics.Service
	Media      *assets.MediaService
	// Cache backs the public homepage counters; nil disables caching.
	Cache      statistics.Cache
	CaptchaKey string
	// CSRF is disabled in handler tests.
	DisableCSRF bool
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// The user context middleware must run before any route is matched.
	app.Use(middleware.UserContextMiddleware(middleware.UserContextConfig{
		Verifier:     deps.Verifier,
		PartnerUsers: deps.Repos.PartnerUser,
		Sessions:     deps.Sessions,
	}))

	setup(app, NewApiRouter(deps), NewHttpRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
