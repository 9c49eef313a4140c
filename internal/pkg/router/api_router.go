package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LeadFox/app/controllers"
	"github.com/ManuelReschke/LeadFox/internal/pkg/constants"
	"github.com/ManuelReschke/LeadFox/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	referrals := controllers.NewReferralController(h.deps.Referrals)
	raffles := controllers.NewRaffleController(h.deps.Raffles, h.deps.Ledger)
	dashboard := controllers.NewDashboardController(h.deps.Statistics)
	media := controllers.NewSiteMediaController(h.deps.Media)
	auth := controllers.NewAuthSessionController(h.deps.Verifier, h.deps.Repos.PartnerUser, h.deps.Sessions)

	v1 := app.Group(constants.APIPrefix)
	v1.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "LeadFox API v1",
		})
	})

	v1.Post("/referrals", middleware.RateLimit(h.deps.Limiter, "referrals", controllers.GetClientIP), referrals.HandleSubmit)

	v1.Post("/auth/session", middleware.RateLimit(h.deps.Limiter, "auth", controllers.GetClientIP), auth.HandleLogin)
	v1.Delete("/auth/session", auth.HandleLogout)

	v1.Get("/submissions/mine", middleware.RequireAuth, referrals.HandleMine)
	v1.Get("/points", middleware.RequireAuth, raffles.HandlePoints)
	v1.Get("/raffles", middleware.RequireAuth, raffles.HandleActive)
	v1.Post("/raffles/:id/enter", middleware.RequireAuth, raffles.HandleEnter)

	admin := v1.Group("/admin")
	// list and get are open to partners, scoped in the service
	admin.Get("/submissions", middleware.RequireAuth, referrals.HandleList)
	admin.Get("/submissions/:id", middleware.RequireAuth, referrals.HandleGet)
	admin.Post("/submissions", middleware.RequireAdmin, referrals.HandleAdminCreate)
	admin.Patch("/submissions/:id", middleware.RequireAdmin, referrals.HandleUpdate)

	admin.Get("/dashboard", middleware.RequireAdmin, dashboard.HandleDashboard)
	admin.Get("/users", middleware.RequireAdmin, dashboard.HandleUsers)
	admin.Get("/users/:id", middleware.RequireAdmin, dashboard.HandleUserDetail)

	admin.Get("/raffles", middleware.RequireAdmin, raffles.HandleAdminList)
	admin.Post("/raffles", middleware.RequireAdmin, raffles.HandleAdminCreate)

	admin.Get("/site-media", middleware.RequireAdmin, media.HandleList)
	admin.Post("/site-media", middleware.RequireAdmin, media.HandleUpsert)
	admin.Post("/site-media/upload", middleware.RequireAdmin, media.HandleUpload)
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
