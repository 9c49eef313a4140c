package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/ManuelReschke/LeadFox/app/controllers"
	"github.com/ManuelReschke/LeadFox/internal/pkg/constants"
	"github.com/ManuelReschke/LeadFox/internal/pkg/env"
	"github.com/ManuelReschke/LeadFox/internal/pkg/middleware"
)

type HttpRouter struct {
	deps Dependencies
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	pages := controllers.NewPageController(h.deps.Referrals, h.deps.Media, h.deps.Repos, h.deps.Cache, h.deps.CaptchaKey)

	handlers := []fiber.Handler{}
	if !h.deps.DisableCSRF {
		handlers = append(handlers, csrf.New(csrf.Config{
			KeyLookup:      "form:_csrf",
			ContextKey:     "csrf",
			CookieName:     "csrf_",
			CookieSameSite: "Lax",
			Expiration:     1 * time.Hour,
			CookieSecure:   !env.IsDev(),
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/api/")
			},
		}))
	}

	group := app.Group("", handlers...)
	group.Get(constants.HomeRoute, pages.HandleHome)
	group.Get(constants.AboutRoute, pages.HandleAbout)
	group.Get(constants.ServicesRoute, pages.HandleServices)
	group.Get(constants.FAQRoute, pages.HandleFAQ)
	group.Get(constants.ContactRoute, pages.HandleContact)
	group.Post(constants.ContactRoute, middleware.RateLimit(h.deps.Limiter, "contact", controllers.GetClientIP), pages.HandleContactSubmit)
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}
