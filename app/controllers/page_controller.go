package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/assets"
	"github.com/ManuelReschke/LeadFox/internal/pkg/constants"
	"github.com/ManuelReschke/LeadFox/internal/pkg/referral"
	"github.com/ManuelReschke/LeadFox/internal/pkg/statistics"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
	"github.com/ManuelReschke/LeadFox/internal/pkg/viewmodel"
)

// PageController renders the public marketing pages
type PageController struct {
	referrals  *referral.Service
	media      *assets.MediaService
	repos      *repository.Repositories
	cache      statistics.Cache
	captchaKey string
}

func NewPageController(referrals *referral.Service, media *assets.MediaService, repos *repository.Repositories, cache statistics.Cache, captchaKey string) *PageController {
	return &PageController{
		referrals:  referrals,
		media:      media,
		repos:      repos,
		cache:      cache,
		captchaKey: captchaKey,
	}
}

func (pc *PageController) render(c *fiber.Ctx, page, title string, layout viewmodel.Layout) error {
	userCtx := usercontext.GetUserContext(c)
	layout.Page = page
	layout.Title = title
	layout.IsLoggedIn = userCtx.IsLoggedIn
	layout.IsAdmin = userCtx.IsAdmin
	layout.Msg = flash.Get(c)
	layout.CaptchaKey = pc.captchaKey
	if token, ok := c.Locals("csrf").(string); ok {
		layout.CSRFToken = token
	}
	layout.Media = pc.mediaMap(c)
	if layout.OGViewModel == nil {
		layout.OGViewModel = &viewmodel.OpenGraph{Title: "LeadFox | " + title, URL: c.BaseURL() + c.Path()}
	}

	return c.Render("pages/"+page, layout.Bind(), "layouts/main")
}

func (pc *PageController) mediaMap(c *fiber.Ctx) map[string]string {
	out := map[string]string{}
	if pc.media == nil {
		return out
	}
	media, err := pc.media.Public(c.UserContext())
	if err != nil {
		log.Warnw("site media unavailable", "error", err)
		return out
	}
	for _, m := range media {
		out[m.Key] = m.URL
	}
	return out
}

// HandleHome GET /
func (pc *PageController) HandleHome(c *fiber.Ctx) error {
	stats := statistics.GetPublicStats(c.UserContext(), pc.cache, pc.repos)
	return pc.render(c, "home", "Home", viewmodel.Layout{
		Stats:        stats,
		ReferralCode: c.Query("ref"),
	})
}

// HandleAbout GET /about
func (pc *PageController) HandleAbout(c *fiber.Ctx) error {
	return pc.render(c, "about", "About", viewmodel.Layout{})
}

// HandleServices GET /services
func (pc *PageController) HandleServices(c *fiber.Ctx) error {
	return pc.render(c, "services", "Services", viewmodel.Layout{})
}

// HandleFAQ GET /faq
func (pc *PageController) HandleFAQ(c *fiber.Ctx) error {
	return pc.render(c, "faq", "FAQ", viewmodel.Layout{})
}

// HandleContact GET /contact
func (pc *PageController) HandleContact(c *fiber.Ctx) error {
	return pc.render(c, "contact", "Contact", viewmodel.Layout{ReferralCode: c.Query("ref")})
}

// HandleContactSubmit POST /contact
func (pc *PageController) HandleContactSubmit(c *fiber.Ctx) error {
	var in referral.PublicInput
	if err := c.BodyParser(&in); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Your request could not be read. Please try again.",
		}
		return flash.WithError(c, fm).Redirect(constants.ContactRoute, fiber.StatusSeeOther)
	}

	_, err := pc.referrals.SubmitPublic(c.UserContext(), usercontext.GetUserContext(c), in, requestMeta(c))
	if err != nil {
		message := "Something went wrong. Please try again later."
		if apperror.KindOf(err) == apperror.KindValidation {
			message = apperror.MessageOf(err)
		}
		fm := fiber.Map{
			"type":    "error",
			"message": message,
		}
		return flash.WithError(c, fm).Redirect(constants.ContactRoute, fiber.StatusSeeOther)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Thank you! We will get back to you shortly.",
	}
	return flash.WithSuccess(c, fm).Redirect(constants.ContactRoute, fiber.StatusSeeOther)
}
