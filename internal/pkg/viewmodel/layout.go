package viewmodel

import "github.com/gofiber/fiber/v2"

// OpenGraph holds the social preview tags of a page
type OpenGraph struct {
	Title       string
	Description string
	URL         string
	Image       string
}

// Layout is the data every marketing page template receives
type Layout struct {
	Page         string
	Title        string
	IsLoggedIn   bool
	IsAdmin      bool
	Msg          fiber.Map
	CSRFToken    string
	CaptchaKey   string
	Media        map[string]string
	Stats        any
	OGViewModel  *OpenGraph
	ReferralCode string
}

// Bind converts the layout into template bindings
func (l Layout) Bind() fiber.Map {
	return fiber.Map{
		"Page":         l.Page,
		"Title":        l.Title,
		"IsLoggedIn":   l.IsLoggedIn,
		"IsAdmin":      l.IsAdmin,
		"Msg":          l.Msg,
		"CSRFToken":    l.CSRFToken,
		"CaptchaKey":   l.CaptchaKey,
		"Media":        l.Media,
		"Stats":        l.Stats,
		"OG":           l.OGViewModel,
		"ReferralCode": l.ReferralCode,
	}
}
