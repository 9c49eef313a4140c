package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LeadFox/internal/pkg/assets"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

// SiteMediaController manages marketing asset URLs
type SiteMediaController struct {
	media *assets.MediaService
}

func NewSiteMediaController(media *assets.MediaService) *SiteMediaController {
	return &SiteMediaController{media: media}
}

type siteMediaRequest struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// HandleList GET /api/v1/admin/site-media
func (sc *SiteMediaController) HandleList(c *fiber.Ctx) error {
	media, err := sc.media.List(c.UserContext(), usercontext.GetUserContext(c))
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{"data": media})
}

// HandleUpsert POST /api/v1/admin/site-media
func (sc *SiteMediaController) HandleUpsert(c *fiber.Ctx) error {
	var req siteMediaRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	saved, err := sc.media.Upsert(c.UserContext(), usercontext.GetUserContext(c), req.Key, req.URL)
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{"data": saved})
}

// HandleUpload POST /api/v1/admin/site-media/upload (multipart: key, file)
func (sc *SiteMediaController) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	f, err := file.Open()
	if err != nil {
		return badRequest(c, "failed to read file")
	}
	defer f.Close()

	saved, err := sc.media.Upload(c.UserContext(), usercontext.GetUserContext(c), c.FormValue("key"), file.Filename, f)
	if err != nil {
		return adminError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": saved})
}
