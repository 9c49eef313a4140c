package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LeadFox/internal/pkg/referral"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

// ReferralController handles lead intake and the submission workflow
type ReferralController struct {
	service *referral.Service
}

func NewReferralController(service *referral.Service) *ReferralController {
	return &ReferralController{service: service}
}

// HandleSubmit stores a public web lead.
// POST /api/v1/referrals
func (rc *ReferralController) HandleSubmit(c *fiber.Ctx) error {
	var in referral.PublicInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := rc.service.SubmitPublic(c.UserContext(), usercontext.GetUserContext(c), in, requestMeta(c))
	if err != nil {
		return publicError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// HandleAdminCreate stores an admin-entered lead and awards points.
// POST /api/v1/admin/submissions
func (rc *ReferralController) HandleAdminCreate(c *fiber.Ctx) error {
	var in referral.AdminInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	submission, err := rc.service.SubmitAsAdmin(c.UserContext(), usercontext.GetUserContext(c), in, requestMeta(c))
	if err != nil {
		return adminError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": submission})
}

// HandleGet returns one submission with its partner.
// GET /api/v1/admin/submissions/:id
func (rc *ReferralController) HandleGet(c *fiber.Ctx) error {
	submission, err := rc.service.Get(c.UserContext(), usercontext.GetUserContext(c), c.Params("id"))
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{"data": submission})
}

// HandleUpdate runs the status workflow.
// PATCH /api/v1/admin/submissions/:id
func (rc *ReferralController) HandleUpdate(c *fiber.Ctx) error {
	var in referral.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	submission, err := rc.service.UpdateSubmission(c.UserContext(), usercontext.GetUserContext(c), c.Params("id"), in)
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{"data": submission})
}

// HandleList returns one page of submissions, scoped to the caller unless admin.
// GET /api/v1/admin/submissions?status=&limit=&offset=
func (rc *ReferralController) HandleList(c *fiber.Ctx) error {
	q := referral.ListQuery{
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}

	result, err := rc.service.List(c.UserContext(), usercontext.GetUserContext(c), q)
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(result)
}

// HandleMine returns the caller's own and own-partner submissions.
// GET /api/v1/submissions/mine
func (rc *ReferralController) HandleMine(c *fiber.Ctx) error {
	submissions, err := rc.service.Mine(c.UserContext(), usercontext.GetUserContext(c))
	if err != nil {
		return publicError(c, err)
	}
	return c.JSON(fiber.Map{"submissions": submissions})
}
