package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LeadFox/internal/pkg/points"
	"github.com/ManuelReschke/LeadFox/internal/pkg/raffle"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

// RaffleController serves raffles and the caller's points balance
type RaffleController struct {
	raffles *raffle.Service
	ledger  *points.Ledger
}

func NewRaffleController(raffles *raffle.Service, ledger *points.Ledger) *RaffleController {
	return &RaffleController{raffles: raffles, ledger: ledger}
}

// HandleAdminList GET /api/v1/admin/raffles
func (rc *RaffleController) HandleAdminList(c *fiber.Ctx) error {
	raffles, err := rc.raffles.List(c.UserContext(), usercontext.GetUserContext(c))
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{"raffles": raffles})
}

// HandleAdminCreate POST /api/v1/admin/raffles
func (rc *RaffleController) HandleAdminCreate(c *fiber.Ctx) error {
	var in raffle.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	created, err := rc.raffles.Create(c.UserContext(), usercontext.GetUserContext(c), in)
	if err != nil {
		return adminError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"raffle": created})
}

// HandleActive GET /api/v1/raffles
func (rc *RaffleController) HandleActive(c *fiber.Ctx) error {
	raffles, err := rc.raffles.ListActive(c.UserContext(), usercontext.GetUserContext(c))
	if err != nil {
		return publicError(c, err)
	}
	return c.JSON(fiber.Map{"raffles": raffles})
}

// HandleEnter POST /api/v1/raffles/:id/enter
func (rc *RaffleController) HandleEnter(c *fiber.Ctx) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return badRequest(c, "invalid raffle id")
	}

	result, err := rc.raffles.Enter(c.UserContext(), usercontext.GetUserContext(c), id)
	if err != nil {
		return publicError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandlePoints GET /api/v1/points
func (rc *RaffleController) HandlePoints(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	balance, err := rc.ledger.Balance(c.UserContext(), user.UserID)
	if err != nil {
		return publicError(c, err)
	}
	return c.JSON(fiber.Map{"user_id": user.UserID, "points": balance})
}
