package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LeadFox/internal/pkg/statistics"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

// DashboardController serves the admin aggregation endpoints
type DashboardController struct {
	stats *statistics.Service
}

func NewDashboardController(stats *statistics.Service) *DashboardController {
	return &DashboardController{stats: stats}
}

// HandleDashboard GET /api/v1/admin/dashboard
func (dc *DashboardController) HandleDashboard(c *fiber.Ctx) error {
	summary, err := dc.stats.Dashboard(c.UserContext(), usercontext.GetUserContext(c))
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{"data": summary})
}

// HandleUsers GET /api/v1/admin/users
func (dc *DashboardController) HandleUsers(c *fiber.Ctx) error {
	users, err := dc.stats.UsersWithSubmissions(c.UserContext(), usercontext.GetUserContext(c))
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// HandleUserDetail GET /api/v1/admin/users/:id
func (dc *DashboardController) HandleUserDetail(c *fiber.Ctx) error {
	user, err := dc.stats.UserDetail(c.UserContext(), usercontext.GetUserContext(c), c.Params("id"))
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}
