package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/middleware"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

// AuthSessionController exchanges a hosted-auth token for a session cookie
type AuthSessionController struct {
	verifier middleware.TokenVerifier
	users    repository.PartnerUserRepository
	store    *fibersession.Store
	now      func() time.Time
}

func NewAuthSessionController(verifier middleware.TokenVerifier, users repository.PartnerUserRepository, store *fibersession.Store) *AuthSessionController {
	return &AuthSessionController{verifier: verifier, users: users, store: store, now: time.Now}
}

type sessionRequest struct {
	AccessToken string `json:"access_token" form:"access_token"`
}

// HandleLogin POST /api/v1/auth/session
func (ac *AuthSessionController) HandleLogin(c *fiber.Ctx) error {
	var req sessionRequest
	if err := c.BodyParser(&req); err != nil || req.AccessToken == "" {
		return badRequest(c, "access_token is required")
	}
	if ac.verifier == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "authentication is not configured"})
	}

	id, err := ac.verifier.Verify(req.AccessToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid access token"})
	}

	sess, err := ac.store.Get(c)
	if err != nil {
		log.Errorw("session load failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create session"})
	}
	if err := sess.Regenerate(); err != nil {
		log.Errorw("session regenerate failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create session"})
	}
	sess.Set(usercontext.KeyAccessToken, req.AccessToken)
	if err := sess.Save(); err != nil {
		log.Errorw("session save failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create session"})
	}

	if err := ac.users.TouchLastLogin(c.UserContext(), id.UserID, ac.now()); err != nil {
		log.Warnw("last login update failed", "user_id", id.UserID, "error", err)
	}

	log.Infow("session created", "user_id", id.UserID)
	return c.JSON(fiber.Map{"user_id": id.UserID, "email": id.Email})
}

// HandleLogout DELETE /api/v1/auth/session
func (ac *AuthSessionController) HandleLogout(c *fiber.Ctx) error {
	sess, err := ac.store.Get(c)
	if err == nil {
		err = sess.Destroy()
	}
	if err != nil {
		log.Errorw("session destroy failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to end session"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
