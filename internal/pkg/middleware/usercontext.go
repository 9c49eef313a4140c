package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/identity"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

// TokenVerifier verifies hosted-auth access tokens
type TokenVerifier interface {
	Verify(token string) (*identity.Identity, error)
}

// UserContextConfig wires the user context middleware
type UserContextConfig struct {
	Verifier     TokenVerifier
	PartnerUsers repository.PartnerUserRepository
	// Sessions is optional; without it only bearer tokens are accepted.
	Sessions *fibersession.Store
}

// UserContextMiddleware resolves the caller for every request. The bearer token
// wins over the session cookie. Invalid or unknown credentials leave the
// request anonymous; the role gates further down answer 401 or 403. A failed
// role lookup keeps public routes working and is reported by RequireAdmin.
func UserContextMiddleware(cfg UserContextConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, usercontext.Anonymous)

		token := bearerToken(c)
		if token == "" && cfg.Sessions != nil {
			if sess, err := cfg.Sessions.Get(c); err == nil {
				if v, ok := sess.Get(usercontext.KeyAccessToken).(string); ok {
					token = v
				}
			}
		}
		if token == "" || cfg.Verifier == nil {
			return c.Next()
		}

		id, err := cfg.Verifier.Verify(token)
		if err != nil {
			log.Debugw("access token rejected", "error", err)
			return c.Next()
		}

		userCtx := usercontext.UserContext{
			UserID:     id.UserID,
			Email:      id.Email,
			IsLoggedIn: true,
		}

		pu, err := cfg.PartnerUsers.GetByUserID(c.UserContext(), id.UserID)
		switch {
		case err == nil:
			userCtx.Role = pu.Role
			userCtx.PartnerID = pu.PartnerID
			userCtx.IsAdmin = pu.IsAdmin()
		case errors.Is(err, gorm.ErrRecordNotFound):
			// authenticated, but without any role in the program
		default:
			log.Errorw("partner user lookup failed", "user_id", id.UserID, "error", err)
			userCtx.RoleUnresolved = true
		}

		usercontext.SetUserContext(c, userCtx)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
