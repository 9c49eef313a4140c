package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/referral"
)

// GetClientIP returns the client address. Forwarding headers count only when
// the app is configured with a ProxyHeader and the peer is a trusted proxy.
func GetClientIP(c *fiber.Ctx) string {
	return strings.TrimPrefix(c.IP(), "::ffff:")
}

// requestMeta captures the provenance stored with a submission
func requestMeta(c *fiber.Ctx) referral.RequestMeta {
	return referral.RequestMeta{
		IPAddress: GetClientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

// statusForKind maps an error kind to its HTTP status
func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindInvalidState, apperror.KindCapacityExceeded, apperror.KindInsufficientFunds:
		return fiber.StatusConflict
	case apperror.KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the {error, details?} envelope. Details carry the
// underlying cause and are only written for admin endpoints.
func respondError(c *fiber.Ctx, err error, withDetails bool) error {
	kind := apperror.KindOf(err)
	status := statusForKind(kind)
	if status == fiber.StatusInternalServerError {
		log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	body := fiber.Map{"error": apperror.MessageOf(err)}
	if withDetails {
		if details := apperror.DetailsOf(err); details != "" {
			body["details"] = details
		}
	}
	return c.Status(status).JSON(body)
}

// adminError writes the error envelope including details
func adminError(c *fiber.Ctx, err error) error {
	return respondError(c, err, true)
}

// publicError writes the error envelope without details
func publicError(c *fiber.Ctx, err error) error {
	return respondError(c, err, false)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// paramUint parses a positive numeric route parameter
func paramUint(c *fiber.Ctx, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
