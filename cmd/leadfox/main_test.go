package main

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/LeadFox/app/controllers"
	"github.com/ManuelReschke/LeadFox/internal/pkg/env"
)

func clientIPOf(t *testing.T, cfg fiber.Config, headers map[string]string) string {
	t.Helper()
	app := fiber.New(cfg)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(controllers.GetClientIP(c))
	})

	req := httptest.NewRequest("GET", "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestClientIPIgnoresForwardingHeadersWithoutTrustedProxy(t *testing.T) {
	base := clientIPOf(t, withProxy(fiber.Config{}, env.ProxyConfig{Header: fiber.HeaderXForwardedFor}), nil)

	spoofed := clientIPOf(t, withProxy(fiber.Config{}, env.ProxyConfig{Header: fiber.HeaderXForwardedFor}), map[string]string{
		fiber.HeaderXForwardedFor: "203.0.113.9",
		"CF-Connecting-IP":        "198.51.100.1",
		"X-Real-IP":               "198.51.100.2",
	})
	assert.Equal(t, base, spoofed)
}

func TestClientIPFromTrustedProxy(t *testing.T) {
	cfg := withProxy(fiber.Config{}, env.ProxyConfig{
		TrustedProxies: []string{"0.0.0.0/0", "::/0"},
		Header:         fiber.HeaderXForwardedFor,
	})
	assert.True(t, cfg.EnableTrustedProxyCheck)
	assert.Equal(t, fiber.HeaderXForwardedFor, cfg.ProxyHeader)

	got := clientIPOf(t, cfg, map[string]string{fiber.HeaderXForwardedFor: "203.0.113.9, 10.0.0.1"})
	assert.Equal(t, "203.0.113.9", got)
}
