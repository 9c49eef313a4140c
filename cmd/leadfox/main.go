package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/assets"
	"github.com/ManuelReschke/LeadFox/internal/pkg/cache"
	"github.com/ManuelReschke/LeadFox/internal/pkg/constants"
	"github.com/ManuelReschke/LeadFox/internal/pkg/database"
	"github.com/ManuelReschke/LeadFox/internal/pkg/env"
	"github.com/ManuelReschke/LeadFox/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/LeadFox/internal/pkg/identity"
	"github.com/ManuelReschke/LeadFox/internal/pkg/jobqueue"
	"github.com/ManuelReschke/LeadFox/internal/pkg/mail"
	"github.com/ManuelReschke/LeadFox/internal/pkg/middleware"
	"github.com/ManuelReschke/LeadFox/internal/pkg/points"
	"github.com/ManuelReschke/LeadFox/internal/pkg/raffle"
	"github.com/ManuelReschke/LeadFox/internal/pkg/ratelimit"
	"github.com/ManuelReschke/LeadFox/internal/pkg/referral"
	"github.com/ManuelReschke/LeadFox/internal/pkg/router"
	"github.com/ManuelReschke/LeadFox/internal/pkg/session"
	"github.com/ManuelReschke/LeadFox/internal/pkg/statistics"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	cfg, err := env.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	database.SetupDatabase()
	cache.SetupCache()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/leadfox to project root
		"../../../", // Fallback
	}

	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	app := fiber.New(withProxy(fiber.Config{
		Views:     html.New(basePath+"views", ".html"),
		BodyLimit: 20 * 1024 * 1024, // site media uploads
	}, cfg.Proxy))

	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/assets/icons/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))

	app.Use(recover.New(), logger.New())

	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "change-me"),
		},
	}), monitor.New())

	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	app.Use(swagger.New(swagger.Config{
		BasePath: constants.DocsRoute + "/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	router.InstallRouter(app, buildDependencies(cfg))

	return app
}

// withProxy makes c.IP() read the forwarding header, only for requests from a
// configured proxy. Without TRUSTED_PROXIES the socket address is used.
func withProxy(cfg fiber.Config, proxy env.ProxyConfig) fiber.Config {
	if len(proxy.TrustedProxies) == 0 {
		return cfg
	}
	cfg.ProxyHeader = proxy.Header
	cfg.EnableTrustedProxyCheck = true
	cfg.TrustedProxies = proxy.TrustedProxies
	cfg.EnableIPValidation = true
	return cfg
}

func buildDependencies(cfg *env.Config) router.Dependencies {
	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	var redisClient redis.Cmdable
	var statsCache statistics.Cache
	if cache.Available() {
		redisClient = cache.GetClient()
		statsCache = cache.Store{}
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit, redisClient)
		if mem, ok := limiter.(*ratelimit.MemoryLimiter); ok {
			fiberlog.Warn("rate limiting is per process, configure Redis to share it across instances")
			mem.StartSweeper(context.Background(), cfg.RateLimit.Window)
		}
	}

	referralOpts := []referral.Option{}
	if captcha := hcaptcha.NewFromEnv(); captcha != nil {
		referralOpts = append(referralOpts, referral.WithCaptcha(captcha))
	}
	if notifier := mail.NewLeadNotifier(mail.NewMailer(cfg.Mail, nil), cfg.Mail.LeadNotify); notifier != nil {
		if redisClient != nil {
			queue := jobqueue.NewQueue(redisClient, cfg.Mail.QueueWorkers)
			jobqueue.RegisterLeadNotifications(queue, notifier)
			queue.Start()
			referralOpts = append(referralOpts, referral.WithNotifier(jobqueue.NewLeadNotifier(queue)))
		} else {
			referralOpts = append(referralOpts, referral.WithNotifier(notifier))
		}
	}

	var store assets.ObjectStore
	if cfg.Assets.Enabled {
		s3Client, err := assets.NewS3Client(context.Background(), cfg.Assets)
		if err != nil {
			fiberlog.Errorf("site media uploads disabled: %v", err)
		} else {
			store = s3Client
		}
	}

	var verifier middleware.TokenVerifier
	if cfg.Identity.JWTSecret != "" {
		verifier = identity.NewVerifier(cfg.Identity.JWTSecret, cfg.Identity.JWTIssuer, cfg.Identity.JWTAudience, nil)
	} else {
		fiberlog.Warn("IDENTITY_JWT_SECRET is not set, all requests are anonymous")
	}
	directory := identity.NewHTTPDirectory(cfg.Identity.BaseURL, cfg.Identity.ServiceKey, cfg.Identity.LookupTimeout)

	return router.Dependencies{
		Repos:      repos,
		Verifier:   verifier,
		Sessions:   session.NewSessionStore(),
		Limiter:    limiter,
		Referrals:  referral.NewService(repos, referralOpts...),
		Raffles:    raffle.NewService(repos),
		Ledger:     points.NewLedger(repos.PartnerUser),
		Statistics: statistics.NewService(repos, identity.NewResolver(directory, cfg.Identity.LookupWorkers)),
		Media:      assets.NewMediaService(repos.SiteMedia, store, cfg.Assets.MaxWidth),
		Cache:      statsCache,
		CaptchaKey: env.GetEnv("HCAPTCHA_SITEKEY", ""),
	}
}
