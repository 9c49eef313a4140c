package statistics

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LeadFox/app/repository"
)

const (
	CacheKeyPartnersActive = "statistics:partners:active"
	CacheKeyLeadsTotal     = "statistics:leads:total"
	CacheExpiration        = 30 * time.Minute
)

// Cache is the key/value store the public figures are kept in.
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
}

// PublicStats are the figures shown on the marketing home page
type PublicStats struct {
	ActivePartners int
	TotalLeads     int
}

// GetPublicStats returns the home page figures from cache or database.
// Failures degrade to zero; the home page never fails because of them.
func GetPublicStats(ctx context.Context, c Cache, repos *repository.Repositories) PublicStats {
	return PublicStats{
		ActivePartners: cachedCount(c, CacheKeyPartnersActive, func() (int64, error) {
			return repos.ChannelPartner.CountActive(ctx)
		}),
		TotalLeads: cachedCount(c, CacheKeyLeadsTotal, func() (int64, error) {
			return repos.Submission.Count(ctx)
		}),
	}
}

func cachedCount(c Cache, key string, load func() (int64, error)) int {
	if c != nil {
		if val, err := c.Get(key); err == nil {
			if count, err := strconv.Atoi(val); err == nil {
				return count
			}
		}
	}

	count, err := load()
	if err != nil {
		log.Warnf("Error counting %s: %v", key, err)
		return 0
	}

	if c != nil {
		if err := c.Set(key, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Warnf("Error caching %s: %v", key, err)
		}
	}
	return int(count)
}
