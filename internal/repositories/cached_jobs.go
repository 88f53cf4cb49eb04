package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/jobscout/jobscout/internal/domain/models"
	gocache "github.com/patrickmn/go-cache"
)

type jobStore interface {
	Upsert(ctx context.Context, jobs []models.Job) (int, error)
	Search(ctx context.Context, filter JobFilter, limit int) ([]models.Job, error)
	ByID(ctx context.Context, id int) (*models.Job, error)
	ByDomain(ctx context.Context, domain string, limit int) ([]models.Job, error)
	Recent(ctx context.Context, limit int) ([]models.Job, error)
	Stats(ctx context.Context) (models.JobStats, error)
}

// CachedJobs caches the hot read paths (recent listing, stats) for a short
// TTL. Any upsert flushes the cache so readers never see stale counts for
// long.
type CachedJobs struct {
	store jobStore
	cache *gocache.Cache
}

func NewCachedJobs(store jobStore) *CachedJobs {
	return &CachedJobs{store: store, cache: gocache.New(time.Minute, 5*time.Minute)}
}

func (c *CachedJobs) Upsert(ctx context.Context, jobs []models.Job) (int, error) {
	inserted, err := c.store.Upsert(ctx, jobs)
	if err == nil {
		c.cache.Flush()
	}
	return inserted, err
}

func (c *CachedJobs) Search(ctx context.Context, filter JobFilter, limit int) ([]models.Job, error) {
	return c.store.Search(ctx, filter, limit)
}

func (c *CachedJobs) ByID(ctx context.Context, id int) (*models.Job, error) {
	return c.store.ByID(ctx, id)
}

func (c *CachedJobs) ByDomain(ctx context.Context, domain string, limit int) ([]models.Job, error) {
	return c.store.ByDomain(ctx, domain, limit)
}

func (c *CachedJobs) Recent(ctx context.Context, limit int) ([]models.Job, error) {

	cacheID := "recent:" + strconv.Itoa(limit)
	if value, found := c.cache.Get(cacheID); found {
		return value.([]models.Job), nil
	}

	jobs, err := c.store.Recent(ctx, limit)
	if err == nil {
		c.cache.SetDefault(cacheID, jobs)
	}
	return jobs, err
}

func (c *CachedJobs) Stats(ctx context.Context) (models.JobStats, error) {

	if value, found := c.cache.Get("stats"); found {
		return value.(models.JobStats), nil
	}

	stats, err := c.store.Stats(ctx)
	if err == nil {
		c.cache.SetDefault("stats", stats)
	}
	return stats, err
}
