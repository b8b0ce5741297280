package companies

import (
	"context"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/pkg/logger"
	"github.com/wonny/ainavigator/backend/pkg/redis"
)

// CachedRepository serves GetByID from Redis and invalidates on Upsert
type CachedRepository struct {
	next   contracts.CompanyRepository
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCachedRepository wraps a company repository with a read-through cache
func NewCachedRepository(next contracts.CompanyRepository, cache *redis.Cache, log *logger.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: cache, logger: log}
}

var _ contracts.CompanyRepository = (*CachedRepository)(nil)

// GetByID reads through the cache. Misses are not cached.
func (r *CachedRepository) GetByID(ctx context.Context, id string) (*contracts.Company, error) {
	var c contracts.Company
	err := r.cache.GetOrSet(ctx, redis.CompanyKey(id), &c, redis.TTLMedium, func() (interface{}, error) {
		return r.next.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert writes through and drops the cached entry
func (r *CachedRepository) Upsert(ctx context.Context, c *contracts.Company) error {
	if err := r.next.Upsert(ctx, c); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, redis.CompanyKey(c.ID)); err != nil {
		r.logger.WithError(err).WithCompany(c.ID).Warn("Failed to invalidate company cache")
	}
	return nil
}
