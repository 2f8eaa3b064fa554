package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/doctrack-api/internal/models"
	appErrors "github.com/noah-isme/doctrack-api/pkg/errors"
)

const activeDirectoryKey = "directory:active"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheService caches the active user directory used for recipient listings.
// Forward always re-reads the directory from storage and never consults the cache.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// ActiveDirectory returns the cached directory, loading and storing it on a miss.
// Cache failures degrade to a direct load.
func (s *CacheService) ActiveDirectory(ctx context.Context, load func(context.Context) ([]models.User, error)) ([]models.User, error) {
	if !s.Enabled() {
		return load(ctx)
	}

	start := time.Now()
	var users []models.User
	err := s.repo.Get(ctx, activeDirectoryKey, &users)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err == nil {
		return users, nil
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("directory cache read failed", zap.Error(err))
	}

	users, err = load(ctx)
	if err != nil {
		return nil, err
	}
	start = time.Now()
	if err := s.repo.Set(ctx, activeDirectoryKey, users, s.ttl); err != nil {
		s.logger.Warn("directory cache write failed", zap.Error(err))
	}
	s.metrics.ObserveCacheWrite(time.Since(start))
	return users, nil
}

// InvalidateDirectory drops the cached directory.
func (s *CacheService) InvalidateDirectory(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.Delete(ctx, activeDirectoryKey); err != nil {
		s.logger.Warn("directory cache invalidate failed", zap.Error(err))
		return err
	}
	return nil
}
