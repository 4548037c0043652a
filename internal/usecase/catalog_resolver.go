package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stockboard/backend/internal/domain"
	"go.uber.org/zap"
)

// BarcodeLookup is the remote read used by the resolver
type BarcodeLookup interface {
	GetByBarcode(ctx context.Context, barcode string) (*domain.ProductRecord, error)
}

// CatalogResolverConfig holds configuration for the catalog resolver
type CatalogResolverConfig struct {
	// CacheTTL bounds how long a resolved record is reused. Zero disables caching.
	CacheTTL time.Duration
}

// CatalogResolver resolves a barcode to a product record
type CatalogResolver struct {
	cache    domain.CacheRepository
	store    BarcodeLookup
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogResolver creates a resolver. cache may be nil.
func NewCatalogResolver(
	cache domain.CacheRepository,
	store BarcodeLookup,
	config CatalogResolverConfig,
	logger *zap.Logger,
) *CatalogResolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CatalogResolver{
		cache:    cache,
		store:    store,
		cacheTTL: config.CacheTTL,
		logger:   logger.Named("resolver"),
	}
}

// Resolve looks up the record for identifier.
// Flow: reject empty -> check cache -> query store -> cache -> return
func (r *CatalogResolver) Resolve(ctx context.Context, identifier string) (*domain.ProductRecord, error) {
	if identifier == "" {
		return nil, domain.ErrEmptyIdentifier
	}

	key := cacheKey(identifier)
	if cached, err := r.getFromCache(ctx, key); err == nil {
		r.logger.Debug("cache hit", zap.String("barcode", identifier))
		return cached, nil
	}

	product, err := r.store.GetByBarcode(ctx, identifier)
	if err != nil {
		r.logger.Info("lookup failed",
			zap.String("barcode", identifier),
			zap.String("kind", domain.KindOf(err)),
			zap.Error(err))
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: empty body for %q", domain.ErrMalformedResponse, identifier)
	}

	if err := r.setInCache(ctx, key, product); err != nil {
		// caching is best effort
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}

	r.logger.Info("resolved", zap.String("barcode", identifier), zap.String("id", product.ID))
	return product, nil
}

// cacheKey format: "catalog:barcode:{identifier}"
func cacheKey(identifier string) string {
	return "catalog:barcode:" + identifier
}

func (r *CatalogResolver) getFromCache(ctx context.Context, key string) (*domain.ProductRecord, error) {
	if r.cache == nil || r.cacheTTL <= 0 {
		return nil, domain.ErrCacheMiss
	}

	data, err := r.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var product domain.ProductRecord
	if err := json.Unmarshal(data, &product); err != nil || product.ID == "" {
		_ = r.cache.Delete(ctx, key)
		return nil, errors.Join(domain.ErrCacheMiss, err)
	}
	return &product, nil
}

func (r *CatalogResolver) setInCache(ctx context.Context, key string, product *domain.ProductRecord) error {
	if r.cache == nil || r.cacheTTL <= 0 {
		return nil
	}

	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, key, data, r.cacheTTL)
}
