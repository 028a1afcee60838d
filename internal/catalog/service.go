// Package catalog serves product browsing. Categories and featured products
// change rarely and are cached in Redis; everything else goes to the gateway.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/pagination"
	"github.com/angelmondragon/chieftain/pkg/redis"
)

const (
	categoriesCacheKey = "categories"
	featuredCacheKey   = "featured_products"
)

type Service struct {
	gw    gateway.Public
	cache redis.Cache
	ttl   time.Duration
	logg  *logger.Logger
}

// NewService builds the catalog. A nil cache disables caching.
func NewService(gw gateway.Public, cache redis.Cache, ttl time.Duration, logg *logger.Logger) (*Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{gw: gw, cache: cache, ttl: ttl, logg: logg}, nil
}

func (s *Service) List(ctx context.Context, filter ProductFilter, page pagination.Params) (gateway.ProductPage, error) {
	if err := filter.Validate(); err != nil {
		return gateway.ProductPage{}, err
	}
	if err := page.Validate(); err != nil {
		return gateway.ProductPage{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	return s.gw.ListProducts(ctx, filter.query(page, ""))
}

// Search runs a text query with the same filters as List.
func (s *Service) Search(ctx context.Context, query string, filter ProductFilter, page pagination.Params) (gateway.ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return gateway.ProductPage{}, pkgerrors.New(pkgerrors.CodeValidation, "search query is required").
			WithDetails(map[string]string{"q": "is required"})
	}
	if err := filter.Validate(); err != nil {
		return gateway.ProductPage{}, err
	}
	if err := page.Validate(); err != nil {
		return gateway.ProductPage{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	return s.gw.SearchProducts(ctx, filter.query(page, query))
}

func (s *Service) Get(ctx context.Context, id string) (gateway.Product, error) {
	if strings.TrimSpace(id) == "" {
		return gateway.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.gw.GetProduct(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]gateway.Category, error) {
	return readThrough(ctx, s, categoriesCacheKey, s.gw.ListCategories)
}

func (s *Service) Featured(ctx context.Context) ([]gateway.Product, error) {
	return readThrough(ctx, s, featuredCacheKey, s.gw.FeaturedProducts)
}

// readThrough serves name from the cache, filling it from load on a miss.
// Cache failures are logged and fall through to the gateway.
func readThrough[T any](ctx context.Context, s *Service, name string, load func(context.Context) (T, error)) (T, error) {
	if s.cache != nil {
		var hit T
		err := s.cache.GetJSON(ctx, name, &hit)
		if err == nil {
			return hit, nil
		}
		if !errors.Is(err, redis.ErrNotFound) {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cache_key": name, "error": err.Error()}), "catalog cache read failed")
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, name, value, s.ttl); err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cache_key": name, "error": err.Error()}), "catalog cache write failed")
		}
	}
	return value, nil
}
