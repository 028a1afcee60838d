package catalog

import (
	"bytes"
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/chieftain/pkg/enums"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/gateway/memory"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/pagination"
	"github.com/angelmondragon/chieftain/pkg/redis"
	"github.com/angelmondragon/chieftain/pkg/security"
)

var lightCost = security.Cost{MemoryKiB: 8 * 1024, Passes: 1, Threads: 1}

type fixture struct {
	gw   *memory.Gateway
	mr   *miniredis.Miniredis
	rc   *redis.Client
	logs *bytes.Buffer
	svc  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g, err := memory.NewDefault(memory.Options{Secret: "test-secret", PasswordCost: lightCost})
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	rc := redis.Wrap(raw)

	logs := &bytes.Buffer{}
	svc, err := NewService(g, rc, 5*time.Minute, logger.New(logger.Options{ServiceName: "catalog-test", Output: logs}))
	require.NoError(t, err)
	return &fixture{gw: g, mr: mr, rc: rc, logs: logs, svc: svc}
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestFilterValidate(t *testing.T) {
	tests := []struct {
		name   string
		filter ProductFilter
		field  string
	}{
		{name: "negative min", filter: ProductFilter{MinPrice: dec("-1")}, field: "minPrice"},
		{name: "negative max", filter: ProductFilter{MaxPrice: dec("-5")}, field: "maxPrice"},
		{name: "inverted bounds", filter: ProductFilter{MinPrice: dec("500"), MaxPrice: dec("100")}, field: "minPrice"},
		{name: "unknown condition", filter: ProductFilter{Conditions: []enums.ProductCondition{"BROKEN"}}, field: "conditions"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
			details := pkgerrors.As(err).Details().(map[string]string)
			assert.Contains(t, details, tc.field)
		})
	}

	ok := ProductFilter{MinPrice: dec("0"), MaxPrice: dec("0"), Conditions: []enums.ProductCondition{enums.ProductConditionNew}}
	assert.NoError(t, ok.Validate())
}

func TestFilterFromQuery(t *testing.T) {
	values := url.Values{
		"category":  {"laptops,memory"},
		"brand":     {"Lenovo", " HP "},
		"condition": {"refurbished"},
		"minPrice":  {"1000"},
		"maxPrice":  {"60000"},
	}
	f, err := FilterFromQuery(values)
	require.NoError(t, err)
	assert.Equal(t, []string{"laptops", "memory"}, f.Categories)
	assert.Equal(t, []string{"Lenovo", "HP"}, f.Brands)
	assert.Equal(t, []enums.ProductCondition{enums.ProductConditionRefurbished}, f.Conditions)
	assert.True(t, decimal.NewFromInt(1000).Equal(*f.MinPrice))
	assert.True(t, decimal.NewFromInt(60000).Equal(*f.MaxPrice))

	_, err = FilterFromQuery(url.Values{"minPrice": {"cheap"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = FilterFromQuery(url.Values{"minPrice": {"10"}, "maxPrice": {"5"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPageFromQuery(t *testing.T) {
	p, err := PageFromQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, pagination.Default(), p)

	p, err = PageFromQuery(url.Values{"page": {"2"}, "size": {"5"}, "sortBy": {"price"}, "sortDir": {"desc"}})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, enums.SortDirectionDesc, p.Direction)

	_, err = PageFromQuery(url.Values{"size": {"500"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = PageFromQuery(url.Values{"sortBy": {"stock"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListAppliesFilter(t *testing.T) {
	f := newFixture(t)
	page, err := f.svc.List(context.Background(), ProductFilter{Categories: []string{"laptops"}}, pagination.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	for _, p := range page.Products {
		assert.Equal(t, "laptops", p.Category.ID)
	}

	page, err = f.svc.List(context.Background(), ProductFilter{MaxPrice: dec("5000")}, pagination.Params{Page: 1, Size: 1, SortBy: "price", Direction: enums.SortDirectionAsc})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "prod-charger-65w", page.Products[0].ID)
}

func TestListRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), ProductFilter{MinPrice: dec("-1")}, pagination.Default())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = f.svc.List(context.Background(), ProductFilter{}, pagination.Params{Page: 0, Size: 10})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Search(context.Background(), "  ", ProductFilter{}, pagination.Default())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	page, err := f.svc.Search(context.Background(), "thinkpad", ProductFilter{}, pagination.Default())
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "prod-thinkpad-t480", page.Products[0].ID)
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Get(context.Background(), "prod-ssd-512")
	require.NoError(t, err)
	assert.True(t, p.InStock())

	_, err = f.svc.Get(context.Background(), "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCategoriesAreCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 4)
	assert.True(t, f.mr.Exists(f.rc.CacheKey(categoriesCacheKey)))

	f.gw.InjectFault("list_categories", pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable"))
	second, err := f.svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFeaturedCacheExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	featured, err := f.svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 3)

	f.mr.FastForward(6 * time.Minute)
	f.gw.InjectFault("featured_products", pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable"))
	_, err = f.svc.Featured(ctx)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCachedPricesSurviveRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	live, err := f.svc.Featured(ctx)
	require.NoError(t, err)
	cached, err := f.svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, cached, len(live))
	for i := range live {
		assert.True(t, live[i].Price.Equal(cached[i].Price))
	}
}

func TestCorruptCacheFallsBackToGateway(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mr.Set(f.rc.CacheKey(categoriesCacheKey), "not json"))

	cats, err := f.svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 4)
	assert.Contains(t, f.logs.String(), "catalog cache read failed")
}

func TestNilCacheDisablesCaching(t *testing.T) {
	g, err := memory.NewDefault(memory.Options{Secret: "test-secret", PasswordCost: lightCost})
	require.NoError(t, err)
	svc, err := NewService(g, nil, time.Minute, logger.New(logger.Options{Output: &bytes.Buffer{}}))
	require.NoError(t, err)

	_, err = svc.Categories(context.Background())
	require.NoError(t, err)
	g.InjectFault("list_categories", pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable"))
	_, err = svc.Categories(context.Background())
	assert.Error(t, err)
}
