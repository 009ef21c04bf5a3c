package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type memCacheRepo struct {
	mu        sync.Mutex
	items     map[string][]byte
	getErr    error
	deleteErr error
	prefixes  []string
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{items: make(map[string][]byte)}
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memCacheRepo) DeleteByPrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefixes = append(m.prefixes, prefix)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

func (m *memCacheRepo) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

// newTestCache wires a real CacheService and Invalidator over an in-memory store.
func newTestCache() (*CacheService, *Invalidator, *memCacheRepo) {
	repo := newMemCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	return cache, NewInvalidator(cache, zap.NewNop()), repo
}

func TestRememberServesSecondReadFromCache(t *testing.T) {
	cache, _, _ := newTestCache()
	calls := 0
	load := func(ctx context.Context) (Page[models.Student], error) {
		calls++
		return Page[models.Student]{Items: []models.Student{{ID: "s1", Name: "Abdullah"}}, Total: 1}, nil
	}
	key := Key(ScopeStudents, "list", models.StudentFilter{ClassName: "3"})

	first, hit, err := Remember(context.Background(), cache, key, 0, load)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := Remember(context.Background(), cache, key, 0, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestRememberFallsThroughWhenCacheFails(t *testing.T) {
	cache, _, repo := newTestCache()
	repo.getErr = errors.New("connection refused")
	calls := 0
	load := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 2; i++ {
		v, hit, err := Remember(context.Background(), cache, "students:x", 0, load)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 2, calls)
}

func TestRememberDoesNotCacheLoadErrors(t *testing.T) {
	cache, _, repo := newTestCache()
	_, _, err := Remember(context.Background(), cache, "staff:x", 0, func(ctx context.Context) ([]int, error) {
		return nil, errors.New("db down")
	})
	require.Error(t, err)
	assert.False(t, repo.has("staff:x"))
}

func TestRememberWithDisabledCacheAlwaysLoads(t *testing.T) {
	cache := NewCacheService(newMemCacheRepo(), nil, 0, nil, false)
	calls := 0
	for i := 0; i < 3; i++ {
		_, hit, err := Remember(context.Background(), cache, "k", 0, func(ctx context.Context) (string, error) {
			calls++
			return "v", nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 3, calls)

	var nilCache *CacheService
	_, hit, err := Remember(context.Background(), nilCache, "k", 0, func(ctx context.Context) (string, error) { return "v", nil })
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestKeyIsScopedAndDeterministic(t *testing.T) {
	a := Key(ScopeExpenses, "list", models.ExpenseFilter{Category: models.ExpenseBazar})
	b := Key(ScopeExpenses, "list", models.ExpenseFilter{Category: models.ExpenseBazar})
	c := Key(ScopeExpenses, "list", models.ExpenseFilter{Category: models.ExpenseRent})

	assert.True(t, strings.HasPrefix(a, "expenses:"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCacheServiceRecordsLookups(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(newMemCacheRepo(), metrics, time.Minute, zap.NewNop(), true)

	var out string
	hit, err := cache.Get(context.Background(), "notices:a", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, cache.Set(context.Background(), "notices:a", "x", 0))
	hit, err = cache.Get(context.Background(), "notices:a", &out)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}
