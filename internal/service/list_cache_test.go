package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classboard/classboard-api/internal/models"
	appErrors "github.com/classboard/classboard-api/pkg/errors"
)

type mockCacheStore struct {
	entries map[string]string
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{entries: make(map[string]string)}
}

func (m *mockCacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.Clone(appErrors.ErrCacheMiss, "")
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (m *mockCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = string(raw)
	return nil
}

func (m *mockCacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func TestListCacheKeyIsStable(t *testing.T) {
	cache := NewListCache(newMockCacheStore(), nil, time.Minute, zap.NewNop())
	filter := models.StudentFilter{Major: "Physics"}
	opts := models.ListOptions{Limit: 10}

	first := cache.Key(models.StudentCollection, filter, opts)
	second := cache.Key(models.StudentCollection, filter, opts)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "students:list:"))
}

func TestListCacheKeyVariesWithQueryShape(t *testing.T) {
	cache := NewListCache(newMockCacheStore(), nil, time.Minute, zap.NewNop())

	base := cache.Key(models.StudentCollection, models.StudentFilter{}, models.ListOptions{})
	filtered := cache.Key(models.StudentCollection, models.StudentFilter{Major: "Physics"}, models.ListOptions{})
	paged := cache.Key(models.StudentCollection, models.StudentFilter{}, models.ListOptions{Offset: 10})

	assert.NotEqual(t, base, filtered)
	assert.NotEqual(t, base, paged)
}

func TestListCacheRoundTrip(t *testing.T) {
	cache := NewListCache(newMockCacheStore(), nil, time.Minute, zap.NewNop())
	key := cache.Key(models.StudentCollection, models.StudentFilter{}, models.ListOptions{})
	students := []models.Student{{Name: "Alice", Email: "alice@example.com", Age: 20}}

	var missed []models.Student
	assert.False(t, cache.Lookup(context.Background(), key, &missed))

	cache.Store(context.Background(), key, students)

	var hit []models.Student
	require.True(t, cache.Lookup(context.Background(), key, &hit))
	require.Len(t, hit, 1)
	assert.Equal(t, "Alice", hit[0].Name)
}

func TestListCacheInvalidateIsScopedToCollection(t *testing.T) {
	store := newMockCacheStore()
	cache := NewListCache(store, nil, time.Minute, zap.NewNop())

	studentKey := cache.Key(models.StudentCollection, models.StudentFilter{}, models.ListOptions{})
	courseKey := cache.Key(models.CourseCollection, models.CourseFilter{}, models.ListOptions{})
	cache.Store(context.Background(), studentKey, []models.Student{})
	cache.Store(context.Background(), courseKey, []models.Course{})

	cache.Invalidate(context.Background(), models.StudentCollection)

	var students []models.Student
	assert.False(t, cache.Lookup(context.Background(), studentKey, &students))
	var courses []models.Course
	assert.True(t, cache.Lookup(context.Background(), courseKey, &courses))
}

func TestListCacheNilIsNoop(t *testing.T) {
	var cache *ListCache

	key := cache.Key(models.StudentCollection, models.StudentFilter{}, models.ListOptions{})
	assert.Empty(t, key)

	var dest []models.Student
	assert.False(t, cache.Lookup(context.Background(), key, &dest))
	cache.Store(context.Background(), key, dest)
	cache.Invalidate(context.Background(), models.StudentCollection)
}
