package ratelimiter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute}
}

func TestNewBucket(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid configuration", func(t *testing.T) {
		t.Parallel()
		store := NewMemoryStore(WithCleanupInterval(0))

		_, err := NewBucket(store, Config{Capacity: 0, RefillRate: 1, RefillInterval: time.Second})
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = NewBucket(store, Config{Capacity: 1, RefillRate: 0, RefillInterval: time.Second})
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = NewBucket(store, Config{Capacity: 1, RefillRate: 1})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestBucket_Allow(t *testing.T) {
	t.Parallel()

	t.Run("allows up to capacity then denies", func(t *testing.T) {
		t.Parallel()
		store := NewMemoryStore(WithCleanupInterval(0))
		defer store.Close()
		bucket, err := NewBucket(store, testConfig())
		require.NoError(t, err)
		ctx := context.Background()

		for i := range 3 {
			result, err := bucket.Allow(ctx, "user-1")
			require.NoError(t, err)
			assert.True(t, result.Allowed(), "request %d", i)
		}

		result, err := bucket.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, result.Allowed())
		assert.Positive(t, result.RetryAfter())
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		store := NewMemoryStore(WithCleanupInterval(0))
		defer store.Close()
		bucket, err := NewBucket(store, testConfig())
		require.NoError(t, err)
		ctx := context.Background()

		for range 3 {
			_, err := bucket.Allow(ctx, "user-1")
			require.NoError(t, err)
		}

		result, err := bucket.Allow(ctx, "user-2")
		require.NoError(t, err)
		assert.True(t, result.Allowed())
	})

	t.Run("reset restores the bucket", func(t *testing.T) {
		t.Parallel()
		store := NewMemoryStore(WithCleanupInterval(0))
		defer store.Close()
		bucket, err := NewBucket(store, testConfig())
		require.NoError(t, err)
		ctx := context.Background()

		for range 4 {
			_, err := bucket.Allow(ctx, "user-1")
			require.NoError(t, err)
		}

		require.NoError(t, bucket.Reset(ctx, "user-1"))

		result, err := bucket.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, result.Allowed())
	})

	t.Run("rejects non-positive token counts", func(t *testing.T) {
		t.Parallel()
		store := NewMemoryStore(WithCleanupInterval(0))
		defer store.Close()
		bucket, err := NewBucket(store, testConfig())
		require.NoError(t, err)

		_, err = bucket.AllowN(context.Background(), "user-1", 0)
		assert.ErrorIs(t, err, ErrInvalidTokenCount)
	})
}

func TestComposite(t *testing.T) {
	t.Parallel()

	t.Run("joins parts with a colon", func(t *testing.T) {
		t.Parallel()
		keyFunc := Composite(
			func(r *http.Request) string { return "a" },
			func(r *http.Request) string { return "b" },
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Equal(t, "a:b", keyFunc(req))
	})

	t.Run("skips empty parts", func(t *testing.T) {
		t.Parallel()
		keyFunc := Composite(
			func(r *http.Request) string { return "" },
			func(r *http.Request) string { return "only" },
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Equal(t, "only", keyFunc(req))
	})

	t.Run("hashes long keys", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("x", 100)
		keyFunc := Composite(func(r *http.Request) string { return long })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		key := keyFunc(req)

		assert.NotEqual(t, long, key)
		assert.LessOrEqual(t, len(key), maxKeyLength)
	})
}

// failingStore always errors, simulating a Redis outage.
type failingStore struct{}

func (failingStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func (failingStore) Reset(ctx context.Context, key string) error {
	return errors.New("store down")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	keyFunc := func(r *http.Request) string { return "user-1" }
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("limits after the bucket drains", func(t *testing.T) {
		t.Parallel()
		store := NewMemoryStore(WithCleanupInterval(0))
		defer store.Close()
		bucket, err := NewBucket(store, Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})
		require.NoError(t, err)

		handler := Middleware(bucket, keyFunc)(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("passes requests through on store failure", func(t *testing.T) {
		t.Parallel()
		bucket, err := NewBucket(failingStore{}, testConfig())
		require.NoError(t, err)

		handler := Middleware(bucket, keyFunc)(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
