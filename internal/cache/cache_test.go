package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	entries map[string]string
	ttls    map[string]time.Duration

	getCalls int
	setCalls int
	getErr   error
	setErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: make(map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.getCalls++
	if f.getErr != nil {
		return "", false, f.getErr
	}
	value, found := f.entries[key]
	return value, found, nil
}

func (f *fakeStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	f.ttls[key] = ttl
	return nil
}

type payload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("miss produces and populates with ttl", func(t *testing.T) {
		store := newFakeStore()
		produced := 0

		value, err := Fetch(ctx, store, "guild:G1:users", 600*time.Second,
			func(ctx context.Context) ([]payload, error) {
				produced++
				return []payload{{ID: "U1", Name: "one"}}, nil
			})

		require.NoError(t, err)
		assert.Equal(t, 1, produced)
		assert.Len(t, value, 1)
		assert.Equal(t, 600*time.Second, store.ttls["guild:G1:users"])
		assert.JSONEq(t, `[{"id":"U1","name":"one"}]`, store.entries["guild:G1:users"])
	})

	t.Run("hit skips the producer", func(t *testing.T) {
		store := newFakeStore()
		store.entries["guild:G1:memberCount"] = "42"

		value, err := Fetch(ctx, store, "guild:G1:memberCount", MemberCountTTL,
			func(ctx context.Context) (int, error) {
				t.Fatal("producer must not run on a cache hit")
				return 0, nil
			})

		require.NoError(t, err)
		assert.Equal(t, 42, value)
		assert.Equal(t, 0, store.setCalls)
	})

	t.Run("nil store always produces", func(t *testing.T) {
		produced := 0
		for i := 0; i < 2; i++ {
			value, err := Fetch[int](ctx, nil, "guild:G1:memberCount", MemberCountTTL,
				func(ctx context.Context) (int, error) {
					produced++
					return 7, nil
				})
			require.NoError(t, err)
			assert.Equal(t, 7, value)
		}
		assert.Equal(t, 2, produced)
	})

	t.Run("producer error propagates and nothing is written", func(t *testing.T) {
		store := newFakeStore()

		_, err := Fetch(ctx, store, "guild:G1:users", MemberListTTL,
			func(ctx context.Context) ([]payload, error) {
				return nil, fmt.Errorf("guild unreachable")
			})

		assert.Error(t, err)
		assert.Equal(t, 0, store.setCalls)
	})

	t.Run("store read error degrades to a miss", func(t *testing.T) {
		store := newFakeStore()
		store.getErr = fmt.Errorf("connection reset")
		produced := 0

		value, err := Fetch(ctx, store, "k", time.Minute,
			func(ctx context.Context) (string, error) {
				produced++
				return "fresh", nil
			})

		require.NoError(t, err)
		assert.Equal(t, 1, produced)
		assert.Equal(t, "fresh", value)
	})

	t.Run("store write error does not fail the request", func(t *testing.T) {
		store := newFakeStore()
		store.setErr = fmt.Errorf("connection reset")

		value, err := Fetch(ctx, store, "k", time.Minute,
			func(ctx context.Context) (string, error) {
				return "fresh", nil
			})

		require.NoError(t, err)
		assert.Equal(t, "fresh", value)
	})

	t.Run("corrupt entry is refetched and overwritten", func(t *testing.T) {
		store := newFakeStore()
		store.entries["k"] = "{not json"

		value, err := Fetch(ctx, store, "k", time.Minute,
			func(ctx context.Context) (payload, error) {
				return payload{ID: "U1"}, nil
			})

		require.NoError(t, err)
		assert.Equal(t, "U1", value.ID)
		assert.JSONEq(t, `{"id":"U1","name":""}`, store.entries["k"])
	})

	t.Run("count round trips as a decimal string", func(t *testing.T) {
		store := newFakeStore()

		_, err := Fetch(ctx, store, MemberCountKey("G1"), MemberCountTTL,
			func(ctx context.Context) (int, error) { return 1234, nil })
		require.NoError(t, err)

		assert.Equal(t, "1234", store.entries["guild:G1:memberCount"])
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "guild:G1:users", MemberListKey("G1"))
	assert.Equal(t, "guild:G1:user:U2:data", MemberDetailKey("G1", "U2"))
	assert.Equal(t, "guild:G1:memberCount", MemberCountKey("G1"))

	assert.Equal(t, 600*time.Second, MemberListTTL)
	assert.Equal(t, 60*time.Second, MemberDetailTTL)
	assert.Equal(t, 600*time.Second, MemberCountTTL)
}
