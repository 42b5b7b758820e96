package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, ttl), mr
}

func TestCacheRoundTrip(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	miss, err := s.GetCachedPage(ctx, "/dashboard/blog/all-blogs")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, s.CachePage(ctx, Page{
		Path:        "/dashboard/blog/all-blogs",
		ContentType: "application/json",
		Body:        []byte(`[]`),
	}))

	hit, err := s.GetCachedPage(ctx, "/dashboard/blog/all-blogs")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, []byte(`[]`), hit.Body)
	assert.False(t, hit.CachedAt.IsZero())

	assert.True(t, mr.Exists(PageKey("/dashboard/blog/all-blogs")))
	assert.Equal(t, time.Minute, mr.TTL(PageKey("/dashboard/blog/all-blogs")))
	members, err := mr.SMembers(AllPagesKey())
	require.NoError(t, err)
	assert.Equal(t, []string{"/dashboard/blog/all-blogs"}, members)
}

func TestInvalidateTwiceEqualsOnce(t *testing.T) {
	s, mr := newTestStore(t, 0)
	ctx := context.Background()

	for _, p := range []string{"/", "/dashboard/skills/all-skills", "/dashboard/blog/all-blogs"} {
		require.NoError(t, s.CachePage(ctx, Page{Path: p, Body: []byte("x")}))
	}

	inv := NewInvalidator(s)
	paths := []string{"/", "/dashboard/skills/all-skills"}

	require.NoError(t, inv.Invalidate(ctx, paths))
	once := mr.Keys()
	require.NoError(t, inv.Invalidate(ctx, paths))

	assert.Equal(t, once, mr.Keys())
	assert.False(t, mr.Exists(PageKey("/")))
	assert.True(t, mr.Exists(PageKey("/dashboard/blog/all-blogs")))

	left, err := s.CachedPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/dashboard/blog/all-blogs"}, left)
}

func TestCachePageIfCurrent(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()
	path := "/dashboard/project/all-projects"

	gen, err := s.Generation(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	stored, err := s.CachePageIfCurrent(ctx, Page{Path: path, Body: []byte(`["p1"]`)}, gen)
	require.NoError(t, err)
	assert.True(t, stored)

	// A miss reads the generation, then a mutation invalidates before the
	// page built from the old listing is written.
	gen, err = s.Generation(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.InvalidatePaths(ctx, []string{path}))

	stored, err = s.CachePageIfCurrent(ctx, Page{Path: path, Body: []byte(`["p1"]`)}, gen)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists(PageKey(path)))

	left, err := s.CachedPaths(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)

	gen, err = s.Generation(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	stored, err = s.CachePageIfCurrent(ctx, Page{Path: path, Body: []byte(`["p1","p2"]`)}, gen)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestPruneIndex(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.CachePage(ctx, Page{Path: "/old"}))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, s.CachePage(ctx, Page{Path: "/fresh"}))

	n, err := s.PruneIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := s.CachedPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/fresh"}, left)
}

func TestFlushPages(t *testing.T) {
	s, mr := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.CachePage(ctx, Page{Path: "/a"}))
	require.NoError(t, s.CachePage(ctx, Page{Path: "/b"}))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, s.FlushPages(ctx))
	assert.Equal(t, []string{"unrelated"}, mr.Keys())
}

func TestExtractPath(t *testing.T) {
	p, err := ExtractPath(PageKey("/dashboard/blog"))
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/blog", p)

	_, err = ExtractPath("folio:pages:all")
	assert.Error(t, err)
}
