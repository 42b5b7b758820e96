package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Page is a rendered dashboard response kept until revalidated or expired
type Page struct {
	Path        string    `json:"path"`
	ContentType string    `json:"contentType"`
	Body        []byte    `json:"body"`
	CachedAt    time.Time `json:"cachedAt"`
}

// CachePage stores a page and records its path in the page index
func (s *Store) CachePage(ctx context.Context, page Page) error {
	if page.CachedAt.IsZero() {
		page.CachedAt = time.Now()
	}
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal page: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, PageKey(page.Path), data, s.ttl)
	pipe.SAdd(ctx, AllPagesKey(), page.Path)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

// Generation returns how many times path has been invalidated. Read it
// before building a page and hand it to CachePageIfCurrent.
func (s *Store) Generation(ctx context.Context, path string) (int64, error) {
	gen, err := s.client.Get(ctx, GenerationKey(path)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get page generation: %w", err)
	}
	return gen, nil
}

// CachePageIfCurrent stores page only if its path has not been invalidated
// since gen was read. It reports whether the page was stored.
func (s *Store) CachePageIfCurrent(ctx context.Context, page Page, gen int64) (bool, error) {
	if page.CachedAt.IsZero() {
		page.CachedAt = time.Now()
	}
	data, err := json.Marshal(page)
	if err != nil {
		return false, fmt.Errorf("failed to marshal page: %w", err)
	}

	genKey := GenerationKey(page.Path)
	stored := false
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, PageKey(page.Path), data, s.ttl)
			pipe.SAdd(ctx, AllPagesKey(), page.Path)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		// Invalidated between the read and the write.
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to cache page: %w", err)
	}
	return stored, nil
}

// GetCachedPage retrieves a cached page, nil on miss
func (s *Store) GetCachedPage(ctx context.Context, path string) (*Page, error) {
	data, err := s.client.Get(ctx, PageKey(path)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached page: %w", err)
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page: %w", err)
	}
	return &page, nil
}

// InvalidatePaths removes cached pages and bumps their generation so a
// page built before the call is never stored after it. Missing paths are ignored.
func (s *Store) InvalidatePaths(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, p := range paths {
		pipe.Incr(ctx, GenerationKey(p))
		pipe.Del(ctx, PageKey(p))
		pipe.SRem(ctx, AllPagesKey(), p)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate pages: %w", err)
	}
	return nil
}

// CachedPaths lists the page index
func (s *Store) CachedPaths(ctx context.Context) ([]string, error) {
	paths, err := s.client.SMembers(ctx, AllPagesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get page index: %w", err)
	}
	return paths, nil
}

// PruneIndex removes index members whose page key has expired.
// Returns the number of members removed.
func (s *Store) PruneIndex(ctx context.Context) (int, error) {
	paths, err := s.CachedPaths(ctx)
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, nil
	}

	pipe := s.client.Pipeline()
	exists := make([]*redis.IntCmd, len(paths))
	for i, p := range paths {
		exists[i] = pipe.Exists(ctx, PageKey(p))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to check page keys: %w", err)
	}

	stale := make([]interface{}, 0)
	for i, cmd := range exists {
		if cmd.Val() == 0 {
			stale = append(stale, paths[i])
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := s.client.SRem(ctx, AllPagesKey(), stale...).Err(); err != nil {
		return 0, fmt.Errorf("failed to prune page index: %w", err)
	}
	return len(stale), nil
}

// FlushPages removes all cached pages and the index
func (s *Store) FlushPages(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixPage+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete page key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush pages: %w", err)
	}
	if err := s.client.Del(ctx, AllPagesKey()).Err(); err != nil {
		return fmt.Errorf("failed to delete page index: %w", err)
	}
	return nil
}

// Invalidator adapts the store to the revalidation dispatcher
type Invalidator struct {
	store *Store
}

func NewInvalidator(s *Store) *Invalidator {
	return &Invalidator{store: s}
}

func (i *Invalidator) Name() string { return "redis-page-cache" }

func (i *Invalidator) Invalidate(ctx context.Context, paths []string) error {
	return i.store.InvalidatePaths(ctx, paths)
}
