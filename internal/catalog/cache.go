package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedStore wraps a Store with a process-wide TTL cache. Keys are
// qualified by the lookup's scope (the sorted theme labels for
// DocumentsForThemes), so a scoped lookup can never satisfy a differently
// scoped one.
type CachedStore struct {
	inner Store
	cache *expirable.LRU[string, any]
}

// NewCachedStore creates a TTL-caching wrapper around a Store.
func NewCachedStore(inner Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner: inner,
		cache: expirable.NewLRU[string, any](size, nil, ttl),
	}
}

// ListDocuments returns the cached document listing, fetching on miss.
func (s *CachedStore) ListDocuments(ctx context.Context) ([]Document, error) {
	const key = "documents"
	if v, ok := s.cache.Get(key); ok {
		return v.([]Document), nil
	}
	docs, err := s.inner.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, docs)
	return docs, nil
}

// ListThemes returns the cached theme listing, fetching on miss.
func (s *CachedStore) ListThemes(ctx context.Context) ([]Theme, error) {
	const key = "themes"
	if v, ok := s.cache.Get(key); ok {
		return v.([]Theme), nil
	}
	themes, err := s.inner.ListThemes(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, themes)
	return themes, nil
}

// DocumentsForThemes memoizes theme resolution per distinct label set.
func (s *CachedStore) DocumentsForThemes(ctx context.Context, themeNames []string) ([]string, error) {
	if len(themeNames) == 0 {
		return nil, nil
	}

	sorted := make([]string, len(themeNames))
	copy(sorted, themeNames)
	sort.Strings(sorted)
	key := "theme_docs:" + strings.Join(sorted, "\x00")

	if v, ok := s.cache.Get(key); ok {
		return v.([]string), nil
	}
	docIDs, err := s.inner.DocumentsForThemes(ctx, themeNames)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, docIDs)
	return docIDs, nil
}
