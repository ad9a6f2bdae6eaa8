// Package content provides the read-only fetchers used to render public
// pages.
//
// Results are kept for a fixed revalidation interval. The fetchers never
// fail: when the backend is down a page renders with empty data instead.
package content

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/bryan-buckman/pressroom/internal/model"
)

// Revalidation intervals.
const (
	PostsTTL         = 60 * time.Second
	CategoriesTTL    = 3600 * time.Second
	CategoryPostsTTL = 60 * time.Second
)

var fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pressroom_fetch_fallbacks_total",
	Help: "Page data fetches that failed and fell back to empty results.",
}, []string{"resource"})

// Getter issues an unauthenticated GET and decodes the unwrapped payload.
// *apiclient.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, path string, out any) error
}

// Fetcher reads page data through a revalidation cache.
type Fetcher struct {
	api   Getter
	cache *ristretto.Cache
	log   *zap.Logger
}

// NewFetcher creates a Fetcher. A nil logger discards output.
func NewFetcher(api Getter, log *zap.Logger) (*Fetcher, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 12,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{api: api, cache: cache, log: log}, nil
}

// Close releases the cache.
func (f *Fetcher) Close() {
	f.cache.Close()
}

// Purge drops every cached result.
func (f *Fetcher) Purge() {
	f.cache.Clear()
}

// FetchPosts returns every post, or an empty slice on failure.
func (f *Fetcher) FetchPosts(ctx context.Context) []model.Post {
	var posts []model.Post
	if !f.fetch(ctx, "posts", "/posts", PostsTTL, &posts) || posts == nil {
		return []model.Post{}
	}
	return posts
}

// FetchPostBySlug returns the published post with slug, or nil. It filters
// the full post list; drafts sharing the slug are excluded here only.
func (f *Fetcher) FetchPostBySlug(ctx context.Context, slug string) *model.Post {
	for _, p := range f.FetchPosts(ctx) {
		if p.Slug == slug && p.IsPublished() {
			p := p
			return &p
		}
	}
	return nil
}

// FetchCategories returns every category, or an empty slice on failure.
func (f *Fetcher) FetchCategories(ctx context.Context) []model.Category {
	var categories []model.Category
	if !f.fetch(ctx, "categories", "/categories", CategoriesTTL, &categories) || categories == nil {
		return []model.Category{}
	}
	return categories
}

// FetchPostsByCategorySlug returns the posts of one category, or an empty
// slice on failure.
func (f *Fetcher) FetchPostsByCategorySlug(ctx context.Context, slug string) []model.Post {
	var posts []model.Post
	path := "/categories/" + url.PathEscape(slug) + "/posts"
	if !f.fetch(ctx, "category_posts", path, CategoryPostsTTL, &posts) || posts == nil {
		return []model.Post{}
	}
	return posts
}

// fetch fills out from the cache or the API. It reports false on failure.
func (f *Fetcher) fetch(ctx context.Context, resource, path string, ttl time.Duration, out any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			f.fallback(resource, path, fmt.Errorf("panic: %v", r))
			ok = false
		}
	}()

	if v, hit := f.cache.Get(path); hit {
		if assign(v, out) {
			return true
		}
	}
	if f.api == nil {
		f.fallback(resource, path, fmt.Errorf("no api configured"))
		return false
	}
	if err := f.api.Get(ctx, path, out); err != nil {
		f.fallback(resource, path, err)
		return false
	}
	f.cache.SetWithTTL(path, deref(out), 1, ttl)
	f.cache.Wait()
	return true
}

func (f *Fetcher) fallback(resource, path string, err error) {
	fallbacks.WithLabelValues(resource).Inc()
	f.log.Warn("page data fetch failed, using fallback",
		zap.String("resource", resource), zap.String("path", path), zap.Error(err))
}

func deref(out any) any {
	switch v := out.(type) {
	case *[]model.Post:
		return *v
	case *[]model.Category:
		return *v
	}
	return nil
}

func assign(v, out any) bool {
	switch dst := out.(type) {
	case *[]model.Post:
		src, ok := v.([]model.Post)
		if ok {
			*dst = src
		}
		return ok
	case *[]model.Category:
		src, ok := v.([]model.Category)
		if ok {
			*dst = src
		}
		return ok
	}
	return false
}
