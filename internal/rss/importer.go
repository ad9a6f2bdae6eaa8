// Package rss imports RSS and Atom feeds as posts.
package rss

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/benbjohnson/clock"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/bryan-buckman/pressroom/internal/apierr"
	"github.com/bryan-buckman/pressroom/internal/model"
	"github.com/bryan-buckman/pressroom/internal/opml"
)

// Politeness toward feed hosts.
const (
	// DefaultConcurrency is how many feeds an OPML import downloads at once.
	DefaultConcurrency = 4
	// PerHostLimit caps simultaneous downloads from one host.
	PerHostLimit = 2
	// HostDelay spaces consecutive downloads from one host.
	HostDelay = 500 * time.Millisecond
)

// ExcerptLength is the maximum length, in characters, of a derived excerpt.
const ExcerptLength = 200

type feedHost struct {
	slots chan struct{}
	last  time.Time
}

// hostGate caps and spaces downloads per host.
type hostGate struct {
	mu    sync.Mutex
	hosts map[string]*feedHost
	clock clock.Clock
	delay time.Duration
}

func newHostGate(clk clock.Clock, delay time.Duration) *hostGate {
	return &hostGate{hosts: make(map[string]*feedHost), clock: clk, delay: delay}
}

// enter blocks until name has a free slot and the delay since its last
// download has passed. The returned func marks the download finished.
func (g *hostGate) enter(ctx context.Context, name string) (func(), error) {
	g.mu.Lock()
	h, ok := g.hosts[name]
	if !ok {
		h = &feedHost{slots: make(chan struct{}, PerHostLimit)}
		g.hosts[name] = h
	}
	g.mu.Unlock()

	select {
	case h.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	g.mu.Lock()
	last := h.last
	g.mu.Unlock()
	if !last.IsZero() {
		if wait := g.delay - g.clock.Since(last); wait > 0 {
			t := g.clock.Timer(wait)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				<-h.slots
				return nil, ctx.Err()
			}
		}
	}

	return func() {
		g.mu.Lock()
		h.last = g.clock.Now()
		g.mu.Unlock()
		<-h.slots
	}, nil
}

// hostOf names the host a feed is downloaded from.
func hostOf(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return strings.ToLower(u.Hostname())
}

// PostAPI is the part of the API client used by imports.
type PostAPI interface {
	CreatePost(ctx context.Context, in model.PostInput) (model.Post, error)
	Categories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error)
}

// Options control how feed items become posts.
type Options struct {
	// Status of created posts; draft when empty.
	Status     model.PostStatus
	CategoryID *int64
	// Limit caps the items imported per feed; 0 imports all.
	Limit int
}

// Result summarizes the import of one feed.
type Result struct {
	URL     string
	Title   string
	Created int
	Skipped int
	Failed  int
	Err     error
}

// Importer turns feed items into posts through the API.
type Importer struct {
	api         PostAPI
	parser      *gofeed.Parser
	log         *zap.Logger
	concurrency int
	gate        *hostGate
	clock       clock.Clock
	delay       time.Duration
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.log = l
		}
	}
}

// WithConcurrency sets how many feeds an OPML import fetches at once.
func WithConcurrency(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.concurrency = n
		}
	}
}

// WithHTTPClient sets the client used to download feeds.
func WithHTTPClient(hc *http.Client) Option {
	return func(im *Importer) { im.parser.Client = hc }
}

// WithHostDelay overrides the pause between downloads from one host.
func WithHostDelay(d time.Duration) Option {
	return func(im *Importer) { im.delay = d }
}

// WithClock sets the clock that spaces downloads.
func WithClock(clk clock.Clock) Option {
	return func(im *Importer) { im.clock = clk }
}

// NewImporter creates an importer writing through api.
func NewImporter(api PostAPI, opts ...Option) *Importer {
	im := &Importer{
		api:         api,
		parser:      gofeed.NewParser(),
		log:         zap.NewNop(),
		concurrency: DefaultConcurrency,
		clock:       clock.New(),
		delay:       HostDelay,
	}
	for _, opt := range opts {
		opt(im)
	}
	im.gate = newHostGate(im.clock, im.delay)
	return im
}

// ImportFeed downloads one feed and creates a post per item. Items whose
// slug already exists are skipped.
func (im *Importer) ImportFeed(ctx context.Context, feedURL string, opts Options) (Result, error) {
	res := Result{URL: feedURL}

	done, err := im.gate.enter(ctx, hostOf(feedURL))
	if err != nil {
		return res, fmt.Errorf("waiting for %s: %w", feedURL, err)
	}
	parsed, err := im.parser.ParseURLWithContext(feedURL, ctx)
	done()
	if err != nil {
		return res, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	res.Title = parsed.Title

	status := opts.Status
	if status == "" {
		status = model.PostDraft
	}
	items := parsed.Items
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}

	for _, item := range items {
		in, ok := postFromItem(item)
		if !ok {
			res.Skipped++
			continue
		}
		in.Status = status
		in.CategoryID = opts.CategoryID

		_, err := im.api.CreatePost(ctx, in)
		switch {
		case err == nil:
			res.Created++
		case isDuplicate(err):
			res.Skipped++
		default:
			res.Failed++
			im.log.Warn("create post from feed item failed",
				zap.String("feed", feedURL), zap.String("slug", in.Slug),
				zap.String("reason", apierr.Message(err, "")))
			if apierr.IsUnauthorized(err) {
				return res, err
			}
		}
	}

	im.log.Info("feed imported",
		zap.String("feed", feedURL), zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped), zap.Int("failed", res.Failed))
	return res, nil
}

// ImportOPML imports every feed listed in an OPML document. Each folder
// becomes a category, reused when one with the same slug exists.
func (im *Importer) ImportOPML(ctx context.Context, r io.Reader, opts Options) ([]Result, error) {
	sources, err := opml.Parse(r)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, nil
	}

	categories, err := im.resolveCategories(ctx, opml.Categories(sources))
	if err != nil {
		return nil, err
	}

	im.log.Info("importing feeds", zap.Int("feeds", len(sources)), zap.Int("concurrency", im.concurrency))

	type job struct {
		index  int
		source opml.Source
	}
	jobs := make(chan job)
	results := make([]Result, len(sources))

	var wg sync.WaitGroup
	for i := 0; i < im.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				feedOpts := opts
				if id, ok := categories[j.source.Category]; ok {
					id := id
					feedOpts.CategoryID = &id
				}
				res, err := im.ImportFeed(ctx, j.source.URL, feedOpts)
				res.Err = err
				if res.Title == "" {
					res.Title = j.source.Title
				}
				if err != nil {
					im.log.Warn("feed import failed", zap.String("feed", j.source.URL), zap.Error(err))
				}
				results[j.index] = res
			}
		}()
	}

send:
	for i, s := range sources {
		select {
		case <-ctx.Done():
			break send
		case jobs <- job{index: i, source: s}:
		}
	}
	close(jobs)
	wg.Wait()

	return results, ctx.Err()
}

// resolveCategories maps folder names to category IDs, creating missing
// categories.
func (im *Importer) resolveCategories(ctx context.Context, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}
	existing, err := im.api.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	bySlug := make(map[string]int64, len(existing))
	for _, c := range existing {
		bySlug[c.Slug] = c.ID
	}
	for _, name := range names {
		slug := model.Slugify(name)
		if id, ok := bySlug[slug]; ok {
			ids[name] = id
			continue
		}
		c, err := im.api.CreateCategory(ctx, model.CategoryInput{Name: name, Slug: slug})
		if err != nil {
			return nil, fmt.Errorf("create category %q: %w", name, err)
		}
		im.log.Info("category created", zap.String("name", name), zap.Int64("id", c.ID))
		bySlug[slug] = c.ID
		ids[name] = c.ID
	}
	return ids, nil
}

// postFromItem maps a feed item to a post body. Items without a usable
// title are rejected.
func postFromItem(item *gofeed.Item) (model.PostInput, bool) {
	slug := model.Slugify(item.Title)
	if slug == "" {
		return model.PostInput{}, false
	}
	content := item.Content
	if content == "" {
		content = item.Description
	}
	in := model.PostInput{
		Title:        strings.TrimSpace(item.Title),
		Slug:         slug,
		Content:      content,
		MetaKeywords: strings.Join(item.Categories, ", "),
	}

	text, image := inspectHTML(content)
	if item.Description != "" && item.Description != content {
		text, _ = inspectHTML(item.Description)
	}
	in.Excerpt = truncate(text, ExcerptLength)
	in.MetaDescription = in.Excerpt

	if item.Image != nil && item.Image.URL != "" {
		in.FeaturedImage = item.Image.URL
	} else {
		in.FeaturedImage = image
	}
	return in, true
}

// inspectHTML returns the whitespace-collapsed text of an HTML fragment and
// the source of its first image.
func inspectHTML(html string) (string, string) {
	if strings.TrimSpace(html) == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " "), ""
	}
	doc.Find("script, style").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	image, _ := doc.Find("img[src]").First().Attr("src")
	return text, image
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimSpace(string(runes[:n]))
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

// isDuplicate reports a create rejected because the slug is taken.
func isDuplicate(err error) bool {
	if apierr.IsStatus(err, http.StatusConflict) {
		return true
	}
	msg := strings.ToLower(apierr.Message(err, ""))
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}
