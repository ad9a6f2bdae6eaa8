// Package server provides the public site: server-rendered pages and the
// public form posts.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bryan-buckman/pressroom/internal/apiclient"
	"github.com/bryan-buckman/pressroom/internal/content"
	"github.com/bryan-buckman/pressroom/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Pages reads the data behind rendered pages. Implementations never fail.
type Pages interface {
	FetchPosts(ctx context.Context) []model.Post
	FetchPostBySlug(ctx context.Context, slug string) *model.Post
	FetchCategories(ctx context.Context) []model.Category
	FetchPostsByCategorySlug(ctx context.Context, slug string) []model.Post
}

// SiteAPI is the part of the API client behind the public forms.
type SiteAPI interface {
	SubmitContact(ctx context.Context, in model.ContactInput) error
	Subscribe(ctx context.Context, email string) error
	Unsubscribe(ctx context.Context, email string) error
	Comments(ctx context.Context, postID int64) ([]model.Comment, error)
	SubmitComment(ctx context.Context, in model.CommentInput) error
}

var (
	_ Pages   = (*content.Fetcher)(nil)
	_ SiteAPI = (*apiclient.Client)(nil)
)

// Config holds site settings.
type Config struct {
	SiteName      string
	SiteURL       string
	SessionSecret string
	Logger        *zap.Logger
}

// Server is the public site.
type Server struct {
	api       SiteAPI
	pages     Pages
	flashes   sessions.Store
	cfg       Config
	log       *zap.Logger
	router    chi.Router
	templates *template.Template
}

// New creates the site server.
func New(api SiteAPI, pages Pages, cfg Config) (*Server, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret is required")
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "Pressroom"
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"timeAgo":  timeAgo,
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(cfg.SiteURL, "https://"),
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		api:       api,
		pages:     pages,
		flashes:   store,
		cfg:       cfg,
		log:       log,
		templates: tmpl,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Pages.
	r.Get("/", s.handleHome)
	r.Get("/posts/{slug}", s.handlePost)
	r.Get("/categories/{slug}", s.handleCategory)
	r.Get("/contact", s.handleContactPage)

	// Forms.
	r.Post("/contact", s.handleContact)
	r.Post("/newsletter/subscribe", s.handleSubscribe)
	r.Post("/newsletter/unsubscribe", s.handleUnsubscribe)
	r.Post("/posts/{slug}/comments", s.handleComment)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.notFound(w, r)
	})

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("server stopping")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// --- Helpers ---

// page is the data every template receives.
type page struct {
	Site       Config
	Title      string
	Flash      *flash
	Categories []model.Category
	Data       any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	p := page{
		Site:       s.cfg,
		Title:      title,
		Flash:      s.popFlash(w, r),
		Categories: s.pages.FetchCategories(r.Context()),
		Data:       data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, p); err != nil {
		s.log.Error("template error", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "notfound.html", "Not found", nil)
}

func published(posts []model.Post) []model.Post {
	out := make([]model.Post, 0, len(posts))
	for i := range posts {
		if posts[i].IsPublished() {
			out = append(out, posts[i])
		}
	}
	return out
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}
