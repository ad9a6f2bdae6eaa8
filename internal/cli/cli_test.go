package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/pressroom/internal/model"
)

type request struct {
	method, path, auth, body, query string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []request
	// deleteStatus, when set, fails DELETE /posts/{id} with that status.
	deleteStatus int
	// reject answers every admin route with 401.
	reject bool
}

func (f *fakeAPI) record(r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(b))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request{r.Method, r.URL.Path, r.Header.Get("Authorization"), string(b), r.URL.RawQuery})
}

func (f *fakeAPI) find(method, path string) []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []request
	for _, r := range f.requests {
		if r.method == method && r.path == path {
			out = append(out, r)
		}
	}
	return out
}

func ok(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = jsoniter.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsoniter.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

func newFakeAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	f := &fakeAPI{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.record(r)
			f.mu.Lock()
			reject := f.reject
			f.mu.Unlock()
			if reject && r.URL.Path != "/admin/login" {
				fail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Post("/admin/login", func(w http.ResponseWriter, r *http.Request) {
		ok(w, model.AuthSession{Token: "tok-123", User: model.User{ID: 1, Email: "admin@example.com", Name: "Admin"}})
	})
	r.Get("/admin/verify", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]any{"user": model.User{ID: 1, Email: "admin@example.com", Name: "Admin"}})
	})
	r.Get("/posts", func(w http.ResponseWriter, r *http.Request) {
		ok(w, []model.Post{{ID: 5, Title: "Hello", Slug: "hello", Status: model.PostPublished}})
	})
	r.Get("/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		ok(w, model.Post{ID: 5, Title: "Hello", Slug: "hello", Status: model.PostDraft, Content: "<p>x</p>"})
	})
	r.Post("/posts", func(w http.ResponseWriter, r *http.Request) {
		var in model.PostInput
		_ = jsoniter.NewDecoder(r.Body).Decode(&in)
		ok(w, model.Post{ID: 9, Title: in.Title, Slug: in.Slug, Status: in.Status})
	})
	r.Put("/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		ok(w, model.Post{ID: 5, Title: "Renamed"})
	})
	r.Patch("/posts/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		ok(w, nil)
	})
	r.Delete("/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.deleteStatus
		f.mu.Unlock()
		if status != 0 {
			fail(w, status, "Post is pinned and cannot be deleted")
			return
		}
		ok(w, nil)
	})
	r.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
		ok(w, []model.Category{{ID: 3, Name: "Go", Slug: "go"}})
	})
	r.Post("/categories", func(w http.ResponseWriter, r *http.Request) {
		ok(w, model.Category{ID: 4, Name: "New", Slug: "new"})
	})
	r.Get("/admin/contacts", func(w http.ResponseWriter, r *http.Request) {
		ok(w, []model.ContactSubmission{{ID: 2, Name: "Grace", Email: "grace@example.com", Message: "Loved the launch post", Status: model.ContactNew}})
	})
	r.Get("/admin/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		ok(w, model.ContactSubmission{ID: 2, Name: "Grace", Email: "grace@example.com", Message: "Loved the launch post", Status: model.ContactRead})
	})
	r.Patch("/admin/contacts/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		ok(w, nil)
	})
	r.Delete("/admin/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		ok(w, nil)
	})
	r.Get("/admin/newsletter/subscribers", func(w http.ResponseWriter, r *http.Request) {
		ok(w, []model.NewsletterSubscriber{{ID: 8, Email: "reader@example.com", IsActive: true}})
	})
	r.Delete("/admin/newsletter/subscribers/{id}", func(w http.ResponseWriter, r *http.Request) {
		ok(w, nil)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

type harness struct {
	apiURL string
	dsn    string
}

func newHarness(t *testing.T, apiURL string) *harness {
	return &harness{apiURL: apiURL, dsn: filepath.Join(t.TempDir(), "session.db")}
}

func (h *harness) exec(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	root := NewRootCmd(strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(append([]string{"--api-url", h.apiURL, "--storage-dsn", h.dsn, "--log-level", "error"}, args...))
	err := run(context.Background(), root, &errOut)
	return out.String(), errOut.String(), err
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	out, _, err := h.exec("", "login", "--email", "admin@example.com", "--password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "Welcome, Admin.")
}

func TestLoginSessionLifecycle(t *testing.T) {
	api, url := newFakeAPI(t)
	h := newHarness(t, url)

	_, errOut, err := h.exec("", "posts", "list")
	require.Error(t, err)
	assert.Contains(t, errOut, "not logged in")
	assert.Empty(t, api.find(http.MethodGet, "/posts"))

	h.login(t)
	login := api.find(http.MethodPost, "/admin/login")
	require.Len(t, login, 1)
	assert.JSONEq(t, `{"email":"admin@example.com","password":"secret"}`, login[0].body)

	out, _, err := h.exec("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@example.com")

	out, _, err = h.exec("", "posts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
	reqs := api.find(http.MethodGet, "/posts")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer tok-123", reqs[0].auth)

	out, _, err = h.exec("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "pressroom login")

	_, _, err = h.exec("", "whoami")
	assert.Error(t, err)
}

func TestLoginPromptsForMissingCredentials(t *testing.T) {
	api, url := newFakeAPI(t)
	h := newHarness(t, url)
	_, _, err := h.exec("admin@example.com\nsecret\n", "login")
	require.NoError(t, err)
	login := api.find(http.MethodPost, "/admin/login")
	require.Len(t, login, 1)
	assert.Contains(t, login[0].body, `"password":"secret"`)
}

func TestCreatePostDerivesSlug(t *testing.T) {
	api, url := newFakeAPI(t)
	h := newHarness(t, url)
	h.login(t)

	out, _, err := h.exec("", "posts", "create", "--title", "Hello, World!  ")
	require.NoError(t, err)
	assert.Contains(t, out, "slug hello-world")

	_, _, err = h.exec("", "posts", "create", "--title", "Hello, World!", "--slug", "custom-url", "--status", "published")
	require.NoError(t, err)

	reqs := api.find(http.MethodPost, "/posts")
	require.Len(t, reqs, 2)
	var first, second model.PostInput
	require.NoError(t, jsoniter.UnmarshalFromString(reqs[0].body, &first))
	require.NoError(t, jsoniter.UnmarshalFromString(reqs[1].body, &second))
	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, model.PostDraft, first.Status)
	assert.Equal(t, "custom-url", second.Slug)
	assert.Equal(t, model.PostPublished, second.Status)
}

func TestStatusSendsOnlyStatus(t *testing.T) {
	api, url := newFakeAPI(t)
	h := newHarness(t, url)
	h.login(t)

	_, _, err := h.exec("", "posts", "status", "5", "published")
	require.NoError(t, err)
	reqs := api.find(http.MethodPatch, "/posts/5/status")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"status":"published"}`, reqs[0].body)
	assert.Empty(t, api.find(http.MethodPut, "/posts/5"))

	_, _, err = h.exec("", "posts", "status", "5", "archived")
	assert.Error(t, err)
}

func TestUpdateMergesCurrentValues(t *testing.T) {
	api, url := newFakeAPI(t)
	h := newHarness(t, url)
	h.login(t)

	_, _, err := h.exec("", "posts", "update", "5", "--title", "Renamed")
	require.NoError(t, err)
	reqs := api.find(http.MethodPut, "/posts/5")
	require.Len(t, reqs, 1)
	var in model.PostInput
	require.NoError(t, jsoniter.UnmarshalFromString(reqs[0].body, &in))
	assert.Equal(t, "Renamed", in.Title)
	assert.Equal(t, "hello", in.Slug, "stored slug is kept")
	assert.Equal(t, "<p>x</p>", in.Content)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	api, url := newFakeAPI(t)
	h := newHarness(t, url)
	h.login(t)

	out, _, err := h.exec("n\n", "posts", "delete", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.Empty(t, api.find(http.MethodDelete, "/posts/5"))

	out, _, err = h.exec("y\n", "posts", "delete", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Post 5 deleted.")
	assert.Len(t, api.find(http.MethodDelete, "/posts/5"), 1)
}

func TestDeleteFailureIsReported(t *testing.T) {
	api, url := newFakeAPI(t)
	api.mu.Lock()
	api.deleteStatus = http.StatusConflict
	api.mu.Unlock()
	h := newHarness(t, url)
	h.login(t)

	_, errOut, err := h.exec("", "posts", "delete", "5", "--yes")
	require.Error(t, err)
	assert.Contains(t, errOut, "Post is pinned and cannot be deleted")
	assert.Equal(t, 1, strings.Count(errOut, "cannot be deleted"), "reported once")
}

func TestUnauthorizedSuggestsLogin(t *testing.T) {
	api, url := newFakeAPI(t)
	h := newHarness(t, url)
	h.login(t)
	api.mu.Lock()
	api.reject = true
	api.mu.Unlock()

	_, errOut, err := h.exec("", "posts", "list")
	require.Error(t, err)
	assert.Contains(t, errOut, "Invalid or expired token")
	assert.Contains(t, errOut, "pressroom login")
	assert.Len(t, api.find(http.MethodGet, "/posts"), 1, "no automatic retry")
}

func TestCategoryCreateDerivesSlug(t *testing.T) {
	api, url := newFakeAPI(t)
	h := newHarness(t, url)
	h.login(t)

	_, _, err := h.exec("", "categories", "create", "--name", "Product News")
	require.NoError(t, err)
	reqs := api.find(http.MethodPost, "/categories")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"name":"Product News","slug":"product-news","description":""}`, reqs[0].body)
}

func TestMissingAPIURL(t *testing.T) {
	h := newHarness(t, "")
	t.Setenv("PRESSROOM_API_URL", "")
	_, errOut, err := h.exec("", "categories", "list")
	require.Error(t, err)
	assert.Contains(t, errOut, "api_url is not set")
}

func TestPurgeOnSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal)
	purged := make(chan struct{}, 2)
	done := make(chan struct{})
	go func() {
		purgeOn(ctx, sig, func() { purged <- struct{}{} })
		close(done)
	}()

	for i := 0; i < 2; i++ {
		sig <- syscall.SIGHUP
		select {
		case <-purged:
		case <-time.After(5 * time.Second):
			t.Fatal("signal did not purge")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("purgeOn did not stop")
	}
}

func TestContactTriage(t *testing.T) {
	api, url := newFakeAPI(t)
	h := newHarness(t, url)
	h.login(t)

	out, _, err := h.exec("", "contacts", "list", "--status", "new")
	require.NoError(t, err)
	assert.Contains(t, out, "grace@example.com")
	reqs := api.find(http.MethodGet, "/admin/contacts")
	require.Len(t, reqs, 1)
	assert.Equal(t, "status=new", reqs[0].query)

	out, _, err = h.exec("", "contacts", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Loved the launch post")

	_, _, err = h.exec("", "contacts", "status", "2", "archived")
	require.NoError(t, err)
	out, _, err = h.exec("", "contacts", "status", "2", "new")
	require.NoError(t, err)
	assert.Contains(t, out, "Submission 2 marked new.")
	patches := api.find(http.MethodPatch, "/admin/contacts/2/status")
	require.Len(t, patches, 2)
	assert.JSONEq(t, `{"status":"archived"}`, patches[0].body)
	assert.JSONEq(t, `{"status":"new"}`, patches[1].body)

	_, _, err = h.exec("", "contacts", "status", "2", "spam")
	assert.Error(t, err)
	assert.Len(t, api.find(http.MethodPatch, "/admin/contacts/2/status"), 2)

	out, _, err = h.exec("y\n", "contacts", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Submission 2 deleted.")
	assert.Len(t, api.find(http.MethodDelete, "/admin/contacts/2"), 1)
}

func TestSubscribers(t *testing.T) {
	api, url := newFakeAPI(t)
	h := newHarness(t, url)
	h.login(t)

	out, _, err := h.exec("", "subscribers", "list", "--active=false")
	require.NoError(t, err)
	assert.Contains(t, out, "reader@example.com")
	reqs := api.find(http.MethodGet, "/admin/newsletter/subscribers")
	require.Len(t, reqs, 1)
	assert.Equal(t, "is_active=false", reqs[0].query)

	out, _, err = h.exec("n\n", "subscribers", "delete", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.Empty(t, api.find(http.MethodDelete, "/admin/newsletter/subscribers/8"))

	out, _, err = h.exec("", "subscribers", "delete", "8", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Subscriber 8 deleted.")
	assert.Len(t, api.find(http.MethodDelete, "/admin/newsletter/subscribers/8"), 1)
}
