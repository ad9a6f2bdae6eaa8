package server

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/pressroom/internal/apierr"
	"github.com/bryan-buckman/pressroom/internal/model"
)

type fakePages struct {
	posts      []model.Post
	categories []model.Category
}

func (f *fakePages) FetchPosts(context.Context) []model.Post { return f.posts }

func (f *fakePages) FetchPostBySlug(_ context.Context, slug string) *model.Post {
	for _, p := range f.posts {
		if p.Slug == slug && p.IsPublished() {
			p := p
			return &p
		}
	}
	return nil
}

func (f *fakePages) FetchCategories(context.Context) []model.Category { return f.categories }

func (f *fakePages) FetchPostsByCategorySlug(_ context.Context, slug string) []model.Post {
	var out []model.Post
	for _, p := range f.posts {
		if p.Category != nil && p.Category.Slug == slug {
			out = append(out, p)
		}
	}
	return out
}

type fakeAPI struct {
	mu          sync.Mutex
	contacts    []model.ContactInput
	comments    []model.CommentInput
	subscribed  []string
	subscribeFn func(email string) error
}

func (f *fakeAPI) SubmitContact(_ context.Context, in model.ContactInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, in)
	return nil
}

func (f *fakeAPI) Subscribe(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeFn != nil {
		if err := f.subscribeFn(email); err != nil {
			return err
		}
	}
	f.subscribed = append(f.subscribed, email)
	return nil
}

func (f *fakeAPI) Unsubscribe(context.Context, string) error { return nil }

func (f *fakeAPI) Comments(_ context.Context, postID int64) ([]model.Comment, error) {
	return []model.Comment{{ID: 1, PostID: postID, AuthorName: "Ada", CommentText: "Great read", Status: model.CommentApproved}}, nil
}

func (f *fakeAPI) SubmitComment(_ context.Context, in model.CommentInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, in)
	return nil
}

func newTestSite(t *testing.T) (*httptest.Server, *fakeAPI, *http.Client) {
	t.Helper()
	golang := model.Category{ID: 1, Name: "Go", Slug: "go"}
	pages := &fakePages{
		categories: []model.Category{golang},
		posts: []model.Post{
			{ID: 10, Title: "Hello World", Slug: "hello-world", Status: model.PostPublished, Content: "<p>Body <em>text</em></p>", Category: &golang},
			{ID: 11, Title: "Secret Draft", Slug: "secret-draft", Status: model.PostDraft, Category: &golang},
		},
	}
	api := &fakeAPI{}
	s, err := New(api, pages, Config{SiteName: "Test Site", SessionSecret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, api, &http.Client{Jar: jar}
}

func get(t *testing.T, c *http.Client, u string) (int, string) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func post(t *testing.T, c *http.Client, u string, form url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(u, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestHomeListsOnlyPublishedPosts(t *testing.T) {
	srv, _, c := newTestSite(t)
	status, body := get(t, c, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Hello World")
	assert.NotContains(t, body, "Secret Draft")
	assert.Contains(t, body, `href="/categories/go"`)
}

func TestPostPage(t *testing.T) {
	srv, _, c := newTestSite(t)
	status, body := get(t, c, srv.URL+"/posts/hello-world")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<p>Body <em>text</em></p>")
	assert.Contains(t, body, "Great read")

	status, _ = get(t, c, srv.URL+"/posts/secret-draft")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCategoryPage(t *testing.T) {
	srv, _, c := newTestSite(t)
	status, body := get(t, c, srv.URL+"/categories/go")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Hello World")
	assert.NotContains(t, body, "Secret Draft")

	status, _ = get(t, c, srv.URL+"/categories/rust")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestContactFlashShownOnce(t *testing.T) {
	srv, api, c := newTestSite(t)
	status, body := post(t, c, srv.URL+"/contact", url.Values{
		"name": {"Ada"}, "email": {"ada@example.com"}, "message": {"Hi there"},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Message sent")
	api.mu.Lock()
	require.Len(t, api.contacts, 1)
	assert.Equal(t, "Hi there", api.contacts[0].Message)
	api.mu.Unlock()

	_, body = get(t, c, srv.URL+"/contact")
	assert.NotContains(t, body, "Message sent")
}

func TestContactValidation(t *testing.T) {
	srv, api, c := newTestSite(t)
	_, body := post(t, c, srv.URL+"/contact", url.Values{"name": {"Ada"}, "email": {"not-an-email"}, "message": {"x"}})
	assert.Contains(t, body, "Invalid email")
	assert.Empty(t, api.contacts)
}

func TestSubscribeFailureShowsBackendMessage(t *testing.T) {
	srv, api, c := newTestSite(t)
	api.mu.Lock()
	api.subscribeFn = func(string) error {
		return &apierr.Error{Kind: apierr.KindHTTP, Status: http.StatusConflict, Body: []byte(`{"error":"Email already subscribed"}`)}
	}
	api.mu.Unlock()
	status, body := post(t, c, srv.URL+"/newsletter/subscribe", url.Values{"email": {"ada@example.com"}, "next": {"/posts/hello-world"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Email already subscribed")
	assert.Contains(t, body, "Hello World", "redirected back to the post")
}

func TestCommentSubmission(t *testing.T) {
	srv, api, c := newTestSite(t)
	_, body := post(t, c, srv.URL+"/posts/hello-world/comments", url.Values{
		"author_name": {"Ada"}, "comment_text": {"Nice"},
	})
	assert.Contains(t, body, "Comment submitted")
	require.Len(t, api.comments, 1)
	assert.Equal(t, int64(10), api.comments[0].PostID)

	status, _ := post(t, c, srv.URL+"/posts/secret-draft/comments", url.Values{"author_name": {"Ada"}, "comment_text": {"x"}})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBackTo(t *testing.T) {
	for next, want := range map[string]string{
		"/posts/a":          "/posts/a",
		"//evil.example":    "/",
		"https://evil.test": "/",
		"":                  "/",
	} {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{"next": {next}}.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, want, backTo(r), next)
	}
}

func TestHealthz(t *testing.T) {
	srv, _, c := newTestSite(t)
	status, body := get(t, c, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)
}
