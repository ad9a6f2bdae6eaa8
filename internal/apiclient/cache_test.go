package apiclient

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStartedBeforeInvalidationIsNotStored(t *testing.T) {
	tc := newTagCache(nil, 0)
	gen := tc.generation()
	tc.invalidate(Tag{Type: TagPost})
	assert.False(t, tc.put("GET /posts", []byte(`[]`), []Tag{{Type: TagPost}}, gen))
	_, ok := tc.get("GET /posts")
	assert.False(t, ok)

	assert.True(t, tc.put("GET /posts", []byte(`[]`), []Tag{{Type: TagPost}}, tc.generation()))
	_, ok = tc.get("GET /posts")
	assert.True(t, ok)
}

func TestTagMatching(t *testing.T) {
	tc := newTagCache(nil, 0)
	gen := tc.generation()
	tc.put("GET /posts", nil, epPosts.providedTags(), gen)
	tc.put("GET /posts/1", nil, epPost.providedTags("1"), gen)
	tc.put("GET /posts/2", nil, epPost.providedTags("2"), gen)
	tc.put("GET /comments/1", nil, epComments.providedTags("1"), gen)
	tc.put("GET /comments/2", nil, epComments.providedTags("2"), gen)
	tc.put("GET /admin/contacts", nil, epContacts.providedTags(), gen)

	assert.Equal(t, 1, tc.invalidate(epSubmitComment.invalidatedTags("1")...))
	_, ok := tc.get("GET /comments/2")
	assert.True(t, ok, "comments of other posts stay cached")

	assert.Equal(t, 3, tc.invalidate(epUpdatePostStatus.invalidatedTags("1")...), "post writes are coarse")
	assert.Equal(t, 2, tc.len())
}

func TestEndpointURL(t *testing.T) {
	u, err := epCategoryPosts.url(nil, "go & rust")
	require.NoError(t, err)
	assert.Equal(t, "/categories/go%20&%20rust/posts", u)

	limit := 5
	u, err = epContacts.url(ContactFilter{Status: "new", Limit: &limit})
	require.NoError(t, err)
	assert.Equal(t, "/admin/contacts?limit=5&status=new", u)

	_, err = epPost.url(nil)
	assert.Error(t, err)
}

func TestWritesDeclareInvalidations(t *testing.T) {
	for name, ep := range map[string]endpoint{
		"create post":       epCreatePost,
		"update post":       epUpdatePost,
		"patch post status": epUpdatePostStatus,
		"delete post":       epDeletePost,
		"create category":   epCreateCategory,
		"update category":   epUpdateCategory,
		"delete category":   epDeleteCategory,
	} {
		assert.Contains(t, ep.invalidates, TagPost, name)
		assert.False(t, ep.cached(), name)
	}
	assert.Equal(t, []string{TagContact}, epUpdateContactStatus.invalidates)
	assert.Equal(t, []string{TagNewsletter}, epDeleteSubscriber.invalidates)
	assert.False(t, epVerify.cached())
	assert.True(t, epCategories.cached())
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	clk := clock.NewMock()
	tc := newTagCache(clk, time.Minute)
	require.True(t, tc.put("GET /comments/1", []byte(`[]`), epComments.providedTags("1"), tc.generation()))

	clk.Add(59 * time.Second)
	_, ok := tc.get("GET /comments/1")
	assert.True(t, ok)

	clk.Add(time.Second)
	_, ok = tc.get("GET /comments/1")
	assert.False(t, ok)
	assert.Equal(t, 0, tc.len())
}
