package apiclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// endpoint declares one API operation: verb, path template and the cache
// tags it provides (reads) or invalidates (writes). Placeholders in path
// are filled from the call arguments in order.
type endpoint struct {
	method      string
	path        string
	provides    []string // tag families
	invalidates []string // tag families
	// byID adds a per-item tag, built from the first path argument, to the
	// first family of provides or, for writes, narrows the invalidation of
	// the first family to that item.
	byID bool
}

// Endpoint table.
var (
	epLogin  = endpoint{method: http.MethodPost, path: "/admin/login"}
	epVerify = endpoint{method: http.MethodGet, path: "/admin/verify"}

	epPosts            = endpoint{method: http.MethodGet, path: "/posts", provides: []string{TagPost}}
	epPost             = endpoint{method: http.MethodGet, path: "/posts/{id}", provides: []string{TagPost}, byID: true}
	epCreatePost       = endpoint{method: http.MethodPost, path: "/posts", invalidates: []string{TagPost}}
	epUpdatePost       = endpoint{method: http.MethodPut, path: "/posts/{id}", invalidates: []string{TagPost}}
	epUpdatePostStatus = endpoint{method: http.MethodPatch, path: "/posts/{id}/status", invalidates: []string{TagPost}}
	epDeletePost       = endpoint{method: http.MethodDelete, path: "/posts/{id}", invalidates: []string{TagPost}}

	epCategories     = endpoint{method: http.MethodGet, path: "/categories", provides: []string{TagCategory, TagPost}}
	epCategoryPosts  = endpoint{method: http.MethodGet, path: "/categories/{slug}/posts", provides: []string{TagPost, TagCategory}}
	epCreateCategory = endpoint{method: http.MethodPost, path: "/categories", invalidates: []string{TagCategory, TagPost}}
	epUpdateCategory = endpoint{method: http.MethodPut, path: "/categories/{id}", invalidates: []string{TagCategory, TagPost}}
	epDeleteCategory = endpoint{method: http.MethodDelete, path: "/categories/{id}", invalidates: []string{TagCategory, TagPost}}

	epSubmitContact       = endpoint{method: http.MethodPost, path: "/contact", invalidates: []string{TagContact}}
	epContacts            = endpoint{method: http.MethodGet, path: "/admin/contacts", provides: []string{TagContact}}
	epContact             = endpoint{method: http.MethodGet, path: "/admin/contacts/{id}", provides: []string{TagContact}, byID: true}
	epUpdateContactStatus = endpoint{method: http.MethodPatch, path: "/admin/contacts/{id}/status", invalidates: []string{TagContact}}
	epDeleteContact       = endpoint{method: http.MethodDelete, path: "/admin/contacts/{id}", invalidates: []string{TagContact}}

	epSubscribe        = endpoint{method: http.MethodPost, path: "/newsletter/subscribe", invalidates: []string{TagNewsletter}}
	epUnsubscribe      = endpoint{method: http.MethodPost, path: "/newsletter/unsubscribe", invalidates: []string{TagNewsletter}}
	epSubscribers      = endpoint{method: http.MethodGet, path: "/admin/newsletter/subscribers", provides: []string{TagNewsletter}}
	epDeleteSubscriber = endpoint{method: http.MethodDelete, path: "/admin/newsletter/subscribers/{id}", invalidates: []string{TagNewsletter}}

	epComments      = endpoint{method: http.MethodGet, path: "/comments/{postId}", provides: []string{TagComment}, byID: true}
	epSubmitComment = endpoint{method: http.MethodPost, path: "/comments", invalidates: []string{TagComment}, byID: true}

	epUpload = endpoint{method: http.MethodPost, path: "/upload"}
)

func (ep endpoint) cached() bool {
	return ep.method == http.MethodGet && len(ep.provides) > 0
}

// url expands the path template with args and appends params as a query
// string.
func (ep endpoint) url(params any, args ...string) (string, error) {
	var b strings.Builder
	rest := ep.path
	i := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("malformed path template %q", ep.path)
		}
		if i >= len(args) {
			return "", fmt.Errorf("missing argument %s for %s %s", rest[open:open+end+1], ep.method, ep.path)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(args[i]))
		rest = rest[open+end+1:]
		i++
	}
	b.WriteString(rest)

	q, err := encodeQuery(params)
	if err != nil {
		return "", err
	}
	return b.String() + q, nil
}

func (ep endpoint) providedTags(args ...string) []Tag {
	tags := make([]Tag, 0, len(ep.provides)+1)
	for _, family := range ep.provides {
		tags = append(tags, Tag{Type: family})
	}
	if ep.byID && len(ep.provides) > 0 && len(args) > 0 {
		tags = append(tags, Tag{Type: ep.provides[0], ID: args[0]})
	}
	return tags
}

// invalidatedTags returns the tags a successful write drops. The id is the
// write's target item, used only by byID endpoints.
func (ep endpoint) invalidatedTags(args ...string) []Tag {
	tags := make([]Tag, 0, len(ep.invalidates))
	for i, family := range ep.invalidates {
		if i == 0 && ep.byID && len(args) > 0 {
			tags = append(tags, Tag{Type: family, ID: args[0]})
			continue
		}
		tags = append(tags, Tag{Type: family})
	}
	return tags
}
