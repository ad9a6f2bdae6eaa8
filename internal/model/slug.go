package model

import "strings"

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen, trimming hyphens at both ends.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// SlugField keeps a slug in step with its source text (a post title or a
// category name) until the slug is edited directly. Once edited, the field
// stays dirty for its lifetime.
type SlugField struct {
	slug  string
	dirty bool
}

// SetSource updates the source text, re-deriving the slug unless dirty.
func (f *SlugField) SetSource(source string) {
	if f.dirty {
		return
	}
	f.slug = Slugify(source)
}

// Edit sets the slug explicitly and marks the field dirty.
func (f *SlugField) Edit(slug string) {
	f.slug = slug
	f.dirty = true
}

// Dirty reports whether the slug was edited directly.
func (f *SlugField) Dirty() bool { return f.dirty }

// Value returns the current slug.
func (f *SlugField) Value() string { return f.slug }
