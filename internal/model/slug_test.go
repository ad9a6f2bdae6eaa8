package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!  ":         "hello-world",
		"  Go 1.22 -- released ":  "go-1-22-released",
		"already-a-slug":          "already-a-slug",
		"Ünïcode & Friends":       "n-code-friends",
		"!!!":                     "",
		"":                        "",
		"Multiple   Spaces Here":  "multiple-spaces-here",
		"trailing punctuation...": "trailing-punctuation",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestSlugFieldFollowsSourceUntilEdited(t *testing.T) {
	var f SlugField
	f.SetSource("Hello, World!  ")
	assert.Equal(t, "hello-world", f.Value())
	assert.False(t, f.Dirty())

	f.SetSource("Hello again")
	assert.Equal(t, "hello-again", f.Value())

	f.Edit("custom")
	assert.True(t, f.Dirty())

	f.SetSource("Another title")
	assert.Equal(t, "custom", f.Value())

	f.Edit("")
	f.SetSource("Yet another")
	assert.Equal(t, "", f.Value(), "dirty flag is never reset")
}

func TestStatusValid(t *testing.T) {
	assert.True(t, PostPublished.Valid())
	assert.False(t, PostStatus("archived").Valid())
	for _, s := range []ContactStatus{ContactNew, ContactRead, ContactReplied, ContactArchived} {
		assert.True(t, s.Valid())
	}
	assert.False(t, ContactStatus("spam").Valid())
}
