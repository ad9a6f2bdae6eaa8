package apiclient

import (
	"context"
	"strconv"

	"github.com/bryan-buckman/pressroom/internal/model"
)

// PostFilter narrows the post list. Nil and empty fields are omitted from
// the query string.
type PostFilter struct {
	Status     model.PostStatus `url:"status,omitempty"`
	CategoryID *int64           `url:"category_id,omitempty"`
	Featured   *bool            `url:"is_featured,omitempty"`
	Limit      *int             `url:"limit,omitempty"`
	Offset     *int             `url:"offset,omitempty"`
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// Posts lists posts.
func (c *Client) Posts(ctx context.Context, f PostFilter) ([]model.Post, error) {
	var out []model.Post
	err := c.query(ctx, epPosts, f, &out)
	return out, err
}

// Post reads one post by ID.
func (c *Client) Post(ctx context.Context, id int64) (model.Post, error) {
	var out model.Post
	err := c.query(ctx, epPost, nil, &out, itoa(id))
	return out, err
}

// CreatePost creates a post.
func (c *Client) CreatePost(ctx context.Context, in model.PostInput) (model.Post, error) {
	var out model.Post
	err := c.mutate(ctx, epCreatePost, in, &out)
	return out, err
}

// UpdatePost replaces every writable field of a post.
func (c *Client) UpdatePost(ctx context.Context, id int64, in model.PostInput) (model.Post, error) {
	var out model.Post
	err := c.mutate(ctx, epUpdatePost, in, &out, itoa(id))
	return out, err
}

// UpdatePostStatus changes only the status; the rest of the post is not
// resent.
func (c *Client) UpdatePostStatus(ctx context.Context, id int64, status model.PostStatus) error {
	body := struct {
		Status model.PostStatus `json:"status"`
	}{status}
	return c.mutate(ctx, epUpdatePostStatus, body, nil, itoa(id))
}

// DeletePost deletes a post.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.mutate(ctx, epDeletePost, nil, nil, itoa(id))
}

// Categories lists categories.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := c.query(ctx, epCategories, nil, &out)
	return out, err
}

// CategoryPosts lists the posts of the category with the given slug.
func (c *Client) CategoryPosts(ctx context.Context, slug string) ([]model.Post, error) {
	var out []model.Post
	err := c.query(ctx, epCategoryPosts, nil, &out, slug)
	return out, err
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	var out model.Category
	err := c.mutate(ctx, epCreateCategory, in, &out)
	return out, err
}

// UpdateCategory replaces a category.
func (c *Client) UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) (model.Category, error) {
	var out model.Category
	err := c.mutate(ctx, epUpdateCategory, in, &out, itoa(id))
	return out, err
}

// DeleteCategory deletes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.mutate(ctx, epDeleteCategory, nil, nil, itoa(id))
}
