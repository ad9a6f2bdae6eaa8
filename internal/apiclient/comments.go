package apiclient

import (
	"context"

	"github.com/bryan-buckman/pressroom/internal/model"
)

// Comments returns the approved comments of a post.
func (c *Client) Comments(ctx context.Context, postID int64) ([]model.Comment, error) {
	var all []model.Comment
	if err := c.query(ctx, epComments, nil, &all, itoa(postID)); err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, cm := range all {
		if cm.Status == "" || cm.Status == model.CommentApproved {
			out = append(out, cm)
		}
	}
	return out, nil
}

// SubmitComment queues a comment for moderation.
func (c *Client) SubmitComment(ctx context.Context, in model.CommentInput) error {
	return c.mutate(ctx, epSubmitComment, in, nil, itoa(in.PostID))
}
