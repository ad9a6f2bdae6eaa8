package apiclient

import (
	"context"

	"github.com/bryan-buckman/pressroom/internal/model"
)

// SubscriberFilter narrows the subscriber list.
type SubscriberFilter struct {
	IsActive *bool `url:"is_active,omitempty"`
	Limit    *int  `url:"limit,omitempty"`
	Offset   *int  `url:"offset,omitempty"`
}

type emailBody struct {
	Email string `json:"email"`
}

// Subscribe signs an address up for the newsletter.
func (c *Client) Subscribe(ctx context.Context, email string) error {
	return c.mutate(ctx, epSubscribe, emailBody{email}, nil)
}

// Unsubscribe removes an address from the newsletter.
func (c *Client) Unsubscribe(ctx context.Context, email string) error {
	return c.mutate(ctx, epUnsubscribe, emailBody{email}, nil)
}

// Subscribers lists newsletter subscribers.
func (c *Client) Subscribers(ctx context.Context, f SubscriberFilter) ([]model.NewsletterSubscriber, error) {
	var out []model.NewsletterSubscriber
	err := c.query(ctx, epSubscribers, f, &out)
	return out, err
}

// DeleteSubscriber deletes a subscriber.
func (c *Client) DeleteSubscriber(ctx context.Context, id int64) error {
	return c.mutate(ctx, epDeleteSubscriber, nil, nil, itoa(id))
}
