package apiclient

import (
	"context"

	"github.com/bryan-buckman/pressroom/internal/model"
)

// ContactFilter narrows the contact list.
type ContactFilter struct {
	Status model.ContactStatus `url:"status,omitempty"`
	Limit  *int                `url:"limit,omitempty"`
	Offset *int                `url:"offset,omitempty"`
}

// SubmitContact sends the public contact form.
func (c *Client) SubmitContact(ctx context.Context, in model.ContactInput) error {
	return c.mutate(ctx, epSubmitContact, in, nil)
}

// Contacts lists contact submissions.
func (c *Client) Contacts(ctx context.Context, f ContactFilter) ([]model.ContactSubmission, error) {
	var out []model.ContactSubmission
	err := c.query(ctx, epContacts, f, &out)
	return out, err
}

// Contact reads one submission.
func (c *Client) Contact(ctx context.Context, id int64) (model.ContactSubmission, error) {
	var out model.ContactSubmission
	err := c.query(ctx, epContact, nil, &out, itoa(id))
	return out, err
}

// UpdateContactStatus relabels a submission. Any status may follow any
// other.
func (c *Client) UpdateContactStatus(ctx context.Context, id int64, status model.ContactStatus) error {
	body := struct {
		Status model.ContactStatus `json:"status"`
	}{status}
	return c.mutate(ctx, epUpdateContactStatus, body, nil, itoa(id))
}

// DeleteContact deletes a submission.
func (c *Client) DeleteContact(ctx context.Context, id int64) error {
	return c.mutate(ctx, epDeleteContact, nil, nil, itoa(id))
}
