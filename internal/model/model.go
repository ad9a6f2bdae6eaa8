// Package model defines shared data structures.
package model

import "time"

// PostStatus is the publishing state of a post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

// Valid reports whether s is a known post status.
func (s PostStatus) Valid() bool {
	return s == PostDraft || s == PostPublished
}

// ContactStatus labels a contact submission during triage. Any status may
// move to any other.
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

// Valid reports whether s is a known contact status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied, ContactArchived:
		return true
	}
	return false
}

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentSpam     CommentStatus = "spam"
)

// User is the admin profile returned on login.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthSession is the login result persisted for the admin surface.
type AuthSession struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Category groups posts.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Post is a blog article. Content is HTML.
type Post struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         string     `json:"excerpt"`
	Content         string     `json:"content"`
	FeaturedImage   string     `json:"featured_image"`
	IsFeatured      bool       `json:"is_featured"`
	Status          PostStatus `json:"status"`
	CategoryID      *int64     `json:"category_id"`
	Category        *Category  `json:"category,omitempty"` // embedded by the list endpoints
	MetaDescription string     `json:"meta_description"`
	MetaKeywords    string     `json:"meta_keywords"`
	Views           int64      `json:"views"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsPublished reports whether the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostPublished
}

// Input returns the writable fields of p, used for full updates.
func (p *Post) Input() PostInput {
	return PostInput{
		Title:           p.Title,
		Slug:            p.Slug,
		Excerpt:         p.Excerpt,
		Content:         p.Content,
		FeaturedImage:   p.FeaturedImage,
		IsFeatured:      p.IsFeatured,
		Status:          p.Status,
		CategoryID:      p.CategoryID,
		MetaDescription: p.MetaDescription,
		MetaKeywords:    p.MetaKeywords,
	}
}

// PostInput is the body of create and full-update requests.
type PostInput struct {
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         string     `json:"excerpt"`
	Content         string     `json:"content"`
	FeaturedImage   string     `json:"featured_image"`
	IsFeatured      bool       `json:"is_featured"`
	Status          PostStatus `json:"status"`
	CategoryID      *int64     `json:"category_id"`
	MetaDescription string     `json:"meta_description"`
	MetaKeywords    string     `json:"meta_keywords"`
}

// CategoryInput is the body of category create and update requests.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// ContactSubmission is a message sent through the public contact form.
type ContactSubmission struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// ContactInput is the body of a public contact submission.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// NewsletterSubscriber is a newsletter signup.
type NewsletterSubscriber struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
	IsActive       bool       `json:"is_active"`
}

// Comment is a reader comment on a post. The read path only ever returns
// approved comments.
type Comment struct {
	ID          int64         `json:"id"`
	PostID      int64         `json:"post_id"`
	AuthorName  string        `json:"author_name"`
	AuthorEmail string        `json:"author_email"`
	CommentText string        `json:"comment_text"`
	CreatedAt   time.Time     `json:"created_at"`
	Status      CommentStatus `json:"status"`
}

// CommentInput is the body of a comment submission.
type CommentInput struct {
	PostID      int64  `json:"post_id"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	CommentText string `json:"comment_text"`
}

// LoginInput holds admin credentials.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Upload is the response of the file upload endpoint.
type Upload struct {
	URL string `json:"url"`
}
