package server

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bryan-buckman/pressroom/internal/apierr"
	"github.com/bryan-buckman/pressroom/internal/model"
	"github.com/bryan-buckman/pressroom/internal/notify"
)

// --- Page Handlers ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	posts := published(s.pages.FetchPosts(r.Context()))
	var featured []model.Post
	for _, p := range posts {
		if p.IsFeatured {
			featured = append(featured, p)
		}
	}
	s.render(w, r, http.StatusOK, "home.html", "", map[string]any{
		"Posts":    posts,
		"Featured": featured,
	})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	post := s.pages.FetchPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if post == nil {
		s.notFound(w, r)
		return
	}
	comments, err := s.api.Comments(r.Context(), post.ID)
	if err != nil {
		s.log.Warn("load comments failed", zap.Int64("post_id", post.ID), zap.Error(err))
		comments = nil
	}
	s.render(w, r, http.StatusOK, "post.html", post.Title, map[string]any{
		"Post":     post,
		"Comments": comments,
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var category *model.Category
	for _, c := range s.pages.FetchCategories(r.Context()) {
		if c.Slug == slug {
			c := c
			category = &c
			break
		}
	}
	if category == nil {
		s.notFound(w, r)
		return
	}
	s.render(w, r, http.StatusOK, "category.html", category.Name, map[string]any{
		"Category": category,
		"Posts":    published(s.pages.FetchPostsByCategorySlug(r.Context(), slug)),
	})
}

func (s *Server) handleContactPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "contact.html", "Contact", nil)
}

// --- Form Handlers ---

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	in := model.ContactInput{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}
	switch {
	case in.Name == "" || in.Email == "" || in.Message == "":
		s.setFlash(w, r, notify.Warning, "Missing fields", "Please fill in your name, email and message.")
	case !validEmail(in.Email):
		s.setFlash(w, r, notify.Warning, "Invalid email", "Please enter a valid email address.")
	default:
		if err := s.api.SubmitContact(r.Context(), in); err != nil {
			s.setFlash(w, r, notify.Error, "Message not sent", apierr.Message(err, "Failed to send your message."))
		} else {
			s.setFlash(w, r, notify.Success, "Message sent", "Thanks for reaching out. We will get back to you soon.")
		}
	}
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	switch {
	case !validEmail(email):
		s.setFlash(w, r, notify.Warning, "Invalid email", "Please enter a valid email address.")
	default:
		if err := s.api.Subscribe(r.Context(), email); err != nil {
			s.setFlash(w, r, notify.Error, "Subscription failed", apierr.Message(err, "Failed to subscribe."))
		} else {
			s.setFlash(w, r, notify.Success, "Subscribed", "You are now subscribed to the newsletter.")
		}
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	switch {
	case !validEmail(email):
		s.setFlash(w, r, notify.Warning, "Invalid email", "Please enter a valid email address.")
	default:
		if err := s.api.Unsubscribe(r.Context(), email); err != nil {
			s.setFlash(w, r, notify.Error, "Unsubscribe failed", apierr.Message(err, "Failed to unsubscribe."))
		} else {
			s.setFlash(w, r, notify.Info, "Unsubscribed", "You will no longer receive the newsletter.")
		}
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post := s.pages.FetchPostBySlug(r.Context(), slug)
	if post == nil {
		s.notFound(w, r)
		return
	}
	in := model.CommentInput{
		PostID:      post.ID,
		AuthorName:  strings.TrimSpace(r.FormValue("author_name")),
		AuthorEmail: strings.TrimSpace(r.FormValue("author_email")),
		CommentText: strings.TrimSpace(r.FormValue("comment_text")),
	}
	switch {
	case in.AuthorName == "" || in.CommentText == "":
		s.setFlash(w, r, notify.Warning, "Missing fields", "Please enter your name and a comment.")
	case in.AuthorEmail != "" && !validEmail(in.AuthorEmail):
		s.setFlash(w, r, notify.Warning, "Invalid email", "Please enter a valid email address.")
	default:
		if err := s.api.SubmitComment(r.Context(), in); err != nil {
			s.setFlash(w, r, notify.Error, "Comment not posted", apierr.Message(err, "Failed to post your comment."))
		} else {
			s.setFlash(w, r, notify.Success, "Comment submitted", "Your comment will appear once it has been approved.")
		}
	}
	http.Redirect(w, r, "/posts/"+post.Slug+"#comments", http.StatusSeeOther)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// backTo returns the local page a form asked to return to, or "/".
func backTo(r *http.Request) string {
	next := r.FormValue("next")
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return "/"
}
