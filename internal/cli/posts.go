package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bryan-buckman/pressroom/internal/apiclient"
	"github.com/bryan-buckman/pressroom/internal/confirm"
	"github.com/bryan-buckman/pressroom/internal/model"
)

func (a *app) postsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "posts",
		Aliases: []string{"post"},
		Short:   "Manage posts",
	}
	cmd.AddCommand(
		a.postsListCmd(),
		a.postsGetCmd(),
		a.postsCreateCmd(),
		a.postsUpdateCmd(),
		a.postsStatusCmd(),
		a.postsDeleteCmd(),
	)
	return cmd
}

func (a *app) postsListCmd() *cobra.Command {
	var (
		status        string
		category      int64
		featured      bool
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			var f apiclient.PostFilter
			if status != "" {
				f.Status = model.PostStatus(status)
				if !f.Status.Valid() {
					return fmt.Errorf("invalid status %q (draft or published)", status)
				}
			}
			flags := cmd.Flags()
			if flags.Changed("category") {
				f.CategoryID = &category
			}
			if flags.Changed("featured") {
				f.Featured = &featured
			}
			if flags.Changed("limit") {
				f.Limit = &limit
			}
			if flags.Changed("offset") {
				f.Offset = &offset
			}

			posts, err := a.api.Posts(cmd.Context(), f)
			if err != nil {
				return a.failed("Could not load posts", err, "Failed to load posts.")
			}
			t := newTable(a.out, "ID", "Title", "Slug", "Status", "Featured", "Category", "Views", "Updated")
			for _, p := range posts {
				cat := "-"
				if p.Category != nil {
					cat = p.Category.Name
				}
				t.Append([]string{
					fmt.Sprint(p.ID), shorten(p.Title, 40), p.Slug, string(p.Status),
					yesNo(p.IsFeatured), cat, fmt.Sprint(p.Views), when(p.UpdatedAt),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (draft or published)")
	cmd.Flags().Int64Var(&category, "category", 0, "filter by category ID")
	cmd.Flags().BoolVar(&featured, "featured", false, "filter by featured flag")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of posts")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of posts to skip")
	return cmd
}

func (a *app) postsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.api.Post(cmd.Context(), id)
			if err != nil {
				return a.failed("Could not load post", err, "Failed to load the post.")
			}
			category := "-"
			if p.CategoryID != nil {
				category = fmt.Sprint(*p.CategoryID)
			}
			details(a.out, [][2]string{
				{"ID", fmt.Sprint(p.ID)},
				{"Title", p.Title},
				{"Slug", p.Slug},
				{"Status", string(p.Status)},
				{"Featured", yesNo(p.IsFeatured)},
				{"Category", category},
				{"Image", p.FeaturedImage},
				{"Excerpt", p.Excerpt},
				{"Meta description", p.MetaDescription},
				{"Meta keywords", p.MetaKeywords},
				{"Views", fmt.Sprint(p.Views)},
				{"Created", when(p.CreatedAt)},
				{"Updated", when(p.UpdatedAt)},
			})
			fmt.Fprintf(a.out, "\n%s\n", p.Content)
			return nil
		},
	}
}

// postFlags are the editable fields shared by create and update.
type postFlags struct {
	title, slug, excerpt, content, contentFile string
	image, status, metaDescription, keywords   string
	featured                                   bool
	category                                   int64
}

func (pf *postFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&pf.title, "title", "", "post title")
	fs.StringVar(&pf.slug, "slug", "", "URL slug (derived from the title unless set)")
	fs.StringVar(&pf.excerpt, "excerpt", "", "short summary")
	fs.StringVar(&pf.content, "content", "", "HTML content")
	fs.StringVar(&pf.contentFile, "content-file", "", "read HTML content from a file")
	fs.StringVar(&pf.image, "image", "", "featured image URL")
	fs.StringVar(&pf.status, "status", "", "draft or published")
	fs.StringVar(&pf.metaDescription, "meta-description", "", "SEO description")
	fs.StringVar(&pf.keywords, "meta-keywords", "", "SEO keywords")
	fs.BoolVar(&pf.featured, "featured", false, "feature the post")
	fs.Int64Var(&pf.category, "category", 0, "category ID (0 clears it)")
}

// apply copies the flags that were set onto in.
func (pf *postFlags) apply(fs *pflag.FlagSet, in *model.PostInput) error {
	if fs.Changed("title") {
		in.Title = pf.title
	}
	if fs.Changed("excerpt") {
		in.Excerpt = pf.excerpt
	}
	if fs.Changed("content") {
		in.Content = pf.content
	}
	if pf.contentFile != "" {
		b, err := os.ReadFile(pf.contentFile)
		if err != nil {
			return fmt.Errorf("read content: %w", err)
		}
		in.Content = string(b)
	}
	if fs.Changed("image") {
		in.FeaturedImage = pf.image
	}
	if fs.Changed("status") {
		in.Status = model.PostStatus(pf.status)
		if !in.Status.Valid() {
			return fmt.Errorf("invalid status %q (draft or published)", pf.status)
		}
	}
	if fs.Changed("meta-description") {
		in.MetaDescription = pf.metaDescription
	}
	if fs.Changed("meta-keywords") {
		in.MetaKeywords = pf.keywords
	}
	if fs.Changed("featured") {
		in.IsFeatured = pf.featured
	}
	if fs.Changed("category") {
		if pf.category == 0 {
			in.CategoryID = nil
		} else {
			id := pf.category
			in.CategoryID = &id
		}
	}
	return nil
}

func (a *app) postsCreateCmd() *cobra.Command {
	var pf postFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			fs := cmd.Flags()
			in := model.PostInput{Status: model.PostDraft}
			if err := pf.apply(fs, &in); err != nil {
				return err
			}
			if strings.TrimSpace(in.Title) == "" {
				return fmt.Errorf("--title is required")
			}

			var slug model.SlugField
			if fs.Changed("slug") {
				slug.Edit(pf.slug)
			}
			slug.SetSource(in.Title)
			in.Slug = slug.Value()
			if in.Slug == "" {
				return fmt.Errorf("could not derive a slug from the title; pass --slug")
			}

			p, err := a.api.CreatePost(cmd.Context(), in)
			if err != nil {
				return a.failed("Could not create post", err, "Failed to create the post.")
			}
			a.notifier.Success("Post created", fmt.Sprintf("%q saved as %s (id %d, slug %s).", p.Title, p.Status, p.ID, p.Slug))
			return nil
		},
	}
	pf.register(cmd.Flags())
	return cmd
}

func (a *app) postsUpdateCmd() *cobra.Command {
	var pf postFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a post with its current values merged with the given flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := a.api.Post(cmd.Context(), id)
			if err != nil {
				return a.failed("Could not load post", err, "Failed to load the post.")
			}

			fs := cmd.Flags()
			in := current.Input()
			if err := pf.apply(fs, &in); err != nil {
				return err
			}
			// A stored slug counts as edited: retitling keeps the URL.
			var slug model.SlugField
			slug.Edit(current.Slug)
			if fs.Changed("slug") {
				slug.Edit(pf.slug)
			}
			slug.SetSource(in.Title)
			in.Slug = slug.Value()

			p, err := a.api.UpdatePost(cmd.Context(), id, in)
			if err != nil {
				return a.failed("Could not update post", err, "Failed to update the post.")
			}
			a.notifier.Success("Post updated", fmt.Sprintf("%q saved (id %d).", p.Title, p.ID))
			return nil
		},
	}
	pf.register(cmd.Flags())
	return cmd
}

func (a *app) postsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <draft|published>",
		Short: "Change only the status of a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status := model.PostStatus(args[1])
			if !status.Valid() {
				return fmt.Errorf("invalid status %q (draft or published)", args[1])
			}
			if err := a.api.UpdatePostStatus(cmd.Context(), id, status); err != nil {
				return a.failed("Could not change status", err, "Failed to update the post status.")
			}
			a.notifier.Success("Status updated", fmt.Sprintf("Post %d is now %s.", id, status))
			return nil
		},
	}
}

func (a *app) postsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.destroy(cmd.Context(), yes, confirm.Options{
				Title:          "Delete post",
				Message:        fmt.Sprintf("Delete post %d? This cannot be undone.", id),
				ConfirmLabel:   "Delete",
				ErrorTitle:     "Could not delete post",
				SuccessMessage: fmt.Sprintf("Post %d deleted.", id),
				Action: func(ctx context.Context) error {
					return a.api.DeletePost(ctx, id)
				},
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
