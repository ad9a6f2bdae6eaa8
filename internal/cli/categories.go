package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/pressroom/internal/confirm"
	"github.com/bryan-buckman/pressroom/internal/model"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(
		a.categoriesListCmd(),
		a.categoriesCreateCmd(),
		a.categoriesUpdateCmd(),
		a.categoriesDeleteCmd(),
	)
	return cmd
}

func (a *app) categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAPI(); err != nil {
				return err
			}
			categories, err := a.api.Categories(cmd.Context())
			if err != nil {
				return a.failed("Could not load categories", err, "Failed to load categories.")
			}
			t := newTable(a.out, "ID", "Name", "Slug", "Description")
			for _, c := range categories {
				t.Append([]string{fmt.Sprint(c.ID), c.Name, c.Slug, shorten(c.Description, 50)})
			}
			t.Render()
			return nil
		},
	}
}

func (a *app) categoriesCreateCmd() *cobra.Command {
	var name, slug, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			var field model.SlugField
			if cmd.Flags().Changed("slug") {
				field.Edit(slug)
			}
			field.SetSource(name)

			c, err := a.api.CreateCategory(cmd.Context(), model.CategoryInput{
				Name:        strings.TrimSpace(name),
				Slug:        field.Value(),
				Description: description,
			})
			if err != nil {
				return a.failed("Could not create category", err, "Failed to create the category.")
			}
			a.notifier.Success("Category created", fmt.Sprintf("%s (id %d, slug %s).", c.Name, c.ID, c.Slug))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "category name")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug (derived from the name unless set)")
	cmd.Flags().StringVar(&description, "description", "", "category description")
	return cmd
}

func (a *app) categoriesUpdateCmd() *cobra.Command {
	var name, slug, description string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			categories, err := a.api.Categories(cmd.Context())
			if err != nil {
				return a.failed("Could not load categories", err, "Failed to load categories.")
			}
			var current *model.Category
			for i := range categories {
				if categories[i].ID == id {
					current = &categories[i]
					break
				}
			}
			if current == nil {
				return fmt.Errorf("category %d not found", id)
			}

			fs := cmd.Flags()
			in := model.CategoryInput{Name: current.Name, Slug: current.Slug, Description: current.Description}
			if fs.Changed("name") {
				in.Name = strings.TrimSpace(name)
			}
			if fs.Changed("slug") {
				in.Slug = slug
			}
			if fs.Changed("description") {
				in.Description = description
			}

			c, err := a.api.UpdateCategory(cmd.Context(), id, in)
			if err != nil {
				return a.failed("Could not update category", err, "Failed to update the category.")
			}
			a.notifier.Success("Category updated", fmt.Sprintf("%s (id %d).", c.Name, c.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "category name")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&description, "description", "", "category description")
	return cmd
}

func (a *app) categoriesDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
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
				Title:          "Delete category",
				Message:        fmt.Sprintf("Delete category %d? Its posts become uncategorized.", id),
				ConfirmLabel:   "Delete",
				ErrorTitle:     "Could not delete category",
				SuccessMessage: fmt.Sprintf("Category %d deleted.", id),
				Action: func(ctx context.Context) error {
					return a.api.DeleteCategory(ctx, id)
				},
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
