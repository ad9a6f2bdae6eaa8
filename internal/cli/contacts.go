package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/pressroom/internal/apiclient"
	"github.com/bryan-buckman/pressroom/internal/confirm"
	"github.com/bryan-buckman/pressroom/internal/model"
)

func (a *app) contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Triage contact form submissions",
	}
	cmd.AddCommand(
		a.contactsListCmd(),
		a.contactsShowCmd(),
		a.contactsStatusCmd(),
		a.contactsDeleteCmd(),
	)
	return cmd
}

func (a *app) contactsListCmd() *cobra.Command {
	var (
		status        string
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			var f apiclient.ContactFilter
			if status != "" {
				f.Status = model.ContactStatus(status)
				if !f.Status.Valid() {
					return fmt.Errorf("invalid status %q (new, read, replied or archived)", status)
				}
			}
			if cmd.Flags().Changed("limit") {
				f.Limit = &limit
			}
			if cmd.Flags().Changed("offset") {
				f.Offset = &offset
			}

			contacts, err := a.api.Contacts(cmd.Context(), f)
			if err != nil {
				return a.failed("Could not load submissions", err, "Failed to load contact submissions.")
			}
			t := newTable(a.out, "ID", "Name", "Email", "Status", "Message", "Received")
			for _, c := range contacts {
				t.Append([]string{
					fmt.Sprint(c.ID), c.Name, c.Email, string(c.Status),
					shorten(c.Message, 40), when(c.CreatedAt),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of submissions")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of submissions to skip")
	return cmd
}

func (a *app) contactsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.api.Contact(cmd.Context(), id)
			if err != nil {
				return a.failed("Could not load submission", err, "Failed to load the submission.")
			}
			details(a.out, [][2]string{
				{"ID", fmt.Sprint(c.ID)},
				{"Name", c.Name},
				{"Email", c.Email},
				{"Status", string(c.Status)},
				{"Received", when(c.CreatedAt)},
			})
			fmt.Fprintf(a.out, "\n%s\n", c.Message)
			return nil
		},
	}
}

func (a *app) contactsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <new|read|replied|archived>",
		Short: "Change the triage status of a submission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status := model.ContactStatus(args[1])
			if !status.Valid() {
				return fmt.Errorf("invalid status %q (new, read, replied or archived)", args[1])
			}
			if err := a.api.UpdateContactStatus(cmd.Context(), id, status); err != nil {
				return a.failed("Could not change status", err, "Failed to update the submission status.")
			}
			a.notifier.Success("Status updated", fmt.Sprintf("Submission %d marked %s.", id, status))
			return nil
		},
	}
}

func (a *app) contactsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a submission",
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
				Title:          "Delete submission",
				Message:        fmt.Sprintf("Delete contact submission %d?", id),
				ConfirmLabel:   "Delete",
				ErrorTitle:     "Could not delete submission",
				SuccessMessage: fmt.Sprintf("Submission %d deleted.", id),
				Action: func(ctx context.Context) error {
					return a.api.DeleteContact(ctx, id)
				},
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
