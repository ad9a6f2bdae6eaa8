package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/pressroom/internal/apiclient"
	"github.com/bryan-buckman/pressroom/internal/confirm"
)

func (a *app) subscribersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscribers",
		Aliases: []string{"subscriber"},
		Short:   "Manage newsletter subscribers",
	}
	cmd.AddCommand(a.subscribersListCmd(), a.subscribersDeleteCmd())
	return cmd
}

func (a *app) subscribersListCmd() *cobra.Command {
	var (
		active        bool
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscribers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			var f apiclient.SubscriberFilter
			if cmd.Flags().Changed("active") {
				f.IsActive = &active
			}
			if cmd.Flags().Changed("limit") {
				f.Limit = &limit
			}
			if cmd.Flags().Changed("offset") {
				f.Offset = &offset
			}

			subs, err := a.api.Subscribers(cmd.Context(), f)
			if err != nil {
				return a.failed("Could not load subscribers", err, "Failed to load subscribers.")
			}
			t := newTable(a.out, "ID", "Email", "Active", "Subscribed", "Unsubscribed")
			for _, s := range subs {
				unsubscribed := "-"
				if s.UnsubscribedAt != nil {
					unsubscribed = when(*s.UnsubscribedAt)
				}
				t.Append([]string{fmt.Sprint(s.ID), s.Email, yesNo(s.IsActive), when(s.SubscribedAt), unsubscribed})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&active, "active", false, "filter by active flag (--active=false for unsubscribed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of subscribers")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of subscribers to skip")
	return cmd
}

func (a *app) subscribersDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subscriber",
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
				Title:          "Delete subscriber",
				Message:        fmt.Sprintf("Delete subscriber %d permanently?", id),
				ConfirmLabel:   "Delete",
				ErrorTitle:     "Could not delete subscriber",
				SuccessMessage: fmt.Sprintf("Subscriber %d deleted.", id),
				Action: func(ctx context.Context) error {
					return a.api.DeleteSubscriber(ctx, id)
				},
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
