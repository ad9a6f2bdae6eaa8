package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/pressroom/internal/model"
)

func (a *app) loginCmd() *cobra.Command {
	var in model.LoginInput
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as an administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAPI(); err != nil {
				return err
			}
			if in.Email == "" {
				in.Email = a.prompt("Email: ")
			}
			if in.Password == "" {
				in.Password = a.prompt("Password: ")
			}
			if in.Email == "" || in.Password == "" {
				return fmt.Errorf("email and password are required")
			}

			auth, err := a.api.Login(cmd.Context(), in)
			if err != nil {
				return a.failed("Login failed", err, "Login failed. Please check your credentials.")
			}
			if err := a.session.Start(auth); err != nil {
				return err
			}
			a.notifier.Success("Logged in", fmt.Sprintf("Welcome, %s.", displayName(auth.User)))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password (prompted when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored admin session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session.Logout()
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.session.IsAuthenticated() {
				return fmt.Errorf("not logged in")
			}
			user := a.session.User()
			if verify {
				if err := a.requireAPI(); err != nil {
					return err
				}
				u, err := a.api.Verify(cmd.Context())
				if err != nil {
					return a.failed("Session invalid", err, "Could not verify the session.")
				}
				user = &u
			}
			if user == nil {
				fmt.Fprintln(a.out, "logged in (no profile stored)")
				return nil
			}
			details(a.out, [][2]string{
				{"ID", fmt.Sprint(user.ID)},
				{"Name", user.Name},
				{"Email", user.Email},
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "check the token against the API")
	return cmd
}

func (a *app) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

func displayName(u model.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
