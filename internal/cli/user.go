package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

func newUserCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAdminCommand(opts))
	return cmd
}

func newUserAdminCommand(opts *RootOptions) *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "admin <subject>",
		Short: "Make a user an admin (supervisor on every event)",
		Long: `Make a user an admin (supervisor on every event).

The user must have signed in at least once. Pass --revoke to remove the flag.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *Services, out *Output) error {
				u, err := s.Users.SetAdmin(ctx, args[0], !revoke)
				if err != nil {
					return err
				}
				return out.Result(u, adminText(u))
			})
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove admin instead of granting it")
	return cmd
}

func adminText(u domain.User) string {
	if u.IsAdmin {
		return fmt.Sprintf("%s (%s) is now an admin", u.Name, u.ID)
	}
	return fmt.Sprintf("%s (%s) is no longer an admin", u.Name, u.ID)
}
