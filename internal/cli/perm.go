package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

func newPermCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perm",
		Short: "Manage permission groups and event roles",
		Long: `Manage permission groups and event roles.

A user's capability on an event is the highest of the event's default
role and the grants of every group the user belongs to. Running servers
apply changes to open subscriptions immediately.`,
	}
	cmd.AddCommand(
		newPermGrantCommand(opts),
		newPermRevokeCommand(opts),
		newPermMemberCommand(opts, "add-member", "Add a user to a group", func(ctx context.Context, s *Services, group, subject string) error {
			return s.Perms.AddMember(ctx, group, subject)
		}),
		newPermMemberCommand(opts, "remove-member", "Remove a user from a group", func(ctx context.Context, s *Services, group, subject string) error {
			return s.Perms.RemoveMember(ctx, group, subject)
		}),
		newPermDefaultRoleCommand(opts),
	)
	return cmd
}

func newPermGrantCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "grant <group> <event-id> <view|edit|supervisor>",
		Short: "Grant a group a capability on an event",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[1])
			if err != nil {
				return err
			}
			c, err := domain.ParseCapability(args[2])
			if err != nil {
				return err
			}
			if c == domain.CapabilityNone {
				return fmt.Errorf("use revoke to remove a grant")
			}
			return opts.withServices(cmd, func(ctx context.Context, s *Services, out *Output) error {
				if err := s.Perms.GrantGroup(ctx, args[0], eventID, c); err != nil {
					return err
				}
				return out.Result(
					map[string]string{"group": args[0], "event_id": eventID.String(), "capability": c.String()},
					fmt.Sprintf("granted %s on %s to %s", c, eventID, args[0]),
				)
			})
		},
	}
}

func newPermRevokeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <group> <event-id>",
		Short: "Remove a group's grant on an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[1])
			if err != nil {
				return err
			}
			return opts.withServices(cmd, func(ctx context.Context, s *Services, out *Output) error {
				if err := s.Perms.RevokeGroup(ctx, args[0], eventID); err != nil {
					return err
				}
				return out.Result(
					map[string]string{"group": args[0], "event_id": eventID.String()},
					fmt.Sprintf("revoked %s on %s", args[0], eventID),
				)
			})
		},
	}
}

func newPermMemberCommand(opts *RootOptions, use, short string, fn func(ctx context.Context, s *Services, group, subject string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <group> <subject>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *Services, out *Output) error {
				if err := fn(ctx, s, args[0], args[1]); err != nil {
					return err
				}
				return out.Result(
					map[string]string{"group": args[0], "subject": args[1]},
					fmt.Sprintf("%s: %s %s", use, args[1], args[0]),
				)
			})
		},
	}
}

func newPermDefaultRoleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "default-role <event-id> <none|view|edit|supervisor>",
		Short: "Set the capability every user has on an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			c, err := domain.ParseCapability(args[1])
			if err != nil {
				return err
			}
			return opts.withServices(cmd, func(ctx context.Context, s *Services, out *Output) error {
				if err := s.Perms.SetDefaultRole(ctx, eventID, c); err != nil {
					return err
				}
				return out.Result(
					map[string]string{"event_id": eventID.String(), "default_role": c.String()},
					fmt.Sprintf("default role of %s is %s", eventID, c),
				)
			})
		},
	}
}
