package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	appsvc "github.com/heartmarshall/streamlog-backend/internal/service/application"
)

// keyResult is printed once after create and rotate. The raw key cannot be
// shown again.
type keyResult struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

func newAppCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app",
		Short: "Manage integration applications",
	}
	cmd.AddCommand(
		newAppCreateCommand(opts),
		newAppRotateCommand(opts),
		newAppRevokeCommand(opts),
		newAppGrantCommand(opts),
		newAppListCommand(opts),
	)
	return cmd
}

func newAppCreateCommand(opts *RootOptions) *cobra.Command {
	var readLog, writeLinks bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Register an application and print its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *Services, out *Output) error {
				app, key, err := s.Apps.Create(ctx, appsvc.CreateInput{
					Name:       args[0],
					ReadLog:    readLog,
					WriteLinks: writeLinks,
				})
				if err != nil {
					return err
				}
				return out.Result(keyResult{Name: app.Name, Key: key}, key)
			})
		},
	}
	cmd.Flags().BoolVar(&readLog, "read-log", false, "allow reading event logs")
	cmd.Flags().BoolVar(&writeLinks, "write-links", false, "allow writing video and editor links")
	return cmd
}

func newAppRotateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate <name>",
		Short: "Replace an application's key and print the new one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *Services, out *Output) error {
				key, err := s.Apps.RotateKey(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Result(keyResult{Name: args[0], Key: key}, key)
			})
		},
	}
}

func newAppRevokeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <name>",
		Short: "Revoke an application's key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *Services, out *Output) error {
				if err := s.Apps.Revoke(ctx, args[0]); err != nil {
					return err
				}
				return out.Result(map[string]string{"revoked": args[0]}, "revoked "+args[0])
			})
		},
	}
}

func newAppGrantCommand(opts *RootOptions) *cobra.Command {
	var readLog, writeLinks bool
	cmd := &cobra.Command{
		Use:   "grant <name>",
		Short: "Set an application's capabilities",
		Long:  "Set an application's capabilities. Capabilities not passed are removed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *Services, out *Output) error {
				if err := s.Apps.SetCapabilities(ctx, args[0], readLog, writeLinks); err != nil {
					return err
				}
				return out.Result(
					map[string]any{"name": args[0], "read_log": readLog, "write_links": writeLinks},
					"updated "+args[0],
				)
			})
		},
	}
	cmd.Flags().BoolVar(&readLog, "read-log", false, "allow reading event logs")
	cmd.Flags().BoolVar(&writeLinks, "write-links", false, "allow writing video and editor links")
	return cmd
}

type appRow struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ReadLog    bool      `json:"read_log"`
	WriteLinks bool      `json:"write_links"`
	Revoked    bool      `json:"revoked"`
	CreatedAt  time.Time `json:"created_at"`
}

func newAppListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *Services, out *Output) error {
				apps, err := s.Apps.List(ctx)
				if err != nil {
					return err
				}
				return out.Table(toAppRows(apps), []string{"NAME", "READ_LOG", "WRITE_LINKS", "REVOKED", "ID"}, appTable(apps))
			})
		},
	}
}

func toAppRows(apps []domain.Application) []appRow {
	rows := make([]appRow, 0, len(apps))
	for i := range apps {
		a := &apps[i]
		rows = append(rows, appRow{
			ID:         a.ID.String(),
			Name:       a.Name,
			ReadLog:    a.ReadLog,
			WriteLinks: a.WriteLinks,
			Revoked:    a.Revoked(),
			CreatedAt:  a.CreatedAt,
		})
	}
	return rows
}

func appTable(apps []domain.Application) [][]string {
	rows := make([][]string, 0, len(apps))
	for i := range apps {
		a := &apps[i]
		rows = append(rows, []string{
			a.Name,
			strconv.FormatBool(a.ReadLog),
			strconv.FormatBool(a.WriteLinks),
			strconv.FormatBool(a.Revoked()),
			a.ID.String(),
		})
	}
	return rows
}
