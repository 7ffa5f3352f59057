// Package cli implements streamlogctl, the administration command line.
package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	appsvc "github.com/heartmarshall/streamlog-backend/internal/service/application"
)

// AppService manages integration applications.
type AppService interface {
	Create(ctx context.Context, in appsvc.CreateInput) (domain.Application, string, error)
	RotateKey(ctx context.Context, name string) (string, error)
	Revoke(ctx context.Context, name string) error
	SetCapabilities(ctx context.Context, name string, readLog, writeLinks bool) error
	List(ctx context.Context) ([]domain.Application, error)
}

// PermissionService manages groups, grants and default roles.
type PermissionService interface {
	GrantGroup(ctx context.Context, group string, eventID uuid.UUID, c domain.Capability) error
	RevokeGroup(ctx context.Context, group string, eventID uuid.UUID) error
	AddMember(ctx context.Context, group, subject string) error
	RemoveMember(ctx context.Context, group, subject string) error
	SetDefaultRole(ctx context.Context, eventID uuid.UUID, c domain.Capability) error
}

// UserService manages the admin flag.
type UserService interface {
	SetAdmin(ctx context.Context, subject string, admin bool) (domain.User, error)
}

// TokenIssuer signs development identity tokens.
type TokenIssuer interface {
	IssueIdentityToken(identity domain.Identity) (string, error)
}

// Services is what the commands operate on.
type Services struct {
	Apps   AppService
	Perms  PermissionService
	Users  UserService
	Tokens TokenIssuer
}

// Opener connects the services using the configuration file at
// configPath, or the server's default lookup when it is empty. The returned
// func releases them.
type Opener func(ctx context.Context, configPath string) (*Services, func(), error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format  string // "json" | "text"
	Timeout time.Duration
	Config  string

	open Opener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "streamlogctl",
		Short: "Administer a streamlog deployment",
		Long: `Administer a streamlog deployment: integration applications,
permission groups, event default roles and admin users.

Connection settings are read the same way the server reads them
(config file and environment); run "streamlogctl env" to list the
variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "overall command timeout")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default $CONFIG_PATH, then ./config.yaml)")

	cmd.AddCommand(newAppCommand(opts))
	cmd.AddCommand(newPermCommand(opts))
	cmd.AddCommand(newUserCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))
	cmd.AddCommand(newEnvCommand())

	return cmd
}

// withServices runs fn against freshly opened services under the
// command timeout.
func (o *RootOptions) withServices(cmd *cobra.Command, fn func(ctx context.Context, s *Services, out *Output) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), o.Timeout)
	defer cancel()

	s, closeFn, err := o.open(ctx, o.Config)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer closeFn()

	return fn(ctx, s, &Output{Format: o.Format, Writer: cmd.OutOrStdout()})
}

func parseEventID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid event id %q: %w", raw, err)
	}
	return id, nil
}
