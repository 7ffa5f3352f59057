package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

func newTokenCommand(opts *RootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an identity token for development",
		Long: `Issue an identity token for development.

Production deployments receive tokens from the identity provider; this
signs one with the server's own secret so that a client can connect
without it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(_ context.Context, s *Services, out *Output) error {
				display := name
				if display == "" {
					display = args[0]
				}
				tok, err := s.Tokens.IssueIdentityToken(domain.Identity{Subject: args[0], DisplayName: display})
				if err != nil {
					return err
				}
				return out.Result(map[string]string{"token": tok}, tok)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the subject)")
	return cmd
}
