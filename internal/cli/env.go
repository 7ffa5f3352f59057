package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/streamlog-backend/internal/config"
)

func newEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables the server and this tool read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			help, err := config.EnvHelp()
			if err != nil {
				return fmt.Errorf("describe config: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), help)
			return err
		},
	}
}
