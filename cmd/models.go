package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models:list",
	Short: "List the checkpoint models available on the server",
	Long: `List the checkpoint models the ComfyUI server can load.

The list comes from the server's object metadata for its checkpoint
loader node, so it reflects the model files actually present on the
server, not local state.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, provider, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = provider.Shutdown(context.Background()) }()

		models, err := client.Checkpoints(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching checkpoint list: %w", err)
		}
		for _, m := range models {
			fmt.Fprintln(cmd.OutOrStdout(), m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
