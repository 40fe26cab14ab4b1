package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/comfyctl/internal/history"
)

var historyLimit int

var historyListCmd = &cobra.Command{
	Use:   "history:list",
	Short: "List recent generations recorded locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := history.NewDB(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		generations, err := db.Generations().ListRecent(historyLimit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PROMPT ID\tTEMPLATE\tMODEL\tSEED\tIMAGES\tWHEN")
		for _, g := range generations {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
				g.PromptID, g.TemplateID, g.Model, g.Seed, g.ImageCount,
				g.CreatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "history:show <prompt-id>",
	Short: "Show one recorded generation in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := history.NewDB(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		g, err := db.Generations().FindByPromptID(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "prompt id:  %s\n", g.PromptID)
		fmt.Fprintf(out, "template:   %s\n", g.TemplateID)
		fmt.Fprintf(out, "model:      %s\n", g.Model)
		fmt.Fprintf(out, "prompt:     %s\n", g.PromptText)
		fmt.Fprintf(out, "negative:   %s\n", g.NegativeText)
		fmt.Fprintf(out, "seed:       %d\n", g.Seed)
		fmt.Fprintf(out, "size:       %dx%d\n", g.Width, g.Height)
		fmt.Fprintf(out, "images:     %d\n", g.ImageCount)
		fmt.Fprintf(out, "created at: %s\n", g.CreatedAt.Format(time.RFC3339))
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "history:delete <prompt-id>",
	Short: "Delete one recorded generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := history.NewDB(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		return db.Generations().Delete(args[0])
	},
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows to list (0 for all)")
	rootCmd.AddCommand(historyListCmd)
	rootCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyDeleteCmd)
}
