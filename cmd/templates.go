package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zjrosen/comfyctl/internal/graph"
	"github.com/zjrosen/comfyctl/internal/template"
	"github.com/zjrosen/comfyctl/internal/watcher"
)

var templatesListCmd = &cobra.Command{
	Use:   "templates:list",
	Short: "List available workflow templates",
	Long: `List the workflow templates comfyctl can run: the built-in ones plus
any JSON files in the user template directory. A user template with the
same name as a built-in shadows it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := template.NewRegistry(cfg.Templates.Dir)
		if err != nil {
			return fmt.Errorf("loading templates: %w", err)
		}
		printTemplates(cmd, registry)
		return nil
	},
}

var templatesWatchCmd = &cobra.Command{
	Use:   "templates:watch",
	Short: "Watch the template directory and reprint the list on changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Templates.Dir == "" {
			return fmt.Errorf("no template directory configured")
		}
		if err := os.MkdirAll(cfg.Templates.Dir, 0o750); err != nil {
			return fmt.Errorf("creating template directory: %w", err)
		}

		registry, err := template.NewRegistry(cfg.Templates.Dir)
		if err != nil {
			return fmt.Errorf("loading templates: %w", err)
		}
		printTemplates(cmd, registry)

		w, err := watcher.New(watcher.DefaultConfig(cfg.Templates.Dir))
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()

		changes, err := w.Start()
		if err != nil {
			return err
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case <-changes:
				if err := registry.Reload(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reloading templates: %v\n", err)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout())
				printTemplates(cmd, registry)
			case <-stop:
				return nil
			case <-cmd.Context().Done():
				return nil
			}
		}
	},
}

func printTemplates(cmd *cobra.Command, registry *template.Registry) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOURCE\tMODEL\tSIZE")
	for _, t := range registry.List() {
		model, size := "-", "-"
		if p, err := t.Prompt(); err == nil {
			if m, err := graph.ModelName(p); err == nil {
				model = m
			}
			if w, h, err := graph.Size(p); err == nil {
				size = fmt.Sprintf("%dx%d", w, h)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Source, model, size)
	}
	_ = tw.Flush()
}

func init() {
	rootCmd.AddCommand(templatesListCmd)
	rootCmd.AddCommand(templatesWatchCmd)
}
