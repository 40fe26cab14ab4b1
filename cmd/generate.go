package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/comfyctl/internal/comfy"
	"github.com/zjrosen/comfyctl/internal/graph"
	"github.com/zjrosen/comfyctl/internal/history"
	"github.com/zjrosen/comfyctl/internal/template"
)

var (
	genPrompt   string
	genNegative string
	genModel    string
	genWidth    int64
	genHeight   int64
	genSeed     int64
	genAnchor   string
	genOutput   string
	genTimeout  time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate [template]",
	Short: "Run a workflow template and download the images",
	Long: `Run a workflow template on the ComfyUI server and download the
generated images.

Parameters given as flags are written into the template before queueing.
Omitted flags fall back to the defaults section of the config file, and
finally to the value baked into the template itself.

Examples:
  # Run the stock text2img template with a prompt
  comfyctl generate -p "a watercolor lighthouse at dusk"

  # Pick a model, size and seed
  comfyctl generate -p "a red fox" -m sdxl.safetensors --width 1024 --height 1024 --seed 42

  # Scope parameter resolution to one sampler in a multi-sampler graph
  comfyctl generate text2img_custom -p "a red fox" --anchor 13`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genPrompt, "prompt", "p", "", "positive prompt text")
	generateCmd.Flags().StringVarP(&genNegative, "negative", "n", "", "negative prompt text")
	generateCmd.Flags().StringVarP(&genModel, "model", "m", "", "checkpoint model name")
	generateCmd.Flags().Int64Var(&genWidth, "width", 0, "image width (0 keeps the template's value)")
	generateCmd.Flags().Int64Var(&genHeight, "height", 0, "image height (0 keeps the template's value)")
	generateCmd.Flags().Int64Var(&genSeed, "seed", -1, "sampler seed (-1 keeps the template's value)")
	generateCmd.Flags().StringVar(&genAnchor, "anchor", "", "sampler node id to scope parameter resolution")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", ".", "directory to write images into")
	generateCmd.Flags().DurationVar(&genTimeout, "timeout", 10*time.Minute, "abort the generation after this long")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	templateID := "text2img"
	if len(args) == 1 {
		templateID = args[0]
	}

	registry, err := template.NewRegistry(cfg.Templates.Dir)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	tpl, err := registry.Get(templateID)
	if err != nil {
		return err
	}
	p, err := tpl.Prompt()
	if err != nil {
		return fmt.Errorf("parsing template %q: %w", templateID, err)
	}

	if err := applyParameters(p); err != nil {
		return err
	}

	client, provider, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	ctx, cancel := context.WithTimeout(cmd.Context(), genTimeout)
	defer cancel()

	result, err := client.Generate(ctx, p, func(prog comfy.Progress) {
		fmt.Fprintf(cmd.OutOrStdout(), "\rsampling %d/%d", prog.Value, prog.Max)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())

	if err := os.MkdirAll(genOutput, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, img := range result.Images {
		path := filepath.Join(genOutput, img.Ref.Filename)
		if err := os.WriteFile(path, img.Data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}

	if cfg.History.Enabled {
		if err := recordGeneration(templateID, result, p); err != nil {
			// The images are already on disk; a bookkeeping failure
			// shouldn't fail the run.
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: recording history: %v\n", err)
		}
	}
	return nil
}

// applyParameters writes the flag and config-default parameters into the
// workflow graph. Flags win over config defaults; unset values leave the
// template untouched.
func applyParameters(p *graph.Prompt) error {
	apply := func(s graph.Setter) error {
		if genAnchor != "" {
			return s.ApplyFrom(p, genAnchor)
		}
		return s.Apply(p)
	}

	if genPrompt != "" {
		if err := apply(graph.TextSetter{Text: genPrompt}); err != nil {
			return fmt.Errorf("setting prompt: %w", err)
		}
	}

	negative := genNegative
	if negative == "" {
		negative = cfg.Defaults.Negative
	}
	if negative != "" {
		if err := apply(graph.NegativeTextSetter{Text: negative}); err != nil {
			return fmt.Errorf("setting negative prompt: %w", err)
		}
	}

	model := genModel
	if model == "" {
		model = cfg.Defaults.Model
	}
	if model != "" {
		if err := apply(graph.ModelSetter{Model: model}); err != nil {
			return fmt.Errorf("setting model: %w", err)
		}
	}

	width, height := genWidth, genHeight
	if width == 0 {
		width = cfg.Defaults.Width
	}
	if height == 0 {
		height = cfg.Defaults.Height
	}
	if width != 0 || height != 0 {
		if err := apply(graph.SizeSetter{Width: width, Height: height}); err != nil {
			return fmt.Errorf("setting size: %w", err)
		}
	}

	if genSeed >= 0 {
		if err := apply(graph.NewSeedSetter(genSeed)); err != nil {
			return fmt.Errorf("setting seed: %w", err)
		}
	}
	return nil
}

// recordGeneration saves the finished run to the local history database.
// The recorded parameters are read back from the graph so config defaults
// and template values are captured, not just flags.
func recordGeneration(templateID string, result comfy.Result, p *graph.Prompt) error {
	db, err := history.NewDB(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	g := &history.Generation{
		PromptID:   result.PromptID,
		TemplateID: templateID,
		ImageCount: len(result.Images),
		CreatedAt:  time.Now(),
	}
	// Best effort per field: a template without one of these nodes still
	// gets recorded.
	if model, err := graph.ModelName(p); err == nil {
		g.Model = model
	}
	if text, err := graph.PromptText(p); err == nil {
		g.PromptText = text
	}
	if text, err := graph.NegativePromptText(p); err == nil {
		g.NegativeText = text
	}
	if seed, err := graph.Seed(p); err == nil {
		g.Seed = seed
	}
	if width, height, err := graph.Size(p); err == nil {
		g.Width = width
		g.Height = height
	}

	return db.Generations().Save(g)
}
