// Package cmd implements the comfyctl command line interface.
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/comfyctl/internal/comfy"
	"github.com/zjrosen/comfyctl/internal/config"
	"github.com/zjrosen/comfyctl/internal/log"
	"github.com/zjrosen/comfyctl/internal/tracing"
)

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:          "comfyctl",
	Short:        "Queue and track ComfyUI image generations from the terminal",
	Long:         `comfyctl loads workflow templates, rewrites their parameters (prompt, model, size, seed), queues them on a ComfyUI server, and follows execution until the images land on disk.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/comfyctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write debug logs to comfyctl.log")
	rootCmd.PersistentFlags().StringP("server", "s", "",
		"ComfyUI server url (default: http://localhost:8188)")

	_ = viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("server.url", defaults.Server.URL)
	viper.SetDefault("templates.dir", defaults.Templates.Dir)
	viper.SetDefault("history.enabled", defaults.History.Enabled)
	viper.SetDefault("history.db_path", defaults.History.DBPath)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .comfyctl/config.yaml (current directory)
		// 2. ~/.config/comfyctl/config.yaml (user config)
		if _, err := os.Stat(".comfyctl/config.yaml"); err == nil {
			viper.SetConfigFile(".comfyctl/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "comfyctl"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at the user path
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			home, homeErr := os.UserHomeDir()
			if homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "comfyctl", "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func initLogging() {
	if !debug && os.Getenv("COMFYCTL_DEBUG") == "" {
		return
	}
	if _, err := log.Init("comfyctl.log"); err == nil {
		log.SetEnabled(true)
		log.SetMinLevel(log.LevelDebug)
	}
}

// newClient builds the ComfyUI client plus the tracing provider from the
// loaded config. The caller must shut the provider down when done.
func newClient() (*comfy.Client, *tracing.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	tcfg := tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  "comfyctl",
	}
	if tcfg.Enabled && tcfg.Exporter == "file" && tcfg.FilePath == "" {
		tcfg.FilePath = config.DefaultTracesFilePath()
	}

	provider, err := tracing.NewProvider(tcfg)
	if err != nil {
		return nil, nil, err
	}

	client, err := comfy.NewClient(cfg.Server.URL, comfy.WithTracer(provider.Tracer()))
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, nil, err
	}
	return client, provider, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
