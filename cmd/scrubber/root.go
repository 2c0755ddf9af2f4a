package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"scrubber/internal/config"
	"scrubber/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// globalOptions holds the persistent flags and what they resolve to.
type globalOptions struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "scrubber",
		Short:        "Clean and validate scraped records",
		Long:         `Normalizes text and dates in scraped JSON records and checks them for required fields, URL shape and content length.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "pipeline config file (YAML); built-in defaults when empty")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	cmd.AddCommand(
		newCleanCommand(opts),
		newValidateCommand(opts),
		newRunCommand(opts),
		newVerifyCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

func (o *globalOptions) load(stderr io.Writer) error {
	cfg := config.DefaultConfig()

	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	o.cfg = cfg
	o.log = logger.NewLoggerWithWriter(stderr, cfg.Logging.Level, cfg.Logging.Format)

	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scrubber version %s\n", version)
		},
	}
}
