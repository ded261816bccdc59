package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"RecipeScanner/internal/app"
	"RecipeScanner/internal/config"
	"RecipeScanner/internal/logging"
)

// cli carries state shared by every command once the root pre-run has loaded it.
type cli struct {
	cfgFile string
	debug   bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "recipescanner",
		Short:         "Import pin exports into Notion and pick search keywords for recipe websites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfgFile != "" {
				if err := os.Setenv("RECIPE_SCANNER_CONFIG", c.cfgFile); err != nil {
					return fmt.Errorf("set config path: %w", err)
				}
			}
			c.cfg = config.Load()
			if c.debug {
				c.cfg.Logging.Level = "debug"
			}
			c.logger = logging.NewWithFormat(c.cfg.Logging.Level, c.cfg.Logging.Format, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "YAML config file (overrides RECIPE_SCANNER_CONFIG)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		c.ingestCommand(),
		c.keywordsCommand(),
		c.runCommand(),
		c.runsCommand(),
		c.serveCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "recipescanner %s\n", app.Version)
			},
		},
	)
	return root
}

func (c *cli) application() (*app.Application, error) {
	a, err := app.New(c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("build application: %w", err)
	}
	return a, nil
}
