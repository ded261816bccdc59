package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"RecipeScanner/internal/usecase"
)

func (c *cli) ingestCommand() *cobra.Command {
	var websiteDomain, name string
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Import CSV or XLSX pin exports for one website",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if websiteDomain == "" {
				return errors.New("--domain is required")
			}
			a, err := c.application()
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.Ingest(cmd.Context(), args, a.Website(websiteDomain, name))
			if err != nil {
				return err
			}
			renderSummary(cmd.OutOrStdout(), summary)
			if summary.Processed == 0 {
				return fmt.Errorf("no file was ingested")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&websiteDomain, "domain", "", "website domain the export belongs to")
	cmd.Flags().StringVar(&name, "name", "", "website display name")
	return cmd
}

func (c *cli) keywordsCommand() *cobra.Command {
	var prompt string
	var count int
	cmd := &cobra.Command{
		Use:   "keywords <domain>...",
		Short: "Generate search keywords for websites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			defer a.Close()

			if count <= 0 {
				count = c.cfg.Keywords.DefaultCount
			}
			results, errs := a.Keywords().GenerateBatch(args, prompt, count)
			renderKeywords(cmd.OutOrStdout(), args, results)
			for _, e := range errs {
				c.logger.Warn("keyword generation fell back", "error", e)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "theme prompt; empty rotates through categories")
	cmd.Flags().IntVar(&count, "count", 0, "keywords per domain (default from config)")
	return cmd
}

func (c *cli) runCommand() *cobra.Command {
	var opts usecase.AutomationOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one automation pass: keyword, export and ingest per website",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.Run(cmd.Context(), opts)
			renderSummary(cmd.OutOrStdout(), summary)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&opts.Domains, "domain", nil, "limit the run to these domains")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "theme prompt for keyword selection")
	return cmd
}

func (c *cli) runsCommand() *cobra.Command {
	var websiteDomain string
	var limit uint64
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled ingest runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.RecentRuns(cmd.Context(), websiteDomain, limit)
			if err != nil {
				return err
			}
			renderRuns(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVar(&websiteDomain, "domain", "", "only runs for this domain")
	cmd.Flags().Uint64Var(&limit, "limit", 20, "maximum rows")
	return cmd
}

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API with the inbox watcher and scheduled automation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
}
