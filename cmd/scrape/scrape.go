// Package scrape implements the scrape command, which runs the full
// extraction pipeline across the configured targets and exports the
// merged results.
package scrape

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/plancrawl/cmd/common"
	"github.com/jonesrussell/plancrawl/internal/domain"
	"github.com/jonesrussell/plancrawl/internal/orchestrator"
	"github.com/jonesrussell/plancrawl/internal/output"
	"github.com/jonesrussell/plancrawl/internal/targets"
)

// Params hold the scrape command's flag values.
type Params struct {
	CfgFile     string
	Debug       bool
	Targets     []string
	AnalyzeOnly bool
	OutputDir   string
	Format      string
	NoEnrich    bool
	Silent      bool
}

// Command returns the scrape command.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	params := &Params{}

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract mobile plans from the configured targets",
		Long: `Scrape fetches every configured pricing page, infers the page
structure, extracts plan records, and exports the merged results.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params.CfgFile = *cfgFile
			params.Debug = *debug
			return Run(cmd.Context(), params)
		},
	}

	cmd.Flags().StringSliceVarP(&params.Targets, "target", "t", nil,
		"limit the run to the named target keys (repeatable)")
	cmd.Flags().BoolVar(&params.AnalyzeOnly, "analyze-only", false,
		"report page structure without extracting plans")
	cmd.Flags().StringVarP(&params.OutputDir, "output", "o", "",
		"output directory (overrides configuration)")
	cmd.Flags().StringVarP(&params.Format, "format", "f", "",
		"export format, json or csv (overrides configuration)")
	cmd.Flags().BoolVar(&params.NoEnrich, "no-enrich", false,
		"skip the reputation lookup")
	cmd.Flags().BoolVar(&params.Silent, "silent", false,
		"suppress the console summary")

	return cmd
}

// Run executes a scrape with the given parameters.
func Run(ctx context.Context, params *Params) error {
	setup, err := common.Init(params.CfgFile, params.Debug)
	if err != nil {
		return err
	}

	targetList, err := loadTargets(setup, params.Targets)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline := setup.Pipeline(orchestrator.Options{
		AnalyzeOnly:       params.AnalyzeOnly,
		EnrichmentEnabled: setup.Config.Enrichment.Enabled && !params.NoEnrich,
		MaxConcurrency:    setup.Config.Run.MaxConcurrency,
	})

	result, err := pipeline.Run(runCtx, targetList)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if !params.Silent {
		renderer := output.NewSummaryRenderer(os.Stdout)
		if params.AnalyzeOnly {
			renderer.RenderAnalysis(result)
		} else {
			renderer.Render(result)
		}
	}

	return export(setup, params, result)
}

// loadTargets reads the targets file and applies the optional key filter.
func loadTargets(setup *common.Setup, keys []string) ([]domain.Target, error) {
	all, err := targets.NewLoader(setup.Config.Run.TargetsFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}

	if len(keys) == 0 {
		return all, nil
	}

	filtered := targets.Filter(all, keys)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no configured target matches %v", keys)
	}
	return filtered, nil
}

// export writes the run result in the selected format.
func export(setup *common.Setup, params *Params, result *domain.RunResult) error {
	dir := setup.Config.Run.OutputDir
	if params.OutputDir != "" {
		dir = params.OutputDir
	}

	format := setup.Config.Run.OutputFormat
	if params.Format != "" {
		format = params.Format
	}

	// Structural records have no row shape, so analyze-only runs always
	// export as JSON.
	if params.AnalyzeOnly {
		if params.Format != "" && params.Format != "json" {
			return fmt.Errorf("analyze-only results export as json, not %q", params.Format)
		}
		path, err := output.SaveAnalysisJSON(dir, result)
		if err != nil {
			return fmt.Errorf("failed to export analysis: %w", err)
		}
		setup.Logger.Info("analysis exported", "path", path)
		return nil
	}

	var path string
	var err error
	switch format {
	case "csv":
		path, err = output.SaveCSV(dir, result)
	case "json":
		path, err = output.SaveJSON(dir, result)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}

	setup.Logger.Info("results exported", "path", path, "format", format)
	return nil
}
