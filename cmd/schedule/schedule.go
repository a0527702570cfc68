// Package schedule implements the schedule command, which runs scrapes
// on a cron schedule until interrupted.
package schedule

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/plancrawl/cmd/common"
	"github.com/jonesrussell/plancrawl/cmd/scrape"
)

// DefaultSpec runs a scrape every morning at 06:00.
const DefaultSpec = "0 6 * * *"

// Command returns the schedule command.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	var spec string
	params := &scrape.Params{Silent: true}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run scrapes on a cron schedule",
		Long: `Schedule runs the scrape pipeline repeatedly on a cron schedule,
exporting each run's results, until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params.CfgFile = *cfgFile
			params.Debug = *debug
			return run(cmd.Context(), spec, params)
		},
	}

	cmd.Flags().StringVar(&spec, "cron", DefaultSpec, "cron schedule expression")
	cmd.Flags().StringSliceVarP(&params.Targets, "target", "t", nil,
		"limit each run to the named target keys (repeatable)")
	cmd.Flags().BoolVar(&params.NoEnrich, "no-enrich", false,
		"skip the reputation lookup")

	return cmd
}

func run(ctx context.Context, spec string, params *scrape.Params) error {
	setup, err := common.Init(params.CfgFile, params.Debug)
	if err != nil {
		return err
	}
	log := setup.Logger.WithComponent("schedule")

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New()
	_, err = scheduler.AddFunc(spec, func() {
		log.Info("scheduled scrape starting", "cron", spec)
		if runErr := scrape.Run(runCtx, params); runErr != nil {
			log.Error("scheduled scrape failed", "error", runErr.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	log.Info("scheduler started", "cron", spec)
	scheduler.Start()

	<-runCtx.Done()

	log.Info("scheduler stopping")
	<-scheduler.Stop().Done()
	return nil
}
