// Package schedule implements the recurring crawl command.
package schedule

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/standingshq/leaguecrawl/cmd/common"
	"github.com/standingshq/leaguecrawl/internal/crawler"
)

// Command returns the schedule command.
func Command() *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run crawls on a recurring schedule",
		Long: `Schedule runs the crawl on a cron schedule until interrupted.
The schedule comes from configuration; the --cron flag overrides it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			if spec != "" {
				deps.Config.Schedule = spec
			}

			c, err := crawler.NewFromConfig(deps.Config, deps.Logger)
			if err != nil {
				return fmt.Errorf("failed to construct crawler: %w", err)
			}
			defer func() {
				if closeErr := c.Close(); closeErr != nil {
					deps.Logger.Warn("failed to close crawler", "error", closeErr)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := cron.New()
			_, err = runner.AddFunc(deps.Config.Schedule, func() {
				if _, runErr := c.Run(ctx); runErr != nil {
					deps.Logger.Error("scheduled crawl failed", "error", runErr)
				}
			})
			if err != nil {
				return fmt.Errorf("invalid schedule %q: %w", deps.Config.Schedule, err)
			}

			deps.Logger.Info("scheduler started", "schedule", deps.Config.Schedule)
			runner.Start()

			<-ctx.Done()
			deps.Logger.Info("shutdown signal received")

			// Let an in-flight run finish before exiting.
			<-runner.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "cron expression overriding the configured schedule")

	return cmd
}
