// Package crawl implements the one-shot crawl command.
package crawl

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/standingshq/leaguecrawl/cmd/common"
	"github.com/standingshq/leaguecrawl/internal/crawler"
)

// Command returns the crawl command.
func Command() *cobra.Command {
	var leagues []string

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl standings for the configured leagues",
		Long: `Crawl extracts current standings for every configured league and
persists them to Elasticsearch. A league that fails extraction is logged
and skipped; the run continues with the remaining leagues.

The --league flag restricts the run to specific league identifiers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			if len(leagues) > 0 {
				deps.Config.LeagueIDs = leagues
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

			summary, err := c.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("crawled %d leagues: %d succeeded, %d failed (%d created, %d updated)\n",
				summary.Leagues, summary.Succeeded, summary.Failed,
				summary.Created, summary.Updated)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&leagues, "league", nil,
		"league identifiers to crawl (default: all configured leagues)")

	return cmd
}
