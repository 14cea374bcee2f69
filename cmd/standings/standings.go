// Package standings implements the command that prints persisted league
// tables.
package standings

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/standingshq/leaguecrawl/cmd/common"
)

// Command returns the standings command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "standings [league-id]",
		Short: "Print the persisted standings for a league",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			store, err := common.NewStorage(deps)
			if err != nil {
				return err
			}

			leagueID := args[0]
			records, err := store.GetStandings(cmd.Context(), leagueID)
			if err != nil {
				return fmt.Errorf("failed to load standings for league %s: %w", leagueID, err)
			}
			if len(records) == 0 {
				fmt.Printf("no standings stored for league %s\n", leagueID)
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"#", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts"})
			for _, rec := range records {
				t.AppendRow(table.Row{
					rec.Rank, rec.Name, rec.Played, rec.Wins, rec.Draws, rec.Losses,
					rec.GoalsFor, rec.GoalsAgainst, rec.GoalDiff, rec.Points,
				})
			}
			t.Render()

			return nil
		},
	}
}
