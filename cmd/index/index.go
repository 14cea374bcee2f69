// Package index implements commands for managing the Elasticsearch indices
// the crawler writes to.
package index

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/standingshq/leaguecrawl/cmd/common"
)

// Command returns the index command with its subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage Elasticsearch indices",
	}

	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the standings and activity indices if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			store, err := common.NewStorage(deps)
			if err != nil {
				return err
			}

			if err := store.EnsureIndices(cmd.Context()); err != nil {
				return fmt.Errorf("failed to set up indices: %w", err)
			}

			fmt.Println("indices ready")
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indices with health and document counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			store, err := common.NewStorage(deps)
			if err != nil {
				return err
			}

			indices, err := store.ListIndices(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list indices: %w", err)
			}
			if len(indices) == 0 {
				fmt.Println("no indices found")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Index", "Health", "Docs", "Size"})
			for _, info := range indices {
				t.AppendRow(table.Row{info.Name, info.Health, info.Docs, info.Size})
			}
			t.Render()

			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !force {
				return fmt.Errorf("refusing to delete index %q without --force", name)
			}

			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			store, err := common.NewStorage(deps)
			if err != nil {
				return err
			}

			if err := store.DeleteIndex(cmd.Context(), name); err != nil {
				return err
			}

			fmt.Printf("index %s deleted\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm the deletion")

	return cmd
}
