// Package targets implements the targets command for inspecting and
// validating the configured extraction targets.
package targets

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/plancrawl/cmd/common"
	internaltargets "github.com/jonesrussell/plancrawl/internal/targets"
)

// Command returns the targets command with its list and validate
// subcommands.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Manage extraction targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(listCommand(cfgFile, debug))
	cmd.AddCommand(validateCommand(cfgFile, debug))

	return cmd
}

func listCommand(cfgFile *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured targets",
		RunE: func(_ *cobra.Command, _ []string) error {
			setup, err := common.Init(*cfgFile, *debug)
			if err != nil {
				return err
			}

			targetList, err := internaltargets.NewLoader(setup.Config.Run.TargetsFile).Load()
			if err != nil {
				return fmt.Errorf("failed to load targets: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Key", "Name", "URL", "Fallback Containers"})

			for i := range targetList {
				target := &targetList[i]
				t.AppendRow(table.Row{
					target.Key,
					target.Name,
					target.URL,
					strings.Join(target.Selectors.Containers, ", "),
				})
			}

			t.Render()
			return nil
		},
	}
}

func validateCommand(cfgFile *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the targets file",
		RunE: func(_ *cobra.Command, _ []string) error {
			setup, err := common.Init(*cfgFile, *debug)
			if err != nil {
				return err
			}

			path := setup.Config.Run.TargetsFile
			targetList, err := internaltargets.NewLoader(path).Load()
			if err != nil {
				return fmt.Errorf("targets file %s is invalid: %w", path, err)
			}

			fmt.Printf("targets file %s is valid: %d targets\n", path, len(targetList))
			return nil
		},
	}
}
