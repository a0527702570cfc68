// Package cmd implements the command-line interface for plancrawl.
// It provides the root command and subcommands for running extractions,
// managing targets, and scheduling recurring runs.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/plancrawl/cmd/schedule"
	"github.com/jonesrussell/plancrawl/cmd/scrape"
	cmdtargets "github.com/jonesrussell/plancrawl/cmd/targets"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	// rootCmd represents the root command for the plancrawl CLI.
	rootCmd = &cobra.Command{
		Use:   "plancrawl",
		Short: "A mobile plan extraction engine",
		Long: `Plancrawl fetches mobile operator pricing pages, infers their
structure, and extracts normalized plan records.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to viper.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (defaults and PLANCRAWL_* environment variables apply without one)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("plancrawl version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(scrape.Command(&cfgFile, &debug))
	rootCmd.AddCommand(cmdtargets.Command(&cfgFile, &debug))
	rootCmd.AddCommand(schedule.Command(&cfgFile, &debug))
}
