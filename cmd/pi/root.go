package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pi/pkg/logging"
)

var (
	verbosity int
	force     bool
	noInput   bool

	rootCmd = &cobra.Command{
		Use:   "pi",
		Short: "A project scaffolding tool",
		Long: `pi initializes new project directory trees from reusable templates,
merging your global configuration with per-template overrides and
rendering placeholders in both file contents and file names.

Templates live in a directory next to you or under ~/.pi_templates,
or can be fetched straight from a GitHub repository.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVarP(&force, "force", "f", false, "Initialize the project even if the destination already exists")
	rootCmd.PersistentFlags().BoolVar(&noInput, "no-input", false, "Never prompt; missing interactive values default to empty")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(gitCmd)
	rootCmd.AddCommand(listCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pi version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}
