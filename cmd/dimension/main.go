// Command dimension runs the hospital dimensioning engine over dataset files
// and SCP method files, printing results as indented JSON.
package main

import (
	"fmt"
	"os"

	"hospital_dimensioning/pkg/config"
	"hospital_dimensioning/pkg/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the state shared by every subcommand.
type app struct {
	// Global flags
	configPath string
	envFile    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "dimension",
		Short: "Hospital staffing and cost variance engine",
		Long: `dimension aggregates sector staffing and cost across hospitals, groups,
regions and networks, compares the Atual, Baseline and Projetado states,
ranks the variance and decomposes it into reconciled waterfalls.

It also validates and scores SCP classification methods.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var envFiles []string
			if a.envFile != "" {
				envFiles = append(envFiles, a.envFile)
			}
			cfg, err := config.Load(a.configPath, envFiles...)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.LogLevel = "debug"
			}
			a.cfg = cfg

			a.logger, err = logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file (default: .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(a.scpCmd())
	rootCmd.AddCommand(a.aggregateCmd())
	rootCmd.AddCommand(a.varianceCmd())
	rootCmd.AddCommand(a.rankCmd())
	rootCmd.AddCommand(a.reportCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
