// Package cmd provides the pagesearch CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/logger"
)

type rootOptions struct {
	configPath string
	dataDir    string
	logLevel   string
	cfg        *config.Config
}

// NewRootCmd creates the root command. Logs go to stderr so results on stdout
// stay readable.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "pagesearch",
		Short:         "Lexical and semantic search over slide pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.dataDir != "" {
				cfg.Indexer.DataDir = opts.dataDir
			}
			level := cfg.Logging.Level
			if opts.logLevel != "" {
				level = opts.logLevel
			}
			logger.SetupWriter(cmd.ErrOrStderr(), level, "text")
			opts.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "override the index data directory")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newBuildCmd(opts),
		newSearchCmd(opts),
		newInteractiveCmd(opts),
		newImportCmd(opts),
	)
	return cmd
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}
