package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Canopy is a declaratively-configured behavior tree engine",
	Long: `Canopy builds behavior trees from YAML/JSON component definitions
and executes them one pass at a time against a session state.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", ".", "Config file or directory with component definitions")
	rootCmd.PersistentFlags().StringP("root", "r", "root", "Name of the root component")
	rootCmd.PersistentFlags().Bool("trace", false, "Log every node execution")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
}

// newLogger builds the CLI logger from the persistent flags.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// buildTree loads the configs and initializes the tree per the
// persistent flags.
func buildTree(cmd *cobra.Command, opts ...canopy.Option) (*canopy.Tree, error) {
	path, _ := cmd.Flags().GetString("config")
	rootName, _ := cmd.Flags().GetString("root")
	trace, _ := cmd.Flags().GetBool("trace")

	opts = append(opts,
		canopy.WithTrace(trace),
		canopy.WithLogger(newLogger(cmd)),
	)

	tree, err := canopy.Load(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := tree.Init(rootName); err != nil {
		return nil, err
	}
	return tree, nil
}
