package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the component configs for consistency",
	Long: `Loads the configs, resolves component references and builds the tree,
reporting duplicate names, broken or cyclic references and unknown
implementation types.`,
	Run: func(cmd *cobra.Command, args []string) {
		tree, err := buildTree(cmd)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Tree %q is valid (%d components) ✅\n",
			tree.RootName(), len(tree.Registry().Names()))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
