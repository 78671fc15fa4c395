package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the tree until it settles on SUCCESS or FAILED",
	Long: `Builds the tree from the configs and executes passes against a fresh
state until the root reports a terminal status, then prints the final
state as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTree(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("max-passes", 100, "Abort after this many passes (0 = unlimited)")
	runCmd.Flags().Duration("interval", 100*time.Millisecond, "Pause between passes while RUNNING")
	runCmd.Flags().String("uid", "", "Session uid recorded in the state")
}

func runTree(cmd *cobra.Command) error {
	tree, err := buildTree(cmd)
	if err != nil {
		return err
	}

	maxPasses, _ := cmd.Flags().GetInt("max-passes")
	interval, _ := cmd.Flags().GetDuration("interval")
	uid, _ := cmd.Flags().GetString("uid")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := domain.NewStateWithUID(uid)
	runner := &canopy.Runner{MaxPasses: maxPasses, Interval: interval}

	status, passes, err := runner.Run(ctx, tree, state)
	if err != nil {
		return err
	}

	fmt.Printf("Status: %s (%d passes)\n", status, passes)
	out, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
