package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the configured sessions and keep them running",
	Long: `Start workers for the configured sessions and run until every worker
finishes or the process is interrupted.

By default every startable slot runs; use --session to pick specific slots.
A slot is startable once it has a user id, a password from the environment,
a title, and content (see 'coldhawk sessions').

Examples:
  # Run every configured slot
  COLDHAWK_PASSWORD=... coldhawk run

  # Run slots 1 and 3 with per-slot passwords
  COLDHAWK_PASSWORD_1=... COLDHAWK_PASSWORD_3=... coldhawk run -s 1 -s 3`,
	RunE: runRun,
}

var runSlots []int

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntSliceVarP(&runSlots, "session", "s", nil, "Session slots to run (default: every startable slot)")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.loadPasswordsFromEnv()

	targets := a.pool.All()
	if len(runSlots) > 0 {
		targets = nil
		for _, id := range runSlots {
			s, err := a.pool.Get(id)
			if err != nil {
				return err
			}
			targets = append(targets, s)
		}
	}

	started := 0
	for _, s := range targets {
		if !s.Startable() {
			// Explicitly requested slots must be runnable; skipped slots
			// are only tolerated in the run-everything default.
			if len(runSlots) > 0 {
				return fmt.Errorf("session %d (%s) is not startable: user id, password, title and content are required", s.ID, s.Name)
			}
			continue
		}
		if err := a.sup.Start(s); err != nil {
			continue // already reported on the bus
		}
		started++
	}
	if started == 0 {
		return fmt.Errorf("no startable session; configure slots with 'coldhawk sessions set' and export COLDHAWK_PASSWORD")
	}

	fmt.Printf("running %d session(s), Ctrl+C to stop\n", started)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

loop:
	for {
		select {
		case <-sig:
			fmt.Println("\nshutting down...")
			break loop
		case <-tick.C:
			if a.sup.RunningCount() == 0 {
				fmt.Println("all sessions finished")
				break loop
			}
		}
	}

	a.sup.Cleanup()

	if err := a.store.Save(a.pool); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	printRunSummary(a)
	return nil
}

func printRunSummary(a *app) {
	for _, s := range a.pool.All() {
		total, success, fail := s.Stats()
		if total == 0 && fail == 0 {
			continue
		}
		fmt.Printf("%-8s %d written, %d failed (%.0f%% success)\n",
			s.Name, success, fail, s.SuccessRate())
	}
}
