package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete a session's own posts from its board",
	Long: `Log in as a session's account and delete its own posts from the
configured board. By default every own post on the recent listing pages is
deleted; --oldest removes only the single oldest one.

The slot only needs a user id and a password for this; title and content
may be empty. Do not purge while the slot's worker is running.

Examples:
  COLDHAWK_PASSWORD=... coldhawk purge -s 1
  COLDHAWK_PASSWORD=... coldhawk purge -s 1 --oldest`,
	RunE: runPurge,
}

var (
	purgeSlot   int
	purgeOldest bool
)

func init() {
	rootCmd.AddCommand(purgeCmd)

	purgeCmd.Flags().IntVarP(&purgeSlot, "session", "s", 0, "Session slot to purge (required)")
	purgeCmd.Flags().BoolVar(&purgeOldest, "oldest", false, "Delete only the oldest own post")
	_ = purgeCmd.MarkFlagRequired("session")
}

func runPurge(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.loadPasswordsFromEnv()

	s, err := a.pool.Get(purgeSlot)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if purgeOldest {
		ref, ok, err := a.sup.PurgeOldest(ctx, s)
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("deleted %s\n", ref)
		}
		return nil
	}

	total, success, err := a.sup.PurgeAll(ctx, s)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d of %d posts\n", success, total)

	if err := a.store.Save(a.pool); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	return nil
}
