package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List or edit the session slots",
	Long: `List or edit the persisted session slots.

Without a subcommand, lists every slot with its configuration and
statistics. Passwords are never persisted and never shown; they come from
the environment at run time.`,
	RunE: runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the session slots",
	RunE:  runSessionsList,
}

var sessionsSetCmd = &cobra.Command{
	Use:   "set <slot>",
	Short: "Edit a session slot",
	Long: `Edit a session slot's configuration. Only the flags you pass change;
everything else keeps its current value.

Examples:
  coldhawk sessions set 1 -u myid -t "WTS rare amulet" --content "..." -b trade
  coldhawk sessions set 2 --interval 60 --write-count 2 --run-hours 0`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsSet,
}

var sessionsResetCmd = &cobra.Command{
	Use:   "reset <slot>",
	Short: "Reset a slot's statistics and post history",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsReset,
}

var (
	setName        string
	setUser        string
	setBoard       string
	setTitle       string
	setContent     string
	setContentFile string
	setWriteCount  int
	setRunHours    int
	setInterval    int
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsSetCmd)
	sessionsCmd.AddCommand(sessionsResetCmd)

	sessionsSetCmd.Flags().StringVar(&setName, "name", "", "Display name")
	sessionsSetCmd.Flags().StringVarP(&setUser, "user", "u", "", "Account user id")
	sessionsSetCmd.Flags().StringVarP(&setBoard, "board", "b", "", "Target board (trade or bus)")
	sessionsSetCmd.Flags().StringVarP(&setTitle, "title", "t", "", "Post title")
	sessionsSetCmd.Flags().StringVar(&setContent, "content", "", "Post body")
	sessionsSetCmd.Flags().StringVar(&setContentFile, "content-file", "", "Read the post body from a file")
	sessionsSetCmd.Flags().IntVar(&setWriteCount, "write-count", 0, "Posts per batch")
	sessionsSetCmd.Flags().IntVar(&setRunHours, "run-hours", 0, "Run duration in hours (0 = unbounded)")
	sessionsSetCmd.Flags().IntVar(&setInterval, "interval", 0, "Upload interval in seconds")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("%-4s %-10s %-12s %-12s %-24s %5s %5s %8s %s\n",
		"slot", "name", "board", "user", "title", "wr/b", "hrs", "interval", "stats")
	for _, s := range a.pool.All() {
		title := s.Title
		if len([]rune(title)) > 24 {
			title = string([]rune(title)[:21]) + "..."
		}
		total, success, fail := s.Stats()
		stats := "-"
		if total > 0 || fail > 0 {
			stats = fmt.Sprintf("%d/%d ok, %d failed", success, total, fail)
		}
		fmt.Printf("%-4d %-10s %-12s %-12s %-24s %5d %5d %7ds %s\n",
			s.ID, s.Name, s.Board, s.UserID, title,
			s.WriteCount, s.RunHours, s.UploadInterval, stats)
	}
	return nil
}

func runSessionsSet(cmd *cobra.Command, args []string) error {
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid slot %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.pool.Get(slot)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		s.Name = setName
	}
	if flags.Changed("user") {
		s.UserID = setUser
	}
	if flags.Changed("board") {
		b, err := parseBoard(setBoard)
		if err != nil {
			return err
		}
		s.Board = b
	}
	if flags.Changed("title") {
		s.Title = setTitle
	}
	if flags.Changed("content") {
		s.Content = setContent
	}
	if flags.Changed("content-file") {
		data, err := os.ReadFile(setContentFile)
		if err != nil {
			return fmt.Errorf("failed to read content file: %w", err)
		}
		s.Content = string(data)
	}
	if flags.Changed("write-count") {
		if setWriteCount < 1 {
			return fmt.Errorf("write-count must be at least 1")
		}
		s.WriteCount = setWriteCount
	}
	if flags.Changed("run-hours") {
		if setRunHours < 0 {
			return fmt.Errorf("run-hours must not be negative")
		}
		s.RunHours = setRunHours
	}
	if flags.Changed("interval") {
		if setInterval < 1 {
			return fmt.Errorf("interval must be at least 1 second")
		}
		s.UploadInterval = setInterval
	}

	if err := a.store.Save(a.pool); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	fmt.Printf("saved slot %d (%s)\n", s.ID, s.Name)
	return nil
}

func runSessionsReset(cmd *cobra.Command, args []string) error {
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid slot %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.pool.Get(slot)
	if err != nil {
		return err
	}

	s.ResetStats()
	s.ClearPosts()

	if err := a.store.Save(a.pool); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	fmt.Printf("reset slot %d (%s)\n", s.ID, s.Name)
	return nil
}
