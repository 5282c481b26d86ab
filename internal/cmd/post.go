package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Log in and write a single post",
	Long: `Log in with the given account and write one post, bypassing the
session pool and the re-upload loop. The password is read from the
COLDHAWK_PASSWORD environment variable, never from a flag.

Examples:
  COLDHAWK_PASSWORD=... coldhawk post -u myid -t "WTS ..." --content "..."
  COLDHAWK_PASSWORD=... coldhawk post -u myid -t title --content-file body.html -b bus`,
	RunE: runPost,
}

var (
	postUser        string
	postBoard       string
	postTitle       string
	postContent     string
	postContentFile string
)

func init() {
	rootCmd.AddCommand(postCmd)

	postCmd.Flags().StringVarP(&postUser, "user", "u", "", "Account user id (required)")
	postCmd.Flags().StringVarP(&postBoard, "board", "b", "trade", "Target board (trade or bus)")
	postCmd.Flags().StringVarP(&postTitle, "title", "t", "", "Post title (required)")
	postCmd.Flags().StringVar(&postContent, "content", "", "Post body")
	postCmd.Flags().StringVar(&postContentFile, "content-file", "", "Read the post body from a file")
	_ = postCmd.MarkFlagRequired("user")
	_ = postCmd.MarkFlagRequired("title")
}

func runPost(cmd *cobra.Command, args []string) error {
	password := os.Getenv("COLDHAWK_PASSWORD")
	if password == "" {
		return fmt.Errorf("COLDHAWK_PASSWORD is not set")
	}

	content := postContent
	if postContentFile != "" {
		data, err := os.ReadFile(postContentFile)
		if err != nil {
			return fmt.Errorf("failed to read content file: %w", err)
		}
		content = string(data)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("post body is empty; use --content or --content-file")
	}

	b, err := parseBoard(postBoard)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cl, err := a.newClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := cl.Login(ctx, postUser, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	ref, err := cl.CreatePost(ctx, b, postTitle, content)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	fmt.Printf("created %s\n", ref.ViewURL(a.cfg.HTTP.BaseURL))
	return nil
}
