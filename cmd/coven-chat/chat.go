// ABOUTME: chat subcommand: interactive session against the backend
// ABOUTME: Reads lines from stdin, dispatches sends and renders store updates as they happen

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session.

Conversations of --document (or api.document_id) are loaded and the newest one
is activated; --open starts an open search conversation instead. Type /help
inside the session for commands.`,
	Example: `  # Chat about a document with streaming replies
  $ coven-chat chat --document handbook

  # Open (web or Confluence) search
  $ coven-chat chat --open`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("document", "", "document whose conversations are loaded")
	chatCmd.Flags().Bool("open", false, "start an open search conversation")
	chatCmd.Flags().Bool("no-stream", false, "use the synchronous endpoints")
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	documentID, _ := cmd.Flags().GetString("document")
	if documentID == "" {
		documentID = cfg.API.DocumentID
	}
	open, _ := cmd.Flags().GetBool("open")
	noStream, _ := cmd.Flags().GetBool("no-stream")

	a := newApp(cfg, setupLogger(cfg.Logging, os.Stderr))
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	session := newChatSession(a, out)
	session.opts.UseStreaming = cfg.Send.Streaming && !noStream

	stop := session.render(ctx)
	defer stop()

	switch {
	case open:
		if err := session.openConversation(ctx); err != nil {
			return err
		}
	case documentID != "":
		if err := a.dir.FetchConversations(ctx, documentID); err != nil {
			return err
		}
	default:
		return errors.New("either --document, api.document_id or --open is required")
	}

	fmt.Fprintf(out, "coven-chat connected to %s\n", color.CyanString(a.client.BaseURL()))
	fmt.Fprintln(out, "Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	fmt.Fprintln(out)

	if err := repl(ctx, session, cmd.InOrStdin()); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nGoodbye!")
	return nil
}

// repl reads lines until EOF, /quit or ctx is done.
func repl(ctx context.Context, session *chatSession, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(session.out, session.promptLabel())

		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)
		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
				return
			}
			if err := scanner.Err(); err != nil {
				errCh <- err
				return
			}
			errCh <- io.EOF
		}()

		var line string
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case line = <-inputCh:
		}

		if quit := session.handle(ctx, line); quit {
			return nil
		}
	}
}
