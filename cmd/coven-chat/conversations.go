// ABOUTME: conversations subcommand: lists the conversations of a document
// ABOUTME: Prints one line per conversation with its message count

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations [document-id]",
	Short: "List the conversations of a document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConversations,
}

func runConversations(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	documentID := cfg.API.DocumentID
	if len(args) == 1 {
		documentID = args[0]
	}
	if documentID == "" {
		return fmt.Errorf("document id is required (argument or api.document_id)")
	}

	a := newApp(cfg, setupLogger(cfg.Logging, os.Stderr))
	defer a.Close()

	if err := a.dir.FetchConversations(cmd.Context(), documentID); err != nil {
		return err
	}

	st := a.store.Read()
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	out := cmd.OutOrStdout()
	for _, conv := range st.Conversations {
		marker := " "
		if conv.ID == st.ActiveConversationID {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s %s\n", marker, cyan.Sprint(conv.ID), gray.Sprintf("(%d messages)", len(conv.Messages)))
	}
	return nil
}
