// ABOUTME: Entry point for coven-chat, a terminal client for the document chat backend
// ABOUTME: Subcommands: chat (interactive session) and conversations (list for a document)

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coven-chat",
	Short: "Terminal client for the document chat backend",
	Long: `coven-chat talks to the chat backend: it loads the conversations of a
document, sends messages over the streaming or synchronous endpoints and
renders replies as they arrive.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path (default is $XDG_CONFIG_HOME/coven/chat.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "backend base URL, overrides api.base_url")
	rootCmd.PersistentFlags().String("token", "", "bearer token, overrides api.token")
	rootCmd.PersistentFlags().String("log-level", "", "log level, overrides logging.level")

	rootCmd.AddCommand(chatCmd, conversationsCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
