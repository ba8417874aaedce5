package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Conversation history management",
	Long: `Manage conversation history, both the server-side session history
and the CLI's local REPL history.`,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the server-side history of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := client.Conversation.ClearHistory(ctx); err != nil {
			return fmt.Errorf("clear history failed: %w", err)
		}

		printSuccess("Server-side history cleared for session %q", client.SessionID())
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the server-side conversation of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := client.Conversation.DeleteHistory(ctx); err != nil {
			return fmt.Errorf("delete history failed: %w", err)
		}

		printSuccess("Conversation deleted for session %q", client.SessionID())
		return nil
	},
}

var historySessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List local REPL sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		sessions, err := store.Sessions()
		if err != nil {
			return fmt.Errorf("list sessions failed: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No local sessions recorded")
			return nil
		}
		for _, id := range sessions {
			fmt.Println(id)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session_id>",
	Short: "Show the local turns of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		for turn, err := range store.List(args[0]) {
			if err != nil {
				return fmt.Errorf("read history failed: %w", err)
			}
			fmt.Printf("[%s] %s: %s\n", turn.At.Format(time.RFC3339), turn.Role, turn.Content)
		}
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historySessionsCmd)
	historyCmd.AddCommand(historyShowCmd)
}
