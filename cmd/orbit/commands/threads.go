package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Conversation thread management",
	Long: `Create, inspect and delete conversation threads.

A thread forks a conversation from an existing message so follow-up
questions carry their own context. Pass a thread ID to 'chat ask --thread'
to continue one.`,
}

var threadsCreateCmd = &cobra.Command{
	Use:   "create <parent_message_id>",
	Short: "Create a thread rooted at a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		info, err := client.Threads.Create(ctx, args[0])
		if err != nil {
			return fmt.Errorf("create thread failed: %w", err)
		}

		return outputResult(info, getOutputFile(), isJSONOutput())
	},
}

var threadsGetCmd = &cobra.Command{
	Use:   "get <thread_id>",
	Short: "Show metadata for one thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		info, err := client.Threads.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get thread failed: %w", err)
		}

		return outputResult(info, getOutputFile(), isJSONOutput())
	},
}

var threadsDeleteCmd = &cobra.Command{
	Use:   "delete <thread_id>",
	Short: "Delete a thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := client.Threads.Delete(ctx, args[0]); err != nil {
			return fmt.Errorf("delete thread failed: %w", err)
		}

		printSuccess("Thread %q deleted", args[0])
		return nil
	},
}

func init() {
	threadsCmd.AddCommand(threadsCreateCmd)
	threadsCmd.AddCommand(threadsGetCmd)
	threadsCmd.AddCommand(threadsDeleteCmd)
}
