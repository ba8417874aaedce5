package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/schmitech/orbit-go/pkg/cli"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "File upload and retrieval queries",
	Long: `Upload files for retrieval-augmented chat, list and query them.

Uploaded files are indexed server-side; chat requests can then restrict
retrieval to specific files via file IDs.`,
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <file_path>",
	Short: "Upload a file",
	Long: `Upload a file for retrieval-augmented chat.

Examples:
  orbit -c local files upload notes.pdf
  orbit -c local files upload handbook.md --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		f, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat file: %w", err)
		}
		printVerbose("Uploading %s (%s)", filePath, cli.FormatBytes(info.Size()))

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		result, err := client.Files.Upload(ctx, f, filepath.Base(filePath))
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}

		return outputResult(result, getOutputFile(), isJSONOutput())
	},
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		files, err := client.Files.List(ctx)
		if err != nil {
			return fmt.Errorf("list files failed: %w", err)
		}

		return outputResult(files, getOutputFile(), isJSONOutput())
	},
}

var filesGetCmd = &cobra.Command{
	Use:   "get <file_id>",
	Short: "Show metadata for one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		info, err := client.Files.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get file failed: %w", err)
		}

		return outputResult(info, getOutputFile(), isJSONOutput())
	},
}

var filesQueryCmd = &cobra.Command{
	Use:   "query <file_id> <query>",
	Short: "Run a retrieval query against a file",
	Long: `Run a retrieval query against one uploaded file.

Examples:
  orbit -c local files query abc123 "refund policy"
  orbit -c local files query abc123 "refund policy" --max-results 3 --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		maxResults, err := cmd.Flags().GetInt("max-results")
		if err != nil {
			return fmt.Errorf("failed to read 'max-results' flag: %w", err)
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		result, err := client.Files.Query(ctx, args[0], args[1], maxResults)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		return outputResult(result, getOutputFile(), isJSONOutput())
	},
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <file_id>",
	Short: "Delete an uploaded file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := client.Files.Delete(ctx, args[0]); err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}

		printSuccess("File %q deleted", args[0])
		return nil
	},
}

var filesDeleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete all uploaded files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if err := client.Files.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete-all failed: %w", err)
		}

		printSuccess("All files deleted")
		return nil
	},
}

func init() {
	filesQueryCmd.Flags().Int("max-results", 0, "maximum results (0 leaves it to the server)")

	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesGetCmd)
	filesCmd.AddCommand(filesQueryCmd)
	filesCmd.AddCommand(filesDeleteCmd)
	filesCmd.AddCommand(filesDeleteAllCmd)
}
