package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/schmitech/orbit-go/pkg/cli"
	"github.com/schmitech/orbit-go/pkg/history"
	"github.com/schmitech/orbit-go/pkg/orbit"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat inference",
	Long: `Chat inference against the configured Orbit server.

Responses stream token-by-token by default. Use --no-stream to receive
the whole response in one body instead.

Example request file (chat.yaml):
  messages:
    - role: user
      content: What is retrieval-augmented generation?
  file_ids: [abc123]
  return_audio: false`,
}

var chatAskCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Ask a single question and print the response.

The question can be given as an argument or through a request file.

Examples:
  orbit -c local chat ask "What is RAG?"
  orbit -c local chat ask -f chat.yaml
  orbit -c local chat ask "hello" --no-stream --json --jq '.response'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		noStream, err := cmd.Flags().GetBool("no-stream")
		if err != nil {
			return fmt.Errorf("failed to read 'no-stream' flag: %w", err)
		}
		threadID, err := cmd.Flags().GetString("thread")
		if err != nil {
			return fmt.Errorf("failed to read 'thread' flag: %w", err)
		}
		fileIDs, err := cmd.Flags().GetStringSlice("file-id")
		if err != nil {
			return fmt.Errorf("failed to read 'file-id' flag: %w", err)
		}

		var req orbit.ChatRequest
		if getInputFile() != "" {
			if err := loadRequest(getInputFile(), &req); err != nil {
				return err
			}
		}
		if len(args) > 0 {
			req.Messages = append(req.Messages, orbit.Message{
				Role:    "user",
				Content: strings.Join(args, " "),
			})
		}
		if len(req.Messages) == 0 {
			return fmt.Errorf("no question given: pass it as an argument or use -f")
		}
		if threadID != "" {
			req.ThreadID = threadID
		}
		if len(fileIDs) > 0 {
			req.FileIDs = fileIDs
		}

		printVerbose("Using context: %s", cliCtx.Name)
		printVerbose("Messages: %d", len(req.Messages))

		client := createClient(cliCtx)
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		if noStream {
			resp, err := client.Chat.Chat(ctx, &req)
			if err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}
			if isJSONOutput() || getOutputFile() != "" || jqFilter != "" {
				return outputResult(resp, getOutputFile(), isJSONOutput())
			}
			fmt.Println(resp.Response)
			return nil
		}

		started := time.Now()
		for event, err := range client.Chat.ChatStream(ctx, &req) {
			if err != nil {
				if orbit.IsCanceled(err) {
					fmt.Println()
					return nil
				}
				return fmt.Errorf("streaming failed: %w", err)
			}
			if event.Type == orbit.EventTextDelta {
				fmt.Print(event.Text)
			}
		}
		fmt.Println()
		printVerbose("Elapsed: %s", cli.FormatDuration(int(time.Since(started).Milliseconds())))
		return nil
	},
}

var chatReplCmd = &cobra.Command{
	Use:     "repl",
	Aliases: []string{"interactive"},
	Short:   "Interactive chat session",
	Long: `Start an interactive chat session.

Each turn is stored in a local history database so the conversation
continues across restarts of the same session. Commands inside the REPL:

  /clear   forget the local and server-side history
  /exit    leave the session

Examples:
  orbit -c local chat repl
  orbit -c local chat repl --session my-session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		sessionID, err := cmd.Flags().GetString("session")
		if err != nil {
			return fmt.Errorf("failed to read 'session' flag: %w", err)
		}
		if sessionID == "" {
			sessionID = cliCtx.SessionID
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		client := createClient(cliCtx)
		return runRepl(client, store, sessionID)
	},
}

// runRepl drives the interactive loop. It is split out so the REPL logic
// stays testable without a terminal.
func runRepl(client *orbit.Client, store history.Store, sessionID string) error {
	styles := cli.NewStyles(cli.DefaultTheme)

	// Replay prior turns into the conversation context.
	var messages []orbit.Message
	for turn, err := range store.List(sessionID) {
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		messages = append(messages, orbit.Message{Role: turn.Role, Content: turn.Content})
	}

	fmt.Println(styles.Help.Render(fmt.Sprintf("session %s, %d turns restored. /clear resets, /exit leaves.", sessionID, len(messages))))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(styles.Prompt.Render("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit", "/quit":
			return nil
		case "/clear":
			if err := store.Clear(sessionID); err != nil {
				printError("failed to clear local history: %v", err)
				continue
			}
			clearCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := client.Conversation.ClearHistory(clearCtx); err != nil {
				printError("failed to clear server history: %v", err)
			}
			cancel()
			messages = nil
			fmt.Println(styles.Help.Render("history cleared"))
			continue
		}

		messages = append(messages, orbit.Message{Role: "user", Content: line})
		req := &orbit.ChatRequest{Messages: messages}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		var reply strings.Builder
		for event, err := range client.Chat.ChatStream(ctx, req) {
			if err != nil {
				if orbit.IsCanceled(err) {
					break
				}
				fmt.Println(styles.Error.Render(fmt.Sprintf("error: %v", err)))
				break
			}
			if event.Type == orbit.EventTextDelta {
				fmt.Print(styles.Assistant.Render(event.Text))
				reply.WriteString(event.Text)
			}
		}
		cancel()
		fmt.Println()

		if reply.Len() == 0 {
			// Failed turn; drop the user message so the next attempt is clean.
			messages = messages[:len(messages)-1]
			continue
		}

		messages = append(messages, orbit.Message{Role: "assistant", Content: reply.String()})
		now := time.Now()
		err := store.Append(sessionID,
			history.Turn{Role: "user", Content: line, At: now},
			history.Turn{Role: "assistant", Content: reply.String(), At: now},
		)
		if err != nil {
			printError("failed to record history: %v", err)
		}
	}
}

// openHistory opens the badger-backed history store under the app directory.
func openHistory() (history.Store, error) {
	paths, err := cli.NewPaths(appName)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureHistoryDir(); err != nil {
		return nil, err
	}
	return history.NewBadger(history.BadgerOptions{Dir: paths.HistoryDir()})
}

func init() {
	chatAskCmd.Flags().Bool("no-stream", false, "receive the whole response in one body")
	chatAskCmd.Flags().String("thread", "", "continue an existing conversation thread")
	chatAskCmd.Flags().StringSlice("file-id", nil, "restrict retrieval to uploaded file IDs")

	chatReplCmd.Flags().String("session", "", "session ID (default: context session or generated)")

	chatCmd.AddCommand(chatAskCmd)
	chatCmd.AddCommand(chatReplCmd)
}
