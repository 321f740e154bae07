package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/finvault/chief/pkg/assistant"
)

var (
	chatModel         string
	chatFallbackModel string
	chatAutonomous    bool
	chatTranscript    string
	chatTitle         string
	chatBackendURL    string
)

func GetChatCommand() *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session with your chief of staff",
		Long: `Starts an interactive conversation. The assistant can propose actions
(payments, emails, calendar events); pending ones are listed and decided with
slash commands.

  /actions        show tracked actions
  /approve <id>   approve and execute a pending action
  /reject <id>    reject a pending action
  /quit           end the session

Example:
  chief chat --transcript ~/notes/budget-review.md`,
		RunE: runChat,
	}

	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Primary model (defaults to model from chief.yml)")
	chatCmd.Flags().StringVar(&chatFallbackModel, "fallback-model", "", "Model tried when the primary fails")
	chatCmd.Flags().BoolVar(&chatAutonomous, "autonomous", false, "Execute low-risk actions without approval")
	chatCmd.Flags().StringVarP(&chatTranscript, "transcript", "s", "", "Path to the session transcript file (loaded if it exists, saved after each turn)")
	chatCmd.Flags().StringVarP(&chatTitle, "title", "t", "", "Session title (used for the transcript filename)")
	chatCmd.Flags().StringVar(&chatBackendURL, "backend-url", "", "Action service URL (overrides chief.yml)")

	return chatCmd
}

func runChat(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadChiefConfig()
	if err != nil {
		return err
	}

	cfg := fileCfg.assistantConfig()
	if chatModel != "" {
		cfg.PrimaryProvider = chatModel
	}
	if chatFallbackModel != "" {
		cfg.FallbackProvider = chatFallbackModel
	}
	if chatAutonomous {
		cfg.EnableAutonomousActions = true
	}
	if cfg.PrimaryProvider == "" {
		return fmt.Errorf("no model configured: set 'model' in chief.yml or pass --model")
	}

	chief := assistant.New(cfg, assistant.WithExecutors(fileCfg.executors(chatBackendURL)))

	title := chatTitle
	if title == "" {
		title = "session"
	}
	transcriptPath := fileCfg.transcriptPath(chatTranscript, title)

	meta := assistant.NewTranscriptMeta(title, cfg.PrimaryProvider, cfg.FallbackProvider)
	if transcriptPath != "" {
		if _, err := os.Stat(transcriptPath); err == nil {
			loadedMeta, history, actions, err := assistant.LoadTranscript(transcriptPath)
			if err != nil {
				return fmt.Errorf("resuming session: %w", err)
			}
			meta = loadedMeta
			chief.Restore(history, actions)
		}
	}

	prettyLog := grovelogging.NewPrettyLogger()
	prettyLog.InfoPretty(fmt.Sprintf("Session '%s' using %s", title, cfg.PrimaryProvider))
	if pending := chief.GetState().Pending(); len(pending) > 0 {
		prettyLog.InfoPretty(fmt.Sprintf("%d pending action(s) carried over. Use /actions to review.", len(pending)))
	}
	prettyLog.Blank()

	// Announce newly pending actions as the assistant proposes them.
	var seenMu sync.Mutex
	seen := make(map[string]bool)
	for _, a := range chief.GetState().PendingActions {
		seen[a.ID] = true
	}
	unsubscribe := chief.Subscribe(func(s assistant.State) {
		seenMu.Lock()
		defer seenMu.Unlock()
		for _, a := range s.PendingActions {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			if a.Status == assistant.ActionStatusPending {
				fmt.Printf("%s %s [%s/%s] %s\n",
					color.YellowString("proposed:"), a.ID, a.Type, a.RiskLevel, a.Description)
			}
		}
	})
	defer unsubscribe()

	isTTY := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	prompt := "you> "
	if isTTY {
		prompt = color.CyanString("you> ")
	}

	ctx := cmd.Context()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := handleSlashCommand(ctx, chief, line); quit {
				break
			}
		} else {
			if err := chatTurn(ctx, chief, line); err != nil {
				fmt.Println(color.RedString("error: %v", err))
			}
		}

		if transcriptPath != "" {
			if err := assistant.SaveTranscript(transcriptPath, meta, chief.GetState()); err != nil {
				fmt.Println(color.RedString("failed to save transcript: %v", err))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	prettyLog.Blank()
	prettyLog.InfoPretty("Session ended.")
	return nil
}

// chatTurn runs one turn and prints the assistant's reply.
func chatTurn(ctx context.Context, chief *assistant.ChiefOfStaff, message string) error {
	if err := chief.Chat(ctx, message); err != nil {
		if errors.Is(err, assistant.ErrBusy) {
			return fmt.Errorf("a turn is already in progress")
		}
		return err
	}

	history := chief.GetState().ConversationHistory
	if len(history) == 0 {
		return nil
	}
	last := history[len(history)-1]
	if last.Role == assistant.RoleAssistant {
		fmt.Printf("\n%s\n\n", last.Content)
	}
	return nil
}

// handleSlashCommand dispatches REPL commands. Returns true to end the session.
func handleSlashCommand(ctx context.Context, chief *assistant.ChiefOfStaff, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/actions":
		printActionTable(os.Stdout, chief.GetState().PendingActions)

	case "/approve":
		if len(fields) < 2 {
			fmt.Println("usage: /approve <id>")
			return false
		}
		if err := chief.ApproveAction(ctx, fields[1]); err != nil {
			fmt.Println(color.RedString("approve failed: %v", err))
		} else {
			fmt.Println(color.GreenString("executed %s", fields[1]))
		}

	case "/reject":
		if len(fields) < 2 {
			fmt.Println("usage: /reject <id>")
			return false
		}
		if err := chief.RejectAction(fields[1]); err != nil {
			fmt.Println(color.RedString("reject failed: %v", err))
		} else {
			fmt.Println(color.YellowString("rejected %s", fields[1]))
		}

	default:
		fmt.Printf("unknown command %s (try /actions, /approve, /reject, /quit)\n", fields[0])
	}
	return false
}
