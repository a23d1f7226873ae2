package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/prollm/translatorui/internal/app"
	"github.com/prollm/translatorui/internal/chat"
	"github.com/prollm/translatorui/internal/client"
	"github.com/prollm/translatorui/internal/config"
	"github.com/prollm/translatorui/internal/store"
)

const logTimestampLayout = "20060102150405"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.New()
	cmd := &cobra.Command{
		Use:           "translatorui",
		Short:         "Chat front end for a streaming translation assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.FrontendPath, "frontend", cfg.FrontendPath, "path to the fallback frontend pointer file")
	flags.StringVar(&cfg.SettingsDir, "settings", cfg.SettingsDir, "directory with setting files")
	flags.StringVar(&cfg.CacheDir, "cache", cfg.CacheDir, "cache directory for chats and the frontend pointer")
	flags.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory for log files")
	flags.StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "optional dotenv file with the API key")
	flags.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key for the completion service (defaults to OPENAI_API_KEY)")
	flags.StringVar(&cfg.SourceLang, "source-lang", cfg.SourceLang, "ISO 639-1 code of the source language")
	flags.StringVar(&cfg.TargetLang, "target-lang", cfg.TargetLang, "ISO 639-1 code of the target language")
	flags.StringVar(&cfg.MachineTranslation, "machine-translation", cfg.MachineTranslation, "reference machine translation fed into the prompt")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", cfg.EnvFile, err)
		}
	} else {
		godotenv.Load(".env")
	}

	closeLogs, err := setupLogging(cfg.LogDir)
	if err != nil {
		return err
	}
	defer closeLogs()

	completionClient, err := client.New(cfg.APIKey)
	if err != nil {
		return err
	}

	a := app.New(store.New(), completionClient, cfg)
	if err := a.Startup(); err != nil {
		return err
	}

	if err := repl(ctx, a); err != nil {
		return err
	}
	return a.Save()
}

// setupLogging writes structured logs to stderr and to a timestamped
// file under logDir, matching one file per run.
func setupLogging(logDir string) (func(), error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir %s: %w", logDir, err)
	}
	path := filepath.Join(logDir, time.Now().Format(logTimestampLayout)+".log")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", path, err)
	}
	handler := slog.NewTextHandler(io.MultiWriter(os.Stderr, f), nil)
	slog.SetDefault(slog.New(handler))
	slog.Info("Writing logs to file", slog.String("path", path))
	return func() { f.Close() }, nil
}

func repl(ctx context.Context, a *app.App) error {
	fmt.Printf("Active chat: %s\n", a.ChatID)
	fmt.Println("Type a message to translate it, /help for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", a.ChatID)
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := dispatch(a, line)
			if err != nil {
				fmt.Println(err)
			}
			if quit {
				return nil
			}
			continue
		}

		a.UserMessage(line)
		if _, err := a.BotReply(ctx, func(fragment string) {
			fmt.Print(fragment)
		}); err != nil {
			fmt.Println()
			slog.Error("Completion failed", "error", err)
			continue
		}
		fmt.Println()
	}
}

func dispatch(a *app.App, line string) (quit bool, err error) {
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/help":
		fmt.Print(helpText)
	case "/chats":
		for _, id := range a.Store.ChatIDs() {
			marker := "  "
			if id == a.ChatID {
				marker = "* "
			}
			fmt.Println(marker + id)
		}
	case "/new":
		c := a.AddChat(a.Current().History)
		fmt.Printf("Created chat %s\n", c.ID)
	case "/select":
		if arg == "" {
			return false, fmt.Errorf("usage: /select <chat-id>")
		}
		c, err := a.SelectChat(arg, a.Current().History)
		if err != nil {
			return false, err
		}
		printHistory(c)
	case "/rename":
		if arg == "" {
			return false, fmt.Errorf("usage: /rename <new-id>")
		}
		c, err := a.RenameChat(arg)
		if err != nil {
			return false, err
		}
		fmt.Printf("Renamed chat to %s\n", c.ID)
	case "/delete":
		id := arg
		if id == "" {
			id = a.ChatID
		}
		current, found := a.DeleteChat(id)
		if !found {
			return false, fmt.Errorf("no such chat: %s", id)
		}
		fmt.Printf("Deleted %s, active chat is now %s\n", id, current.ID)
	case "/clear":
		a.ClearChat()
	case "/settings":
		for _, id := range a.Store.SettingIDs() {
			marker := "  "
			if id == a.SettingID {
				marker = "* "
			}
			fmt.Println(marker + id)
		}
	case "/setting":
		if arg == "" {
			return false, fmt.Errorf("usage: /setting <setting-id>")
		}
		a.SelectSetting(arg)
		fmt.Printf("Selected setting %s\n", arg)
	case "/quit", "/exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %s, try /help", command)
	}
	return false, nil
}

func printHistory(c *chat.Chat) {
	for _, turn := range c.History {
		fmt.Printf("you: %s\n", turn.User)
		if turn.Bot != nil {
			fmt.Printf("bot: %s\n", *turn.Bot)
		}
	}
}

const helpText = `Commands:
  /chats               list chats
  /new                 create a new chat
  /select <chat-id>    switch to a chat
  /rename <new-id>     rename the active chat
  /delete [chat-id]    delete a chat (default: the active one)
  /clear               clear the active chat history
  /settings            list settings
  /setting <id>        switch the active setting
  /quit                save and exit
`
