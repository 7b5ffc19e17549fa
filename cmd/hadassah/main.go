// Command hadassah is a text console for the assistant. It runs the
// interpreter in-process without speech.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"hadassah/internal/assistant"
	"hadassah/internal/config"
	"hadassah/internal/notify"
	"hadassah/internal/platform"
	"hadassah/internal/prefs"
	"hadassah/internal/storage"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	cfgPath := cli.StringP("config", "c", "", "Config file")
	platformName := cli.StringP("platform", "p", "", "web or native")
	logLevel := cli.StringP("log", "l", "warn", "Log level")
	ephemeral := cli.BoolP("ephemeral", "x", false, "Keep preferences and history in memory only")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	_ = godotenv.Load(*envFile)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	if *platformName != "" {
		cfg.Platform = *platformName
		if err := cfg.Validate(); err != nil {
			log.Error("Bad platform", "err", err)
			os.Exit(1)
		}
	}

	var kv storage.Store = storage.NewMemory()
	if !*ephemeral && cfg.DataPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DataPath), 0o755); err != nil {
			log.Error("Failed to create data dir", "err", err)
			os.Exit(1)
		}
		db, err := storage.OpenSQLite(cfg.DataPath)
		if err != nil {
			log.Error("Failed to open storage", "path", cfg.DataPath, "err", err)
			os.Exit(1)
		}
		defer db.Close()
		kv = db
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	caps, err := platform.Capabilities(ctx, cfg, kv, platform.Bridges{
		Haptics: notify.Haptics{Freq: cfg.Native.HapticFreq},
	})
	if err != nil {
		log.Error("Failed to load capabilities", "err", err)
		os.Exit(1)
	}

	store := prefs.New(kv)
	session := assistant.New(platform.Interpreter(caps, store), store)

	if err := repl(ctx, session, store, os.Stdin, os.Stdout); err != nil {
		log.Error("Console failed", "err", err)
		os.Exit(1)
	}
}

const help = `/commands  list example commands
/history   show remembered conversations
/clear     forget conversations
/quit      leave`

func repl(ctx context.Context, s *assistant.Session, store *prefs.Store, in io.Reader, out io.Writer) error {
	p, err := store.Preferences(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Hello %s! Type a command, or /help.\n", p.Nickname)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(out, help)
		case "/commands":
			for _, c := range s.Commands() {
				fmt.Fprintf(out, "%s %-20s %s\n", c.Icon, c.Text, c.Description)
			}
		case "/history":
			convs, err := store.Conversations(ctx)
			if err != nil {
				return err
			}
			raw, _ := json.MarshalIndent(convs, "", "  ")
			fmt.Fprintln(out, string(raw))
		case "/clear":
			if err := store.ClearConversations(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "History cleared.")
		default:
			reply, err := s.Submit(ctx, line)
			if errors.Is(err, assistant.ErrBusy) {
				fmt.Fprintln(out, "Still working on the last one.")
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, reply)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}
