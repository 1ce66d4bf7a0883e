package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	talkengine "github.com/radiantlogicinc/TalkEngine"
	"github.com/radiantlogicinc/TalkEngine/builtin"
	"github.com/radiantlogicinc/TalkEngine/command"
	"github.com/radiantlogicinc/TalkEngine/internal/config"
	"github.com/radiantlogicinc/TalkEngine/internal/server"
	"github.com/radiantlogicinc/TalkEngine/internal/session"
	"github.com/radiantlogicinc/TalkEngine/internal/translog"
	"github.com/radiantlogicinc/TalkEngine/nlu"

	// Register the Anthropic-backed strategies.
	_ "github.com/radiantlogicinc/TalkEngine/nlu/api"
)

var version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "repl":
		runRepl(os.Args[2:])
	case "run":
		runOnce(os.Args[2:])
	case "version":
		fmt.Printf("talkengine v%s\n", version)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: talkengine <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve    Start the HTTP server")
	fmt.Println("  repl     Interactive shell against a local engine")
	fmt.Println("  run      Run a single query and print the result as JSON")
	fmt.Println("  version  Print version information")
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// loadEnv loads environment files before the config is read.
func loadEnv(envFile string) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load env file %s: %v\n", envFile, err)
		}
		return
	}
	// Try default locations
	godotenv.Load(".env")
	godotenv.Load("/etc/talkengine/talkengine.env")
}

// loadConfig reads the config file, or environment-only config when no
// file is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.FromEnv()
	}
	return config.Load(path)
}

// loadMetadata builds the command catalog: from the catalog file when one
// is configured, otherwise from the registered builtin commands.
func loadMetadata(cfg *config.Config) (command.Metadata, error) {
	if cfg.Catalog.Path != "" {
		return config.LoadCatalog(cfg.Catalog.Path, builtin.Settings{
			GitHubToken: cfg.Catalog.GitHubToken,
			GitLabToken: cfg.Catalog.GitLabToken,
		})
	}
	return config.BuiltinCatalog(cfg)
}

func buildLogger(level string, verbose bool) *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
		return zap.NewNop()
	}

	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zcfg.Level = lvl
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// buildEngine assembles one engine from the resolved config, used by the
// repl and run subcommands. The server path goes through the session
// manager instead.
func buildEngine(cfg *config.Config, meta command.Metadata, logger *zap.Logger) (*talkengine.Engine, error) {
	es := config.MergeEngine(cfg, nil)
	ns := nlu.Settings{
		APIKey:  cfg.Strategies.APIKey,
		Model:   cfg.Strategies.Model,
		BaseURL: cfg.Strategies.BaseURL,
	}

	classifier, err := nlu.NewClassifier(es.Classification, ns)
	if err != nil {
		return nil, fmt.Errorf("building classifier: %w", err)
	}
	extractor, err := nlu.NewExtractor(es.Extraction, ns)
	if err != nil {
		return nil, fmt.Errorf("building extractor: %w", err)
	}
	generator, err := nlu.NewGenerator(es.Generation, ns)
	if err != nil {
		return nil, fmt.Errorf("building generator: %w", err)
	}

	return talkengine.New(meta,
		talkengine.WithClassifier(classifier),
		talkengine.WithExtractor(extractor),
		talkengine.WithGenerator(generator),
		talkengine.WithClarifyThreshold(es.ClarifyThreshold),
		talkengine.WithFeedbackPrompts(es.FeedbackPrompts),
		talkengine.WithLogger(logger),
	)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (default: environment only)")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	fs.Parse(args)

	loadEnv(*envFile)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	logger := buildLogger(cfg.Logging.Level, *verbose)
	defer logger.Sync()

	meta, err := loadMetadata(cfg)
	if err != nil {
		fatal("Failed to load command catalog: %v", err)
	}

	sessions := session.NewManager(cfg, meta, logger)
	defer sessions.Close()

	// Prune old transcripts once a day
	if cfg.Logging.Dir != "" {
		cleaner := translog.NewCleaner(cfg.Logging.Dir, cfg.Logging.RetentionDays)
		scheduler := translog.NewScheduler(cleaner, 24*time.Hour, logger)
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := server.NewWithSessions(cfg, sessions, logger)

	logger.Info("starting TalkEngine server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Int("commands", len(meta)),
		zap.String("version", version))

	if err := srv.ListenAndServeWithShutdown(); err != nil {
		fatal("Server error: %v", err)
	}
}

func runRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (default: environment only)")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	fs.Parse(args)

	loadEnv(*envFile)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	// Keep the prompt clean unless debugging
	logger := zap.NewNop()
	if *verbose {
		logger = buildLogger(cfg.Logging.Level, true)
		defer logger.Sync()
	}

	meta, err := loadMetadata(cfg)
	if err != nil {
		fatal("Failed to load command catalog: %v", err)
	}

	eng, err := buildEngine(cfg, meta, logger)
	if err != nil {
		fatal("Failed to build engine: %v", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".talkengine_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fatal("Error initializing readline: %v", err)
	}
	defer rl.Close()

	fmt.Printf("talkengine v%s, %d commands loaded. Type /quit to exit.\n", version, len(meta))

	var pending []string // commands to exclude on the next query
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		switch {
		case input == "/quit" || input == "/exit":
			fmt.Println("Goodbye!")
			return

		case input == "/reset":
			if err := eng.Reset(meta); err != nil {
				fmt.Printf("Reset failed: %v\n", err)
				continue
			}
			pending = nil
			fmt.Println("Conversation reset.")
			continue

		case strings.HasPrefix(input, "/exclude"):
			name := strings.TrimSpace(strings.TrimPrefix(input, "/exclude"))
			if name == "" {
				fmt.Println("Usage: /exclude <command>")
				continue
			}
			pending = append(pending, name)
			fmt.Printf("Excluding %s starting with the next query.\n", name)
			continue

		case strings.HasPrefix(input, "/"):
			fmt.Printf("Unknown command: %s\n", input)
			continue
		}

		res, err := eng.Run(context.Background(), input, pending...)
		pending = nil
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		fmt.Println(res.Response)
		if res.Artifact != nil {
			if data, err := json.Marshal(res.Artifact); err == nil {
				fmt.Printf("artifact: %s\n", data)
			}
		}
		if res.Hint != talkengine.HintNewConversation {
			fmt.Printf("(%s)\n", res.Hint)
		}
	}
}

func runOnce(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (default: environment only)")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	fs.Parse(args)

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Println("Usage: talkengine run [options] <query>")
		os.Exit(1)
	}

	loadEnv(*envFile)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	meta, err := loadMetadata(cfg)
	if err != nil {
		fatal("Failed to load command catalog: %v", err)
	}

	eng, err := buildEngine(cfg, meta, zap.NewNop())
	if err != nil {
		fatal("Failed to build engine: %v", err)
	}

	res, err := eng.Run(context.Background(), query)
	if err != nil {
		fatal("Run failed: %v", err)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		fatal("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}
