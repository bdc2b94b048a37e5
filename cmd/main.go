// Package main is the entry point for the prompt optimizer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/compresr/prompt-optimizer/internal/monitoring"
	"github.com/compresr/prompt-optimizer/internal/server"
	"github.com/compresr/prompt-optimizer/internal/thinkmode"
	"github.com/compresr/prompt-optimizer/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	switch os.Args[1] {
	case "serve", "start":
		runServer(os.Args[2:])
	case "optimize":
		os.Exit(runOptimize(os.Args[2:]))
	case "think":
		os.Exit(runThink(os.Args[2:]))
	case "vendors":
		runVendors()
	case "setup":
		os.Exit(runSetup(os.Args[2:]))
	case "version", "-v", "--version":
		PrintVersion()
	case "help", "-h", "--help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printHelp()
		os.Exit(2)
	}
}

// runServer starts the HTTP and websocket front-end.
func runServer(args []string) {
	loadEnvFiles()

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	debug := fs.Bool("debug", false, "enable debug logging")
	noBanner := fs.Bool("no-banner", false, "suppress startup banner")
	_ = fs.Parse(args) // ExitOnError handles errors

	if !*noBanner {
		tui.NewTerminal().PrintBanner(Version)
	}

	cfg, source, err := loadConfig(*configPath)
	if err != nil {
		setupLogging(*debug, os.Stdout)
		log.Fatal().Err(err).Msg("no usable configuration")
	}
	if *debug {
		cfg.Monitoring.LogLevel = "debug"
	}
	logger := monitoring.Global(monitoring.LoggerConfig{
		Level:  cfg.Monitoring.LogLevel,
		Format: cfg.Monitoring.LogFormat,
		Output: cfg.Monitoring.LogOutput,
	})

	log.Info().
		Str("version", Version).
		Str("config", source).
		Msg("prompt optimizer starting")

	ctx := context.Background()
	svc, backend, err := newService(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create generation backend")
	}

	log.Info().
		Int("port", cfg.Server.Port).
		Str("backend", backend.BaseURL()).
		Str("auth", cfg.Backend.Auth).
		Bool("rate_limit", cfg.Server.RateLimit.Enabled).
		Msg("configuration loaded")

	if !backend.HealthCheck(ctx) {
		log.Warn().Str("backend", backend.BaseURL()).Msg("generation backend not reachable; requests will fail until it is up")
	}

	sessions := thinkmode.NewManager(cfg.Think.SessionTTL)
	defer sessions.Stop()

	srv := server.New(server.Options{
		Config:  cfg,
		Service: svc,
		Flow:    thinkmode.NewFlow(svc, sessions),
		Logger:  logger,
		Version: Version,
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}

	log.Info().Msg("prompt optimizer stopped")
}

// setupLogging configures zerolog for interactive commands.
func setupLogging(debug bool, out io.Writer) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	})

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// printHelp prints usage information
func printHelp() {
	fmt.Println("prompt-optimizer - rewrite prompts for a target LLM vendor")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  prompt-optimizer <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve        Start the HTTP API and Think Mode websocket")
	fmt.Println("  optimize     Optimize a prompt once and print the result")
	fmt.Println("  think        Answer clarifying questions, then optimize")
	fmt.Println("  vendors      List supported vendors")
	fmt.Println("  setup        Save backend settings to a .env file")
	fmt.Println("  version      Print version information")
	fmt.Println("  help         Show this help message")
	fmt.Println()
	fmt.Println("Server Options:")
	fmt.Println("  prompt-optimizer serve [--config FILE] [--debug] [--no-banner]")
	fmt.Println()
	fmt.Println("Optimize Options:")
	fmt.Println("  prompt-optimizer optimize --vendor V [--context C] [--max-length N] [--json] PROMPT")
	fmt.Println("  PROMPT may be '-' or omitted to read it from stdin.")
	fmt.Println()
	fmt.Println("Think Options:")
	fmt.Println("  prompt-optimizer think [--vendor V] [--questions 5|10|25] [PROMPT]")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  prompt-optimizer serve --debug")
	fmt.Println("  prompt-optimizer optimize --vendor claude \"write fibonacci in python\"")
	fmt.Println("  echo \"summarize this log\" | prompt-optimizer optimize --vendor gemini")
	fmt.Println("  prompt-optimizer think --vendor openai --questions 5")
	fmt.Println()
	if names, err := listEmbeddedConfigs(); err == nil {
		fmt.Printf("Bundled configs: %v (copy one to ~/.config/%s/config.yaml to customize)\n", names, configDirName)
	}
}
