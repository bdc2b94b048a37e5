package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/compresr/prompt-optimizer/external"
	"github.com/compresr/prompt-optimizer/internal/optimizer"
	"github.com/compresr/prompt-optimizer/internal/server"
	"github.com/compresr/prompt-optimizer/internal/tokens"
	"github.com/compresr/prompt-optimizer/internal/tui"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

// runOptimize optimizes one prompt and prints the result.
// The optimized prompt goes to stdout; everything else to stderr.
func runOptimize(args []string) int {
	loadEnvFiles()

	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	vendorFlag := fs.String("vendor", "", "target vendor ("+vendorList()+")")
	contextFlag := fs.String("context", "", "additional context for the optimization")
	maxLength := fs.Int("max-length", 0, "maximum length hint in characters")
	jsonOut := fs.Bool("json", false, "print the full result as JSON")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	setupLogging(*debug, os.Stderr)

	status := tui.NewTerminalWith(os.Stdin, os.Stderr)

	vendor, err := vendors.ParseVendor(*vendorFlag)
	if err != nil {
		status.PrintError(describeError(err))
		return 2
	}

	prompt, err := promptFromArgs(fs.Args(), status)
	if err != nil {
		status.PrintError(err.Error())
		return 2
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		status.PrintError(err.Error())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, backend, err := newService(ctx, cfg)
	if err != nil {
		status.PrintError(err.Error())
		return 1
	}

	status.PrintStep(fmt.Sprintf("Optimizing for %s via %s", vendor.DisplayName(), backend.BaseURL()))
	result, err := svc.Optimize(ctx, optimizer.Request{
		OriginalPrompt: prompt,
		TargetVendor:   vendor,
		Context:        *contextFlag,
		MaxLength:      *maxLength,
	})
	if err != nil {
		status.PrintError(describeError(err))
		return 1
	}

	stats := tokens.NewCounter().Stats(result.Original, result.Optimized)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(server.NewOptimizeResponse(result, stats)); err != nil {
			status.PrintError(err.Error())
			return 1
		}
		return 0
	}

	fmt.Println(result.Optimized)
	status.PrintInfo(result.EnhancementNotes)
	status.PrintInfo(formatTokens(stats))
	return 0
}

// promptFromArgs joins positional args, or reads stdin when they are
// absent or "-".
func promptFromArgs(args []string, in *tui.Terminal) (string, error) {
	var prompt string
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		text, err := in.ReadAll()
		if err != nil {
			return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		prompt = text
	} else {
		prompt = strings.TrimSpace(strings.Join(args, " "))
	}
	if prompt == "" {
		return "", fmt.Errorf("no prompt given (pass it as an argument or on stdin)")
	}
	return prompt, nil
}

// describeError turns service errors into user-facing messages.
func describeError(err error) string {
	switch {
	case errors.Is(err, vendors.ErrVendorNotSupported):
		return fmt.Sprintf("%v (supported: %s)", err, vendorList())
	case errors.Is(err, external.ErrBackend):
		return fmt.Sprintf("%v (is the generation backend running?)", err)
	default:
		return err.Error()
	}
}

func formatTokens(s tokens.Stats) string {
	kind := "estimated"
	if s.Exact {
		kind = "exact"
	}
	return fmt.Sprintf("tokens: %d -> %d (%+d, %s)", s.Original, s.Optimized, s.Delta, kind)
}

func vendorList() string {
	all := vendors.All()
	names := make([]string, len(all))
	for i, v := range all {
		names[i] = v.String()
	}
	return strings.Join(names, ", ")
}

// runVendors lists the supported vendors.
func runVendors() {
	registry := vendors.NewDefaultRegistry()
	for _, v := range registry.Vendors() {
		adapter, err := registry.Get(v)
		if err != nil {
			continue
		}
		meta := adapter.Metadata()
		fmt.Printf("%s%-9s%s %s\n", tui.ColorBold, v, tui.ColorReset, v.DisplayName())
		fmt.Printf("          models: %s\n", meta.String(vendors.MetaModelRecommendation))
		fmt.Printf("          format: %s\n", meta.String(vendors.MetaFormat))
		fmt.Printf("          %s%s%s\n", tui.ColorDim, adapter.EnhancementNotes(), tui.ColorReset)
	}
}
