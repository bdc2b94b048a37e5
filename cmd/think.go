package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"github.com/compresr/prompt-optimizer/internal/optimizer"
	"github.com/compresr/prompt-optimizer/internal/thinkmode"
	"github.com/compresr/prompt-optimizer/internal/tokens"
	"github.com/compresr/prompt-optimizer/internal/tui"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

// cancelCommand abandons the conversation while answering.
const cancelCommand = "/cancel"

// thinkOptions preselects conversation inputs. Zero values are asked for.
type thinkOptions struct {
	Prompt    string
	Vendor    vendors.Vendor
	Questions int
}

// runThink runs Think Mode in the terminal.
func runThink(args []string) int {
	loadEnvFiles()

	fs := flag.NewFlagSet("think", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	vendorFlag := fs.String("vendor", "", "target vendor ("+vendorList()+")")
	questions := fs.Int("questions", 0, "number of clarifying questions (5, 10 or 25)")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	setupLogging(*debug, os.Stderr)

	term := tui.NewTerminal()

	opts := thinkOptions{Questions: *questions}
	if len(fs.Args()) > 0 {
		opts.Prompt, _ = promptFromArgs(fs.Args(), term)
	}
	if *vendorFlag != "" {
		v, err := vendors.ParseVendor(*vendorFlag)
		if err != nil {
			term.PrintError(describeError(err))
			return 2
		}
		opts.Vendor = v
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		term.PrintError(err.Error())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, _, err := newService(ctx, cfg)
	if err != nil {
		term.PrintError(err.Error())
		return 1
	}

	sessions := thinkmode.NewManager(cfg.Think.SessionTTL)
	defer sessions.Stop()
	flow := thinkmode.NewFlow(svc, sessions)

	term.PrintHeader("Think Mode")
	key := thinkmode.SessionKey{UserID: localUser(), ChatID: uuid.New().String()}
	result, err := runThinkSession(ctx, term, flow, svc.Registry(), key, opts)
	if err != nil {
		if errors.Is(err, tui.ErrCancelled) {
			term.PrintWarn("Think Mode cancelled")
			return 130
		}
		term.PrintError(describeError(err))
		return 1
	}

	printThinkResult(term, result)
	return 0
}

// runThinkSession drives one conversation to completion.
func runThinkSession(ctx context.Context, term *tui.Terminal, flow *thinkmode.Flow, registry *vendors.Registry, key thinkmode.SessionKey, opts thinkOptions) (*optimizer.OptimizedPrompt, error) {
	// Prompt
	prompt := opts.Prompt
	for {
		if prompt == "" {
			var err error
			if prompt, err = term.PromptString("Prompt to optimize: "); err != nil {
				return nil, err
			}
		}
		_, err := flow.Start(key, prompt)
		if err == nil {
			break
		}
		if !errors.Is(err, thinkmode.ErrEmptyInput) {
			return nil, err
		}
		term.PrintWarn("The prompt cannot be empty.")
		prompt = ""
	}

	// Vendor
	vendor := opts.Vendor
	if vendor == "" {
		choices := registry.Vendors()
		items := make([]tui.MenuItem, len(choices))
		for i, v := range choices {
			items[i] = tui.MenuItem{Label: v.DisplayName(), Value: v.String()}
		}
		idx, err := term.SelectMenu("Target vendor", items)
		if err != nil {
			_, _ = flow.Cancel(key)
			return nil, err
		}
		vendor = choices[idx]
	}
	if _, err := flow.SelectVendor(key, vendor); err != nil {
		_, _ = flow.Cancel(key)
		return nil, err
	}

	// Question count
	count := opts.Questions
	if count == 0 {
		items := make([]tui.MenuItem, len(thinkmode.QuestionCountChoices))
		for i, n := range thinkmode.QuestionCountChoices {
			items[i] = tui.MenuItem{Label: strconv.Itoa(n) + " questions", Value: strconv.Itoa(n)}
		}
		idx, err := term.SelectMenu("How many clarifying questions?", items)
		if err != nil {
			_, _ = flow.Cancel(key)
			return nil, err
		}
		count = thinkmode.QuestionCountChoices[idx]
	}

	term.PrintStep(fmt.Sprintf("Generating %d clarifying questions for %s...", count, vendor.DisplayName()))
	step, err := flow.SelectQuestionCount(ctx, key, count)
	if err != nil {
		if step.State != thinkmode.StateCancelled {
			_, _ = flow.Cancel(key)
		}
		return nil, err
	}
	term.PrintInfo(fmt.Sprintf("Answer each question (%s to stop).", cancelCommand))

	// Answers
	for step.State == thinkmode.StateAnsweringQuestion {
		term.Println(fmt.Sprintf("\n%s[%d/%d]%s %s", tui.ColorCyan, step.QuestionIndex+1, step.QuestionTotal, tui.ColorReset, step.Question))
		answer, err := term.PromptString("> ")
		if err != nil {
			_, _ = flow.Cancel(key)
			return nil, err
		}
		if answer == cancelCommand {
			_, _ = flow.Cancel(key)
			return nil, tui.ErrCancelled
		}

		if step.QuestionIndex+1 == step.QuestionTotal {
			term.PrintStep("Building the optimized prompt...")
		}
		next, err := flow.Answer(ctx, key, answer)
		if errors.Is(err, thinkmode.ErrEmptyInput) {
			term.PrintWarn("Please enter an answer.")
			continue
		}
		if err != nil {
			return nil, err
		}
		step = next
	}

	if step.State != thinkmode.StateDone || step.Result == nil {
		return nil, fmt.Errorf("think mode ended in state %s", step.State)
	}
	return step.Result, nil
}

func printThinkResult(term *tui.Terminal, result *optimizer.OptimizedPrompt) {
	term.PrintHeader("Optimized Prompt")
	term.Println(result.Optimized)
	term.Println("")
	term.PrintSuccess(result.EnhancementNotes)
	term.PrintInfo(formatTokens(tokens.NewCounter().Stats(result.Original, result.Optimized)))
}

// localUser names the terminal user for the session key.
func localUser() string {
	for _, k := range []string{"USER", "USERNAME"} {
		if u := os.Getenv(k); u != "" {
			return u
		}
	}
	return "local"
}
