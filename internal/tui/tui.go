package tui

// TUI package provides interactive terminal UI components:
//   - Arrow-key menu selection (numbered fallback off a TTY)
//   - Line prompts sharing one buffered reader
//   - Styled status output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrCancelled is returned when the user backs out of a menu or prompt.
var ErrCancelled = errors.New("cancelled")

// =============================================================================
// COLORS
// =============================================================================

const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
	ColorGreen  = "\033[0;32m"
	ColorBlue   = "\033[0;34m"
	ColorCyan   = "\033[0;36m"
	ColorYellow = "\033[1;33m"
	ColorRed    = "\033[0;31m"
	ColorBrand  = "\033[38;2;23;128;68m"
)

// =============================================================================
// TERMINAL
// =============================================================================

// Terminal reads user input and writes styled output. All reads go through
// one buffered reader so piped input is never lost between prompts.
type Terminal struct {
	in    *bufio.Reader
	out   io.Writer
	fd    int
	isTTY bool
}

// NewTerminal returns a terminal over stdin and stdout.
func NewTerminal() *Terminal {
	fd := int(os.Stdin.Fd())
	return &Terminal{
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
		fd:    fd,
		isTTY: term.IsTerminal(fd),
	}
}

// NewTerminalWith returns a non-interactive terminal over r and w.
// Menus fall back to numbered selection.
func NewTerminalWith(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(r), out: w, fd: -1}
}

// Interactive reports whether input comes from a TTY.
func (t *Terminal) Interactive() bool { return t.isTTY }

// =============================================================================
// PRINT FUNCTIONS
// =============================================================================

// PrintBanner displays the prompt optimizer banner.
func (t *Terminal) PrintBanner(version string) {
	fmt.Fprintf(t.out, "%s%s", ColorBrand, ColorBold)
	fmt.Fprint(t.out, `
  ┌─┐┬─┐┌─┐┌┬┐┌─┐┌┬┐  ┌─┐┌─┐┌┬┐┬┌┬┐┬┌─┐┌─┐┬─┐
  ├─┘├┬┘│ ││││├─┘ │   │ │├─┘ │ │││││┌─┘├┤ ├┬┘
  ┴  ┴└─└─┘┴ ┴┴   ┴   └─┘┴   ┴ ┴┴ ┴┴└─┘└─┘┴└─`)
	fmt.Fprintf(t.out, "  %s%s\n", version, ColorReset)
}

// PrintHeader prints a styled section header.
func (t *Terminal) PrintHeader(title string) {
	fmt.Fprintf(t.out, "\n%s%s========================================%s\n", ColorBold, ColorCyan, ColorReset)
	fmt.Fprintf(t.out, "%s%s       %s%s\n", ColorBold, ColorCyan, title, ColorReset)
	fmt.Fprintf(t.out, "%s%s========================================%s\n\n", ColorBold, ColorCyan, ColorReset)
}

// PrintSuccess prints a success message with green [OK] prefix.
func (t *Terminal) PrintSuccess(msg string) {
	fmt.Fprintf(t.out, "%s[OK]%s %s\n", ColorGreen, ColorReset, msg)
}

// PrintInfo prints an info message with blue [INFO] prefix.
func (t *Terminal) PrintInfo(msg string) {
	fmt.Fprintf(t.out, "%s[INFO]%s %s\n", ColorBlue, ColorReset, msg)
}

// PrintWarn prints a warning message with yellow [WARN] prefix.
func (t *Terminal) PrintWarn(msg string) {
	fmt.Fprintf(t.out, "%s[WARN]%s %s\n", ColorYellow, ColorReset, msg)
}

// PrintError prints an error message with red [ERROR] prefix.
func (t *Terminal) PrintError(msg string) {
	fmt.Fprintf(t.out, "%s[ERROR]%s %s\n", ColorRed, ColorReset, msg)
}

// PrintStep prints a step/action message with cyan >>> prefix.
func (t *Terminal) PrintStep(msg string) {
	fmt.Fprintf(t.out, "%s>>>%s %s\n", ColorCyan, ColorReset, msg)
}

// Println writes a plain line.
func (t *Terminal) Println(msg string) {
	fmt.Fprintln(t.out, msg)
}

// =============================================================================
// MENU SELECTION
// =============================================================================

// MenuItem represents an item in a menu.
type MenuItem struct {
	Label       string // Display label
	Description string // Optional description
	Value       string // Return value (if different from label)
}

// SelectMenu displays an arrow-key menu and returns the selected index.
// Returns -1 and ErrCancelled if the user backs out.
func (t *Terminal) SelectMenu(prompt string, items []MenuItem) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select")
	}
	if !t.isTTY {
		return t.selectNumbered(prompt, items)
	}

	oldState, err := term.MakeRaw(t.fd)
	if err != nil {
		return t.selectNumbered(prompt, items)
	}
	defer term.Restore(t.fd, oldState)

	selected := 0
	totalLines := 3 + len(items) + 2 // prompt + blank + items + blank + help

	fmt.Fprint(t.out, "\033[?25l")
	defer fmt.Fprint(t.out, "\033[?25h")

	firstRender := true
	render := func() {
		if !firstRender {
			fmt.Fprintf(t.out, "\033[%dA", totalLines)
		}
		firstRender = false

		fmt.Fprint(t.out, "\033[2K")
		fmt.Fprintf(t.out, "\r\n%s%s%s%s\n\n", ColorBold, ColorCyan, prompt, ColorReset)
		for i, item := range items {
			fmt.Fprint(t.out, "\033[2K")
			if i == selected {
				fmt.Fprintf(t.out, "\r  %s❯%s %s%s%s", ColorGreen, ColorReset, ColorBold, item.Label, ColorReset)
			} else {
				fmt.Fprintf(t.out, "\r    %s", item.Label)
			}
			if item.Description != "" {
				fmt.Fprintf(t.out, " %s- %s%s", ColorDim, item.Description, ColorReset)
			}
			fmt.Fprint(t.out, "\n")
		}
		fmt.Fprint(t.out, "\033[2K")
		fmt.Fprintf(t.out, "\r\n  %s[↑/↓] Navigate  [Enter] Select  [q/Esc] Cancel%s\n", ColorDim, ColorReset)
	}
	erase := func() {
		fmt.Fprintf(t.out, "\033[%dA", totalLines)
		for i := 0; i < totalLines; i++ {
			fmt.Fprint(t.out, "\033[2K\n")
		}
		fmt.Fprintf(t.out, "\033[%dA", totalLines)
	}

	render()
	for {
		b, err := t.in.ReadByte()
		if err != nil {
			return -1, err
		}

		switch b {
		case 27: // Escape or arrow sequence
			if next, _ := t.in.ReadByte(); next == '[' {
				switch arrow, _ := t.in.ReadByte(); arrow {
				case 'A':
					if selected > 0 {
						selected--
					}
					render()
					continue
				case 'B':
					if selected < len(items)-1 {
						selected++
					}
					render()
					continue
				}
			}
			erase()
			return -1, ErrCancelled
		case 'q', 3: // q or Ctrl+C
			erase()
			return -1, ErrCancelled
		case 'k':
			if selected > 0 {
				selected--
			}
			render()
		case 'j':
			if selected < len(items)-1 {
				selected++
			}
			render()
		case 13:
			erase()
			return selected, nil
		}
	}
}

// selectNumbered is a fallback for non-interactive input.
func (t *Terminal) selectNumbered(prompt string, items []MenuItem) (int, error) {
	fmt.Fprintf(t.out, "\n%s%s%s%s\n\n", ColorBold, ColorCyan, prompt, ColorReset)
	for i, item := range items {
		fmt.Fprintf(t.out, "  %s[%d]%s %s", ColorGreen, i+1, ColorReset, item.Label)
		if item.Description != "" {
			fmt.Fprintf(t.out, " %s- %s%s", ColorDim, item.Description, ColorReset)
		}
		fmt.Fprintln(t.out)
	}
	fmt.Fprintf(t.out, "  %s[0]%s Cancel\n\n", ColorYellow, ColorReset)

	for {
		fmt.Fprint(t.out, "Enter number: ")
		input, err := t.readLine()
		if err != nil {
			return -1, err
		}
		if input == "0" || input == "q" {
			return -1, ErrCancelled
		}
		if num, err := strconv.Atoi(input); err == nil && num >= 1 && num <= len(items) {
			return num - 1, nil
		}
		fmt.Fprintf(t.out, "Invalid choice. Enter 1-%d or 0 to cancel.\n", len(items))
	}
}

// =============================================================================
// PROMPTS
// =============================================================================

// PromptString prints prompt and reads one trimmed line.
// Returns io.EOF when input ends before a line is read.
func (t *Terminal) PromptString(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	return t.readLine()
}

// PromptYesNo prompts for a yes/no response. Returns the default if empty.
func (t *Terminal) PromptYesNo(prompt string, defaultYes bool) bool {
	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}
	input, err := t.PromptString(prompt + suffix)
	if err != nil || input == "" {
		return defaultYes
	}
	input = strings.ToLower(input)
	return input == "y" || input == "yes"
}

// ReadAll reads the remaining input, for prompts piped on stdin.
func (t *Terminal) ReadAll() (string, error) {
	data, err := io.ReadAll(t.in)
	return strings.TrimSpace(string(data)), err
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
