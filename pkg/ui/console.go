// Package ui renders appsync output and asks the user questions.
//
// A Console bundles the output streams, the prompt input and what the
// terminal supports. Status lines go through pterm prefix printers on color
// terminals and fall back to plain marks otherwise, so piped output stays
// readable.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const defaultWidth = 120

var skipPrinter = pterm.PrefixPrinter{
	MessageStyle: pterm.NewStyle(pterm.FgGray),
	Prefix: pterm.Prefix{
		Text:  "SKIP",
		Style: pterm.NewStyle(pterm.BgGray, pterm.FgBlack),
	},
}

// Console writes status lines, renders results and prompts the user
type Console struct {
	out         io.Writer
	errOut      io.Writer
	in          *bufio.Reader
	interactive bool
	color       bool
	width       int
	logger      zerolog.Logger
}

// ConsoleOption customizes a Console
type ConsoleOption func(*Console)

// WithOutput sets the output streams
func WithOutput(out, errOut io.Writer) ConsoleOption {
	return func(c *Console) {
		c.out = out
		c.errOut = errOut
	}
}

// WithInput sets the prompt input and whether a person is typing into it
func WithInput(in io.Reader, interactive bool) ConsoleOption {
	return func(c *Console) {
		c.in = bufio.NewReader(in)
		c.interactive = interactive
	}
}

// WithColor forces color on or off
func WithColor(color bool) ConsoleOption {
	return func(c *Console) { c.color = color }
}

// WithWidth sets the terminal width used to fit tables
func WithWidth(width int) ConsoleOption {
	return func(c *Console) { c.width = width }
}

// NewConsole creates a console on the process streams. Interactivity, color
// and width are detected and can be overridden with options.
func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		out:         os.Stdout,
		errOut:      os.Stderr,
		in:          bufio.NewReader(os.Stdin),
		interactive: DetectInteractive(os.Stdin),
		color:       DetectColor(os.Stdout),
		width:       terminalWidth(os.Stdout),
		logger:      logging.GetLogger("ui"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.width <= 0 {
		c.width = defaultWidth
	}
	return c
}

func terminalWidth(f *os.File) int {
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// Out is where results are written
func (c *Console) Out() io.Writer { return c.out }

// ErrOut is where warnings and errors are written
func (c *Console) ErrOut() io.Writer { return c.errOut }

// Interactive reports whether prompts can be answered
func (c *Console) Interactive() bool { return c.interactive }

// Color reports whether output is styled
func (c *Console) Color() bool { return c.color }

// Width is the terminal width in cells
func (c *Console) Width() int { return c.width }

func (c *Console) status(w io.Writer, printer pterm.PrefixPrinter, mark, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if c.color {
		printer.WithWriter(w).Println(msg)
		return
	}
	fmt.Fprintf(w, "%s %s\n", mark, msg)
}

// Success prints a line for a completed change
func (c *Console) Success(format string, args ...interface{}) {
	c.status(c.out, pterm.Success, "✓", format, args...)
}

// Info prints an informational line
func (c *Console) Info(format string, args ...interface{}) {
	c.status(c.out, pterm.Info, "•", format, args...)
}

// Skip prints a line for an operation that was not needed
func (c *Console) Skip(format string, args ...interface{}) {
	c.status(c.out, skipPrinter, "-", format, args...)
}

// Warning prints a warning line on the error stream
func (c *Console) Warning(format string, args ...interface{}) {
	c.status(c.errOut, pterm.Warning, "!", format, args...)
}

// Error prints an error line on the error stream
func (c *Console) Error(format string, args ...interface{}) {
	c.status(c.errOut, pterm.Error, "✗", format, args...)
}

// Result prints r with the line style matching its status
func (c *Console) Result(r types.Result) {
	switch r.Status {
	case types.StatusSucceeded:
		c.Success("%s", r.Message)
	case types.StatusSkipped:
		c.Skip("%s", r.Message)
	default:
		c.Error("%s", r.Message)
	}
}

// Header prints a section title
func (c *Console) Header(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	fmt.Fprintf(c.out, "\n%s\n", c.styles().header.Render(title))
}

// Println writes a plain line
func (c *Console) Println(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// readLine prompts and reads one trimmed line. io.EOF means the input ended.
func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		fmt.Fprintln(c.out)
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PickGroup asks which group to add an app to. Answers: a number from the
// list, 0 to create a group, an existing name in any case, or a new name.
func (c *Console) PickGroup(groups []string) (string, error) {
	if !c.interactive {
		return "", errors.New(errors.ErrNotInteractive,
			"No --group/-g provided and stdin is not interactive. Provide --group explicitly.")
	}

	if len(groups) == 0 {
		return c.promptNonEmpty("New group name: ")
	}

	fmt.Fprintln(c.out, "No group provided. Select which group to add the app to:")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, " 0. <create a new group>")
	for i, g := range groups {
		fmt.Fprintf(c.out, "%2d. %s\n", i+1, g)
	}

	byFold := make(map[string]string, len(groups))
	for _, g := range groups {
		byFold[types.Fold(g)] = g
	}

	for {
		choice, err := c.readLine("\nEnter number, existing name, or new group name: ")
		if err != nil {
			return "", noGroup(err)
		}
		if choice == "" {
			continue
		}

		if index, err := strconv.Atoi(choice); err == nil && index >= 0 {
			if index == 0 {
				return c.promptNonEmpty("New group name: ")
			}
			if index <= len(groups) {
				return groups[index-1], nil
			}
			fmt.Fprintln(c.out, "Invalid selection. Try again.")
			continue
		}

		if existing, ok := byFold[types.Fold(choice)]; ok {
			return existing, nil
		}
		c.logger.Debug().Str("group", choice).Msg("New group chosen at prompt")
		return choice, nil
	}
}

func (c *Console) promptNonEmpty(prompt string) (string, error) {
	for {
		value, err := c.readLine(prompt)
		if err != nil {
			return "", noGroup(err)
		}
		if value != "" {
			return value, nil
		}
		fmt.Fprintln(c.out, "Group name cannot be empty.")
	}
}

func noGroup(cause error) error {
	return errors.Wrap(cause, errors.ErrInvalidInput, "No group selected.")
}

// Confirm asks a yes/no question that defaults to no. End of input is a no.
func (c *Console) Confirm(question string) (bool, error) {
	if !c.interactive {
		return false, errors.Newf(errors.ErrNotInteractive, "cannot ask %q: stdin is not interactive", question)
	}

	answer, err := c.readLine(question + " [y/N]: ")
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, errors.ErrInternal, "failed to read user input")
	}

	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
