// Package prompt asks the operator for run inputs in the terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the operator dismisses a prompt.
var ErrCancelled = errors.New("prompt cancelled")

// InputOptions configures a text prompt.
type InputOptions struct {
	Title       string
	Placeholder string
	Default     string
	CharLimit   int
	Secret      bool

	// Validate rejects a submitted value; the prompt stays open
	Validate func(string) error
}

// Prompter runs interactive prompts on a terminal.
type Prompter struct {
	in  io.Reader
	out io.Writer
}

// New returns a Prompter. Nil in or out use the process terminal.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Input asks for a line of text.
func (p *Prompter) Input(ctx context.Context, opts InputOptions) (string, error) {
	final, err := p.run(ctx, newInputModel(opts))
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if !m.done {
		return "", ErrCancelled
	}
	return m.value, nil
}

// Select asks the operator to pick one of options and returns its index.
func (p *Prompter) Select(ctx context.Context, title string, options []string, initial int) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("nothing to select")
	}
	final, err := p.run(ctx, newSelectModel(title, options, initial))
	if err != nil {
		return -1, err
	}
	m := final.(selectModel)
	if !m.done {
		return -1, ErrCancelled
	}
	return m.chosen, nil
}

// PromptURL asks for the calendar or event page to scrape.
func (p *Prompter) PromptURL(ctx context.Context) (string, error) {
	return p.Input(ctx, InputOptions{
		Title:       "Calendar or event URL",
		Placeholder: "https://lu.ma/...",
		Validate:    ValidateURL,
	})
}

// PromptEmail asks for the login email, offering fallback as the default.
func (p *Prompter) PromptEmail(ctx context.Context, fallback string) (string, error) {
	return p.Input(ctx, InputOptions{
		Title:       "Login email",
		Placeholder: "you@email.com",
		Default:     fallback,
		Validate:    ValidateEmail,
	})
}

// PromptCode asks for the one-time code sent to email.
func (p *Prompter) PromptCode(ctx context.Context, email string) (string, error) {
	return p.Input(ctx, codeOptions(email))
}

// codeOptions configures the one-time code prompt; the code is masked.
func codeOptions(email string) InputOptions {
	return InputOptions{
		Title:       fmt.Sprintf("Enter the code sent to %s", email),
		Placeholder: "123456",
		CharLimit:   12,
		Secret:      true,
		Validate:    ValidateCode,
	}
}

func (p *Prompter) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.in != nil {
		opts = append(opts, tea.WithInput(p.in))
	}
	if p.out != nil {
		opts = append(opts, tea.WithOutput(p.out))
	}

	final, err := tea.NewProgram(model, opts...).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}

// ValidateURL accepts absolute http(s) URLs.
func ValidateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter a full http(s) URL")
	}
	return nil
}

// ValidateEmail performs a minimal shape check.
func ValidateEmail(s string) error {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 || strings.ContainsAny(s, " \t") {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

// ValidateCode accepts a non-empty string of digits.
func ValidateCode(s string) error {
	if s == "" {
		return fmt.Errorf("enter the code from the email")
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("the code contains only digits")
		}
	}
	return nil
}
