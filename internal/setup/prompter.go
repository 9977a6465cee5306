package setup

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

// Prompter abstracts interactive input so the wizard can be driven by tests.
type Prompter interface {
	// Ask prompts for a line of input, returning def when the user just
	// presses enter.
	Ask(prompt, def string) (string, error)
	// AskSecret prompts for input without echoing it.
	AskSecret(prompt string) (string, error)
}

// readlinePrompter is the terminal-backed Prompter.
type readlinePrompter struct {
	rl *readline.Instance
}

// NewPrompter creates a terminal Prompter.
func NewPrompter() (Prompter, func() error, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return &readlinePrompter{rl: rl}, rl.Close, nil
}

func (p *readlinePrompter) Ask(prompt, def string) (string, error) {
	if def != "" {
		p.rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, def))
	} else {
		p.rl.SetPrompt(prompt + ": ")
	}

	line, err := p.rl.Readline()
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (p *readlinePrompter) AskSecret(prompt string) (string, error) {
	secret, err := p.rl.ReadPassword(prompt + ": ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
