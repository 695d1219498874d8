package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/aretw0/stile/pkg/domain"
)

// Prompter reads step answers from the terminal. In direct mode reads block
// on stdin and password steps disable echo. In interruptible mode (watch) a
// single pump goroutine owns stdin so a catalog reload can cancel a pending
// read; passwords echo in that mode.
type Prompter struct {
	reader        *bufio.Reader
	interruptible bool
	lines         chan lineResult
	pumpOnce      sync.Once
}

type lineResult struct {
	text string
	err  error
}

// NewPrompter creates a blocking prompter over stdin.
func NewPrompter() *Prompter {
	return &Prompter{reader: bufio.NewReader(os.Stdin)}
}

// NewInterruptiblePrompter creates a prompter whose reads abort when the
// context is cancelled. Create at most one per process: the pump goroutine
// owns stdin for the lifetime of the process.
func NewInterruptiblePrompter() *Prompter {
	return &Prompter{
		reader:        bufio.NewReader(os.Stdin),
		interruptible: true,
		lines:         make(chan lineResult),
	}
}

// Read collects one answer for the given step view. Choice answers may be
// given by number or by label; multi-choice answers are comma-separated.
func (p *Prompter) Read(ctx context.Context, view domain.StepView) (any, error) {
	fmt.Print("> ")

	if view.Step.Kind == domain.KindPassword && !p.interruptible {
		return p.readPassword()
	}

	line, err := p.readLine(ctx)
	if err != nil {
		return nil, err
	}

	switch view.Step.Kind {
	case domain.KindChoice:
		return resolveChoice(line, view.Step.Options), nil
	case domain.KindChoiceMulti:
		parts := strings.Split(line, ",")
		for i, part := range parts {
			parts[i] = resolveChoice(strings.TrimSpace(part), view.Step.Options)
		}
		return strings.Join(parts, ","), nil
	default:
		return line, nil
	}
}

func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if !p.interruptible {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	p.pumpOnce.Do(func() { go p.pump() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-p.lines:
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}

func (p *Prompter) pump() {
	for {
		line, err := p.reader.ReadString('\n')
		p.lines <- lineResult{line, err}
		if err != nil {
			return
		}
	}
}

func (p *Prompter) readPassword() (any, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Piped input (tests, scripts): fall back to plain line reads.
		line, err := p.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	pw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// resolveChoice maps a 1-based numeric selection onto its option label.
// Anything else passes through for the engine to validate.
func resolveChoice(input string, options []string) string {
	if n, err := strconv.Atoi(strings.TrimSpace(input)); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1]
		}
	}
	return input
}
