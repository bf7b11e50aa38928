package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Prompt asks the user yes/no questions and reads single lines of input.
// Every blocking human-in-the-loop interaction in the tool goes through one
// of these two shapes.
type Prompt struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// New returns a Prompt wired to the process's terminal.
func New() *Prompt {
	return &Prompt{In: os.Stdin, Out: os.Stdout}
}

func (p *Prompt) scanner() *bufio.Reader {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	return p.reader
}

// Confirm asks a yes/no question, defaulting to yes. EOF counts as a no.
func (p *Prompt) Confirm(msg string) bool {
	fmt.Fprintf(p.Out, "%s %s [Y/n] ", color.GreenString("::"), msg)

	line, err := p.scanner().ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

// Line prints msg and blocks until the user enters a line. EOF is returned as
// an error so callers can treat an abandoned prompt as cancellation.
func (p *Prompt) Line(msg string) (string, error) {
	fmt.Fprintf(p.Out, "%s %s", color.YellowString("::"), msg)

	line, err := p.scanner().ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
