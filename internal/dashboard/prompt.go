package dashboard

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the operator questions on the terminal
type Prompter interface {
	Confirm(question string) (bool, error)
	Ask(question string) (string, error)
}

// LinePrompter reads answers one line at a time
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter prompts on out and reads from in
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func (p *LinePrompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *LinePrompter) Ask(question string) (string, error) {
	fmt.Fprintf(p.out, "%s ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
