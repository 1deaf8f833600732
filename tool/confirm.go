package tool

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Choice is an answer to a confirmation prompt.
type Choice string

const (
	ChoiceYes    Choice = "yes"
	ChoiceAppend Choice = "append"
	ChoiceNo     Choice = "no"
)

// Confirmer asks whether a destructive file operation may proceed.
type Confirmer interface {
	Confirm(prompt string, choices []Choice) (Choice, error)
}

// PromptConfirmer asks on out and reads the answer from in.
// Any answer that is not one of the offered choices counts as ChoiceNo.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptConfirmer creates a PromptConfirmer, typically on os.Stdin and os.Stdout.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

func (c *PromptConfirmer) Confirm(prompt string, choices []Choice) (Choice, error) {
	opts := make([]string, len(choices))
	for i, ch := range choices {
		opts[i] = string(ch)
	}
	if _, err := fmt.Fprintf(c.out, "%s (%s) ", prompt, strings.Join(opts, "/")); err != nil {
		return ChoiceNo, err
	}

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ChoiceNo, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := Choice(strings.ToLower(strings.TrimSpace(line)))
	if slices.Contains(choices, answer) {
		return answer, nil
	}
	return ChoiceNo, nil
}

// StaticConfirmer always gives the same answer, falling back to ChoiceNo
// when that answer is not on offer. It backs --yes and tests.
type StaticConfirmer Choice

func (s StaticConfirmer) Confirm(_ string, choices []Choice) (Choice, error) {
	if slices.Contains(choices, Choice(s)) {
		return Choice(s), nil
	}
	return ChoiceNo, nil
}
