package merge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
)

// Question is a yes/no prompt about replacing one non-empty field value.
type Question struct {
	Field domain.Field `json:"field"`
	Old   string       `json:"old"`
	New   string       `json:"new"`
}

var questionPrompts = map[domain.Field]string{
	domain.FieldName:        "Are you sure to change the name?",
	domain.FieldHouseNumber: "Are you sure to change the house number?",
	domain.FieldStreet:      "Are you sure to change the street?",
	domain.FieldCity:        "Are you sure to change the city?",
}

// Text renders the question shown to the user.
func (q Question) Text() string {
	prompt, ok := questionPrompts[q.Field]
	if !ok {
		prompt = fmt.Sprintf("Are you sure to change the %s?", q.Field)
	}
	return prompt + "\n«" + q.Old + "» ⟶ «" + q.New + "»?"
}

// Confirmer answers a Question. It blocks until the user decides.
type Confirmer interface {
	Confirm(ctx context.Context, q Question) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, q Question) bool

func (f ConfirmFunc) Confirm(ctx context.Context, q Question) bool { return f(ctx, q) }

// DeclineAll keeps every current value.
var DeclineAll Confirmer = ConfirmFunc(func(context.Context, Question) bool { return false })

// Answers is a set of pre-made decisions keyed by field, for callers that
// cannot prompt (HTTP, pipelines). Unlisted fields are declined.
type Answers map[domain.Field]bool

func (a Answers) Confirm(_ context.Context, q Question) bool { return a[q.Field] }

// TerminalConfirmer asks on a line-oriented terminal. Non-interactive input
// declines every question without reading.
type TerminalConfirmer struct {
	mu          sync.Mutex
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewTerminalConfirmer prompts on out and reads answers from in, if in is a
// terminal.
func NewTerminalConfirmer(in *os.File, out io.Writer) *TerminalConfirmer {
	fd := in.Fd()
	c := NewPromptConfirmer(in, out)
	c.interactive = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return c
}

// NewPromptConfirmer prompts on out and reads answers from r unconditionally.
func NewPromptConfirmer(r io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: bufio.NewReader(r), out: out, interactive: true}
}

// Confirm accepts "y" or "yes" (case-insensitive). Anything else, including
// EOF, declines.
func (c *TerminalConfirmer) Confirm(ctx context.Context, q Question) bool {
	answer, ok := c.Ask(ctx, q.Text()+" [y/N]: ")
	if !ok {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Ask writes prompt and reads one trimmed line. ok is false when no answer
// could be read.
func (c *TerminalConfirmer) Ask(ctx context.Context, prompt string) (answer string, ok bool) {
	if !c.interactive || ctx.Err() != nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return "", false
	}
	return strings.TrimSpace(line), true
}

// Interactive reports whether questions will actually be asked.
func (c *TerminalConfirmer) Interactive() bool {
	return c.interactive
}
