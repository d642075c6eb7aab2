package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNonInteractive is returned when a question would need an answer from a
// stdin that is not a terminal.
var ErrNonInteractive = errors.New("non-interactive stdin")

// Confirmer asks yes/no questions. The zero value is non-interactive.
type Confirmer struct {
	In            io.Reader
	Out           io.Writer
	IsInteractive func() bool
}

// DefaultConfirmer reads answers from stdin and writes questions to stderr,
// so stdout stays clean for reports.
func DefaultConfirmer() Confirmer {
	return Confirmer{
		In:  os.Stdin,
		Out: os.Stderr,
		IsInteractive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

func (c Confirmer) interactive() bool {
	return c.IsInteractive != nil && c.IsInteractive()
}

// Confirm asks question and reports consent. Only "y" or "yes" (any case)
// count; anything else, including EOF, is a no.
func (c Confirmer) Confirm(question string) (bool, error) {
	if !c.interactive() {
		return false, fmt.Errorf("%w: cannot ask %q", ErrNonInteractive, question)
	}
	if c.Out != nil {
		fmt.Fprintf(c.Out, "%s (y/n): ", question)
	}
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ConfirmOverwrite asks before an existing report at path is replaced.
// force answers yes without asking.
func (c Confirmer) ConfirmOverwrite(path string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if !c.interactive() {
		return false, fmt.Errorf("%w: %s already exists, use -y to overwrite", ErrNonInteractive, path)
	}
	return c.Confirm(fmt.Sprintf("Report %s already exists. Overwrite?", path))
}
