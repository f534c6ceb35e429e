package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// confirmWord is what the user must type to approve a destructive
// operation.
const confirmWord = "revert"

// InteractiveApprover prompts on the console for confirmation of
// destructive operations.
type InteractiveApprover struct {
	in  io.Reader
	out io.Writer
}

// NewInteractiveApprover creates an approver reading from stdin and
// writing to stderr.
func NewInteractiveApprover() pgplan.Approver {
	return &InteractiveApprover{in: os.Stdin, out: os.Stderr}
}

// NewInteractiveApproverIO creates an approver with explicit streams,
// for tests.
func NewInteractiveApproverIO(in io.Reader, out io.Writer) pgplan.Approver {
	return &InteractiveApprover{in: in, out: out}
}

// RequestApproval prompts the user to type the confirmation word.
// Any other input denies the operation without error.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, subject string) (bool, error) {
	fmt.Fprintf(a.out, "\n⚠️  WARNING: about to %s\n", subject)
	fmt.Fprintln(a.out, "This permanently undoes an applied migration step!")
	fmt.Fprintf(a.out, "\nTo confirm, type '%s' and press Enter: ", confirmWord)

	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.in)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if strings.EqualFold(input, confirmWord) {
			fmt.Fprintln(a.out, "✓ Confirmed. Proceeding...")
			return true, nil
		}
		fmt.Fprintf(a.out, "✗ Input %q does not match %q. Operation cancelled.\n", input, confirmWord)
		return false, nil
	}
}

var _ pgplan.Approver = (*InteractiveApprover)(nil)
