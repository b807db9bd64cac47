package ports

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Amund211/eventlight/internal/logging"
	"github.com/google/shlex"
	"golang.org/x/term"
)

const shellPrompt = "eventlight> "

// RunShell reads commands from in until it is exhausted or the user exits.
// Every command runs against v, so they all share one cache
func RunShell(ctx context.Context, v *Views, in io.Reader, out io.Writer, opts CommandOptions) error {
	logger := logging.FromContext(ctx)
	interactive := isTerminal(in)
	opts.InShell = true

	if interactive {
		fmt.Fprintln(out, `Type "help" for the available commands and "exit" to leave.`)
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, shellPrompt)
		}
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return nil
		}

		args, err := splitArgs(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}

		root := NewRootCommand(v, opts)
		root.SetArgs(args)
		root.SetIn(in)
		root.SetOut(out)
		root.SetErr(out)

		err = root.ExecuteContext(ctx)
		switch {
		case err == nil, errors.Is(err, ErrViewFailed):
		case ctx.Err() != nil:
			return nil
		default:
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		logger.ErrorContext(ctx, "Failed to read shell input", "error", err.Error())
		return fmt.Errorf("failed to read shell input: %w", err)
	}
	return nil
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// splitArgs splits a shell line into arguments with POSIX shell quoting and escapes
func splitArgs(line string) ([]string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("could not parse command: %w", err)
	}
	return args, nil
}
