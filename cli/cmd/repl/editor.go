package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/whale/lang"
	"github.com/ardnew/whale/log"
	"github.com/ardnew/whale/pkg"
)

const defaultEditor = "vi"

// ErrEditDeclined is returned when the user declines to fix a session that
// failed to replay.
var ErrEditDeclined = errors.New("edit declined")

// editSessionCommand implements [tea.ExecCommand] for the edit-run-retry
// loop. It writes the session source to a temp file, opens the user's
// editor, then parses and runs the result in a fresh scope. On failure the
// user is asked to re-edit; declining exits the REPL.
type editSessionCommand struct {
	source  string
	interp  *lang.Interpreter
	ctxFunc func() context.Context
	logger  log.Logger

	// results, set when Run succeeds with non-empty content
	newSource string
	newScope  *lang.Scope

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editSessionCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editSessionCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editSessionCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. It returns [ErrEditDeclined] if the user
// declines to fix a failing session.
func (c *editSessionCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp("", pkg.Name+"-repl-*"+pkg.Extension)
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	content := c.source

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		content = string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		scope, err := c.replay(ctx, content)

		c.logger.TraceContext(ctx, "editor replay attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", err == nil),
		)

		if err == nil {
			c.newSource = strings.TrimSpace(content)
			c.newScope = scope

			return nil
		}

		fmt.Fprintf(c.stderr, "\nerror: %s\n", err)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// replay runs source in a new scope and returns that scope.
func (c *editSessionCommand) replay(ctx context.Context, source string) (*lang.Scope, error) {
	prog, err := c.interp.Parse(ctx, source)
	if err != nil {
		return nil, err
	}

	scope := lang.NewScope()
	if _, err := c.interp.Run(ctx, prog, scope); err != nil {
		return nil, err
	}

	return scope, nil
}

// editor returns the user's preferred editor command.
func editor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if e := strings.TrimSpace(os.Getenv(env)); e != "" {
			return e
		}
	}

	return defaultEditor
}

// runEditor launches the user's editor on path and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	args := strings.Fields(editor())

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
