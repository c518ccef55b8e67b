// Package render expands profile templates into argument vectors.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alessio/shellescape"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// ErrNotSimpleCommand is returned for templates that are not a single
// simple command (pipelines, lists, redirections, assignments).
var ErrNotSimpleCommand = errors.New("template must be a single simple command")

// Command is a rendered template ready for execution.
type Command struct {
	Args []string
	// Background is set when the template ends with `&`; the process is
	// then started detached and not waited on.
	Background bool
}

// String returns the command as a shell-quoted line.
func (c Command) String() string {
	s := shellescape.QuoteCommand(c.Args)
	if c.Background {
		s += " &"
	}
	return s
}

// Render substitutes $KEY and ${KEY} references in template from env, a
// list of KEY=value pairs. Only env is visible: the process environment is
// not consulted and command substitution is rejected. Unknown references
// expand to nothing.
func Render(template string, env []string) (Command, error) {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(template), "")
	if err != nil {
		return Command{}, fmt.Errorf("failed to parse template: %w", err)
	}
	if len(file.Stmts) != 1 {
		return Command{}, ErrNotSimpleCommand
	}
	stmt := file.Stmts[0]
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok || len(call.Assigns) > 0 || len(stmt.Redirs) > 0 || stmt.Negated || len(call.Args) == 0 {
		return Command{}, ErrNotSimpleCommand
	}

	cfg := &expand.Config{Env: expand.ListEnviron(env...)}
	args, err := expand.Fields(cfg, call.Args...)
	if err != nil {
		return Command{}, fmt.Errorf("failed to expand template: %w", err)
	}
	if len(args) == 0 {
		return Command{}, ErrNotSimpleCommand
	}

	return Command{Args: args, Background: stmt.Background}, nil
}
