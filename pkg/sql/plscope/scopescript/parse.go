// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package scopescript

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgerror"
)

// Arg is a command argument: a bare flag, key=value or key=(v1, v2, ...).
type Arg = datadriven.CmdArg

// Command is one line of a script.
type Command struct {
	Cmd  string
	Args []Arg
}

// ParseLine parses one line of a script with the datadriven directive
// syntax, after dropping everything from the first '#'. ok is false for
// blank and comment-only lines.
func ParseLine(line string) (cmd Command, ok bool, _ error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	name, args, err := datadriven.ParseLine(line)
	if err != nil {
		return Command{}, false, pgerror.WithCandidateCode(err, pgcode.Syntax)
	}
	if name == "" {
		return Command{}, false, nil
	}
	for _, a := range args {
		if strings.ContainsAny(a.Key, "(),") {
			return Command{}, false, pgerror.Newf(pgcode.Syntax, "malformed argument %q in %q", a.Key, line)
		}
		for i := range a.Vals {
			a.Vals[i] = strings.TrimSpace(a.Vals[i])
		}
	}
	return Command{Cmd: name, Args: args}, true, nil
}

// Has returns true if the command has an argument with the given key.
func (c Command) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c Command) lookup(key string) (Arg, bool) {
	for _, a := range c.Args {
		if a.Key == key {
			return a, true
		}
	}
	return Arg{}, false
}

// Strings returns the values of an argument.
func (c Command) Strings(key string) ([]string, error) {
	a, ok := c.lookup(key)
	if !ok || len(a.Vals) == 0 || (len(a.Vals) == 1 && a.Vals[0] == "") {
		return nil, pgerror.Newf(pgcode.Syntax, "%s: missing argument %s", c.Cmd, key)
	}
	return a.Vals, nil
}

// Value returns the single value of an argument. A value containing spaces
// or commas is written in parentheses, e.g. type=(NUMERIC(10, 2)).
func (c Command) Value(key string) (string, error) {
	vals, err := c.Strings(key)
	if err != nil {
		return "", err
	}
	if len(vals) != 1 {
		return "", pgerror.Newf(pgcode.Syntax, "%s: argument %s takes a single value", c.Cmd, key)
	}
	return vals[0], nil
}

// ValueOr is like Value but returns def if the argument is absent.
func (c Command) ValueOr(key, def string) (string, error) {
	if !c.Has(key) {
		return def, nil
	}
	return c.Value(key)
}

// Int returns the single value of an integer argument.
func (c Command) Int(key string) (int, error) {
	s, err := c.Value(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, pgerror.Wrapf(err, pgcode.Syntax, "%s: argument %s", c.Cmd, key)
	}
	return n, nil
}

// IntOr is like Int but returns def if the argument is absent.
func (c Command) IntOr(key string, def int) (int, error) {
	if !c.Has(key) {
		return def, nil
	}
	return c.Int(key)
}
