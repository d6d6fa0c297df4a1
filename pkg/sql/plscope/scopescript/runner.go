// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package scopescript drives a plscope.Builder from a line-oriented script,
// one declaration or query per line. It is used by the tests of the scope
// tree and by the plscope command.
//
// A line is a datadriven directive: a command followed by arguments of the
// form key=value, key=(v1, v2, ...) or a bare flag. A single value that
// contains spaces or commas is wrapped in parentheses, as in
// type=(NUMERIC(10, 2)). '#' starts a comment. Condition values are
// written sqlwarning, not-found, sqlexception, sqlstate:XXXXX, errno:N or
// as the name of a declared condition.
package scopescript

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/plscope/pkg/sql/plscope"
)

// Runner executes script commands against a Builder.
type Runner struct {
	b      *plscope.Builder
	failed int
}

// NewRunner returns a Runner over a new, empty routine.
func NewRunner(ctx context.Context, routine string, cfg plscope.Config) (*Runner, error) {
	b, err := plscope.NewBuilder(ctx, routine, cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{b: b}, nil
}

// Builder returns the builder driven by the runner.
func (r *Runner) Builder() *plscope.Builder { return r.b }

// Failures returns the number of lines that failed so far.
func (r *Runner) Failures() int { return r.failed }

// Run executes every line of the script and returns the output of all the
// commands. A failing command does not stop the script; its error is
// printed in place of its output as "error (<sqlstate>): <message>".
func (r *Runner) Run(ctx context.Context, script io.Reader) (string, error) {
	var buf strings.Builder
	sc := bufio.NewScanner(script)
	for sc.Scan() {
		out := r.ExecLine(ctx, sc.Text())
		if out != "" {
			buf.WriteString(out)
			buf.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return "", errors.Wrap(err, "reading script")
	}
	return buf.String(), nil
}

// ExecLine executes a single line and returns its output or rendered
// error.
func (r *Runner) ExecLine(ctx context.Context, line string) string {
	cmd, ok, err := ParseLine(line)
	if err != nil {
		r.failed++
		return FormatError(err)
	}
	if !ok {
		return ""
	}
	out, err := r.Exec(ctx, cmd)
	if err != nil {
		r.failed++
		return FormatError(err)
	}
	return out
}

// FormatError renders an error with its SQLSTATE.
func FormatError(err error) string {
	return fmt.Sprintf("error (%s): %v", pgerror.GetPGCode(err), err)
}

// Exec executes a command.
func (r *Runner) Exec(ctx context.Context, cmd Command) (string, error) {
	fn, ok := commands[cmd.Cmd]
	if !ok {
		return "", pgerror.Newf(pgcode.Syntax, "unknown command %q", cmd.Cmd)
	}
	return fn(ctx, r, cmd)
}

type commandFn func(ctx context.Context, r *Runner, cmd Command) (string, error)

var commands map[string]commandFn

func init() {
	commands = map[string]commandFn{
		"push":              push,
		"pop":               pop,
		"declare-var":       declareVar,
		"declare-condition": declareCondition,
		"declare-cursor":    declareCursor,
		"declare-handler":   declareHandler,
		"declare-label":     declareLabel,
		"set-boundary":      setBoundary,
		"case-expr":         caseExpr,
		"find-var":          findVar,
		"find-condition":    findCondition,
		"find-cursor":       findCursor,
		"find-label":        findLabel,
		"find-handler":      findHandler,
		"resolve-var":       resolveVar,
		"resolve-condition": resolveCondition,
		"resolve-cursor":    resolveCursor,
		"var-at":            varAt,
		"cursor-at":         cursorAt,
		"leave":             leave,
		"iterate":           iterate,
		"distance":          distance,
		"match":             match,
		"counters":          counters,
		"frame":             frame,
		"layout":            layout,
		"fields":            fields,
	}
}

const notFound = "not found"

func push(ctx context.Context, r *Runner, cmd Command) (string, error) {
	kind := plscope.RegularScope
	k, err := cmd.ValueOr("kind", "regular")
	if err != nil {
		return "", err
	}
	switch k {
	case "regular":
	case "handler":
		kind = plscope.HandlerScope
	default:
		return "", pgerror.Newf(pgcode.Syntax, "unknown scope kind %q", k)
	}
	return r.b.PushScope(ctx, kind).String(), nil
}

func pop(ctx context.Context, r *Runner, _ Command) (string, error) {
	p, err := r.b.PopScope(ctx)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

type rawExpr string

func (e rawExpr) String() string { return string(e) }

func declareVar(ctx context.Context, r *Runner, cmd Command) (string, error) {
	names, err := cmd.Strings("name")
	if err != nil {
		return "", err
	}
	typeName, err := cmd.Value("type")
	if err != nil {
		return "", err
	}
	typ, err := plscope.ParseType(typeName)
	if err != nil {
		return "", err
	}
	modeName, err := cmd.ValueOr("mode", "local")
	if err != nil {
		return "", err
	}
	mode, err := plscope.ParseMode(modeName)
	if err != nil {
		return "", pgerror.WithCandidateCode(err, pgcode.Syntax)
	}
	def, err := cmd.ValueOr("default", "")
	if err != nil {
		return "", err
	}
	var out []string
	for _, name := range names {
		v, err := r.b.DeclareVariable(ctx, name, typ, mode)
		if err != nil {
			return "", err
		}
		if def != "" {
			v.Default = rawExpr(def)
		}
		out = append(out, v.String())
	}
	return strings.Join(out, "\n"), nil
}

func declareCondition(ctx context.Context, r *Runner, cmd Command) (string, error) {
	name, err := cmd.Value("name")
	if err != nil {
		return "", err
	}
	spec, err := cmd.Value("value")
	if err != nil {
		return "", err
	}
	value, err := r.conditionValue(ctx, spec)
	if err != nil {
		return "", err
	}
	c, err := r.b.DeclareCondition(ctx, name, value)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func declareCursor(ctx context.Context, r *Runner, cmd Command) (string, error) {
	name, err := cmd.Value("name")
	if err != nil {
		return "", err
	}
	c, err := r.b.DeclareCursor(ctx, name)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func declareHandler(ctx context.Context, r *Runner, cmd Command) (string, error) {
	values, err := r.conditionValues(ctx, cmd)
	if err != nil {
		return "", err
	}
	s, err := r.b.DeclareHandler(ctx, values...)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

var labelKinds = map[string]plscope.LabelKind{
	"implicit":  plscope.ImplicitLabel,
	"begin":     plscope.BeginLabel,
	"iteration": plscope.IterationLabel,
}

func declareLabel(ctx context.Context, r *Runner, cmd Command) (string, error) {
	name, err := cmd.Value("name")
	if err != nil {
		return "", err
	}
	ip, err := cmd.IntOr("ip", 0)
	if err != nil {
		return "", err
	}
	k, err := cmd.ValueOr("kind", "implicit")
	if err != nil {
		return "", err
	}
	kind, ok := labelKinds[k]
	if !ok {
		return "", pgerror.Newf(pgcode.Syntax, "unknown label kind %q", k)
	}
	l, err := r.b.DeclareLabel(ctx, name, ip, kind)
	if err != nil {
		return "", err
	}
	return l.String(), nil
}

func setBoundary(_ context.Context, r *Runner, cmd Command) (string, error) {
	n, err := cmd.Int("n")
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", pgerror.Newf(pgcode.Syntax, "set-boundary: negative boundary %d", n)
	}
	r.b.Current().SetVariableBoundary(n)
	return "", nil
}

func caseExpr(_ context.Context, r *Runner, cmd Command) (string, error) {
	s := r.b.Current()
	if len(cmd.Args) != 1 {
		return "", pgerror.New(pgcode.Syntax, "case-expr takes one of register, push, pop or current")
	}
	switch op := cmd.Args[0]; op.Key {
	case "register":
		return fmt.Sprintf("case-expr %d", s.RegisterCaseExpr()), nil
	case "push":
		id, err := cmd.Int("push")
		if err != nil {
			return "", err
		}
		s.PushCaseExprID(id)
		return "", nil
	case "pop":
		s.PopCaseExprID()
		return "", nil
	case "current":
		id, ok := s.CurrentCaseExprID()
		if !ok {
			return "no case-expr", nil
		}
		return fmt.Sprintf("case-expr %d", id), nil
	default:
		return "", pgerror.Newf(pgcode.Syntax, "unknown case-expr operation %q", op.Key)
	}
}

func findVar(_ context.Context, r *Runner, cmd Command) (string, error) {
	name, err := cmd.Value("name")
	if err != nil {
		return "", err
	}
	if v := r.b.Current().FindVariable(name, cmd.Has("scoped")); v != nil {
		return v.String(), nil
	}
	return notFound, nil
}

func findCondition(_ context.Context, r *Runner, cmd Command) (string, error) {
	name, err := cmd.Value("name")
	if err != nil {
		return "", err
	}
	if c := r.b.Current().FindCondition(name, cmd.Has("scoped")); c != nil {
		return c.String(), nil
	}
	return notFound, nil
}

func findCursor(_ context.Context, r *Runner, cmd Command) (string, error) {
	name, err := cmd.Value("name")
	if err != nil {
		return "", err
	}
	if c := r.b.Current().FindCursor(name, cmd.Has("scoped")); c != nil {
		return c.String(), nil
	}
	return notFound, nil
}

func findLabel(_ context.Context, r *Runner, cmd Command) (string, error) {
	name, err := cmd.Value("name")
	if err != nil {
		return "", err
	}
	if l := r.b.Current().FindLabel(name); l != nil {
		return fmt.Sprintf("%s in scope %d", l, l.Scope.ID()), nil
	}
	return notFound, nil
}

func findHandler(ctx context.Context, r *Runner, cmd Command) (string, error) {
	values, err := r.conditionValues(ctx, cmd)
	if err != nil {
		return "", err
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%s: %t", v, r.b.Current().FindHandler(v))
	}
	return strings.Join(out, "\n"), nil
}

func resolveVar(ctx context.Context, r *Runner, cmd Command) (string, error) {
	name, err := cmd.Value("name")
	if err != nil {
		return "", err
	}
	v, err := r.b.ResolveVariable(ctx, name)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func resolveCondition(ctx context.Context, r *Runner, cmd Command) (string, error) {
	name, err := cmd.Value("name")
	if err != nil {
		return "", err
	}
	c, err := r.b.ResolveCondition(ctx, name)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func resolveCursor(ctx context.Context, r *Runner, cmd Command) (string, error) {
	name, err := cmd.Value("name")
	if err != nil {
		return "", err
	}
	c, err := r.b.ResolveCursor(ctx, name)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func varAt(_ context.Context, r *Runner, cmd Command) (string, error) {
	off, err := cmd.Int("offset")
	if err != nil {
		return "", err
	}
	if v := r.b.Current().VariableAt(off); v != nil {
		return v.String(), nil
	}
	return notFound, nil
}

func cursorAt(_ context.Context, r *Runner, cmd Command) (string, error) {
	off, err := cmd.Int("offset")
	if err != nil {
		return "", err
	}
	if c := r.b.Current().CursorAt(off); c != nil {
		return c.String(), nil
	}
	return notFound, nil
}

func formatUnwind(op string, u plscope.Unwind) string {
	return fmt.Sprintf("%s %s: handlers=%d cursors=%d", op, u.Label.Name, u.Handlers, u.Cursors)
}

func leave(ctx context.Context, r *Runner, cmd Command) (string, error) {
	label, err := cmd.Value("label")
	if err != nil {
		return "", err
	}
	u, err := r.b.Leave(ctx, label)
	if err != nil {
		return "", err
	}
	return formatUnwind("leave", u), nil
}

func iterate(ctx context.Context, r *Runner, cmd Command) (string, error) {
	label, err := cmd.Value("label")
	if err != nil {
		return "", err
	}
	u, err := r.b.Iterate(ctx, label)
	if err != nil {
		return "", err
	}
	return formatUnwind("iterate", u), nil
}

func distance(_ context.Context, r *Runner, cmd Command) (string, error) {
	to, err := cmd.Int("to")
	if err != nil {
		return "", err
	}
	target := r.b.Tree().Scope(plscope.ScopeID(to))
	if target == nil {
		return "", pgerror.Newf(pgcode.UndefinedObject, "no scope %d", to)
	}
	cur := r.b.Current()
	exclusive := cmd.Has("exclusive")
	handlers, ok := cur.HandlerFrameDistance(target, exclusive)
	if !ok {
		return fmt.Sprintf("scope %d does not enclose scope %d", to, cur.ID()), nil
	}
	cursors, _ := cur.CursorFrameDistance(target, exclusive)
	return fmt.Sprintf("handlers=%d cursors=%d", handlers, cursors), nil
}

func match(ctx context.Context, r *Runner, cmd Command) (string, error) {
	values, err := r.conditionValues(ctx, cmd)
	if err != nil {
		return "", err
	}
	state, err := cmd.Value("sqlstate")
	if err != nil {
		return "", err
	}
	var errno uint64
	if cmd.Has("errno") {
		s, err := cmd.Value("errno")
		if err != nil {
			return "", err
		}
		if errno, err = strconv.ParseUint(s, 10, 32); err != nil {
			return "", pgerror.Wrapf(err, pgcode.Syntax, "bad error code %q", s)
		}
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%s: %t", v, v.Matches(uint32(errno), state))
	}
	return strings.Join(out, "\n"), nil
}

func counters(_ context.Context, r *Runner, _ Command) (string, error) {
	return r.b.Current().String(), nil
}

func frame(_ context.Context, r *Runner, _ Command) (string, error) {
	f := r.b.Frame()
	return fmt.Sprintf("variables=%d cursors=%d handlers=%d case-exprs=%d",
		f.Variables, f.Cursors, f.Handlers, f.CaseExprs), nil
}

func layout(_ context.Context, r *Runner, _ Command) (string, error) {
	return r.b.Tree().String(), nil
}

func fields(_ context.Context, r *Runner, _ Command) (string, error) {
	rd, err := plscope.RowDescription(r.b.Tree().Root())
	if err != nil {
		return "", err
	}
	out := make([]string, len(rd.Fields))
	for i, f := range rd.Fields {
		out[i] = fmt.Sprintf("%s oid=%d size=%d typmod=%d", f.Name, f.DataTypeOID, f.DataTypeSize, f.TypeModifier)
	}
	return strings.Join(out, "\n"), nil
}

func (r *Runner) conditionValues(ctx context.Context, cmd Command) ([]plscope.ConditionValue, error) {
	specs, err := cmd.Strings("for")
	if err != nil {
		return nil, err
	}
	values := make([]plscope.ConditionValue, len(specs))
	for i, spec := range specs {
		if values[i], err = r.conditionValue(ctx, spec); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func (r *Runner) conditionValue(ctx context.Context, spec string) (plscope.ConditionValue, error) {
	switch strings.ToLower(spec) {
	case "sqlwarning":
		return plscope.SQLWarning, nil
	case "not-found":
		return plscope.NotFound, nil
	case "sqlexception":
		return plscope.SQLException, nil
	}
	if state, ok := strings.CutPrefix(spec, "sqlstate:"); ok {
		return plscope.MakeSQLState(state)
	}
	if errno, ok := strings.CutPrefix(spec, "errno:"); ok {
		n, err := strconv.ParseUint(errno, 10, 32)
		if err != nil {
			return plscope.ConditionValue{}, pgerror.Wrapf(err, pgcode.Syntax, "bad error code %q", errno)
		}
		return plscope.MakeErrorCode(uint32(n)), nil
	}
	c, err := r.b.ResolveCondition(ctx, spec)
	if err != nil {
		return plscope.ConditionValue{}, err
	}
	return c.Value, nil
}
