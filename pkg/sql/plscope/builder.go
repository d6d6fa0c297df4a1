// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/plscope/pkg/util/log"
)

// Builder is the parser's view of a Tree under construction: it tracks the
// active scope and reports duplicate declarations and unresolved names as
// errors carrying a SQLSTATE.
type Builder struct {
	tree    *Tree
	cur     *Scope
	routine string
}

// NewBuilder returns a Builder positioned on the root scope of a new
// tree. routine names the routine in log messages.
func NewBuilder(ctx context.Context, routine string, cfg Config) (*Builder, error) {
	tree, err := cfg.NewTree()
	if err != nil {
		return nil, err
	}
	b := &Builder{tree: tree, cur: tree.Root(), routine: routine}
	log.VEventf(b.annotate(ctx), 2, "new scope tree")
	return b, nil
}

func (b *Builder) annotate(ctx context.Context) context.Context {
	return logtags.AddTag(ctx, "routine", b.routine)
}

// diag logs a diagnostic before it is returned to the parser.
func (b *Builder) diag(ctx context.Context, err error) error {
	log.VEventf(b.annotate(ctx), 1, "%v", err)
	return err
}

// Tree returns the tree being built.
func (b *Builder) Tree() *Tree { return b.tree }

// Current returns the active scope.
func (b *Builder) Current() *Scope { return b.cur }

// PushScope opens a nested scope and makes it the active one.
func (b *Builder) PushScope(ctx context.Context, kind Kind) *Scope {
	b.cur = b.cur.Push(kind)
	log.VEventf(b.annotate(ctx), 2, "push %s scope %d (parent %d)", kind, b.cur.ID(), b.cur.parent)
	return b.cur
}

// PopScope closes the active scope and returns its parent, which becomes
// the active scope.
func (b *Builder) PopScope(ctx context.Context) (*Scope, error) {
	p := b.cur.Pop()
	if p == nil {
		return nil, errors.AssertionFailedf("cannot pop the root scope of %s", b.routine)
	}
	log.VEventf(b.annotate(ctx), 2, "pop scope %d", b.cur.ID())
	b.cur = p
	return p, nil
}

// DeclareVariable declares a variable in the active scope. Shadowing a
// variable of an enclosing scope is allowed, redeclaring one of the same
// scope is not, even while it is hidden by the variable boundary.
func (b *Builder) DeclareVariable(
	ctx context.Context, name string, typ Type, mode Mode,
) (*Variable, error) {
	if b.cur.findOwnVariable(name) != nil {
		return nil, b.diag(ctx, pgerror.Newf(pgcode.DuplicateObject, "duplicate variable: %s", name))
	}
	v := b.cur.DeclareVariable(name, typ, mode)
	log.VEventf(b.annotate(ctx), 2, "declare variable %s at offset %d", v.Name, v.Offset)
	return v, nil
}

// DeclareCondition declares a named condition in the active scope.
func (b *Builder) DeclareCondition(
	ctx context.Context, name string, value ConditionValue,
) (*Condition, error) {
	if b.cur.FindCondition(name, true /* scoped */) != nil {
		return nil, b.diag(ctx, pgerror.Newf(pgcode.DuplicateObject, "duplicate condition: %s", name))
	}
	c := b.cur.DeclareCondition(name, value)
	log.VEventf(b.annotate(ctx), 2, "declare condition %s for %s", c.Name, c.Value)
	return c, nil
}

// DeclareCursor declares a cursor in the active scope.
func (b *Builder) DeclareCursor(ctx context.Context, name string) (*Cursor, error) {
	if b.cur.FindCursor(name, true /* scoped */) != nil {
		return nil, b.diag(ctx, pgerror.Newf(pgcode.DuplicateCursor, "duplicate cursor: %s", name))
	}
	c := b.cur.DeclareCursor(name)
	log.VEventf(b.annotate(ctx), 2, "declare cursor %s at offset %d", c.Name, c.Offset)
	return c, nil
}

// DeclareLabel declares a label in the active scope. A label cannot reuse
// the name of a visible one.
func (b *Builder) DeclareLabel(
	ctx context.Context, name string, ip int, kind LabelKind,
) (*Label, error) {
	if b.cur.FindLabel(name) != nil {
		return nil, b.diag(ctx, pgerror.Newf(pgcode.Syntax, "redefining label %s", name))
	}
	l := b.cur.DeclareLabel(name, ip)
	l.Kind = kind
	log.VEventf(b.annotate(ctx), 2, "declare %s label %s", kind, l.Name)
	return l, nil
}

// DeclareHandler registers a handler of the active scope catching the
// given condition values, then opens the handler's body scope and makes it
// the active one. The caller pops it at the end of the handler body.
//
// No value may be listed twice, nor already be handled in the active
// scope. Handlers of enclosing scopes do not conflict.
func (b *Builder) DeclareHandler(ctx context.Context, values ...ConditionValue) (*Scope, error) {
	if len(values) == 0 {
		return nil, errors.AssertionFailedf("handler declared without condition values")
	}
	for i, v := range values {
		dup := b.cur.FindHandler(v)
		for j := 0; j < i && !dup; j++ {
			dup = values[j].Equal(v)
		}
		if dup {
			return nil, b.diag(ctx, pgerror.New(pgcode.DuplicateObject, "duplicate handler declared in the same block"))
		}
	}
	for _, v := range values {
		b.cur.RegisterHandler(v)
	}
	b.cur.AddHandlers(1)
	log.VEventf(b.annotate(ctx), 2, "declare handler %d of scope %d", b.cur.NumHandlers(), b.cur.ID())
	return b.PushScope(ctx, HandlerScope), nil
}

// ResolveVariable returns the variable a name refers to in the active
// scope.
func (b *Builder) ResolveVariable(ctx context.Context, name string) (*Variable, error) {
	if v := b.cur.FindVariable(name, false /* scoped */); v != nil {
		return v, nil
	}
	return nil, b.diag(ctx, pgerror.Newf(pgcode.UndefinedObject, "undeclared variable: %s", name))
}

// ResolveCondition returns the named condition a name refers to in the
// active scope.
func (b *Builder) ResolveCondition(ctx context.Context, name string) (*Condition, error) {
	if c := b.cur.FindCondition(name, false /* scoped */); c != nil {
		return c, nil
	}
	return nil, b.diag(ctx, pgerror.Newf(pgcode.UndefinedObject, "undefined condition: %s", name))
}

// ResolveCursor returns the cursor a name refers to in the active scope.
func (b *Builder) ResolveCursor(ctx context.Context, name string) (*Cursor, error) {
	if c := b.cur.FindCursor(name, false /* scoped */); c != nil {
		return c, nil
	}
	return nil, b.diag(ctx, pgerror.Newf(pgcode.InvalidCursorName, "undefined cursor: %s", name))
}

// Unwind describes the frames a branch to a label must release before
// jumping.
type Unwind struct {
	Label *Label
	// Handlers is the number of handler frames to pop.
	Handlers int
	// Cursors is the number of cursors to close.
	Cursors int
}

// Leave plans a LEAVE of the given label from the active scope. The scope
// owning the label's statement releases its own frames when it ends, so
// they are not counted.
func (b *Builder) Leave(ctx context.Context, label string) (Unwind, error) {
	l := b.cur.FindLabel(label)
	if l == nil {
		return Unwind{}, b.diag(ctx, pgerror.Newf(pgcode.Syntax, "LEAVE with no matching label: %s", label))
	}
	return b.unwind(l, true /* exclusive */)
}

// Iterate plans an ITERATE of the given loop label from the active scope.
// Every scope entered since the loop started is left.
func (b *Builder) Iterate(ctx context.Context, label string) (Unwind, error) {
	l := b.cur.FindLabel(label)
	if l == nil || l.Kind != IterationLabel {
		return Unwind{}, b.diag(ctx, pgerror.Newf(pgcode.Syntax, "ITERATE with no matching label: %s", label))
	}
	return b.unwind(l, false /* exclusive */)
}

func (b *Builder) unwind(l *Label, exclusive bool) (Unwind, error) {
	handlers, ok := b.cur.HandlerFrameDistance(l.Scope, exclusive)
	if !ok {
		return Unwind{}, errors.AssertionFailedf("label %s is not declared in an enclosing scope", l.Name)
	}
	cursors, _ := b.cur.CursorFrameDistance(l.Scope, exclusive)
	return Unwind{Label: l, Handlers: handlers, Cursors: cursors}, nil
}

// Frame summarizes the runtime frame of the routine.
type Frame struct {
	Variables int
	Cursors   int
	Handlers  int
	CaseExprs int
}

// Frame returns the frame size required by the routine. It is final once
// every scope has been popped.
func (b *Builder) Frame() Frame {
	root := b.tree.Root()
	return Frame{
		Variables: root.MaxVarIndex(),
		Cursors:   root.MaxCursorIndex(),
		Handlers:  root.MaxHandlerIndex(),
		CaseExprs: root.NumCaseExprs(),
	}
}
