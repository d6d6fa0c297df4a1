// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import "strings"

// Kind is the kind of a Scope.
type Kind uint8

const (
	// RegularScope is introduced by a BEGIN ... END block.
	RegularScope Kind = iota
	// HandlerScope is the body of an exception handler. Labels of the
	// enclosing scopes are not visible from it.
	HandlerScope
)

var kindNames = [...]string{
	RegularScope: "regular",
	HandlerScope: "handler",
}

func (k Kind) String() string { return kindNames[k] }

// SafeValue implements the redact.SafeValue interface.
func (Kind) SafeValue() {}

// ScopeID identifies a Scope within its Tree. The root scope is always 0.
type ScopeID int32

const noScope ScopeID = -1

// LabelComparer compares label names.
type LabelComparer func(a, b string) bool

// TreeOptions configures a Tree.
type TreeOptions struct {
	// Names compares variable, condition and cursor names. Defaults to a
	// case and accent insensitive collation.
	Names NameComparer
	// Labels compares label names. Defaults to strings.EqualFold.
	Labels LabelComparer
}

// Tree owns all the scopes of one routine. Scopes reference their parent
// and children by ScopeID; the whole tree is released at once.
type Tree struct {
	scopes []*Scope
	names  NameComparer
	labels LabelComparer
	alloc  entityAlloc
}

// NewTree creates a Tree containing only the root scope.
func NewTree(opts TreeOptions) *Tree {
	t := &Tree{names: opts.Names, labels: opts.Labels}
	if t.names == nil {
		t.names = DefaultNameComparer()
	}
	if t.labels == nil {
		t.labels = strings.EqualFold
	}
	t.newScope(noScope, RegularScope)
	return t
}

// Root returns the routine's outermost scope.
func (t *Tree) Root() *Scope {
	return t.scopes[0]
}

// Scope returns the scope with the given ID, or nil if there is none.
func (t *Tree) Scope(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(t.scopes) {
		return nil
	}
	return t.scopes[id]
}

// NumScopes returns the number of scopes created so far.
func (t *Tree) NumScopes() int {
	return len(t.scopes)
}

// Release tears the tree down, children before parents. The tree and its
// scopes must not be used afterwards.
func (t *Tree) Release() {
	if len(t.scopes) > 0 {
		t.Root().destroy()
	}
	t.scopes = nil
	t.alloc = entityAlloc{}
}

func (t *Tree) newScope(parent ScopeID, kind Kind) *Scope {
	s := t.alloc.newScope()
	*s = Scope{
		tree:   t,
		id:     ScopeID(len(t.scopes)),
		parent: parent,
		kind:   kind,
	}
	t.scopes = append(t.scopes, s)
	return s
}

// Scope is one lexical block of a routine body.
type Scope struct {
	tree     *Tree
	id       ScopeID
	parent   ScopeID
	children []ScopeID
	kind     Kind

	// varOffset and cursorOffset are the frame offsets of the first
	// variable and cursor declared in this scope. They are fixed when the
	// scope is created.
	varOffset    int
	cursorOffset int

	// maxVarIndex is the number of variable slots reserved by this scope
	// and, once they are popped, its descendants.
	maxVarIndex int
	// maxCursorIndex is the depth of the cursor frame required by this
	// scope and its popped descendants.
	maxCursorIndex int
	// maxHandlerIndex is the deepest handler frame required by the popped
	// descendants, not counting the handlers of this scope.
	maxHandlerIndex int
	// numHandlers is the number of handlers declared in this scope.
	numHandlers int
	// numCaseExprs is the number of CASE expression slots used so far.
	numCaseExprs int

	// varBoundary hides the last varBoundary variables from FindVariable.
	varBoundary int

	vars        []*Variable
	conds       []*Condition
	cursors     []*Cursor
	handlers    []ConditionValue
	labels      []*Label
	caseExprIDs []int
}

// ID returns the scope's identifier within its tree.
func (s *Scope) ID() ScopeID { return s.id }

// Kind returns the kind of the scope.
func (s *Scope) Kind() Kind { return s.kind }

// Tree returns the tree owning the scope.
func (s *Scope) Tree() *Tree { return s.tree }

// Parent returns the enclosing scope, or nil for the root.
func (s *Scope) Parent() *Scope {
	if s.parent == noScope {
		return nil
	}
	return s.tree.scopes[s.parent]
}

// NumChildren returns the number of scopes pushed from this one.
func (s *Scope) NumChildren() int { return len(s.children) }

// Child returns the i'th child scope, in creation order.
func (s *Scope) Child(i int) *Scope { return s.tree.scopes[s.children[i]] }

// VarOffset returns the frame offset at which this scope's variables
// start.
func (s *Scope) VarOffset() int { return s.varOffset }

// CursorOffset returns the frame offset at which this scope's cursors
// start.
func (s *Scope) CursorOffset() int { return s.cursorOffset }

// MaxVarIndex returns the number of variable slots reserved by this scope
// and its popped descendants. For the root, once parsing is complete, this
// is the size of the variable frame.
func (s *Scope) MaxVarIndex() int { return s.maxVarIndex }

// MaxCursorIndex returns the size of the cursor frame required by this
// scope and its popped descendants.
func (s *Scope) MaxCursorIndex() int { return s.maxCursorIndex }

// MaxHandlerIndex returns the depth of the handler stack required by this
// scope and its popped descendants.
func (s *Scope) MaxHandlerIndex() int { return s.maxHandlerIndex + s.numHandlers }

// NumHandlers returns the number of handlers declared directly in this
// scope.
func (s *Scope) NumHandlers() int { return s.numHandlers }

// CurrentVarCount returns the number of variable slots in use up to and
// including this scope. It is the offset the next variable declared here
// would get.
func (s *Scope) CurrentVarCount() int { return s.varOffset + s.maxVarIndex }

// CurrentCursorCount returns the number of cursors visible from this
// scope, its own and all its ancestors'.
func (s *Scope) CurrentCursorCount() int { return s.cursorOffset + len(s.cursors) }

// Push creates a child scope of the given kind. The child's variables are
// laid out after every slot reserved so far through this scope, and its
// cursors after every cursor visible here.
func (s *Scope) Push(kind Kind) *Scope {
	child := s.tree.newScope(s.id, kind)
	child.varOffset = s.CurrentVarCount()
	child.cursorOffset = s.CurrentCursorCount()
	child.numCaseExprs = s.numCaseExprs
	s.children = append(s.children, child.id)
	return child
}

// Pop folds the scope's frame requirements into its parent and returns the
// parent, which the caller should make the active scope again. Variable
// slots accumulate across siblings; cursor and handler slots are reused,
// so only the maximum is kept. Pop returns nil for the root.
func (s *Scope) Pop() *Scope {
	p := s.Parent()
	if p == nil {
		return nil
	}
	p.maxVarIndex += s.maxVarIndex
	if n := s.MaxHandlerIndex(); n > p.maxHandlerIndex {
		p.maxHandlerIndex = n
	}
	if s.maxCursorIndex > p.maxCursorIndex {
		p.maxCursorIndex = s.maxCursorIndex
	}
	if s.numCaseExprs > p.numCaseExprs {
		p.numCaseExprs = s.numCaseExprs
	}
	return p
}

// IsAncestorOf returns true if s is other or encloses it.
func (s *Scope) IsAncestorOf(other *Scope) bool {
	for p := other; p != nil; p = p.Parent() {
		if p == s {
			return true
		}
	}
	return false
}

func (s *Scope) destroy() {
	for _, id := range s.children {
		s.tree.scopes[id].destroy()
	}
	s.children = nil
	s.labels = nil
	s.vars = nil
	s.caseExprIDs = nil
	s.conds = nil
	s.cursors = nil
	s.handlers = nil
}
