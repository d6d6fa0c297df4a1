// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

// Cursor is a declared cursor.
type Cursor struct {
	Name string
	// Offset is the cursor's slot in the routine's cursor frame. Sibling
	// scopes reuse slots.
	Offset int
}

// DeclareCursor adds a cursor to the scope. The scope's cursor frame
// requirement grows only when the cursor needs a slot deeper than any
// reached so far.
func (s *Scope) DeclareCursor(name string) *Cursor {
	c := s.tree.alloc.newCursor()
	*c = Cursor{Name: name, Offset: s.CurrentCursorCount()}
	s.cursors = append(s.cursors, c)
	if n := s.CurrentCursorCount(); n > s.maxCursorIndex {
		s.maxCursorIndex = n
	}
	return c
}

// NumCursors returns the number of cursors declared in this scope.
func (s *Scope) NumCursors() int { return len(s.cursors) }

// FindCursor returns the innermost cursor with the given name visible from
// this scope, or nil. If scoped is set only this scope is searched.
func (s *Scope) FindCursor(name string, scoped bool) *Cursor {
	for curr := s; curr != nil; curr = curr.Parent() {
		for i := len(curr.cursors) - 1; i >= 0; i-- {
			if c := curr.cursors[i]; s.tree.names.EqualNames(name, c.Name) {
				return c
			}
		}
		if scoped {
			break
		}
	}
	return nil
}

// CursorAt returns the cursor at the given frame offset, searching this
// scope and then its ancestors, or nil.
func (s *Scope) CursorAt(offset int) *Cursor {
	for curr := s; curr != nil; curr = curr.Parent() {
		if curr.cursorOffset <= offset && offset < curr.CurrentCursorCount() {
			return curr.cursors[offset-curr.cursorOffset]
		}
	}
	return nil
}
