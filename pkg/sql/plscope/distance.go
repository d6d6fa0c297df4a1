// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

// HandlerFrameDistance returns the number of handler frames to pop when
// control leaves s for its ancestor: the sum of the handlers declared in s
// and every scope between s and the ancestor, the ancestor excluded. If
// exclusive is set, the handlers of the ancestor's child on the path are
// excluded as well.
//
// ok is false, and n zero, if ancestor does not enclose s. Callers that
// only size unwind code may treat that as nothing to unwind.
func (s *Scope) HandlerFrameDistance(ancestor *Scope, exclusive bool) (n int, ok bool) {
	return s.frameDistance(ancestor, exclusive, (*Scope).NumHandlers)
}

// CursorFrameDistance is like HandlerFrameDistance for the cursors declared
// in the scopes crossed.
func (s *Scope) CursorFrameDistance(ancestor *Scope, exclusive bool) (n int, ok bool) {
	return s.frameDistance(ancestor, exclusive, (*Scope).NumCursors)
}

func (s *Scope) frameDistance(
	ancestor *Scope, exclusive bool, count func(*Scope) int,
) (n int, ok bool) {
	var last *Scope
	curr := s
	for curr != nil && curr != ancestor {
		n += count(curr)
		last = curr
		curr = curr.Parent()
	}
	if curr == nil {
		return 0, false
	}
	if exclusive && last != nil {
		n -= count(last)
	}
	return n, true
}
