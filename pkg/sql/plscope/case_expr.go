// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

// RegisterCaseExpr allocates a CASE expression slot and returns its id.
// Slot ids are never reused within a routine.
func (s *Scope) RegisterCaseExpr() int {
	id := s.numCaseExprs
	s.numCaseExprs++
	return id
}

// NumCaseExprs returns the number of CASE expression slots required by
// this scope and its popped descendants.
func (s *Scope) NumCaseExprs() int { return s.numCaseExprs }

// PushCaseExprID makes id the slot of the CASE expression being parsed.
func (s *Scope) PushCaseExprID(id int) {
	s.caseExprIDs = append(s.caseExprIDs, id)
}

// PopCaseExprID ends the innermost CASE expression of this scope.
func (s *Scope) PopCaseExprID() {
	if n := len(s.caseExprIDs); n > 0 {
		s.caseExprIDs = s.caseExprIDs[:n-1]
	}
}

// CurrentCaseExprID returns the slot of the innermost CASE expression being
// parsed in this scope.
func (s *Scope) CurrentCaseExprID() (id int, ok bool) {
	n := len(s.caseExprIDs)
	if n == 0 {
		return 0, false
	}
	return s.caseExprIDs[n-1], true
}
