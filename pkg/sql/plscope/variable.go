// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Mode is the parameter mode of a variable.
type Mode uint8

const (
	// ModeIn is an IN routine parameter.
	ModeIn Mode = iota
	// ModeOut is an OUT routine parameter.
	ModeOut
	// ModeInOut is an INOUT routine parameter.
	ModeInOut
	// ModeLocal is a variable declared in the routine body.
	ModeLocal
)

var modeNames = [...]string{
	ModeIn:    "in",
	ModeOut:   "out",
	ModeInOut: "inout",
	ModeLocal: "local",
}

func (m Mode) String() string { return modeNames[m] }

// SafeValue implements the redact.SafeValue interface.
func (Mode) SafeValue() {}

// ParseMode parses the string form of a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(m), nil
		}
	}
	return 0, errors.Newf("unknown parameter mode %q", s)
}

// Variable is a routine parameter or a local variable.
type Variable struct {
	Name string
	Type Type
	Mode Mode
	// Default is the parsed default-value expression, if any.
	Default fmt.Stringer
	// Offset is the variable's slot in the routine frame. Offsets are
	// unique across the whole routine and never reused.
	Offset int
}

// DeclareVariable adds a variable to the scope and assigns it the next
// free frame slot.
func (s *Scope) DeclareVariable(name string, typ Type, mode Mode) *Variable {
	v := s.tree.alloc.newVariable()
	*v = Variable{
		Name:   name,
		Type:   typ,
		Mode:   mode,
		Offset: s.CurrentVarCount(),
	}
	s.maxVarIndex++
	s.vars = append(s.vars, v)
	return v
}

// NumVariables returns the number of variables declared in this scope.
func (s *Scope) NumVariables() int { return len(s.vars) }

// Variable returns the i'th variable declared in this scope.
func (s *Scope) Variable(i int) *Variable { return s.vars[i] }

// SetVariableBoundary hides the last n variables of this scope from
// FindVariable. It is used while parsing the default value of a DECLARE
// list, which must not see the variables being declared. Set it back to
// zero when done. n is clamped to the number of variables of the scope.
func (s *Scope) SetVariableBoundary(n int) {
	switch {
	case n < 0:
		n = 0
	case n > len(s.vars):
		n = len(s.vars)
	}
	s.varBoundary = n
}

// findOwnVariable searches the variables of this scope only, including
// those hidden by the boundary.
func (s *Scope) findOwnVariable(name string) *Variable {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if v := s.vars[i]; s.tree.names.EqualNames(name, v.Name) {
			return v
		}
	}
	return nil
}

// FindVariable returns the innermost variable with the given name visible
// from this scope, or nil. If scoped is set only this scope is searched.
func (s *Scope) FindVariable(name string, scoped bool) *Variable {
	for curr := s; curr != nil; curr = curr.Parent() {
		for i := len(curr.vars) - curr.varBoundary - 1; i >= 0; i-- {
			if v := curr.vars[i]; s.tree.names.EqualNames(name, v.Name) {
				return v
			}
		}
		if scoped {
			break
		}
	}
	return nil
}

// VariableAt returns the variable at the given frame offset, searching
// this scope and then its ancestors. It returns nil if no scope on the
// chain owns the offset.
func (s *Scope) VariableAt(offset int) *Variable {
	for curr := s; curr != nil; curr = curr.Parent() {
		n := len(curr.vars)
		if n == 0 || offset < curr.vars[0].Offset || offset > curr.vars[n-1].Offset {
			continue
		}
		i := sort.Search(n, func(i int) bool { return curr.vars[i].Offset >= offset })
		if i < n && curr.vars[i].Offset == offset {
			return curr.vars[i]
		}
	}
	return nil
}

// walkVariables calls fn for every variable of this scope in declaration
// order, then recursively for every child in creation order.
func (s *Scope) walkVariables(fn func(v *Variable) error) error {
	for _, v := range s.vars {
		if err := fn(v); err != nil {
			return err
		}
	}
	for _, id := range s.children {
		if err := s.tree.scopes[id].walkVariables(fn); err != nil {
			return err
		}
	}
	return nil
}
