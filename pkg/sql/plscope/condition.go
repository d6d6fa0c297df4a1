// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgerror"
	"github.com/lib/pq"
)

// ConditionKind discriminates the variants of a ConditionValue.
type ConditionKind uint8

const (
	_ ConditionKind = iota
	// ErrorCodeCondition matches a numeric server error code.
	ErrorCodeCondition
	// SQLStateCondition matches a five character SQLSTATE.
	SQLStateCondition
	// SQLWarningCondition matches every SQLSTATE of class 01.
	SQLWarningCondition
	// NotFoundCondition matches every SQLSTATE of class 02.
	NotFoundCondition
	// SQLExceptionCondition matches every SQLSTATE outside of classes 00,
	// 01 and 02.
	SQLExceptionCondition
)

// ConditionValue is what a handler is registered to catch and what a named
// condition stands for.
type ConditionValue struct {
	kind     ConditionKind
	errno    uint32
	sqlState pq.ErrorCode
}

var (
	// SQLWarning is the generic SQLWARNING condition.
	SQLWarning = ConditionValue{kind: SQLWarningCondition}
	// NotFound is the generic NOT FOUND condition.
	NotFound = ConditionValue{kind: NotFoundCondition}
	// SQLException is the generic SQLEXCEPTION condition.
	SQLException = ConditionValue{kind: SQLExceptionCondition}
)

// MakeErrorCode returns the condition value matching a numeric error code.
func MakeErrorCode(errno uint32) ConditionValue {
	return ConditionValue{kind: ErrorCodeCondition, errno: errno}
}

// MakeSQLState returns the condition value matching the given SQLSTATE.
// The state must be five digits or upper case letters, and must not be of
// the successful completion class 00.
func MakeSQLState(state string) (ConditionValue, error) {
	if !validSQLState(state) {
		return ConditionValue{}, pgerror.Newf(pgcode.InvalidParameterValue, "bad SQLSTATE: '%s'", state)
	}
	return ConditionValue{kind: SQLStateCondition, sqlState: pq.ErrorCode(state)}, nil
}

func validSQLState(state string) bool {
	if len(state) != 5 || state[:2] == "00" {
		return false
	}
	for i := 0; i < len(state); i++ {
		if c := state[i]; !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// Kind returns the variant of the value.
func (c ConditionValue) Kind() ConditionKind { return c.kind }

// ErrorCode returns the numeric code of an ErrorCodeCondition.
func (c ConditionValue) ErrorCode() uint32 { return c.errno }

// SQLState returns the SQLSTATE of a SQLStateCondition.
func (c ConditionValue) SQLState() string { return string(c.sqlState) }

// Equal compares two values: error codes by code, SQLSTATEs by exact
// string and the generic conditions by kind alone.
func (c ConditionValue) Equal(o ConditionValue) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case ErrorCodeCondition:
		return c.errno == o.errno
	case SQLStateCondition:
		return c.sqlState == o.sqlState
	default:
		return true
	}
}

// Matches returns true if an error raised with the given numeric code and
// SQLSTATE is caught by a handler for c.
func (c ConditionValue) Matches(errno uint32, sqlState string) bool {
	var class pq.ErrorClass
	if len(sqlState) == 5 {
		class = pq.ErrorCode(sqlState).Class()
	}
	switch c.kind {
	case ErrorCodeCondition:
		return errno != 0 && c.errno == errno
	case SQLStateCondition:
		return string(c.sqlState) == sqlState
	case SQLWarningCondition:
		return class == "01"
	case NotFoundCondition:
		return class == "02"
	case SQLExceptionCondition:
		return class != "" && class != "00" && class != "01" && class != "02"
	default:
		return false
	}
}

// numberedError is implemented by errors that carry a numeric server error
// code in addition to their SQLSTATE.
type numberedError interface {
	ErrorNumber() uint32
}

// MatchesError is like Matches for an error value. The SQLSTATE is derived
// with pgerror.GetPGCode.
func (c ConditionValue) MatchesError(err error) bool {
	if err == nil {
		return false
	}
	var errno uint32
	var numbered numberedError
	if errors.As(err, &numbered) {
		errno = numbered.ErrorNumber()
	}
	return c.Matches(errno, pgerror.GetPGCode(err).String())
}

func (c ConditionValue) String() string {
	switch c.kind {
	case ErrorCodeCondition:
		return fmt.Sprintf("ERROR %d", c.errno)
	case SQLStateCondition:
		return fmt.Sprintf("SQLSTATE '%s'", c.sqlState)
	case SQLWarningCondition:
		return "SQLWARNING"
	case NotFoundCondition:
		return "NOT FOUND"
	case SQLExceptionCondition:
		return "SQLEXCEPTION"
	default:
		return "<invalid condition>"
	}
}

// SafeValue implements the redact.SafeValue interface.
func (ConditionValue) SafeValue() {}

// Condition is a named alias for a condition value.
type Condition struct {
	Name  string
	Value ConditionValue
}

// DeclareCondition adds a named condition to the scope.
func (s *Scope) DeclareCondition(name string, value ConditionValue) *Condition {
	c := s.tree.alloc.newCondition()
	*c = Condition{Name: name, Value: value}
	s.conds = append(s.conds, c)
	return c
}

// NumConditions returns the number of conditions declared in this scope.
func (s *Scope) NumConditions() int { return len(s.conds) }

// FindCondition returns the innermost condition with the given name
// visible from this scope, or nil. If scoped is set only this scope is
// searched.
func (s *Scope) FindCondition(name string, scoped bool) *Condition {
	for curr := s; curr != nil; curr = curr.Parent() {
		for i := len(curr.conds) - 1; i >= 0; i-- {
			if c := curr.conds[i]; s.tree.names.EqualNames(name, c.Name) {
				return c
			}
		}
		if scoped {
			break
		}
	}
	return nil
}

// RegisterHandler records that a handler of this scope catches value.
// Duplicates are not rejected; use FindHandler first.
func (s *Scope) RegisterHandler(value ConditionValue) {
	s.handlers = append(s.handlers, value)
}

// AddHandlers adds n to the number of handlers declared in this scope. A
// single handler can be registered for several condition values.
func (s *Scope) AddHandlers(n int) { s.numHandlers += n }

// HandlerConditions returns the condition values registered in this scope.
func (s *Scope) HandlerConditions() []ConditionValue { return s.handlers }

// FindHandler returns true if a handler of this scope, not of its
// ancestors, is already registered for value.
func (s *Scope) FindHandler(value ConditionValue) bool {
	for i := len(s.handlers) - 1; i >= 0; i-- {
		if s.handlers[i].Equal(value) {
			return true
		}
	}
	return false
}
