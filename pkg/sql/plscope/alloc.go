// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

// allocChunk is the number of entities allocated at a time by
// entityAlloc.
const allocChunk = 16

// entityAlloc amortizes the allocation of the tree's nodes. All nodes are
// released together with the owning Tree.
type entityAlloc struct {
	scopes     []Scope
	variables  []Variable
	conditions []Condition
	cursors    []Cursor
	labels     []Label
}

func allocFrom[T any](buf *[]T) *T {
	if len(*buf) == 0 {
		*buf = make([]T, allocChunk)
	}
	p := &(*buf)[0]
	*buf = (*buf)[1:]
	return p
}

func (a *entityAlloc) newScope() *Scope         { return allocFrom(&a.scopes) }
func (a *entityAlloc) newVariable() *Variable   { return allocFrom(&a.variables) }
func (a *entityAlloc) newCondition() *Condition { return allocFrom(&a.conditions) }
func (a *entityAlloc) newCursor() *Cursor       { return allocFrom(&a.cursors) }
func (a *entityAlloc) newLabel() *Label         { return allocFrom(&a.labels) }
