// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

// LabelKind is the kind of statement a label is attached to.
type LabelKind uint8

const (
	// ImplicitLabel is a label generated by the parser, e.g. for the end of
	// a block.
	ImplicitLabel LabelKind = iota
	// BeginLabel labels a BEGIN ... END block.
	BeginLabel
	// IterationLabel labels a loop. Only iteration labels can be the
	// target of ITERATE.
	IterationLabel
)

var labelKindNames = [...]string{
	ImplicitLabel:  "implicit",
	BeginLabel:     "begin",
	IterationLabel: "iteration",
}

func (k LabelKind) String() string { return labelKindNames[k] }

// SafeValue implements the redact.SafeValue interface.
func (LabelKind) SafeValue() {}

// Label is a branch target.
type Label struct {
	Name string
	// IP is the target instruction position. Callers back-patch it once
	// the position is known.
	IP   int
	Kind LabelKind
	// Scope is the scope the label was declared in.
	Scope *Scope
}

// DeclareLabel adds an implicit label targeting ip to the scope.
func (s *Scope) DeclareLabel(name string, ip int) *Label {
	l := s.tree.alloc.newLabel()
	*l = Label{Name: name, IP: ip, Kind: ImplicitLabel, Scope: s}
	s.labels = append(s.labels, l)
	return l
}

// FindLabel returns the most recent label with the given name visible from
// this scope, or nil. The search does not leave a handler scope: a handler
// body cannot branch to a label outside of it.
func (s *Scope) FindLabel(name string) *Label {
	for curr := s; curr != nil; curr = curr.Parent() {
		for i := len(curr.labels) - 1; i >= 0; i-- {
			if l := curr.labels[i]; s.tree.labels(name, l.Name) {
				return l
			}
		}
		if curr.kind == HandlerScope {
			break
		}
	}
	return nil
}

// LastLabel returns the most recently declared label of this scope, or
// nil.
func (s *Scope) LastLabel() *Label {
	if len(s.labels) == 0 {
		return nil
	}
	return s.labels[len(s.labels)-1]
}

// PopLabel removes and returns the most recently declared label of this
// scope, or nil.
func (s *Scope) PopLabel() *Label {
	l := s.LastLabel()
	if l != nil {
		s.labels[len(s.labels)-1] = nil
		s.labels = s.labels[:len(s.labels)-1]
	}
	return l
}

// NumLabels returns the number of labels declared in this scope.
func (s *Scope) NumLabels() int { return len(s.labels) }
