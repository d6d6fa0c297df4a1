// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"strings"

	"github.com/cockroachdb/redact"
)

// SafeFormat implements the redact.SafeFormatter interface. It prints the
// scope's frame counters; see Tree for the full layout.
func (s *Scope) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("scope %d (%s) var-offset=%d vars=%d cursor-offset=%d cursors=%d handlers=%d max-handlers=%d case-exprs=%d",
		redact.Safe(s.id), s.kind,
		redact.Safe(s.varOffset), redact.Safe(s.maxVarIndex),
		redact.Safe(s.cursorOffset), redact.Safe(s.maxCursorIndex),
		redact.Safe(s.numHandlers), redact.Safe(s.MaxHandlerIndex()),
		redact.Safe(s.numCaseExprs))
}

func (s *Scope) String() string { return redact.StringWithoutMarkers(s) }

// SafeFormat implements the redact.SafeFormatter interface. Every scope is
// printed followed by its own declarations and then its children, indented
// by depth.
func (t *Tree) SafeFormat(w redact.SafePrinter, _ rune) {
	t.Root().formatTree(w, 0)
}

func (t *Tree) String() string { return redact.StringWithoutMarkers(t) }

func (s *Scope) formatTree(w redact.SafePrinter, depth int) {
	indent := redact.SafeString(strings.Repeat("  ", depth))
	if depth > 0 {
		w.SafeRune('\n')
	}
	w.Printf("%s%v", indent, s)
	for _, v := range s.vars {
		w.Printf("\n%s  %v", indent, v)
	}
	for _, c := range s.conds {
		w.Printf("\n%s  %v", indent, c)
	}
	for _, c := range s.cursors {
		w.Printf("\n%s  %v", indent, c)
	}
	for _, h := range s.handlers {
		w.Printf("\n%s  handler %s", indent, h)
	}
	for _, l := range s.labels {
		w.Printf("\n%s  %v", indent, l)
	}
	for _, id := range s.children {
		s.tree.scopes[id].formatTree(w, depth+1)
	}
}

// SafeFormat implements the redact.SafeFormatter interface.
func (v *Variable) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("var %s %s %s @%d", v.Name, v.Type, v.Mode, redact.Safe(v.Offset))
	if v.Default != nil {
		w.Printf(" default %s", v.Default)
	}
}

func (v *Variable) String() string { return redact.StringWithoutMarkers(v) }

// SafeFormat implements the redact.SafeFormatter interface.
func (c *Condition) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("condition %s = %s", c.Name, c.Value)
}

func (c *Condition) String() string { return redact.StringWithoutMarkers(c) }

// SafeFormat implements the redact.SafeFormatter interface.
func (c *Cursor) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("cursor %s @%d", c.Name, redact.Safe(c.Offset))
}

func (c *Cursor) String() string { return redact.StringWithoutMarkers(c) }

// SafeFormat implements the redact.SafeFormatter interface.
func (l *Label) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("label %s (%s) ip=%d", l.Name, l.Kind, redact.Safe(l.IP))
}

func (l *Label) String() string { return redact.StringWithoutMarkers(l) }
