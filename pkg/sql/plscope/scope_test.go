// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

var intType = MustParseType("INT")

func TestVariableOffsets(t *testing.T) {
	tree := NewTree(TreeOptions{})
	root := tree.Root()

	a := root.DeclareVariable("a", intType, ModeIn)
	b := root.DeclareVariable("b", intType, ModeLocal)
	require.Equal(t, 0, a.Offset)
	require.Equal(t, 1, b.Offset)

	c1 := root.Push(RegularScope)
	require.Equal(t, 2, c1.VarOffset())
	x := c1.DeclareVariable("x", intType, ModeLocal)
	require.Equal(t, 2, x.Offset)
	require.Equal(t, root, c1.Pop())
	require.Equal(t, 3, root.MaxVarIndex())

	c2 := root.Push(RegularScope)
	require.Equal(t, 3, c2.VarOffset())
	y := c2.DeclareVariable("y", intType, ModeLocal)
	require.Equal(t, 3, y.Offset)
	c2.Pop()

	// A declaration made after a child was popped must not reuse the
	// child's slots.
	z := root.DeclareVariable("z", intType, ModeLocal)
	require.Equal(t, 4, z.Offset)
	require.Equal(t, 5, root.MaxVarIndex())

	seen := map[int]bool{}
	for _, v := range []*Variable{a, b, x, y, z} {
		require.False(t, seen[v.Offset], "offset %d reused", v.Offset)
		seen[v.Offset] = true
	}
}

func TestFoldAsymmetry(t *testing.T) {
	t.Run("variables accumulate", func(t *testing.T) {
		root := NewTree(TreeOptions{}).Root()
		root.DeclareVariable("p", intType, ModeLocal)
		c1 := root.Push(RegularScope)
		c1.DeclareVariable("a", intType, ModeLocal)
		c1.DeclareVariable("b", intType, ModeLocal)
		c1.Pop()
		c2 := root.Push(RegularScope)
		c2.DeclareVariable("c", intType, ModeLocal)
		c2.DeclareVariable("d", intType, ModeLocal)
		c2.DeclareVariable("e", intType, ModeLocal)
		c2.Pop()
		require.Equal(t, 6, root.MaxVarIndex())
	})

	t.Run("cursors keep the high-water mark", func(t *testing.T) {
		root := NewTree(TreeOptions{}).Root()
		root.DeclareCursor("r")
		require.Equal(t, 1, root.MaxCursorIndex())

		c1 := root.Push(RegularScope)
		require.Equal(t, 1, c1.CursorOffset())
		require.Equal(t, 1, c1.DeclareCursor("a").Offset)
		require.Equal(t, 2, c1.MaxCursorIndex())
		c1.Pop()
		require.Equal(t, 2, root.MaxCursorIndex())

		c2 := root.Push(RegularScope)
		require.Equal(t, 1, c2.DeclareCursor("b").Offset)
		require.Equal(t, 2, c2.DeclareCursor("c").Offset)
		require.Equal(t, 3, c2.MaxCursorIndex())
		c2.Pop()
		require.Equal(t, 3, root.MaxCursorIndex())

		// The root's own cursors are still numbered after its own.
		require.Equal(t, 1, root.DeclareCursor("s").Offset)
		require.Equal(t, 3, root.MaxCursorIndex())
	})

	t.Run("handlers keep the deepest nesting", func(t *testing.T) {
		root := NewTree(TreeOptions{}).Root()
		root.AddHandlers(1)
		c1 := root.Push(RegularScope)
		c1.AddHandlers(2)
		c1.Pop()
		c2 := root.Push(RegularScope)
		c2.AddHandlers(1)
		c2.Pop()
		require.Equal(t, 1, root.NumHandlers())
		require.Equal(t, 3, root.MaxHandlerIndex())
	})
}

func TestShadowing(t *testing.T) {
	root := NewTree(TreeOptions{}).Root()
	outer := root.DeclareVariable("x", intType, ModeLocal)
	child := root.Push(RegularScope)
	require.Equal(t, outer, child.FindVariable("x", false /* scoped */))
	require.Nil(t, child.FindVariable("x", true /* scoped */))

	inner := child.DeclareVariable("x", MustParseType("TEXT"), ModeLocal)
	require.Equal(t, inner, child.FindVariable("x", false /* scoped */))
	require.Equal(t, inner, child.FindVariable("X", false /* scoped */))
	require.Equal(t, outer, root.FindVariable("x", false /* scoped */))

	child.Pop()
	require.Equal(t, outer, root.FindVariable("x", false /* scoped */))
}

func TestNewestDeclarationWins(t *testing.T) {
	root := NewTree(TreeOptions{}).Root()
	root.DeclareCondition("c", NotFound)
	second := root.DeclareCondition("c", SQLWarning)
	require.Equal(t, second, root.FindCondition("c", true /* scoped */))

	root.DeclareCursor("k")
	k2 := root.DeclareCursor("k")
	require.Equal(t, k2, root.FindCursor("K", false /* scoped */))
}

func TestVariableBoundary(t *testing.T) {
	root := NewTree(TreeOptions{}).Root()
	a := root.DeclareVariable("a", intType, ModeLocal)
	root.DeclareVariable("b", intType, ModeLocal)

	root.SetVariableBoundary(1)
	require.Nil(t, root.FindVariable("b", false /* scoped */))
	require.Equal(t, a, root.FindVariable("a", false /* scoped */))

	child := root.Push(RegularScope)
	require.Nil(t, child.FindVariable("b", false /* scoped */))

	root.SetVariableBoundary(0)
	require.NotNil(t, child.FindVariable("b", false /* scoped */))

	// Out of range boundaries are clamped.
	root.SetVariableBoundary(-1)
	require.NotNil(t, root.FindVariable("b", false /* scoped */))
	root.SetVariableBoundary(5)
	require.Nil(t, root.FindVariable("a", false /* scoped */))
	require.Nil(t, root.FindVariable("b", false /* scoped */))
	root.SetVariableBoundary(0)
	require.Equal(t, a, root.FindVariable("a", false /* scoped */))
}

// TestRandomVariableLayout builds random trees and checks that offsets are
// unique across the routine, increase in declaration order within a scope,
// and map back to their variable through VariableAt.
func TestRandomVariableLayout(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 100; iter++ {
		tree := NewTree(TreeOptions{Names: BinaryNames})
		cur := tree.Root()
		var all []*Variable
		// owner records the scope each variable was declared in.
		owner := map[*Variable]*Scope{}
		for step := 0; step < 50; step++ {
			switch op := rng.Intn(10); {
			case op < 3:
				cur = cur.Push(RegularScope)
			case op < 5 && cur.Parent() != nil:
				cur = cur.Pop()
			default:
				v := cur.DeclareVariable(fmt.Sprintf("v%d", len(all)), intType, ModeLocal)
				if n := cur.NumVariables(); n > 1 {
					require.Greater(t, v.Offset, cur.Variable(n-2).Offset)
				}
				all = append(all, v)
				owner[v] = cur
			}
		}
		for cur.Parent() != nil {
			cur = cur.Pop()
		}

		seen := map[int]*Variable{}
		for _, v := range all {
			require.Nil(t, seen[v.Offset], "iteration %d: offset %d reused", iter, v.Offset)
			seen[v.Offset] = v
			require.Same(t, v, owner[v].VariableAt(v.Offset), "iteration %d: offset %d", iter, v.Offset)
			require.Less(t, v.Offset, tree.Root().MaxVarIndex())
		}
		require.Equal(t, len(all), tree.Root().MaxVarIndex())
		tree.Release()
	}
}

func TestVariableAt(t *testing.T) {
	root := NewTree(TreeOptions{}).Root()
	vars := []*Variable{
		root.DeclareVariable("a", intType, ModeIn),
		root.DeclareVariable("b", intType, ModeOut),
	}
	c1 := root.Push(RegularScope)
	sibling := c1.DeclareVariable("s", intType, ModeLocal)
	c1.Pop()

	c2 := root.Push(RegularScope)
	vars = append(vars, c2.DeclareVariable("c", intType, ModeLocal))
	c3 := c2.Push(HandlerScope)
	vars = append(vars, c3.DeclareVariable("d", intType, ModeLocal))

	for _, v := range vars {
		require.Equal(t, v, c3.VariableAt(v.Offset), "offset %d", v.Offset)
	}
	require.Nil(t, c3.VariableAt(sibling.Offset))
	require.Equal(t, sibling, c1.VariableAt(sibling.Offset))
	require.Nil(t, c3.VariableAt(100))
	require.Nil(t, root.VariableAt(vars[3].Offset))
}

func TestCursorAt(t *testing.T) {
	root := NewTree(TreeOptions{}).Root()
	a := root.DeclareCursor("a")
	child := root.Push(RegularScope)
	b := child.DeclareCursor("b")

	require.Equal(t, a, child.CursorAt(0))
	require.Equal(t, b, child.CursorAt(1))
	require.Nil(t, root.CursorAt(1))
	require.Nil(t, child.CursorAt(2))
}

func TestLabels(t *testing.T) {
	root := NewTree(TreeOptions{}).Root()
	l1 := root.DeclareLabel("l1", 0)
	require.Equal(t, ImplicitLabel, l1.Kind)
	require.Equal(t, l1, root.FindLabel("L1"))

	regular := root.Push(RegularScope)
	require.Equal(t, l1, regular.FindLabel("l1"))

	handler := regular.Push(HandlerScope)
	require.Nil(t, handler.FindLabel("l1"))
	l2 := handler.DeclareLabel("l2", 4)
	require.Equal(t, l2, handler.FindLabel("l2"))
	require.Equal(t, handler, l2.Scope)

	nested := handler.Push(RegularScope)
	require.Equal(t, l2, nested.FindLabel("l2"))
	require.Nil(t, nested.FindLabel("l1"))

	require.Equal(t, l2, handler.LastLabel())
	require.Equal(t, l2, handler.PopLabel())
	require.Nil(t, handler.LastLabel())
	require.Nil(t, handler.PopLabel())
	require.Equal(t, 1, root.NumLabels())
}

func TestCaseSensitiveLabels(t *testing.T) {
	tree := NewTree(TreeOptions{Labels: func(a, b string) bool { return a == b }})
	root := tree.Root()
	root.DeclareLabel("Outer", 0)
	require.Nil(t, root.FindLabel("outer"))
	require.NotNil(t, root.FindLabel("Outer"))
}

func TestFrameDistance(t *testing.T) {
	root := NewTree(TreeOptions{}).Root()
	a := root.Push(RegularScope)
	a.AddHandlers(1)
	a.DeclareCursor("ca")
	b := a.Push(RegularScope)
	b.AddHandlers(1)
	c := b.Push(RegularScope)
	c.AddHandlers(1)
	c.DeclareCursor("cc1")
	c.DeclareCursor("cc2")

	testCases := []struct {
		from, to  *Scope
		exclusive bool
		handlers  int
		cursors   int
	}{
		{c, root, false, 3, 3},
		{c, root, true, 2, 2},
		{c, a, false, 2, 2},
		{c, a, true, 1, 2},
		{c, b, true, 0, 0},
		{c, c, false, 0, 0},
		{c, c, true, 0, 0},
	}
	for _, tc := range testCases {
		h, ok := tc.from.HandlerFrameDistance(tc.to, tc.exclusive)
		require.True(t, ok)
		require.Equal(t, tc.handlers, h, "handlers %d->%d exclusive=%t", tc.from.ID(), tc.to.ID(), tc.exclusive)
		n, ok := tc.from.CursorFrameDistance(tc.to, tc.exclusive)
		require.True(t, ok)
		require.Equal(t, tc.cursors, n, "cursors %d->%d exclusive=%t", tc.from.ID(), tc.to.ID(), tc.exclusive)
	}

	// Not an ancestor.
	sibling := root.Push(RegularScope)
	n, ok := c.HandlerFrameDistance(sibling, false /* exclusive */)
	require.False(t, ok)
	require.Zero(t, n)
	_, ok = root.CursorFrameDistance(c, false /* exclusive */)
	require.False(t, ok)
}

func TestHandlerRegistration(t *testing.T) {
	root := NewTree(TreeOptions{}).Root()
	state, err := MakeSQLState("42S02")
	require.NoError(t, err)

	root.RegisterHandler(state)
	root.RegisterHandler(NotFound)
	root.AddHandlers(1)
	require.Equal(t, 1, root.NumHandlers())
	require.Len(t, root.HandlerConditions(), 2)
	require.True(t, root.FindHandler(state))
	require.True(t, root.FindHandler(NotFound))
	require.False(t, root.FindHandler(SQLWarning))

	child := root.Push(RegularScope)
	require.False(t, child.FindHandler(state))
}

func TestCaseExprSlots(t *testing.T) {
	root := NewTree(TreeOptions{}).Root()
	require.Equal(t, 0, root.RegisterCaseExpr())
	_, ok := root.CurrentCaseExprID()
	require.False(t, ok)

	root.PushCaseExprID(0)
	child := root.Push(RegularScope)
	require.Equal(t, 1, child.RegisterCaseExpr())
	require.Equal(t, 2, child.RegisterCaseExpr())
	child.PushCaseExprID(2)
	id, ok := child.CurrentCaseExprID()
	require.True(t, ok)
	require.Equal(t, 2, id)
	child.PopCaseExprID()
	child.Pop()
	require.Equal(t, 3, root.NumCaseExprs())

	// Later siblings do not reuse slots.
	sibling := root.Push(RegularScope)
	require.Equal(t, 3, sibling.RegisterCaseExpr())
	sibling.Pop()
	require.Equal(t, 4, root.NumCaseExprs())

	id, ok = root.CurrentCaseExprID()
	require.True(t, ok)
	require.Equal(t, 0, id)
}

func TestTreeNavigation(t *testing.T) {
	tree := NewTree(TreeOptions{})
	root := tree.Root()
	require.Nil(t, root.Parent())
	require.Nil(t, root.Pop())
	require.Equal(t, ScopeID(0), root.ID())

	for i := 0; i < 2*allocChunk; i++ {
		root.Push(RegularScope).Pop()
	}
	require.Equal(t, 2*allocChunk+1, tree.NumScopes())
	require.Equal(t, 2*allocChunk, root.NumChildren())
	c := root.Child(5)
	require.Equal(t, ScopeID(6), c.ID())
	require.Equal(t, c, tree.Scope(6))
	require.Nil(t, tree.Scope(-1))
	require.Nil(t, tree.Scope(ScopeID(tree.NumScopes())))
	require.True(t, root.IsAncestorOf(c))
	require.True(t, c.IsAncestorOf(c))
	require.False(t, c.IsAncestorOf(root))

	tree.Release()
	require.Zero(t, tree.NumScopes())
}
