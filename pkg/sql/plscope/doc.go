// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

/*
Package plscope tracks the lexical scopes of a stored routine body while it
is parsed, and lays out the routine's runtime frame.

Every BEGIN ... END block, and every exception handler body, introduces a
Scope. A Scope owns four tables (variables, named conditions, cursors and
handler registrations) plus a list of branch labels. Declarations made in a
scope are assigned offsets into three flat runtime arrays:

  - variables get frame-wide unique offsets. A variable declared in a block
    that has already been closed still occupies its slot, because the frame
    is sized once at compile time. This is why a popped scope adds its
    variable count to its parent.
  - cursors and handlers are pushed and popped against runtime stacks, so
    sibling blocks share slots and a popped scope only raises its parent's
    high-water mark to its own.

Lookups walk from the innermost scope outwards. Names are compared with an
injected NameComparer; label names use a separate, case-insensitive
comparison, and a handler scope cannot see labels of the enclosing blocks:

	BEGIN                       -- scope 0
	  l1: LOOP                  -- label l1 in scope 0
	    BEGIN                   -- scope 1
	      DECLARE CONTINUE HANDLER FOR NOT FOUND
	        LEAVE l1;           -- scope 2 (handler): l1 is not visible
	      ITERATE l1;           -- ok, pops the handler of scope 1
	    END;
	  END LOOP;
	END

The Tree is an arena: scopes refer to each other by ScopeID and all
entities are allocated from slabs owned by the tree. The tree holds no
notion of the active scope; Builder is the cursor a parser uses to track
it, and it turns lookup misses and duplicate declarations into SQLSTATE
coded errors.

A Tree is built by a single goroutine. Once built it is read-only and can
be queried concurrently.
*/
package plscope
