// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package pgerror

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/lib/pq"
)

// codeFromPQ detects if the error is a pq.Error and, if so, returns
// its SQLSTATE.
func codeFromPQ(err error) (pgcode.Code, bool) {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code == "" {
		return pgcode.Code{}, false
	}
	return pgcode.MakeCode(string(pqErr.Code)), true
}

// Flatten turns any error into a *pq.Error with the code, message,
// hint and detail fields populated. Returns nil if err was nil to
// start with.
func Flatten(err error) *pq.Error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && !HasCandidateCode(err) {
		return pqErr
	}
	return &pq.Error{
		Severity: "ERROR",
		Code:     pq.ErrorCode(GetPGCode(err).String()),
		Message:  err.Error(),
		Detail:   errors.FlattenDetails(err),
		Hint:     errors.FlattenHints(err),
	}
}
