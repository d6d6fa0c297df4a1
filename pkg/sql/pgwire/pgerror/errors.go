// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package pgerror attaches SQLSTATE codes to errors built with
// github.com/cockroachdb/errors.
package pgerror

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/gogo/protobuf/proto"
)

// New creates an error with a code.
func New(code pgcode.Code, msg string) error {
	err := errors.NewWithDepth(1, msg)
	err = WithCandidateCode(err, code)
	return err
}

// Newf creates an Error with a format string.
func Newf(code pgcode.Code, format string, args ...interface{}) error {
	err := errors.NewWithDepthf(1, format, args...)
	err = WithCandidateCode(err, code)
	return err
}

// WithCandidateCode decorates the error with a candidate postgres
// error code. It is called "candidate" because the code is only used
// by GetPGCode() if there is no code already available deeper in the
// causal chain.
func WithCandidateCode(err error, code pgcode.Code) error {
	if err == nil {
		return nil
	}
	return &withCandidateCode{cause: err, code: code.String()}
}

// HasCandidateCode returns true iff there's a candidate code in the
// error's causal chain.
func HasCandidateCode(err error) bool {
	return errors.HasType(err, (*withCandidateCode)(nil))
}

// GetPGCode retrieves the code for an error. The innermost code wins.
// Errors carrying no code resolve to pgcode.Internal for assertion
// failures and pgcode.Uncategorized otherwise.
func GetPGCode(err error) pgcode.Code {
	if err == nil {
		return pgcode.SuccessfulCompletion
	}
	return getPGCodeInternal(err)
}

func getPGCodeInternal(err error) pgcode.Code {
	code := pgcode.Uncategorized
	if c, ok := err.(*withCandidateCode); ok {
		code = pgcode.MakeCode(c.code)
	} else if c, ok := codeFromPQ(err); ok {
		code = c
	} else if errors.IsAssertionFailure(err) {
		code = pgcode.Internal
	}
	if c := errors.UnwrapOnce(err); c != nil {
		if inner := getPGCodeInternal(c); inner != pgcode.Uncategorized {
			code = inner
		}
	}
	return code
}

type withCandidateCode struct {
	cause error
	code  string
}

var _ error = (*withCandidateCode)(nil)
var _ errors.SafeFormatter = (*withCandidateCode)(nil)
var _ fmt.Formatter = (*withCandidateCode)(nil)

func (w *withCandidateCode) Error() string                 { return w.cause.Error() }
func (w *withCandidateCode) Cause() error                  { return w.cause }
func (w *withCandidateCode) Unwrap() error                 { return w.cause }
func (w *withCandidateCode) Format(s fmt.State, verb rune) { errors.FormatError(w, s, verb) }

func (w *withCandidateCode) SafeFormatError(p errors.Printer) (next error) {
	if p.Detail() {
		p.Printf("candidate pg code: %s", errors.Safe(w.code))
	}
	return w.cause
}

// decodeWithCandidateCode is a custom decoder that will be used when decoding
// withCandidateCode error objects. The code travels in the safe details.
func decodeWithCandidateCode(
	_ context.Context, cause error, _ string, details []string, _ proto.Message,
) error {
	code := pgcode.Uncategorized.String()
	if len(details) > 0 {
		code = details[0]
	}
	return &withCandidateCode{cause: cause, code: code}
}

func encodeWithCandidateCode(
	_ context.Context, err error,
) (msgPrefix string, safeDetails []string, payload proto.Message) {
	w := err.(*withCandidateCode)
	return "", []string{w.code}, nil
}

func init() {
	key := errors.GetTypeKey((*withCandidateCode)(nil))
	errors.RegisterWrapperEncoder(key, encodeWithCandidateCode)
	errors.RegisterWrapperDecoder(key, decodeWithCandidateCode)
}
