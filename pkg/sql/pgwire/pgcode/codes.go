// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package pgcode

// Code is a wrapper around a string to ensure that pgcodes are used in
// different pgerror functions by avoiding accidental string input.
type Code struct {
	code string
}

// MakeCode converts a string into a Code.
func MakeCode(s string) Code {
	return Code{code: s}
}

// String returns the underlying pgcode string.
func (c Code) String() string {
	return c.code
}

// Class returns the two-character class of the code.
func (c Code) Class() string {
	if len(c.code) < 2 {
		return ""
	}
	return c.code[:2]
}

// SafeValue implements the redact.SafeValue interface.
func (c Code) SafeValue() {}

// PG error codes from:
// http://www.postgresql.org/docs/9.5/static/errcodes-appendix.html.
var (
	// Section: Class 00 - Successful Completion
	SuccessfulCompletion = MakeCode("00000")
	// Section: Class 01 - Warning
	Warning = MakeCode("01000")
	// Section: Class 02 - No Data (this is also a warning class per the SQL standard)
	NoData = MakeCode("02000")
	// Section: Class 22 - Data Exception
	InvalidParameterValue = MakeCode("22023")
	// Section: Class 34 - Invalid Cursor Name
	InvalidCursorName = MakeCode("34000")
	// Section: Class 42 - Syntax Error or Access Rule Violation
	Syntax          = MakeCode("42601")
	UndefinedObject = MakeCode("42704")
	DuplicateCursor = MakeCode("42P03")
	DuplicateObject = MakeCode("42710")
	// Section: Class XX - Internal Error
	Internal = MakeCode("XX000")

	// Uncategorized is used for errors that flow out to a client
	// when there's no code known yet.
	Uncategorized = MakeCode("XXUUU")
)
