// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"testing"

	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgerror"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	testCases := []struct {
		in       string
		oid      oid.Oid
		size     int16
		modifier int32
		str      string
	}{
		{"INT", oid.T_int4, 4, -1, "INT4"},
		{"integer", oid.T_int4, 4, -1, "INT4"},
		{"BIGINT", oid.T_int8, 8, -1, "INT8"},
		{"double  precision", oid.T_float8, 8, -1, "FLOAT8"},
		{"boolean", oid.T_bool, 1, -1, "BOOL"},
		{"TEXT", oid.T_text, -1, -1, "TEXT"},
		{"VARCHAR(10)", oid.T_varchar, -1, 14, "VARCHAR(10)"},
		{"character varying (3)", oid.T_varchar, -1, 7, "VARCHAR(3)"},
		{"CHAR(1)", oid.T_bpchar, -1, 5, "BPCHAR(1)"},
		{"NUMERIC", oid.T_numeric, -1, -1, "NUMERIC"},
		{"DECIMAL(10, 2)", oid.T_numeric, -1, 10<<16 | 2 + 4, "NUMERIC(10,2)"},
		{"numeric(5)", oid.T_numeric, -1, 5<<16 + 4, "NUMERIC(5,0)"},
		{"date", oid.T_date, 4, -1, "DATE"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			typ, err := ParseType(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.oid, typ.Oid)
			require.Equal(t, tc.size, typ.Size)
			require.Equal(t, tc.modifier, typ.Modifier)
			require.Equal(t, tc.str, typ.String())
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	testCases := []struct {
		in   string
		code pgcode.Code
	}{
		{"nosuchtype", pgcode.UndefinedObject},
		{"INT(3)", pgcode.Syntax},
		{"VARCHAR(3", pgcode.Syntax},
		{"VARCHAR(x)", pgcode.Syntax},
		{"VARCHAR(1, 2)", pgcode.Syntax},
		{"NUMERIC(2, 5)", pgcode.InvalidParameterValue},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			_, err := ParseType(tc.in)
			require.Error(t, err)
			require.Equal(t, tc.code, pgerror.GetPGCode(err))
		})
	}
	require.Panics(t, func() { MustParseType("nosuchtype") })
}
