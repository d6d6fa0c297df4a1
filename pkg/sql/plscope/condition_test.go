// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgerror"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func mustSQLState(t *testing.T, s string) ConditionValue {
	t.Helper()
	v, err := MakeSQLState(s)
	require.NoError(t, err)
	return v
}

func TestMakeSQLState(t *testing.T) {
	v := mustSQLState(t, "42S02")
	require.Equal(t, SQLStateCondition, v.Kind())
	require.Equal(t, "42S02", v.SQLState())
	require.Equal(t, "SQLSTATE '42S02'", v.String())

	for _, bad := range []string{"", "4200", "420000", "00000", "00123", "42s02", "42-02"} {
		_, err := MakeSQLState(bad)
		require.Error(t, err, "%q", bad)
		require.Equal(t, pgcode.InvalidParameterValue, pgerror.GetPGCode(err), "%q", bad)
	}
}

func TestConditionValueEqual(t *testing.T) {
	require.True(t, MakeErrorCode(1051).Equal(MakeErrorCode(1051)))
	require.False(t, MakeErrorCode(1051).Equal(MakeErrorCode(1052)))
	require.True(t, mustSQLState(t, "42S02").Equal(mustSQLState(t, "42S02")))
	require.False(t, mustSQLState(t, "42S02").Equal(mustSQLState(t, "42S22")))
	require.True(t, NotFound.Equal(NotFound))
	require.False(t, NotFound.Equal(SQLWarning))
	require.False(t, SQLException.Equal(mustSQLState(t, "42S02")))
	require.Equal(t, "ERROR 1051", MakeErrorCode(1051).String())
}

func TestConditionValueMatches(t *testing.T) {
	testCases := []struct {
		value    ConditionValue
		errno    uint32
		sqlState string
		expected bool
	}{
		{MakeErrorCode(1051), 1051, "42S02", true},
		{MakeErrorCode(1051), 1052, "42S02", false},
		{MakeErrorCode(1051), 0, "42S02", false},
		{mustSQLState(t, "42S02"), 0, "42S02", true},
		{mustSQLState(t, "42S02"), 0, "42S22", false},
		{SQLWarning, 0, "01000", true},
		{SQLWarning, 0, "02000", false},
		{NotFound, 0, "02000", true},
		{NotFound, 0, "01000", false},
		{SQLException, 0, "42S02", true},
		{SQLException, 0, "00000", false},
		{SQLException, 0, "01000", false},
		{SQLException, 0, "02000", false},
		{SQLException, 0, "", false},
		{ConditionValue{}, 0, "42S02", false},
	}
	for i, tc := range testCases {
		require.Equal(t, tc.expected, tc.value.Matches(tc.errno, tc.sqlState), "%d: %s", i, tc.value)
	}
}

type numbered struct {
	error
	errno uint32
}

func (e numbered) ErrorNumber() uint32 { return e.errno }
func (e numbered) Unwrap() error       { return e.error }

func TestConditionValueMatchesError(t *testing.T) {
	undefined := pgerror.New(pgcode.UndefinedObject, "no such thing")
	require.True(t, SQLException.MatchesError(undefined))
	require.True(t, SQLException.MatchesError(errors.Wrap(undefined, "while resolving")))
	require.False(t, NotFound.MatchesError(undefined))
	require.True(t, NotFound.MatchesError(&pq.Error{Code: "02000"}))
	require.True(t, mustSQLState(t, "42704").MatchesError(undefined))
	require.False(t, SQLException.MatchesError(nil))

	err := numbered{error: undefined, errno: 1051}
	require.True(t, MakeErrorCode(1051).MatchesError(err))
	require.False(t, MakeErrorCode(1051).MatchesError(undefined))
}
