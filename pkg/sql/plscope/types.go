// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgerror"
	"github.com/jackc/pgtype"
	"github.com/lib/pq/oid"
)

// Type is the declared type of a variable.
type Type struct {
	Oid oid.Oid
	// Size is the fixed width of the type in bytes, or -1 for variable
	// width types.
	Size int16
	// Modifier is the type modifier (e.g. the length of a VARCHAR), or -1.
	Modifier int32
}

// varHdrSz is the length word that postgres includes in type modifiers.
const varHdrSz = 4

var connInfo = pgtype.NewConnInfo()

var typeAliases = map[string]string{
	"int":               "int4",
	"integer":           "int4",
	"smallint":          "int2",
	"bigint":            "int8",
	"real":              "float4",
	"float":             "float8",
	"double":            "float8",
	"double precision":  "float8",
	"boolean":           "bool",
	"decimal":           "numeric",
	"dec":               "numeric",
	"character varying": "varchar",
	"char":              "bpchar",
	"character":         "bpchar",
	"datetime":          "timestamp",
	"blob":              "bytea",
}

var fixedSizes = map[oid.Oid]int16{
	oid.T_bool:      1,
	oid.T_int2:      2,
	oid.T_int4:      4,
	oid.T_int8:      8,
	oid.T_float4:    4,
	oid.T_float8:    8,
	oid.T_date:      4,
	oid.T_time:      8,
	oid.T_timestamp: 8,
	oid.T_uuid:      16,
}

// ParseType parses a declared type such as INT, VARCHAR(10) or
// NUMERIC(10, 2).
func ParseType(s string) (Type, error) {
	name, args, err := splitTypeArgs(s)
	if err != nil {
		return Type{}, err
	}
	if alias, ok := typeAliases[name]; ok {
		name = alias
	}
	dt, ok := connInfo.DataTypeForName(name)
	if !ok {
		return Type{}, pgerror.Newf(pgcode.UndefinedObject, "type %q does not exist", s)
	}
	t := Type{Oid: oid.Oid(dt.OID), Size: -1, Modifier: -1}
	if size, ok := fixedSizes[t.Oid]; ok {
		t.Size = size
	}
	switch {
	case len(args) == 0:
	case (t.Oid == oid.T_varchar || t.Oid == oid.T_bpchar) && len(args) == 1:
		t.Modifier = int32(args[0]) + varHdrSz
	case t.Oid == oid.T_numeric && len(args) <= 2:
		var scale int
		if len(args) == 2 {
			scale = args[1]
		}
		if scale > args[0] {
			return Type{}, pgerror.Newf(pgcode.InvalidParameterValue,
				"NUMERIC scale %d must be between 0 and precision %d", scale, args[0])
		}
		t.Modifier = int32(args[0]<<16|scale) + varHdrSz
	default:
		return Type{}, pgerror.Newf(pgcode.Syntax, "type %q does not accept modifiers", s)
	}
	return t, nil
}

// MustParseType is like ParseType but panics on error.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

func splitTypeArgs(s string) (name string, args []int, _ error) {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s, nil, nil
	}
	if !strings.HasSuffix(s, ")") {
		return "", nil, pgerror.Newf(pgcode.Syntax, "malformed type %q", s)
	}
	name = strings.TrimSpace(s[:open])
	for _, a := range strings.Split(s[open+1:len(s)-1], ",") {
		n, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil || n < 0 {
			return "", nil, pgerror.Newf(pgcode.Syntax, "malformed type modifier in %q", s)
		}
		args = append(args, n)
	}
	return name, args, nil
}

// String returns the SQL name of the type.
func (t Type) String() string {
	name, ok := oid.TypeName[t.Oid]
	if !ok {
		return fmt.Sprintf("OID(%d)", t.Oid)
	}
	if t.Modifier < varHdrSz {
		return name
	}
	mod := t.Modifier - varHdrSz
	if t.Oid == oid.T_numeric {
		return fmt.Sprintf("%s(%d,%d)", name, mod>>16, mod&0xffff)
	}
	return fmt.Sprintf("%s(%d)", name, mod)
}

// SafeValue implements the redact.SafeValue interface.
func (Type) SafeValue() {}
