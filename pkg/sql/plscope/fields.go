// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgerror"
	"github.com/jackc/pgproto3/v2"
)

// FieldTranslator converts a variable's declared type into the field
// definition expected by some consumer.
type FieldTranslator[F any] func(v *Variable) (F, error)

// RetrieveFieldDefinitions translates every variable of s and its
// descendants. Variables come in declaration order, a scope's own
// variables before those of its children, children in creation order.
func RetrieveFieldDefinitions[F any](s *Scope, translate FieldTranslator[F]) ([]F, error) {
	var fields []F
	err := s.walkVariables(func(v *Variable) error {
		f, err := translate(v)
		if err != nil {
			return err
		}
		fields = append(fields, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// PGFieldDescription translates a variable into a pgwire field
// description.
func PGFieldDescription(v *Variable) (pgproto3.FieldDescription, error) {
	if v.Type.Oid == 0 {
		return pgproto3.FieldDescription{}, pgerror.Newf(pgcode.UndefinedObject,
			"variable %s has no declared type", v.Name)
	}
	return pgproto3.FieldDescription{
		Name:         []byte(v.Name),
		DataTypeOID:  uint32(v.Type.Oid),
		DataTypeSize: v.Type.Size,
		TypeModifier: v.Type.Modifier,
	}, nil
}

// RowDescription describes the composite row type made of every variable
// of s and its descendants.
func RowDescription(s *Scope) (*pgproto3.RowDescription, error) {
	fields, err := RetrieveFieldDefinitions(s, PGFieldDescription)
	if err != nil {
		return nil, err
	}
	return &pgproto3.RowDescription{Fields: fields}, nil
}
