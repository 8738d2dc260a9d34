package golang

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/schema/field"
)

// typeMapper maps the canonical taxonomy onto Go types. Decimals map
// to float64; the generated scaffold trades exactness for a
// dependency-free model layer.
type typeMapper struct{}

func (typeMapper) Scalar(t field.Type) string {
	switch t {
	case field.TypeInt32:
		return "int32"
	case field.TypeInt64:
		return "int64"
	case field.TypeFloat32:
		return "float32"
	case field.TypeFloat64, field.TypeDecimal:
		return "float64"
	case field.TypeBool:
		return "bool"
	case field.TypeString:
		return "string"
	case field.TypeBytes:
		return "[]byte"
	case field.TypeDate, field.TypeDateTime, field.TypeTime, field.TypeInstant:
		return "time.Time"
	case field.TypeDuration:
		return "time.Duration"
	case field.TypeUUID:
		return "uuid.UUID"
	default:
		return ""
	}
}

func (typeMapper) Nullable(native string, _ field.Type) string {
	return "*" + native
}

func (m typeMapper) DefaultValue(f *gen.Field) string {
	if f.Nullable {
		return "nil"
	}
	if f.HasDefault() {
		if lit := m.literal(f); lit != "" {
			return lit
		}
	}
	switch f.Type {
	case field.TypeInt32, field.TypeInt64, field.TypeFloat32, field.TypeFloat64, field.TypeDecimal:
		return "0"
	case field.TypeBool:
		return "false"
	case field.TypeString:
		return `""`
	case field.TypeBytes:
		return "nil"
	case field.TypeDate, field.TypeDateTime, field.TypeTime, field.TypeInstant:
		return "time.Time{}"
	case field.TypeDuration:
		return "0"
	case field.TypeUUID:
		return "uuid.Nil"
	default:
		return ""
	}
}

func (typeMapper) literal(f *gen.Field) string {
	hint := f.Default
	switch f.Type {
	case field.TypeString:
		return `"` + strings.ReplaceAll(hint, `"`, `\"`) + `"`
	case field.TypeBool:
		if hint == "true" || hint == "false" {
			return hint
		}
	case field.TypeInt32, field.TypeInt64, field.TypeFloat32, field.TypeFloat64, field.TypeDecimal:
		return hint
	}
	return ""
}

func (typeMapper) Collection(element string) string {
	return "[]" + element
}

func (m typeMapper) PrimaryKey(t field.Type) string {
	return m.Scalar(t)
}

const uuidPkg = "github.com/google/uuid"

// goType returns the Jennifer code of a canonical type, with qualified
// imports for time and uuid types.
func goType(t field.Type) jen.Code {
	switch t {
	case field.TypeInt32:
		return jen.Int32()
	case field.TypeInt64:
		return jen.Int64()
	case field.TypeFloat32:
		return jen.Float32()
	case field.TypeFloat64, field.TypeDecimal:
		return jen.Float64()
	case field.TypeBool:
		return jen.Bool()
	case field.TypeString:
		return jen.String()
	case field.TypeBytes:
		return jen.Index().Byte()
	case field.TypeDate, field.TypeDateTime, field.TypeTime, field.TypeInstant:
		return jen.Qual("time", "Time")
	case field.TypeDuration:
		return jen.Qual("time", "Duration")
	case field.TypeUUID:
		return jen.Qual(uuidPkg, "UUID")
	default:
		return jen.Any()
	}
}

// fieldType returns the Jennifer code of a column's Go type, pointered
// when nullable.
func fieldType(t field.Type, nullable bool) jen.Code {
	if nullable {
		return jen.Op("*").Add(goType(t))
	}
	return goType(t)
}
