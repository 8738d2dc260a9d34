package python

import (
	"strings"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/schema/field"
)

// typeMapper maps the canonical taxonomy onto Python types.
type typeMapper struct{}

func (typeMapper) Scalar(t field.Type) string {
	switch t {
	case field.TypeInt32, field.TypeInt64:
		return "int"
	case field.TypeFloat32, field.TypeFloat64:
		return "float"
	case field.TypeDecimal:
		return "Decimal"
	case field.TypeBool:
		return "bool"
	case field.TypeString:
		return "str"
	case field.TypeBytes:
		return "bytes"
	case field.TypeDate:
		return "date"
	case field.TypeDateTime, field.TypeInstant:
		return "datetime"
	case field.TypeTime:
		return "time"
	case field.TypeDuration:
		return "timedelta"
	case field.TypeUUID:
		return "UUID"
	default:
		return ""
	}
}

func (typeMapper) Nullable(native string, _ field.Type) string {
	return native + " | None"
}

func (m typeMapper) DefaultValue(f *gen.Field) string {
	if f.Nullable {
		return "None"
	}
	if f.HasDefault() {
		if lit := m.literal(f); lit != "" {
			return lit
		}
	}
	switch f.Type {
	case field.TypeInt32, field.TypeInt64:
		return "0"
	case field.TypeFloat32, field.TypeFloat64:
		return "0.0"
	case field.TypeDecimal:
		return `Decimal("0")`
	case field.TypeBool:
		return "False"
	case field.TypeString:
		return `""`
	case field.TypeBytes:
		return `b""`
	case field.TypeDate:
		return "date.min"
	case field.TypeDateTime, field.TypeInstant:
		return "datetime.min"
	case field.TypeTime:
		return "time.min"
	case field.TypeDuration:
		return "timedelta()"
	case field.TypeUUID:
		return "UUID(int=0)"
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
		switch hint {
		case "true":
			return "True"
		case "false":
			return "False"
		}
	case field.TypeInt32, field.TypeInt64, field.TypeFloat32, field.TypeFloat64:
		return hint
	case field.TypeDecimal:
		return `Decimal("` + hint + `")`
	}
	return ""
}

func (typeMapper) Collection(element string) string {
	return "list[" + element + "]"
}

func (m typeMapper) PrimaryKey(t field.Type) string {
	return m.Scalar(t)
}

// saType maps a canonical type to its SQLAlchemy column type
// expression.
func saType(t field.Type) string {
	switch t {
	case field.TypeInt32:
		return "Integer"
	case field.TypeInt64:
		return "BigInteger"
	case field.TypeFloat32, field.TypeFloat64:
		return "Float"
	case field.TypeDecimal:
		return "Numeric(19, 4)"
	case field.TypeBool:
		return "Boolean"
	case field.TypeString:
		return "String(255)"
	case field.TypeBytes:
		return "LargeBinary"
	case field.TypeDate:
		return "Date"
	case field.TypeDateTime:
		return "DateTime"
	case field.TypeTime:
		return "Time"
	case field.TypeInstant:
		return "DateTime(timezone=True)"
	case field.TypeDuration:
		return "Interval"
	case field.TypeUUID:
		return "Uuid"
	default:
		return ""
	}
}

// saImport returns the sqlalchemy name to import for a column type
// expression, e.g. "Numeric" for "Numeric(19, 4)".
func saImport(t field.Type) string {
	expr := saType(t)
	if i := strings.IndexByte(expr, '('); i > 0 {
		return expr[:i]
	}
	return expr
}

// pyImport returns the standard-library import a Python type needs in
// "module:name" form, or "".
func pyImport(t field.Type) string {
	switch t {
	case field.TypeDecimal:
		return "decimal:Decimal"
	case field.TypeDate:
		return "datetime:date"
	case field.TypeDateTime, field.TypeInstant:
		return "datetime:datetime"
	case field.TypeTime:
		return "datetime:time"
	case field.TypeDuration:
		return "datetime:timedelta"
	case field.TypeUUID:
		return "uuid:UUID"
	default:
		return ""
	}
}
