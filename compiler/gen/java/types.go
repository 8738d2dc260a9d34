package java

import (
	"strings"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/schema/field"
)

// typeMapper maps the canonical taxonomy onto Java types. Boxed types
// are used throughout so the nullable variant is the scalar itself.
type typeMapper struct{}

func (typeMapper) Scalar(t field.Type) string {
	switch t {
	case field.TypeInt32:
		return "Integer"
	case field.TypeInt64:
		return "Long"
	case field.TypeFloat32:
		return "Float"
	case field.TypeFloat64:
		return "Double"
	case field.TypeDecimal:
		return "BigDecimal"
	case field.TypeBool:
		return "Boolean"
	case field.TypeString:
		return "String"
	case field.TypeBytes:
		return "byte[]"
	case field.TypeDate:
		return "LocalDate"
	case field.TypeDateTime:
		return "LocalDateTime"
	case field.TypeTime:
		return "LocalTime"
	case field.TypeInstant:
		return "Instant"
	case field.TypeDuration:
		return "Duration"
	case field.TypeUUID:
		return "UUID"
	default:
		return ""
	}
}

func (m typeMapper) Nullable(native string, t field.Type) string {
	if t == field.TypeBytes {
		return native
	}
	return native
}

func (m typeMapper) DefaultValue(f *gen.Field) string {
	if f.Nullable {
		return "null"
	}
	if f.HasDefault() {
		if lit := m.literal(f); lit != "" {
			return lit
		}
	}
	switch f.Type {
	case field.TypeInt32:
		return "0"
	case field.TypeInt64:
		return "0L"
	case field.TypeFloat32:
		return "0.0f"
	case field.TypeFloat64:
		return "0.0"
	case field.TypeDecimal:
		return "BigDecimal.ZERO"
	case field.TypeBool:
		return "false"
	case field.TypeString:
		return `""`
	case field.TypeBytes:
		return "new byte[0]"
	case field.TypeDate:
		return "LocalDate.MIN"
	case field.TypeDateTime:
		return "LocalDateTime.MIN"
	case field.TypeTime:
		return "LocalTime.MIN"
	case field.TypeInstant:
		return "Instant.EPOCH"
	case field.TypeDuration:
		return "Duration.ZERO"
	case field.TypeUUID:
		return "new UUID(0L, 0L)"
	default:
		return ""
	}
}

// literal translates the schema's default-value hint into a Java
// literal. Unknown hints fall back to the type sentinel.
func (m typeMapper) literal(f *gen.Field) string {
	hint := f.Default
	switch f.Type {
	case field.TypeString:
		return `"` + strings.ReplaceAll(hint, `"`, `\"`) + `"`
	case field.TypeBool:
		if hint == "true" || hint == "false" {
			return hint
		}
	case field.TypeInt32:
		return hint
	case field.TypeInt64:
		return hint + "L"
	case field.TypeFloat32:
		return hint + "f"
	case field.TypeFloat64:
		return hint
	case field.TypeDecimal:
		return `new BigDecimal("` + hint + `")`
	case field.TypeInstant, field.TypeDateTime:
		if hint == "now" {
			return m.Scalar(f.Type) + ".now()"
		}
	case field.TypeDate:
		if hint == "now" {
			return "LocalDate.now()"
		}
	}
	return ""
}

func (typeMapper) Collection(element string) string {
	return "List<" + element + ">"
}

func (m typeMapper) PrimaryKey(t field.Type) string {
	return m.Scalar(t)
}

// typeImport returns the import a Java type needs, or "".
func typeImport(t field.Type) string {
	switch t {
	case field.TypeDecimal:
		return "java.math.BigDecimal"
	case field.TypeDate:
		return "java.time.LocalDate"
	case field.TypeDateTime:
		return "java.time.LocalDateTime"
	case field.TypeTime:
		return "java.time.LocalTime"
	case field.TypeInstant:
		return "java.time.Instant"
	case field.TypeDuration:
		return "java.time.Duration"
	case field.TypeUUID:
		return "java.util.UUID"
	default:
		return ""
	}
}
