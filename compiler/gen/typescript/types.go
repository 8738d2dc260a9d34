package typescript

import (
	"strings"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/schema/field"
)

// typeMapper maps the canonical taxonomy onto TypeScript types.
// Decimals map to string: IEEE doubles cannot carry NUMERIC(19, 4)
// round trips, and TypeORM returns numerics as strings by default.
type typeMapper struct{}

func (typeMapper) Scalar(t field.Type) string {
	switch t {
	case field.TypeInt32, field.TypeInt64, field.TypeFloat32, field.TypeFloat64:
		return "number"
	case field.TypeDecimal:
		return "string"
	case field.TypeBool:
		return "boolean"
	case field.TypeString:
		return "string"
	case field.TypeBytes:
		return "Buffer"
	case field.TypeDate, field.TypeDateTime, field.TypeInstant:
		return "Date"
	case field.TypeTime:
		return "string"
	case field.TypeDuration:
		return "string"
	case field.TypeUUID:
		return "string"
	default:
		return ""
	}
}

func (typeMapper) Nullable(native string, _ field.Type) string {
	return native + " | null"
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
	case field.TypeInt32, field.TypeInt64, field.TypeFloat32, field.TypeFloat64:
		return "0"
	case field.TypeDecimal:
		return `'0'`
	case field.TypeBool:
		return "false"
	case field.TypeString, field.TypeTime, field.TypeDuration:
		return `''`
	case field.TypeBytes:
		return "Buffer.alloc(0)"
	case field.TypeDate, field.TypeDateTime, field.TypeInstant:
		return "new Date(0)"
	case field.TypeUUID:
		return `'00000000-0000-0000-0000-000000000000'`
	default:
		return ""
	}
}

func (typeMapper) literal(f *gen.Field) string {
	hint := f.Default
	switch f.Type {
	case field.TypeString:
		return "'" + strings.ReplaceAll(hint, "'", `\'`) + "'"
	case field.TypeBool:
		if hint == "true" || hint == "false" {
			return hint
		}
	case field.TypeInt32, field.TypeInt64, field.TypeFloat32, field.TypeFloat64:
		return hint
	case field.TypeDecimal:
		return "'" + hint + "'"
	}
	return ""
}

func (typeMapper) Collection(element string) string {
	return element + "[]"
}

func (m typeMapper) PrimaryKey(t field.Type) string {
	return m.Scalar(t)
}

// ormType returns the TypeORM column options for a canonical type,
// rendered as the inside of a @Column({...}) literal.
func ormType(t field.Type) string {
	switch t {
	case field.TypeInt32:
		return "type: 'integer'"
	case field.TypeInt64:
		return "type: 'bigint'"
	case field.TypeFloat32:
		return "type: 'real'"
	case field.TypeFloat64:
		return "type: 'double precision'"
	case field.TypeDecimal:
		return "type: 'numeric', precision: 19, scale: 4"
	case field.TypeBool:
		return "type: 'boolean'"
	case field.TypeString:
		return "type: 'varchar', length: 255"
	case field.TypeBytes:
		return "type: 'bytea'"
	case field.TypeDate:
		return "type: 'date'"
	case field.TypeDateTime:
		return "type: 'timestamp'"
	case field.TypeTime:
		return "type: 'time'"
	case field.TypeInstant:
		return "type: 'timestamptz'"
	case field.TypeDuration:
		return "type: 'bigint'"
	case field.TypeUUID:
		return "type: 'uuid'"
	default:
		return ""
	}
}

// validator returns the class-validator decorator guarding a canonical
// type in DTO classes.
func validator(t field.Type) string {
	switch t {
	case field.TypeInt32, field.TypeInt64:
		return "@IsInt()"
	case field.TypeFloat32, field.TypeFloat64:
		return "@IsNumber()"
	case field.TypeDecimal:
		return "@IsNumberString()"
	case field.TypeBool:
		return "@IsBoolean()"
	case field.TypeString, field.TypeTime, field.TypeDuration:
		return "@IsString()"
	case field.TypeDate, field.TypeDateTime, field.TypeInstant:
		return "@IsDate()"
	case field.TypeUUID:
		return "@IsUUID()"
	default:
		return ""
	}
}

// validatorImport returns the class-validator name a decorator uses,
// e.g. "IsInt" for "@IsInt()".
func validatorImport(t field.Type) string {
	dec := validator(t)
	if dec == "" {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(dec, "@"), "()")
}
