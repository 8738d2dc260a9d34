// Package field defines the canonical type taxonomy every target
// type mapper must cover. The set is fixed: adding a type here is a
// breaking change for all registered targets, which is enforced by
// gen.CheckMapper at registration time.
package field

// A Type represents a canonical column type.
type Type uint8

// List of all canonical types.
const (
	TypeInvalid Type = iota
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeDecimal
	TypeBool
	TypeString
	TypeBytes
	TypeDate
	TypeDateTime
	TypeTime
	TypeInstant
	TypeDuration
	TypeUUID
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:  "invalid",
	TypeInt32:    "int32",
	TypeInt64:    "int64",
	TypeFloat32:  "float32",
	TypeFloat64:  "float64",
	TypeDecimal:  "decimal",
	TypeBool:     "bool",
	TypeString:   "string",
	TypeBytes:    "bytes",
	TypeDate:     "date",
	TypeDateTime: "datetime",
	TypeTime:     "time",
	TypeInstant:  "instant",
	TypeDuration: "duration",
	TypeUUID:     "uuid",
}

// String returns the textual representation of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is a valid canonical type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	switch t {
	case TypeInt32, TypeInt64, TypeFloat32, TypeFloat64, TypeDecimal:
		return true
	default:
		return false
	}
}

// Integer reports if the given type is an integral type.
func (t Type) Integer() bool {
	return t == TypeInt32 || t == TypeInt64
}

// Float reports if the given type is a floating-point type.
func (t Type) Float() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// Temporal reports if the given type is a date/time kind.
func (t Type) Temporal() bool {
	switch t {
	case TypeDate, TypeDateTime, TypeTime, TypeInstant, TypeDuration:
		return true
	default:
		return false
	}
}

// ConstName returns the constant name of the type, as spelled in this
// package. It is used by generators that embed type names in output.
func (t Type) ConstName() string {
	switch t {
	case TypeInt32:
		return "TypeInt32"
	case TypeInt64:
		return "TypeInt64"
	case TypeFloat32:
		return "TypeFloat32"
	case TypeFloat64:
		return "TypeFloat64"
	case TypeDecimal:
		return "TypeDecimal"
	case TypeBool:
		return "TypeBool"
	case TypeString:
		return "TypeString"
	case TypeBytes:
		return "TypeBytes"
	case TypeDate:
		return "TypeDate"
	case TypeDateTime:
		return "TypeDateTime"
	case TypeTime:
		return "TypeTime"
	case TypeInstant:
		return "TypeInstant"
	case TypeDuration:
		return "TypeDuration"
	case TypeUUID:
		return "TypeUUID"
	default:
		return "TypeInvalid"
	}
}

// Types returns the closed list of valid canonical types, in a fixed
// order. Exhaustiveness checks iterate this list.
func Types() []Type {
	all := make([]Type, 0, int(endTypes)-1)
	for t := TypeInvalid + 1; t < endTypes; t++ {
		all = append(all, t)
	}
	return all
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, int(endTypes))
	for t := TypeInvalid + 1; t < endTypes; t++ {
		m[typeNames[t]] = t
	}
	// Common aliases accepted in schema documents.
	m["boolean"] = TypeBool
	m["int"] = TypeInt64
	m["integer"] = TypeInt32
	m["bigint"] = TypeInt64
	m["float"] = TypeFloat64
	m["double"] = TypeFloat64
	m["numeric"] = TypeDecimal
	m["text"] = TypeString
	m["varchar"] = TypeString
	m["blob"] = TypeBytes
	m["timestamp"] = TypeInstant
	return m
}()

// TypeOf returns the canonical type named by s, or TypeInvalid if s
// does not name one.
func TypeOf(s string) Type {
	return typesByName[s]
}
