package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	assert.Equal(t, "int64", TypeInt64.String())
	assert.Equal(t, "decimal", TypeDecimal.String())
	assert.Equal(t, "datetime", TypeDateTime.String())
	assert.Equal(t, "invalid", TypeInvalid.String())
	assert.Equal(t, "invalid", endTypes.String())
	assert.Equal(t, "invalid", Type(255).String())
}

func TestTypeValid(t *testing.T) {
	assert.False(t, TypeInvalid.Valid())
	assert.False(t, endTypes.Valid())
	for _, typ := range Types() {
		assert.True(t, typ.Valid(), typ.String())
	}
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, TypeInt32.Numeric())
	assert.True(t, TypeDecimal.Numeric())
	assert.False(t, TypeString.Numeric())
	assert.True(t, TypeInt64.Integer())
	assert.False(t, TypeFloat64.Integer())
	assert.True(t, TypeFloat32.Float())
	assert.False(t, TypeDecimal.Float())
	assert.True(t, TypeDate.Temporal())
	assert.True(t, TypeDuration.Temporal())
	assert.False(t, TypeUUID.Temporal())
}

func TestTypes(t *testing.T) {
	all := Types()
	require.Len(t, all, int(endTypes)-1)
	seen := make(map[Type]bool, len(all))
	for _, typ := range all {
		assert.False(t, seen[typ])
		seen[typ] = true
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		expected Type
	}{
		{"int64", TypeInt64},
		{"string", TypeString},
		{"uuid", TypeUUID},
		// Aliases accepted in schema documents.
		{"boolean", TypeBool},
		{"int", TypeInt64},
		{"integer", TypeInt32},
		{"bigint", TypeInt64},
		{"float", TypeFloat64},
		{"double", TypeFloat64},
		{"numeric", TypeDecimal},
		{"text", TypeString},
		{"varchar", TypeString},
		{"blob", TypeBytes},
		{"timestamp", TypeInstant},
		// Unknown names map to the invalid type.
		{"invalid", TypeInvalid},
		{"json", TypeInvalid},
		{"", TypeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeOf(tt.name))
		})
	}
}

func TestConstName(t *testing.T) {
	for _, typ := range Types() {
		assert.NotEqual(t, "TypeInvalid", typ.ConstName(), typ.String())
	}
	assert.Equal(t, "TypeInvalid", TypeInvalid.ConstName())
}
