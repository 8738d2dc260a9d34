package gen

import (
	"strings"

	"github.com/schemaforge/schemaforge/schema/field"
)

// Option configures code generation.
type Option func(*Config) error

// NewConfig builds a Config from the given options, applying defaults
// for everything left unset.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		IDType:       field.TypeInt64,
		AuditColumns: DefaultAuditColumns(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.BasePackage == "" {
		return nil, NewConfigError("BasePackage", nil, "base package cannot be empty")
	}
	return c, nil
}

// WithBasePackage sets the root namespace of the generated project in
// reverse-domain notation. For example: "com.example.shop".
func WithBasePackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("BasePackage", nil, "base package cannot be empty")
		}
		for _, seg := range strings.Split(pkg, ".") {
			if seg == "" {
				return NewConfigError("BasePackage", pkg, "empty package segment")
			}
		}
		c.BasePackage = pkg
		return nil
	}
}

// WithHeader sets the file header comment added at the top of each
// generated file that supports comments.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithIDType sets the implicit primary-key type.
// Supported types: "int32", "int64", "string", "uuid".
func WithIDType(t string) Option {
	return func(c *Config) error {
		switch ft := field.TypeOf(t); ft {
		case field.TypeInt32, field.TypeInt64, field.TypeString, field.TypeUUID:
			c.IDType = ft
			return nil
		default:
			return NewConfigError("IDType", t, "unsupported ID type; use int32, int64, string, or uuid")
		}
	}
}

// WithAuditColumns replaces the base/audit field set.
func WithAuditColumns(cols []AuditColumn) Option {
	return func(c *Config) error {
		seen := make(map[string]bool, len(cols))
		for _, col := range cols {
			if col.Name == "" {
				return NewConfigError("AuditColumns", nil, "audit column with empty name")
			}
			if !col.Type.Valid() {
				return NewConfigError("AuditColumns", col.Name, "audit column with invalid type")
			}
			if seen[col.Name] {
				return NewConfigError("AuditColumns", col.Name, "duplicate audit column")
			}
			seen[col.Name] = true
		}
		c.AuditColumns = cols
		return nil
	}
}

// WithWorkers bounds the generation parallelism.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "worker count cannot be negative")
		}
		c.Workers = n
		return nil
	}
}
