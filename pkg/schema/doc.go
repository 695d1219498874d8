// Package schema provides a type-safe validation system for compound step
// values.
//
// It defines a small type system with built-in types (string, int, bool) and
// support for slices and custom validators. Schemas map field names to types,
// enabling runtime validation of nested rows such as license entries or link
// entries collected by a compound wizard step.
//
// Basic usage:
//
//	s := schema.Schema{
//	    "license":        schema.String(),
//	    "trade":          schema.String(),
//	    "license_number": schema.String(),
//	}
//
//	row := map[string]any{
//	    "license":        "C-10",
//	    "trade":          "Electrical",
//	    "license_number": "123456",
//	}
//
//	if err := schema.Validate(s, row); err != nil {
//	    // Handle validation errors
//	}
//
// Schemas can also be parsed from the type strings used in catalog files:
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "license_number": "string",
//	    "trades":         "[string]",
//	})
//
// This package has zero dependencies beyond the standard library.
package schema
