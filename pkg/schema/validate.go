package schema

// Schema is a map of field names to their expected types.
// Example: {"license": String(), "trade": String(), "license_number": String()}
type Schema map[string]Type

// Validate checks if data conforms to the schema. Every schema field must be
// present and typed correctly; extra fields in data are ignored. Returns an
// error aggregating all failures found.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []error

	for fieldName, fieldType := range schema {
		value, exists := data[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
