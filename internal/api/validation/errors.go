package validation

import "fmt"

// ValidationError indicates a validation error
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Reason)
}

// SchemaError indicates a value rejected by the value schema
type SchemaError struct {
	Err error
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("value does not match schema: %v", e.Err)
}

func (e SchemaError) Unwrap() error {
	return e.Err
}
