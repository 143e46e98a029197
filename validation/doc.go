// Package validation checks commands and configuration before they are used.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as an
// INVALID_INPUT errors.AppError listing every offending field.
//
// # Struct Tag Validation
//
//	type Command struct {
//	    Binary  string        `validate:"required"`
//	    Timeout time.Duration `validate:"gte=0"`
//	}
//	err := validation.Validate(cmd)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("env."+name, name).
//	    Check(!strings.Contains(name, "="), "env."+name, "must not contain '='")
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
