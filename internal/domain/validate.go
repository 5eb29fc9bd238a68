package domain

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// fromValidation converts ozzo-validation field errors into a *ValidationError.
// Internal validator errors are returned unchanged.
func fromValidation(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		if len(errs) == 0 {
			return nil
		}
		ve := &ValidationError{Fields: make(map[string]string, len(errs))}
		for field, fe := range errs {
			if fe == nil {
				continue
			}
			ve.Fields[field] = fe.Error()
		}
		if len(ve.Fields) == 0 {
			return nil
		}
		return ve
	}
	var ie validation.InternalError
	if errors.As(err, &ie) {
		return err
	}
	var single validation.Error
	if errors.As(err, &single) {
		return NewValidationError("value", single.Error())
	}
	return err
}
