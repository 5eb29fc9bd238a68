package domain

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SetOperator is the nested operator key of an Update.
const SetOperator = "$set"

// Update is a filter-based partial update. Field changes may be given at the top level,
// under SetOperator, or both; SetOperator wins when a field appears twice.
type Update map[string]any

// Set returns an Update that sets the given fields through SetOperator.
func Set(fields map[string]any) Update {
	return Update{SetOperator: fields}
}

// Fields flattens the update into a single field map.
func (u Update) Fields() (map[string]any, error) {
	out := make(map[string]any, len(u))
	for k, v := range u {
		if k == SetOperator {
			continue
		}
		if strings.HasPrefix(k, "$") {
			return nil, NewValidationError(k, "unsupported update operator")
		}
		out[k] = v
	}
	if raw, ok := u[SetOperator]; ok {
		set, ok := raw.(map[string]any)
		if !ok {
			return nil, NewValidationError(SetOperator, "must be a field map")
		}
		for k, v := range set {
			out[k] = v
		}
	}
	return out, nil
}

// Lookup returns the value for field, preferring the SetOperator entry.
func (u Update) Lookup(field string) (any, bool) {
	if set, ok := u[SetOperator].(map[string]any); ok {
		if v, ok := set[field]; ok {
			return v, true
		}
	}
	v, ok := u[field]
	return v, ok
}

// UpdateOptions controls how a filter-based update is prepared.
type UpdateOptions struct {
	// ApplySetters runs the same trim/lowercase transformations a document assignment would.
	ApplySetters bool
	// RunValidators runs the field validators on the changed values.
	RunValidators bool
}

// DefaultUpdateOptions is used for every booking update; setters are never skipped.
var DefaultUpdateOptions = UpdateOptions{ApplySetters: true, RunValidators: true}

// PrepareBookingUpdate flattens u and applies booking setters and validators per opts.
// Unknown fields and non-string values are rejected.
func PrepareBookingUpdate(u Update, opts UpdateOptions) (map[string]any, error) {
	raw, err := u.Fields()
	if err != nil {
		return nil, err
	}
	ve := &ValidationError{Fields: map[string]string{}}
	out := make(map[string]any, len(raw))
	for field, v := range raw {
		s, ok := v.(string)
		if !ok {
			ve.Fields[field] = fmt.Sprintf("must be a string, got %T", v)
			continue
		}
		switch field {
		case FieldEventID:
			if opts.ApplySetters {
				s = strings.TrimSpace(s)
			}
			if opts.RunValidators {
				if err := validation.Validate(s, validation.Required.Error("event id is required")); err != nil {
					ve.Fields[field] = err.Error()
					continue
				}
			}
		case FieldEmail:
			if opts.ApplySetters {
				s = normalizeEmail(s)
			}
			if opts.RunValidators {
				if err := validation.Validate(s, emailRules...); err != nil {
					ve.Fields[field] = err.Error()
					continue
				}
			}
		default:
			ve.Fields[field] = "unknown or read-only field"
			continue
		}
		out[field] = s
	}
	if len(ve.Fields) > 0 {
		return nil, ve
	}
	return out, nil
}
