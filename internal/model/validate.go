package model

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateEvent checks an Event for constraint violations before it is
// persisted. It returns a *ValidationError if any rules fail.
func ValidateEvent(e *Event) error {
	var ve ValidationError

	if strings.TrimSpace(e.EventID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "event_id", Message: "is required"})
	}
	if strings.TrimSpace(e.StoreID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "store_id", Message: "is required"})
	}
	if strings.TrimSpace(e.DeviceID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "device_id", Message: "is required"})
	}
	if e.Seq < 1 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "seq",
			Message: fmt.Sprintf("must be positive, got %d", e.Seq),
		})
	}
	if strings.TrimSpace(e.Type) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "type", Message: "is required"})
	}
	if len(e.Payload) > 0 && !json.Valid(e.Payload) {
		ve.Errors = append(ve.Errors, FieldError{Field: "payload", Message: "must be valid JSON"})
	}
	if !e.SyncStatus.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "sync_status",
			Message: fmt.Sprintf("invalid value %q", e.SyncStatus),
		})
	}
	if e.SyncAttempts < 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "sync_attempts", Message: "must not be negative"})
	}
	if e.CreatedAt.IsZero() {
		ve.Errors = append(ve.Errors, FieldError{Field: "created_at", Message: "is required"})
	}

	// next_retry_at is present if and only if the event is retrying.
	if e.SyncStatus == StatusRetrying && e.NextRetryAt == nil {
		ve.Errors = append(ve.Errors, FieldError{Field: "next_retry_at", Message: "is required while retrying"})
	}
	if e.SyncStatus != StatusRetrying && e.NextRetryAt != nil {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "next_retry_at",
			Message: fmt.Sprintf("must be unset while %s", e.SyncStatus),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateProduct checks a cached product before it is persisted.
func ValidateProduct(p *Product) error {
	var ve ValidationError

	if strings.TrimSpace(p.ID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "id", Message: "is required"})
	}
	if strings.TrimSpace(p.StoreID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "store_id", Message: "is required"})
	}
	if strings.TrimSpace(p.Name) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateCustomer checks a cached customer before it is persisted.
func ValidateCustomer(c *Customer) error {
	var ve ValidationError

	if strings.TrimSpace(c.ID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "id", Message: "is required"})
	}
	if strings.TrimSpace(c.StoreID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "store_id", Message: "is required"})
	}
	if strings.TrimSpace(c.Name) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
