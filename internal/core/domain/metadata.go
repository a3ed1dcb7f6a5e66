package domain

import (
	"fmt"
	"strconv"
	"time"
)

// MetadataFieldType constrains the value of a metadata field.
type MetadataFieldType string

const (
	MetadataString MetadataFieldType = "string"
	MetadataNumber MetadataFieldType = "number"
	MetadataDate   MetadataFieldType = "date" // YYYY-MM-DD
)

// MetadataFieldSpec describes one allowed key in a metadata bag.
type MetadataFieldSpec struct {
	Type     MetadataFieldType `json:"type"`
	Required bool              `json:"required"`
}

// MetadataSchema validates the free-form attribute bag attached to entries of a
// given source. Unknown keys are rejected rather than accepted untyped.
type MetadataSchema struct {
	Source EntrySource                  `json:"source"`
	Fields map[string]MetadataFieldSpec `json:"fields"`
}

// Validate checks a metadata bag against the schema.
func (s MetadataSchema) Validate(values map[string]string) error {
	for key, spec := range s.Fields {
		val, ok := values[key]
		if !ok {
			if spec.Required {
				return fmt.Errorf("metadata field %q is required for source %s", key, s.Source)
			}
			continue
		}
		switch spec.Type {
		case MetadataNumber:
			if _, err := strconv.ParseFloat(val, 64); err != nil {
				return fmt.Errorf("metadata field %q must be numeric, got %q", key, val)
			}
		case MetadataDate:
			if _, err := time.Parse("2006-01-02", val); err != nil {
				return fmt.Errorf("metadata field %q must be a date (YYYY-MM-DD), got %q", key, val)
			}
		}
	}
	for key := range values {
		if _, ok := s.Fields[key]; !ok {
			return fmt.Errorf("metadata field %q is not allowed for source %s", key, s.Source)
		}
	}
	return nil
}
