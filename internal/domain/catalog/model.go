package catalog

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/medilab/lims/pkg/apperror"
)

// FieldType is the declared type of a result field. Field types are
// stored as data on the test definition, not as compiled types.
type FieldType string

const (
	FieldNumber  FieldType = "number"
	FieldText    FieldType = "text"
	FieldSelect  FieldType = "select"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldFile    FieldType = "file"
)

var validFieldTypes = map[FieldType]bool{
	FieldNumber:  true,
	FieldText:    true,
	FieldSelect:  true,
	FieldBoolean: true,
	FieldDate:    true,
	FieldFile:    true,
}

// TestFieldSchema describes one field of a test's result form.
// Options is present iff the field is a select; NormalRangeMin/Max are
// meaningful only for number fields.
type TestFieldSchema struct {
	FieldName      string    `db:"field_name" json:"field_name"`
	FieldType      FieldType `db:"field_type" json:"field_type"`
	Required       bool      `db:"required" json:"required"`
	Options        []string  `db:"options" json:"options,omitempty"`
	Unit           *string   `db:"unit" json:"unit,omitempty"`
	NormalRangeMin *float64  `db:"normal_range_min" json:"normal_range_min,omitempty"`
	NormalRangeMax *float64  `db:"normal_range_max" json:"normal_range_max,omitempty"`
}

// Test maps to the lab_test table. AdminRole is the capability tag a
// technician must hold to perform the test. The test-level normal range
// applies when a number field carries none of its own.
type Test struct {
	ID             uuid.UUID         `db:"id" json:"id"`
	Name           string            `db:"name" json:"name"`
	Description    *string           `db:"description" json:"description,omitempty"`
	AdminRole      string            `db:"admin_role" json:"admin_role"`
	Fields         []TestFieldSchema `db:"fields" json:"fields"`
	NormalRangeMin *float64          `db:"normal_range_min" json:"normal_range_min,omitempty"`
	NormalRangeMax *float64          `db:"normal_range_max" json:"normal_range_max,omitempty"`
	Unit           *string           `db:"unit" json:"unit,omitempty"`
	Active         bool              `db:"active" json:"active"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// ValidateFields enforces the structural invariants of a field schema
// list: known field types, unique non-empty field names, select fields
// always carrying options and only select fields carrying them. All
// violations are collected before returning.
func ValidateFields(fields []TestFieldSchema) error {
	var violations []string
	seen := make(map[string]bool, len(fields))

	for i, f := range fields {
		if f.FieldName == "" {
			violations = append(violations, fieldErr(i, "field_name is required"))
			continue
		}
		if seen[f.FieldName] {
			violations = append(violations, "duplicate field name: "+f.FieldName)
		}
		seen[f.FieldName] = true

		if !validFieldTypes[f.FieldType] {
			violations = append(violations, "field "+f.FieldName+": unknown field type "+string(f.FieldType))
			continue
		}
		if f.FieldType == FieldSelect && len(f.Options) == 0 {
			violations = append(violations, "field "+f.FieldName+": select fields require options")
		}
		if f.FieldType != FieldSelect && len(f.Options) > 0 {
			violations = append(violations, "field "+f.FieldName+": options are only allowed on select fields")
		}
		if f.FieldType != FieldNumber && (f.NormalRangeMin != nil || f.NormalRangeMax != nil) {
			violations = append(violations, "field "+f.FieldName+": normal range is only allowed on number fields")
		}
		if f.NormalRangeMin != nil && f.NormalRangeMax != nil && *f.NormalRangeMin > *f.NormalRangeMax {
			violations = append(violations, "field "+f.FieldName+": normal_range_min exceeds normal_range_max")
		}
	}

	if len(violations) > 0 {
		return apperror.BadRequest("invalid field schema").WithDetails(violations...)
	}
	return nil
}

func fieldErr(i int, msg string) string {
	return "field #" + strconv.Itoa(i) + ": " + msg
}

// FieldByName returns the schema entry for a field name, or nil.
func (t *Test) FieldByName(name string) *TestFieldSchema {
	for i := range t.Fields {
		if t.Fields[i].FieldName == name {
			return &t.Fields[i]
		}
	}
	return nil
}
