package catalog

import (
	"testing"

	"github.com/medilab/lims/pkg/apperror"
)

func f64(v float64) *float64 { return &v }

func TestValidateFields_Valid(t *testing.T) {
	fields := []TestFieldSchema{
		{FieldName: "result_value", FieldType: FieldNumber, Required: true, NormalRangeMin: f64(5), NormalRangeMax: f64(15)},
		{FieldName: "status", FieldType: FieldSelect, Required: true, Options: []string{"positive", "negative"}},
		{FieldName: "notes", FieldType: FieldText},
		{FieldName: "fasting", FieldType: FieldBoolean},
		{FieldName: "collected_at", FieldType: FieldDate},
		{FieldName: "scan", FieldType: FieldFile},
	}
	if err := ValidateFields(fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFields_SelectRequiresOptions(t *testing.T) {
	err := ValidateFields([]TestFieldSchema{
		{FieldName: "status", FieldType: FieldSelect, Required: true},
	})
	if err == nil {
		t.Fatal("expected error for select without options")
	}
	if apperror.KindOf(err) != apperror.KindBadRequest {
		t.Errorf("expected BadRequest, got %v", apperror.KindOf(err))
	}
}

func TestValidateFields_OptionsOnlyOnSelect(t *testing.T) {
	err := ValidateFields([]TestFieldSchema{
		{FieldName: "notes", FieldType: FieldText, Options: []string{"a"}},
	})
	if err == nil {
		t.Fatal("expected error for options on non-select field")
	}
}

func TestValidateFields_DuplicateName(t *testing.T) {
	err := ValidateFields([]TestFieldSchema{
		{FieldName: "value", FieldType: FieldNumber},
		{FieldName: "value", FieldType: FieldText},
	})
	if err == nil {
		t.Fatal("expected error for duplicate field name")
	}
}

func TestValidateFields_UnknownType(t *testing.T) {
	err := ValidateFields([]TestFieldSchema{
		{FieldName: "value", FieldType: FieldType("blob")},
	})
	if err == nil {
		t.Fatal("expected error for unknown field type")
	}
}

func TestValidateFields_RangeOnlyOnNumber(t *testing.T) {
	err := ValidateFields([]TestFieldSchema{
		{FieldName: "notes", FieldType: FieldText, NormalRangeMin: f64(1)},
	})
	if err == nil {
		t.Fatal("expected error for range on text field")
	}
}

func TestValidateFields_InvertedRange(t *testing.T) {
	err := ValidateFields([]TestFieldSchema{
		{FieldName: "value", FieldType: FieldNumber, NormalRangeMin: f64(10), NormalRangeMax: f64(5)},
	})
	if err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestValidateFields_CollectsAllViolations(t *testing.T) {
	err := ValidateFields([]TestFieldSchema{
		{FieldName: "status", FieldType: FieldSelect},
		{FieldName: "notes", FieldType: FieldText, Options: []string{"a"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if details := apperror.DetailsOf(err); len(details) != 2 {
		t.Errorf("expected 2 violations, got %v", details)
	}
}

func TestFieldByName(t *testing.T) {
	test := &Test{Fields: []TestFieldSchema{
		{FieldName: "result_value", FieldType: FieldNumber},
		{FieldName: "status", FieldType: FieldSelect, Options: []string{"positive"}},
	}}
	if f := test.FieldByName("status"); f == nil || f.FieldType != FieldSelect {
		t.Errorf("expected select field, got %+v", f)
	}
	if f := test.FieldByName("missing"); f != nil {
		t.Errorf("expected nil for missing field, got %+v", f)
	}
}
