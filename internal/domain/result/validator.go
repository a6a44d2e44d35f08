// Package result captures technician result submissions: a pure
// schema-driven validation engine plus the persistence and review
// workflow around accepted values.
package result

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/medilab/lims/internal/domain/catalog"
)

// ValidationResult is the full outcome of one validation pass. Errors
// gate validity; warnings never do.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// typeCheckers dispatches on the declared field type. Each checker
// returns a violation message or "".
var typeCheckers = map[catalog.FieldType]func(f *catalog.TestFieldSchema, v interface{}) string{
	catalog.FieldNumber:  checkNumber,
	catalog.FieldText:    checkText,
	catalog.FieldSelect:  checkSelect,
	catalog.FieldBoolean: checkBoolean,
	catalog.FieldDate:    checkDate,
	catalog.FieldFile:    checkText,
}

// Validate checks a submitted value map against a test's field schema.
// Pure: no persistence, no side effects. All violations are collected
// in one pass so the technician gets a complete correction list.
// normalMin/normalMax are the test-level defaults; a field's own range
// takes precedence.
func Validate(fields []catalog.TestFieldSchema, values map[string]interface{}, normalMin, normalMax *float64) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}
	if values == nil {
		res.Errors = append(res.Errors, "result values must be an object of field name to value")
		return res
	}

	known := make(map[string]*catalog.TestFieldSchema, len(fields))
	for i := range fields {
		f := &fields[i]
		known[f.FieldName] = f
		if _, present := values[f.FieldName]; !present && f.Required {
			res.Errors = append(res.Errors, fmt.Sprintf("field %q: required field missing", f.FieldName))
		}
	}
	for name := range values {
		if _, ok := known[name]; !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("field %q: unknown field", name))
		}
	}

	for i := range fields {
		f := &fields[i]
		v, present := values[f.FieldName]
		if !present {
			continue
		}
		check := typeCheckers[f.FieldType]
		if check == nil {
			res.Errors = append(res.Errors, fmt.Sprintf("field %q: unknown field type %s", f.FieldName, f.FieldType))
			continue
		}
		if msg := check(f, v); msg != "" {
			res.Errors = append(res.Errors, msg)
			continue
		}
		if f.FieldType == catalog.FieldNumber {
			if w := rangeWarning(f, v, normalMin, normalMax); w != "" {
				res.Warnings = append(res.Warnings, w)
			}
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

// asNumber coerces a submitted value to a finite float64. JSON numbers
// arrive as float64; numeric strings are accepted, string booleans and
// the like are not.
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsInf(n, 0) && !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func checkNumber(f *catalog.TestFieldSchema, v interface{}) string {
	if _, ok := asNumber(v); !ok {
		return fmt.Sprintf("field %q: expected a number", f.FieldName)
	}
	return ""
}

func checkText(f *catalog.TestFieldSchema, v interface{}) string {
	if _, ok := v.(string); !ok {
		return fmt.Sprintf("field %q: expected a string", f.FieldName)
	}
	return ""
}

func checkBoolean(f *catalog.TestFieldSchema, v interface{}) string {
	if _, ok := v.(bool); !ok {
		return fmt.Sprintf("field %q: expected a boolean", f.FieldName)
	}
	return ""
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func checkDate(f *catalog.TestFieldSchema, v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("field %q: expected a date string", f.FieldName)
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return ""
		}
	}
	return fmt.Sprintf("field %q: expected a valid date (RFC 3339 or YYYY-MM-DD)", f.FieldName)
}

func checkSelect(f *catalog.TestFieldSchema, v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("field %q: expected one of [%s]", f.FieldName, strings.Join(f.Options, ", "))
	}
	for _, opt := range f.Options {
		if s == opt {
			return ""
		}
	}
	return fmt.Sprintf("field %q: %q is not one of [%s]", f.FieldName, s, strings.Join(f.Options, ", "))
}

// rangeWarning flags a numeric value strictly outside the closed normal
// interval. Field-level bounds win over the test-level defaults.
func rangeWarning(f *catalog.TestFieldSchema, v interface{}, normalMin, normalMax *float64) string {
	min, max := normalMin, normalMax
	if f.NormalRangeMin != nil || f.NormalRangeMax != nil {
		min, max = f.NormalRangeMin, f.NormalRangeMax
	}
	if min == nil && max == nil {
		return ""
	}
	n, _ := asNumber(v)
	if (min != nil && n < *min) || (max != nil && n > *max) {
		return fmt.Sprintf("field %q: value %v outside normal range [%s, %s]", f.FieldName, n, boundStr(min), boundStr(max))
	}
	return ""
}

func boundStr(b *float64) string {
	if b == nil {
		return "-"
	}
	return strconv.FormatFloat(*b, 'g', -1, 64)
}
