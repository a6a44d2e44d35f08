package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf_Typed(t *testing.T) {
	err := NotFound("patient %s not found", "abc")
	if KindOf(err) != KindNotFound {
		t.Errorf("expected KindNotFound, got %v", KindOf(err))
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading assignment: %w", Forbidden("not the assignee"))
	if KindOf(err) != KindForbidden {
		t.Errorf("expected KindForbidden through wrapping, got %v", KindOf(err))
	}
}

func TestKindOf_Plain(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Error("plain errors should map to KindInternal")
	}
}

func TestWithDetails(t *testing.T) {
	err := BadRequest("invalid transition").WithDetails("allowed: assigned")
	details := DetailsOf(err)
	if len(details) != 1 || details[0] != "allowed: assigned" {
		t.Errorf("unexpected details: %v", details)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:   http.StatusNotFound,
		KindConflict:   http.StatusConflict,
		KindBadRequest: http.StatusBadRequest,
		KindForbidden:  http.StatusForbidden,
		KindInternal:   http.StatusInternalServerError,
	}
	for k, want := range cases {
		if got := HTTPStatus(k); got != want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", k, got, want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("pg down")
	err := Internal("selecting technician", inner)
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to see wrapped error")
	}
}
