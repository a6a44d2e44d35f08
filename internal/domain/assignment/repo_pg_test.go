package assignment

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medilab/lims/pkg/apperror"
)

func TestMapInsertErrorDuplicatePairIsConflict(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "assignment_patient_test_uniq"}
	wrapped := fmt.Errorf("insert assignment: %w", pgErr)

	err := mapInsertError(wrapped, uuid.New(), uuid.New())
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("kind = %v, want conflict (err %v)", apperror.KindOf(err), err)
	}
}

func TestMapInsertErrorPassesThroughOtherErrors(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}
	if err := mapInsertError(fk, uuid.New(), uuid.New()); err != fk {
		t.Errorf("foreign-key violation rewritten to %v", err)
	}
	plain := fmt.Errorf("connection reset")
	if err := mapInsertError(plain, uuid.New(), uuid.New()); err != plain {
		t.Errorf("plain error rewritten to %v", err)
	}
	if err := mapInsertError(nil, uuid.New(), uuid.New()); err != nil {
		t.Errorf("nil error rewritten to %v", err)
	}
}

func TestIsUniqueViolationDetectsWrappedPgError(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !isUniqueViolation(wrapped) {
		t.Error("wrapped 23505 not detected")
	}
	if isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})) {
		t.Error("non-unique pg error misclassified")
	}
	if isUniqueViolation(nil) {
		t.Error("nil misclassified")
	}
}
