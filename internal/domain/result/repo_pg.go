package result

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medilab/lims/internal/platform/db"
	"github.com/medilab/lims/pkg/apperror"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const resultCols = `id, assignment_id, field_values, warnings, submitted_by,
	submitted_at, reviewed_by, reviewed_at, review_notes, created_at`

func scanResult(row pgx.Row) (*TestResult, error) {
	var tr TestResult
	var valuesJSON []byte
	err := row.Scan(&tr.ID, &tr.AssignmentID, &valuesJSON, &tr.Warnings, &tr.SubmittedBy,
		&tr.SubmittedAt, &tr.ReviewedBy, &tr.ReviewedAt, &tr.ReviewNotes, &tr.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(valuesJSON) > 0 {
		if err := json.Unmarshal(valuesJSON, &tr.Values); err != nil {
			return nil, fmt.Errorf("decode result values: %w", err)
		}
	}
	return &tr, nil
}

func (r *repoPG) Create(ctx context.Context, tr *TestResult) error {
	tr.ID = uuid.New()
	valuesJSON, err := json.Marshal(tr.Values)
	if err != nil {
		return fmt.Errorf("encode result values: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO test_result (id, assignment_id, field_values, warnings, submitted_by, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		tr.ID, tr.AssignmentID, valuesJSON, tr.Warnings, tr.SubmittedBy, tr.SubmittedAt)
	return mapInsertError(err, tr.AssignmentID)
}

// mapInsertError turns a violation of the one-result-per-assignment
// unique index into a Conflict.
func mapInsertError(err error, assignmentID uuid.UUID) error {
	if isUniqueViolation(err) {
		return apperror.Conflict("a result already exists for assignment %s", assignmentID)
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*TestResult, error) {
	tr, err := scanResult(r.conn(ctx).QueryRow(ctx,
		`SELECT `+resultCols+` FROM test_result WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("result %s not found", id)
	}
	return tr, err
}

func (r *repoPG) GetByAssignment(ctx context.Context, assignmentID uuid.UUID) (*TestResult, error) {
	tr, err := scanResult(r.conn(ctx).QueryRow(ctx,
		`SELECT `+resultCols+` FROM test_result WHERE assignment_id = $1`, assignmentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("no result for assignment %s", assignmentID)
	}
	return tr, err
}

func (r *repoPG) Update(ctx context.Context, tr *TestResult) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_result SET reviewed_by=$2, reviewed_at=$3, review_notes=$4
		WHERE id = $1`,
		tr.ID, tr.ReviewedBy, tr.ReviewedAt, tr.ReviewNotes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("result %s not found", tr.ID)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
