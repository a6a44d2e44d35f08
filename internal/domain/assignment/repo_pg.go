package assignment

import (
	"context"
	"errors"
	"strconv"

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

const assignmentCols = `id, patient_id, test_id, admin_id, status,
	assigned_at, started_at, completed_at, assigned_by, created_at, updated_at`

func scanAssignment(row pgx.Row) (*Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.PatientID, &a.TestID, &a.AdminID, &a.Status,
		&a.AssignedAt, &a.StartedAt, &a.CompletedAt, &a.AssignedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Assignment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO assignment (id, patient_id, test_id, admin_id, status,
			assigned_at, started_at, completed_at, assigned_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.PatientID, a.TestID, a.AdminID, a.Status,
		a.AssignedAt, a.StartedAt, a.CompletedAt, a.AssignedBy)
	return mapInsertError(err, a.PatientID, a.TestID)
}

// mapInsertError turns a unique-constraint violation on the
// (patient_id, test_id) index into a Conflict; a racing duplicate
// insert is reported, never retried.
func mapInsertError(err error, patientID, testID uuid.UUID) error {
	if isUniqueViolation(err) {
		return apperror.Conflict("assignment already exists for patient %s and test %s", patientID, testID)
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	a, err := scanAssignment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+assignmentCols+` FROM assignment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("assignment %s not found", id)
	}
	return a, err
}

func (r *repoPG) GetByPatientAndTest(ctx context.Context, patientID, testID uuid.UUID) (*Assignment, error) {
	a, err := scanAssignment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+assignmentCols+` FROM assignment WHERE patient_id = $1 AND test_id = $2`,
		patientID, testID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("assignment for patient %s and test %s not found", patientID, testID)
	}
	return a, err
}

func (r *repoPG) Update(ctx context.Context, a *Assignment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE assignment SET admin_id=$2, status=$3, assigned_at=$4,
			started_at=$5, completed_at=$6, assigned_by=$7, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.AdminID, a.Status, a.AssignedAt, a.StartedAt, a.CompletedAt, a.AssignedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("assignment %s not found", a.ID)
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Assignment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+assignmentCols+` FROM assignment WHERE patient_id = $1 ORDER BY created_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByTechnician(ctx context.Context, adminID uuid.UUID, status string, limit, offset int) ([]*Assignment, int, error) {
	where := `WHERE admin_id = $1`
	args := []interface{}{adminID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM assignment `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	n := len(args)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+assignmentCols+` FROM assignment `+where+
			` ORDER BY created_at DESC LIMIT $`+strconv.Itoa(n-1)+` OFFSET $`+strconv.Itoa(n), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
