package technician

import (
	"context"
	"errors"

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

type directoryPG struct{ pool *pgxpool.Pool }

func NewDirectoryPG(pool *pgxpool.Pool) Directory {
	return &directoryPG{pool: pool}
}

func (r *directoryPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const technicianCols = `id, name, email, admin_role, active, created_at, updated_at`

func scanTechnician(row pgx.Row) (*Technician, error) {
	var t Technician
	err := row.Scan(&t.ID, &t.Name, &t.Email, &t.AdminRole, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *directoryPG) GetByID(ctx context.Context, id uuid.UUID) (*Technician, error) {
	t, err := scanTechnician(r.conn(ctx).QueryRow(ctx,
		`SELECT `+technicianCols+` FROM technician WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("technician %s not found", id)
	}
	return t, err
}

func (r *directoryPG) FindActive(ctx context.Context, adminRole string, ids []uuid.UUID) ([]*Technician, error) {
	query := `SELECT ` + technicianCols + ` FROM technician WHERE active AND admin_role = $1`
	args := []interface{}{adminRole}
	if ids != nil {
		query += ` AND id = ANY($2)`
		args = append(args, ids)
	}
	query += ` ORDER BY created_at`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Technician
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *directoryPG) ActiveAssignmentCount(ctx context.Context, technicianID uuid.UUID, status string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM assignment WHERE admin_id = $1 AND status = $2`,
		technicianID, status).Scan(&count)
	return count, err
}

type projectRepoPG struct{ pool *pgxpool.Pool }

func NewProjectRepoPG(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepoPG{pool: pool}
}

func (r *projectRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *projectRepoPG) MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT technician_id FROM project_member WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
