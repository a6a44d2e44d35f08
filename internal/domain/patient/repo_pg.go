package patient

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

type resolverPG struct{ pool *pgxpool.Pool }

func NewResolverPG(pool *pgxpool.Pool) Resolver {
	return &resolverPG{pool: pool}
}

func (r *resolverPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *resolverPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, active, created_at FROM patient WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Active, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("patient %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *resolverPG) GetPurchasedTestIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	// Package tests and addon tests, deduplicated in one pass.
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT pt.test_id
		FROM patient_package pp
		JOIN package_test pt ON pt.package_id = pp.package_id
		WHERE pp.patient_id = $1
		UNION
		SELECT at.test_id FROM patient_addon_test at WHERE at.patient_id = $1`,
		patientID)
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
