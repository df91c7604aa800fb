package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"societyhub/internal/model"
	"societyhub/internal/repository"
)

type residentRepository struct {
	pool *pgxpool.Pool
}

func NewResidentRepository(pool *pgxpool.Pool) repository.ResidentRepository {
	return &residentRepository{pool: pool}
}

var _ repository.ResidentRepository = (*residentRepository)(nil)

const residentColumns = `
	id,
	name,
	flat_number,
	society_id,
	email,
	phone,
	profession,
	admin_email,
	created_at
`

func (r *residentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	resident, err := scanResident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return resident, nil
}

func (r *residentRepository) FindBySocietyFlat(ctx context.Context, societyID uuid.UUID, flatNumber string) (*model.Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE society_id = $1 AND flat_number = $2`

	row := r.pool.QueryRow(ctx, query, societyID, flatNumber)
	resident, err := scanResident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return resident, nil
}

func (r *residentRepository) Create(ctx context.Context, resident *model.Resident) error {
	if resident.CreatedAt.IsZero() {
		resident.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO residents (id, name, flat_number, society_id, email, phone, profession, admin_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		resident.ID,
		resident.Name,
		resident.FlatNumber,
		resident.SocietyID,
		resident.Email,
		resident.Phone,
		resident.Profession,
		resident.AdminEmail,
		resident.CreatedAt,
	)
	return err
}

func (r *residentRepository) Update(ctx context.Context, resident *model.Resident) error {
	query := `
		UPDATE residents
		   SET name = $1,
		       flat_number = $2,
		       society_id = $3,
		       email = $4,
		       phone = $5,
		       profession = $6
		 WHERE id = $7
	`

	tag, err := r.pool.Exec(
		ctx,
		query,
		resident.Name,
		resident.FlatNumber,
		resident.SocietyID,
		resident.Email,
		resident.Phone,
		resident.Profession,
		resident.ID,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *residentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM residents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *residentRepository) DeleteBySocietyFlat(ctx context.Context, societyID uuid.UUID, flatNumber string) error {
	_, err := r.pool.Exec(
		ctx,
		`DELETE FROM residents WHERE society_id = $1 AND flat_number = $2`,
		societyID,
		flatNumber,
	)
	return err
}

func (r *residentRepository) List(ctx context.Context, scope repository.TenantScope) ([]*model.Resident, error) {
	conditions, args := scopeCondition(scope, nil, nil)

	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(residentColumns)
	builder.WriteString(" FROM residents")
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	residents := make([]*model.Resident, 0)
	for rows.Next() {
		resident, err := scanResident(rows)
		if err != nil {
			return nil, err
		}
		residents = append(residents, resident)
	}
	return residents, rows.Err()
}

func (r *residentRepository) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	conditions, args := scopeCondition(scope, nil, nil)

	query := "SELECT COUNT(*) FROM residents"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanResident(row pgx.Row) (*model.Resident, error) {
	var resident model.Resident
	err := row.Scan(
		&resident.ID,
		&resident.Name,
		&resident.FlatNumber,
		&resident.SocietyID,
		&resident.Email,
		&resident.Phone,
		&resident.Profession,
		&resident.AdminEmail,
		&resident.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &resident, nil
}
