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

type societyRepository struct {
	pool *pgxpool.Pool
}

func NewSocietyRepository(pool *pgxpool.Pool) repository.SocietyRepository {
	return &societyRepository{pool: pool}
}

var _ repository.SocietyRepository = (*societyRepository)(nil)

const societyColumns = `
	id,
	name,
	location,
	flats,
	admin_email,
	created_at
`

func (r *societyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Society, error) {
	query := `SELECT ` + societyColumns + ` FROM societies WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *societyRepository) FindByName(ctx context.Context, name string) (*model.Society, error) {
	query := `SELECT ` + societyColumns + ` FROM societies WHERE name = $1`
	return r.findOne(ctx, query, strings.TrimSpace(name))
}

func (r *societyRepository) findOne(ctx context.Context, query string, arg any) (*model.Society, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	society, err := scanSociety(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return society, nil
}

func (r *societyRepository) Create(ctx context.Context, society *model.Society) error {
	if society.CreatedAt.IsZero() {
		society.CreatedAt = time.Now().UTC()
	}
	if society.Flats == nil {
		society.Flats = []string{}
	}

	query := `
		INSERT INTO societies (id, name, location, flats, admin_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		society.ID,
		society.Name,
		society.Location,
		society.Flats,
		society.AdminEmail,
		society.CreatedAt,
	)
	return err
}

func (r *societyRepository) Update(ctx context.Context, society *model.Society) error {
	query := `
		UPDATE societies
		   SET name = $1,
		       location = $2,
		       flats = $3
		 WHERE id = $4
	`

	tag, err := r.pool.Exec(ctx, query, society.Name, society.Location, society.Flats, society.ID)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *societyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM societies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *societyRepository) List(ctx context.Context, scope repository.TenantScope) ([]*model.Society, error) {
	conditions, args := scopeCondition(scope, nil, nil)

	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(societyColumns)
	builder.WriteString(" FROM societies")
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

	societies := make([]*model.Society, 0)
	for rows.Next() {
		society, err := scanSociety(rows)
		if err != nil {
			return nil, err
		}
		societies = append(societies, society)
	}
	return societies, rows.Err()
}

func (r *societyRepository) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	conditions, args := scopeCondition(scope, nil, nil)

	query := "SELECT COUNT(*) FROM societies"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanSociety(row pgx.Row) (*model.Society, error) {
	var society model.Society
	err := row.Scan(
		&society.ID,
		&society.Name,
		&society.Location,
		&society.Flats,
		&society.AdminEmail,
		&society.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &society, nil
}
