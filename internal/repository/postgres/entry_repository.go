package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"societyhub/internal/model"
	"societyhub/internal/repository"
)

type entryRepository struct {
	pool *pgxpool.Pool
}

func NewEntryRepository(pool *pgxpool.Pool) repository.EntryRepository {
	return &entryRepository{pool: pool}
}

var _ repository.EntryRepository = (*entryRepository)(nil)

const entryColumns = `
	id,
	name,
	flat_number,
	date_time,
	description,
	additional_date_time,
	expiration_date_time,
	expired,
	admin_email,
	created_at
`

func (r *entryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.EntryPermission, error) {
	query := `SELECT ` + entryColumns + ` FROM entry_permissions WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *entryRepository) Create(ctx context.Context, entry *model.EntryPermission) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO entry_permissions (
			id,
			name,
			flat_number,
			date_time,
			description,
			additional_date_time,
			expiration_date_time,
			expired,
			admin_email,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		entry.ID,
		entry.Name,
		entry.FlatNumber,
		entry.DateTime,
		entry.Description,
		entry.AdditionalDateTime,
		entry.ExpirationDateTime,
		entry.Expired,
		entry.AdminEmail,
		entry.CreatedAt,
	)
	return err
}

// Update rewrites the mutable fields. The expiration is not re-derived
// and expired never moves backwards.
func (r *entryRepository) Update(ctx context.Context, entry *model.EntryPermission) error {
	query := `
		UPDATE entry_permissions
		   SET name = $1,
		       flat_number = $2,
		       date_time = $3,
		       description = $4,
		       additional_date_time = $5,
		       expired = expired OR $6
		 WHERE id = $7
	`

	tag, err := r.pool.Exec(
		ctx,
		query,
		entry.Name,
		entry.FlatNumber,
		entry.DateTime,
		entry.Description,
		entry.AdditionalDateTime,
		entry.Expired,
		entry.ID,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *entryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM entry_permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *entryRepository) List(ctx context.Context, filter repository.EntryListFilter) ([]*model.EntryPermission, error) {
	args := make([]any, 0, 4)
	conditions := make([]string, 0, 4)

	if filter.Name != nil {
		args = append(args, "%"+*filter.Name+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.FlatNumber != nil {
		args = append(args, "%"+*filter.FlatNumber+"%")
		conditions = append(conditions, fmt.Sprintf("flat_number ILIKE $%d", len(args)))
	}
	if filter.Date != nil {
		args = append(args, "%"+*filter.Date+"%")
		conditions = append(conditions, fmt.Sprintf("date_time ILIKE $%d", len(args)))
	}
	if filter.Scope != nil {
		conditions, args = scopeCondition(*filter.Scope, conditions, args)
	}

	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(entryColumns)
	builder.WriteString(" FROM entry_permissions")
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

	entries := make([]*model.EntryPermission, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *entryRepository) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	conditions, args := scopeCondition(scope, nil, nil)

	query := "SELECT COUNT(*) FROM entry_permissions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *entryRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE entry_permissions SET expired = TRUE WHERE expiration_date_time < $1 AND NOT expired`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *entryRepository) ListExpiringBetween(ctx context.Context, from, until time.Time) ([]*model.EntryPermission, error) {
	query := `
		SELECT ` + entryColumns + `
		  FROM entry_permissions
		 WHERE expiration_date_time >= $1
		   AND expiration_date_time <= $2
		   AND NOT expired
		 ORDER BY expiration_date_time
	`

	rows, err := r.pool.Query(ctx, query, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*model.EntryPermission, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*model.EntryPermission, error) {
	var entry model.EntryPermission
	err := row.Scan(
		&entry.ID,
		&entry.Name,
		&entry.FlatNumber,
		&entry.DateTime,
		&entry.Description,
		&entry.AdditionalDateTime,
		&entry.ExpirationDateTime,
		&entry.Expired,
		&entry.AdminEmail,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
