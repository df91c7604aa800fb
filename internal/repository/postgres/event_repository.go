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

type eventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{pool: pool}
}

var _ repository.EventRepository = (*eventRepository)(nil)

const eventColumns = `
	id,
	title,
	description,
	date,
	location,
	admin_email,
	created_at
`

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO events (id, title, description, date, location, admin_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		event.ID,
		event.Title,
		event.Description,
		event.Date,
		event.Location,
		event.AdminEmail,
		event.CreatedAt,
	)
	return err
}

func (r *eventRepository) Update(ctx context.Context, event *model.Event) error {
	query := `
		UPDATE events
		   SET title = $1,
		       description = $2,
		       date = $3,
		       location = $4
		 WHERE id = $5
	`

	tag, err := r.pool.Exec(ctx, query, event.Title, event.Description, event.Date, event.Location, event.ID)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *eventRepository) List(ctx context.Context, scope repository.TenantScope) ([]*model.Event, error) {
	conditions, args := scopeCondition(scope, nil, nil)

	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(eventColumns)
	builder.WriteString(" FROM events")
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

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *eventRepository) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	conditions, args := scopeCondition(scope, nil, nil)

	query := "SELECT COUNT(*) FROM events"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.AdminEmail,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
