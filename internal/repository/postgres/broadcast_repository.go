package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"societyhub/internal/model"
	"societyhub/internal/repository"
)

type broadcastRepository struct {
	pool *pgxpool.Pool
}

func NewBroadcastRepository(pool *pgxpool.Pool) repository.BroadcastRepository {
	return &broadcastRepository{pool: pool}
}

var _ repository.BroadcastRepository = (*broadcastRepository)(nil)

const broadcastColumns = `
	b.id,
	b.message,
	b.broadcast_type,
	b.society_id,
	b.flat_no,
	b.admin_email,
	b.created_at
`

func (r *broadcastRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BroadcastMessage, error) {
	query := `SELECT ` + broadcastColumns + ` FROM broadcast_messages b WHERE b.id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	msg, err := scanBroadcast(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return msg, nil
}

func (r *broadcastRepository) Create(ctx context.Context, msg *model.BroadcastMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO broadcast_messages (id, message, broadcast_type, society_id, flat_no, admin_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		msg.ID,
		msg.Message,
		msg.BroadcastType,
		msg.SocietyID,
		msg.FlatNo,
		msg.AdminEmail,
		msg.CreatedAt,
	)
	return err
}

func (r *broadcastRepository) Update(ctx context.Context, msg *model.BroadcastMessage) error {
	query := `
		UPDATE broadcast_messages
		   SET message = $1,
		       broadcast_type = $2,
		       society_id = $3,
		       flat_no = $4
		 WHERE id = $5
	`

	tag, err := r.pool.Exec(ctx, query, msg.Message, msg.BroadcastType, msg.SocietyID, msg.FlatNo, msg.ID)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *broadcastRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM broadcast_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *broadcastRepository) List(ctx context.Context, scope repository.TenantScope) ([]*model.BroadcastDetail, error) {
	args := make([]any, 0, 1)
	query := `
		SELECT ` + broadcastColumns + `, s.name AS society_name
		  FROM broadcast_messages b
		  LEFT JOIN societies s ON s.id = b.society_id
	`
	if !scope.Global() {
		args = append(args, scope.Email)
		query += ` WHERE b.admin_email = $1`
	}
	query += ` ORDER BY b.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*model.BroadcastDetail, 0)
	for rows.Next() {
		var detail model.BroadcastDetail
		err := rows.Scan(
			&detail.ID,
			&detail.Message,
			&detail.BroadcastType,
			&detail.SocietyID,
			&detail.FlatNo,
			&detail.AdminEmail,
			&detail.CreatedAt,
			&detail.SocietyName,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, &detail)
	}
	return messages, rows.Err()
}

func (r *broadcastRepository) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	args := make([]any, 0, 1)
	query := "SELECT COUNT(*) FROM broadcast_messages"
	if !scope.Global() {
		args = append(args, scope.Email)
		query += " WHERE admin_email = $1"
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanBroadcast(row pgx.Row) (*model.BroadcastMessage, error) {
	var msg model.BroadcastMessage
	err := row.Scan(
		&msg.ID,
		&msg.Message,
		&msg.BroadcastType,
		&msg.SocietyID,
		&msg.FlatNo,
		&msg.AdminEmail,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
