package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"societyhub/internal/model"
	"societyhub/internal/repository"
)

type adminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) repository.AdminRepository {
	return &adminRepository{pool: pool}
}

var _ repository.AdminRepository = (*adminRepository)(nil)

const adminColumns = `
	id,
	name,
	email,
	password_hash,
	phone,
	role,
	image,
	created_at
`

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE lower(email) = lower($1)`

	row := r.pool.QueryRow(ctx, query, strings.TrimSpace(email))
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO admins (id, name, email, password_hash, phone, role, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		admin.ID,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.Phone,
		admin.Role,
		admin.Image,
		admin.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *adminRepository) Update(ctx context.Context, admin *model.Admin) error {
	query := `
		UPDATE admins
		   SET name = $1,
		       phone = $2,
		       image = $3,
		       password_hash = $4
		 WHERE id = $5
	`

	tag, err := r.pool.Exec(ctx, query, admin.Name, admin.Phone, admin.Image, admin.PasswordHash, admin.ID)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func scanAdmin(row pgx.Row) (*model.Admin, error) {
	var admin model.Admin
	err := row.Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Phone,
		&admin.Role,
		&admin.Image,
		&admin.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
