package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"societyhub/internal/model"
	"societyhub/internal/repository"
)

type flatOwnerRepository struct {
	pool *pgxpool.Pool
}

func NewFlatOwnerRepository(pool *pgxpool.Pool) repository.FlatOwnerRepository {
	return &flatOwnerRepository{pool: pool}
}

var _ repository.FlatOwnerRepository = (*flatOwnerRepository)(nil)

const flatOwnerColumns = `
	id,
	society_name,
	flat_number,
	owner_name,
	profession,
	contact,
	email,
	admin_email,
	family_members,
	created_at
`

func (r *flatOwnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FlatOwner, error) {
	query := `SELECT ` + flatOwnerColumns + ` FROM flat_owners WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *flatOwnerRepository) FindBySocietyFlat(ctx context.Context, societyName, flatNumber string) (*model.FlatOwner, error) {
	query := `SELECT ` + flatOwnerColumns + ` FROM flat_owners WHERE society_name = $1 AND flat_number = $2`
	return r.findOne(ctx, query, societyName, flatNumber)
}

func (r *flatOwnerRepository) findOne(ctx context.Context, query string, args ...any) (*model.FlatOwner, error) {
	row := r.pool.QueryRow(ctx, query, args...)
	owner, err := scanFlatOwner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return owner, nil
}

func (r *flatOwnerRepository) Create(ctx context.Context, owner *model.FlatOwner) error {
	if owner.CreatedAt.IsZero() {
		owner.CreatedAt = time.Now().UTC()
	}

	members, err := encodeFamilyMembers(owner.FamilyMembers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO flat_owners (
			id,
			society_name,
			flat_number,
			owner_name,
			profession,
			contact,
			email,
			admin_email,
			family_members,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(
		ctx,
		query,
		owner.ID,
		owner.SocietyName,
		owner.FlatNumber,
		owner.OwnerName,
		owner.Profession,
		owner.Contact,
		owner.Email,
		owner.AdminEmail,
		members,
		owner.CreatedAt,
	)
	return err
}

func (r *flatOwnerRepository) Update(ctx context.Context, owner *model.FlatOwner) error {
	query := `
		UPDATE flat_owners
		   SET owner_name = $1,
		       profession = $2,
		       contact = $3,
		       email = $4
		 WHERE id = $5
	`

	tag, err := r.pool.Exec(ctx, query, owner.OwnerName, owner.Profession, owner.Contact, owner.Email, owner.ID)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *flatOwnerRepository) UpdateFamily(ctx context.Context, id uuid.UUID, members []model.FamilyMember) error {
	encoded, err := encodeFamilyMembers(members)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `UPDATE flat_owners SET family_members = $1 WHERE id = $2`, encoded, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *flatOwnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM flat_owners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *flatOwnerRepository) List(ctx context.Context, scope repository.TenantScope, societyNames []string) ([]*model.FlatOwner, error) {
	conditions, args := scopeCondition(scope, nil, nil)
	if societyNames != nil {
		args = append(args, societyNames)
		conditions = append(conditions, fmt.Sprintf("society_name = ANY($%d)", len(args)))
	}

	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(flatOwnerColumns)
	builder.WriteString(" FROM flat_owners")
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY society_name, flat_number")

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owners := make([]*model.FlatOwner, 0)
	for rows.Next() {
		owner, err := scanFlatOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

func (r *flatOwnerRepository) Count(ctx context.Context, scope repository.TenantScope, societyNames []string) (int64, error) {
	conditions, args := scopeCondition(scope, nil, nil)
	if societyNames != nil {
		args = append(args, societyNames)
		conditions = append(conditions, fmt.Sprintf("society_name = ANY($%d)", len(args)))
	}

	query := "SELECT COUNT(*) FROM flat_owners"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanFlatOwner(row pgx.Row) (*model.FlatOwner, error) {
	var (
		owner model.FlatOwner
		raw   []byte
	)
	err := row.Scan(
		&owner.ID,
		&owner.SocietyName,
		&owner.FlatNumber,
		&owner.OwnerName,
		&owner.Profession,
		&owner.Contact,
		&owner.Email,
		&owner.AdminEmail,
		&raw,
		&owner.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	owner.FamilyMembers, err = decodeFamilyMembers(raw)
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func encodeFamilyMembers(members []model.FamilyMember) ([]byte, error) {
	if members == nil {
		members = []model.FamilyMember{}
	}
	return json.Marshal(members)
}

func decodeFamilyMembers(raw []byte) ([]model.FamilyMember, error) {
	if len(raw) == 0 {
		return []model.FamilyMember{}, nil
	}

	var members []model.FamilyMember
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []model.FamilyMember{}
	}
	return members, nil
}
