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

type couponRepository struct {
	pool *pgxpool.Pool
}

func NewCouponRepository(pool *pgxpool.Pool) repository.CouponRepository {
	return &couponRepository{pool: pool}
}

var _ repository.CouponRepository = (*couponRepository)(nil)

const couponColumns = `
	c.id,
	c.society_id,
	c.flat_no,
	c.user_name,
	c.code,
	c.expiry_date,
	c.event_id,
	c.admin_email,
	c.status,
	c.used,
	c.qr_code,
	c.created_at
`

const couponDetailColumns = couponColumns + `,
	COALESCE(s.name, '') AS society_name,
	COALESCE(e.title, '') AS event_title
`

const couponDetailJoins = `
	FROM coupons c
	LEFT JOIN societies s ON s.id = c.society_id
	LEFT JOIN events e ON e.id = c.event_id
`

func (r *couponRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons c WHERE c.id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	coupon, err := scanCoupon(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (r *couponRepository) FindByCode(ctx context.Context, code string) (*model.CouponDetail, error) {
	query := `SELECT ` + couponDetailColumns + couponDetailJoins + ` WHERE c.code = $1`

	row := r.pool.QueryRow(ctx, query, code)
	detail, err := scanCouponDetail(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return detail, nil
}

func (r *couponRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM coupons WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO coupons (
			id,
			society_id,
			flat_no,
			user_name,
			code,
			expiry_date,
			event_id,
			admin_email,
			status,
			used,
			qr_code,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		coupon.ID,
		coupon.SocietyID,
		coupon.FlatNo,
		coupon.UserName,
		coupon.Code,
		coupon.ExpiryDate,
		coupon.EventID,
		coupon.AdminEmail,
		coupon.Status,
		coupon.Used,
		coupon.QRCode,
		coupon.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *couponRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	query := `
		UPDATE coupons
		   SET society_id = $1,
		       flat_no = $2,
		       user_name = $3,
		       code = $4,
		       expiry_date = $5,
		       event_id = $6,
		       admin_email = $7,
		       status = $8,
		       used = $9
		 WHERE id = $10
	`

	tag, err := r.pool.Exec(
		ctx,
		query,
		coupon.SocietyID,
		coupon.FlatNo,
		coupon.UserName,
		coupon.Code,
		coupon.ExpiryDate,
		coupon.EventID,
		coupon.AdminEmail,
		coupon.Status,
		coupon.Used,
		coupon.ID,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *couponRepository) SetScanState(ctx context.Context, id uuid.UUID, used bool, status model.CouponStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE coupons SET used = $1, status = $2 WHERE id = $3`, used, status, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *couponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *couponRepository) List(ctx context.Context, scope repository.TenantScope) ([]*model.CouponDetail, error) {
	args := make([]any, 0, 1)
	query := `SELECT ` + couponDetailColumns + couponDetailJoins
	if !scope.Global() {
		args = append(args, scope.Email)
		query += ` WHERE c.admin_email = $1`
	}
	query += ` ORDER BY c.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := make([]*model.CouponDetail, 0)
	for rows.Next() {
		detail, err := scanCouponDetail(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, detail)
	}
	return coupons, rows.Err()
}

func (r *couponRepository) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	conditions, args := scopeCondition(scope, nil, nil)

	query := "SELECT COUNT(*) FROM coupons"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var coupon model.Coupon
	err := row.Scan(
		&coupon.ID,
		&coupon.SocietyID,
		&coupon.FlatNo,
		&coupon.UserName,
		&coupon.Code,
		&coupon.ExpiryDate,
		&coupon.EventID,
		&coupon.AdminEmail,
		&coupon.Status,
		&coupon.Used,
		&coupon.QRCode,
		&coupon.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func scanCouponDetail(row pgx.Row) (*model.CouponDetail, error) {
	var detail model.CouponDetail
	err := row.Scan(
		&detail.ID,
		&detail.SocietyID,
		&detail.FlatNo,
		&detail.UserName,
		&detail.Code,
		&detail.ExpiryDate,
		&detail.EventID,
		&detail.AdminEmail,
		&detail.Status,
		&detail.Used,
		&detail.QRCode,
		&detail.CreatedAt,
		&detail.SocietyName,
		&detail.EventTitle,
	)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}
