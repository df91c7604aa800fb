package model

import (
	"time"

	"github.com/google/uuid"
)

type CouponStatus string

const (
	CouponStatusActive  CouponStatus = "active"
	CouponStatusUsed    CouponStatus = "used"
	CouponStatusExpired CouponStatus = "expired"
)

// Coupon is a single-use voucher tied to a flat and an event. Code is
// unique across all coupons. ExpiryDate is a calendar date string
// (YYYY-MM-DD) compared lexically against today. Used=true implies the
// status is never "active".
type Coupon struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	SocietyID  uuid.UUID    `db:"society_id" json:"society"`
	FlatNo     string       `db:"flat_no" json:"flatNo"`
	UserName   string       `db:"user_name" json:"userName"`
	Code       string       `db:"code" json:"code"`
	ExpiryDate string       `db:"expiry_date" json:"expiryDate"`
	EventID    uuid.UUID    `db:"event_id" json:"event"`
	AdminEmail string       `db:"admin_email" json:"adminEmail"`
	Status     CouponStatus `db:"status" json:"status"`
	Used       bool         `db:"used" json:"used"`
	QRCode     string       `db:"qr_code" json:"qrCode"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}

// CouponDetail hydrates the society name and event title the way list
// and scan responses expose them.
type CouponDetail struct {
	Coupon
	SocietyName string `db:"society_name" json:"societyName"`
	EventTitle  string `db:"event_title" json:"eventTitle"`
}
