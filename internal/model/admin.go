package model

import (
	"time"

	"github.com/google/uuid"
)

type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "admin"
	AdminRoleSuperadmin AdminRole = "superadmin"
)

type Admin struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        string    `db:"phone" json:"phone"`
	Role         AdminRole `db:"role" json:"role"`
	Image        *string   `db:"image" json:"image,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
