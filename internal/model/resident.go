package model

import (
	"time"

	"github.com/google/uuid"
)

// Resident is a person living in a society flat. Flat-owner records are
// kept loosely in sync with the resident sharing the same society and
// flat number.
type Resident struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	FlatNumber string    `db:"flat_number" json:"flatNumber"`
	SocietyID  uuid.UUID `db:"society_id" json:"society"`
	Email      string    `db:"email" json:"email"`
	Phone      string    `db:"phone" json:"phone"`
	Profession *string   `db:"profession" json:"profession,omitempty"`
	AdminEmail string    `db:"admin_email" json:"adminEmail"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
