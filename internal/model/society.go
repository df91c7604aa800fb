package model

import (
	"time"

	"github.com/google/uuid"
)

// Society owns the authoritative flat-number universe for its residents
// and flat owners. Flats keep their insertion order.
type Society struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Location   string    `db:"location" json:"location"`
	Flats      []string  `db:"flats" json:"flats"`
	AdminEmail string    `db:"admin_email" json:"adminEmail"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
