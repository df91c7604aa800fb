package model

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Date        string    `db:"date" json:"date"`
	Location    string    `db:"location" json:"location"`
	AdminEmail  string    `db:"admin_email" json:"adminEmail"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
