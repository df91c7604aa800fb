package model

import (
	"time"

	"github.com/google/uuid"
)

// EntryPermission is a time-boxed visitor pass. ExpirationDateTime is
// derived once at creation (DateTime + 7 days) and never re-derived on
// update; Expired only ever transitions false to true, via the sweep.
type EntryPermission struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	FlatNumber         string    `db:"flat_number" json:"flatNumber"`
	DateTime           string    `db:"date_time" json:"dateTime"`
	Description        string    `db:"description" json:"description"`
	AdditionalDateTime string    `db:"additional_date_time" json:"additionalDateTime"`
	ExpirationDateTime time.Time `db:"expiration_date_time" json:"expirationDateTime"`
	Expired            bool      `db:"expired" json:"expired"`
	AdminEmail         string    `db:"admin_email" json:"adminEmail"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
}
