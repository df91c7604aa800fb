package model

import (
	"time"

	"github.com/google/uuid"
)

type BroadcastType string

const (
	BroadcastTypeAll      BroadcastType = "all"
	BroadcastTypeSociety  BroadcastType = "society"
	BroadcastTypeSpecific BroadcastType = "specific"
)

type BroadcastMessage struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	Message       string        `db:"message" json:"message"`
	BroadcastType BroadcastType `db:"broadcast_type" json:"broadcastType"`
	SocietyID     *uuid.UUID    `db:"society_id" json:"society,omitempty"`
	FlatNo        *string       `db:"flat_no" json:"flatNo,omitempty"`
	AdminEmail    string        `db:"admin_email" json:"adminEmail"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}

// BroadcastDetail carries the society name for list views.
type BroadcastDetail struct {
	BroadcastMessage
	SocietyName *string `db:"society_name" json:"societyName,omitempty"`
}
