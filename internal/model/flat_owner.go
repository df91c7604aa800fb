package model

import (
	"time"

	"github.com/google/uuid"
)

type FamilyMember struct {
	Name       string  `json:"name"`
	Relation   string  `json:"relation"`
	Age        int     `json:"age"`
	Profession *string `json:"profession,omitempty"`
	Contact    *string `json:"contact,omitempty"`
}

type FlatOwner struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	SocietyName   string         `db:"society_name" json:"societyName"`
	FlatNumber    string         `db:"flat_number" json:"flatNumber"`
	OwnerName     string         `db:"owner_name" json:"ownerName"`
	Profession    string         `db:"profession" json:"profession"`
	Contact       string         `db:"contact" json:"contact"`
	Email         string         `db:"email" json:"email"`
	AdminEmail    string         `db:"admin_email" json:"adminEmail"`
	FamilyMembers []FamilyMember `db:"family_members" json:"familyMembers"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}
