package directory

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// School owns students and lends its initials to their generated IDs.
type School struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`           // School name, e.g. "Alpha Beta College"
	Initials  string             `bson:"initials" json:"initials"`   // Derived at creation, e.g. "ABC"
	Address   string             `bson:"address" json:"address"`     // Postal address for report headers
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// ParentContact is the guardian reachable by the notification channels.
type ParentContact struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

// Student is the identity record. GeneratedID is assigned once by the
// allocator and never changes afterwards.
type Student struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	SchoolID      primitive.ObjectID   `bson:"school_id" json:"school_id"`
	GeneratedID   string               `bson:"generated_id" json:"generated_id"`
	Name          string               `bson:"name" json:"name"`
	Email         string               `bson:"email" json:"email"`
	ClassIDs      []primitive.ObjectID `bson:"class_ids" json:"class_ids"`
	ParentContact ParentContact        `bson:"parent_contact" json:"parent_contact"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}

type CreateSchoolRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type UpdateSchoolRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type CreateStudentRequest struct {
	SchoolID      string        `json:"school_id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	ClassIDs      []string      `json:"class_ids"`
	ParentContact ParentContact `json:"parent_contact"`
}

type UpdateStudentRequest struct {
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	ParentContact ParentContact `json:"parent_contact"`
}
