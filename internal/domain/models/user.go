package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a staff profile in the "users" collection.
//
// The unit/schoolKey/schoolType/tags fields describe where the person sits
// in the organization and are the inputs to audience token encoding. Their
// field names are part of the wire contract with the upstream store and
// must not be renamed.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UID        string             `bson:"uid"`
	Email      string             `bson:"email"`
	FullName   string             `bson:"full_name"`
	FullNameCI string             `bson:"full_name_ci,omitempty"`
	Role       string             `bson:"role"`
	Dept       string             `bson:"dept,omitempty"`

	Unit       string   `bson:"unit,omitempty"`
	SchoolKey  string   `bson:"schoolKey,omitempty"`
	SchoolType string   `bson:"schoolType,omitempty"`
	Tags       []string `bson:"tags,omitempty"`

	Status       string `bson:"status"`
	PasswordHash string `bson:"password_hash,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
