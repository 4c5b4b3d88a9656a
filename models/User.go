package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleGuest = "guest"
	RoleHost  = "host"
	RoleAdmin = "admin"
)

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName string             `json:"firstName" bson:"firstName"`
	LastName  string             `json:"lastName" bson:"lastName"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Role      string             `json:"role" bson:"role"`

	// Email verification + password reset. Tokens are random hex strings
	// stored on the document, never returned in API responses.
	Verified         bool       `json:"verified" bson:"verified"`
	VerifyToken      string     `json:"-" bson:"verifyToken,omitempty"`
	ResetToken       string     `json:"-" bson:"resetToken,omitempty"`
	ResetTokenExpiry *time.Time `json:"-" bson:"resetTokenExpiry,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
