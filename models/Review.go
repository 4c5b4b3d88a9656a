package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review links a guest, a property and exactly one completed booking.
// The reviews collection enforces a unique index on bookingId.
type Review struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookingID  primitive.ObjectID `json:"bookingID" bson:"bookingId"`
	PropertyID primitive.ObjectID `json:"propertyID" bson:"propertyId"`
	UserID     primitive.ObjectID `json:"userID" bson:"userId"`
	Rating     int                `json:"rating" bson:"rating"` // 1..5
	Body       string             `json:"body,omitempty" bson:"body,omitempty"`
	HostReply  string             `json:"hostReply,omitempty" bson:"hostReply,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}
