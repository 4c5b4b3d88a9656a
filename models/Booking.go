package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type Booking struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userID" bson:"userId"`
	PropertyID primitive.ObjectID `json:"propertyID" bson:"propertyId"`
	HostID     primitive.ObjectID `json:"hostID" bson:"hostId"`
	CheckIn    time.Time          `json:"checkIn" bson:"checkIn"`
	CheckOut   time.Time          `json:"checkOut" bson:"checkOut"`
	Guests     int                `json:"guests" bson:"guests"`
	Nights     int                `json:"nights" bson:"nights"`

	Total          float64 `json:"total" bson:"total"`
	DiscountAmount float64 `json:"discountAmount" bson:"discountAmount"`

	Status        string `json:"status" bson:"status"`               // pending, confirmed, completed, cancelled
	PaymentStatus string `json:"paymentStatus" bson:"paymentStatus"` // unpaid, paid, refunded

	// External payment-gateway identifiers.
	PaymentIntentID string `json:"paymentIntentID,omitempty" bson:"paymentIntentId,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
