package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a GeoJSON point, longitude first. The properties collection
// carries a 2dsphere index on address.location.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"` // [lng, lat]
}

func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

type Address struct {
	Line1    string   `json:"line1" bson:"line1"`
	City     string   `json:"city" bson:"city"`
	State    string   `json:"state,omitempty" bson:"state,omitempty"`
	Country  string   `json:"country" bson:"country"`
	Zip      string   `json:"zip,omitempty" bson:"zip,omitempty"`
	Location GeoPoint `json:"location" bson:"location"`
}

// AvailabilityWindow is a dated interval marked available or not. Confirmed
// bookings append unavailable windows; overlapping windows are never merged.
type AvailabilityWindow struct {
	Start     time.Time          `json:"start" bson:"start"`
	End       time.Time          `json:"end" bson:"end"`
	Available bool               `json:"available" bson:"available"`
	BookingID primitive.ObjectID `json:"bookingID,omitempty" bson:"bookingId,omitempty"`
}

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Discount is a time-bounded, optionally nights-gated price reduction.
// It applies only when [ValidFrom, ValidUntil] fully contains the stay and
// the stay meets MinNights when set.
type Discount struct {
	Name       string    `json:"name" bson:"name"`
	Type       string    `json:"type" bson:"type"` // percentage or fixed
	Value      float64   `json:"value" bson:"value"`
	MinNights  int       `json:"minNights,omitempty" bson:"minNights,omitempty"`
	ValidFrom  time.Time `json:"validFrom" bson:"validFrom"`
	ValidUntil time.Time `json:"validUntil" bson:"validUntil"`
}

type Property struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	HostID       primitive.ObjectID   `json:"hostID" bson:"hostId"`
	Title        string               `json:"title" bson:"title"`
	Description  string               `json:"description" bson:"description"`
	PropertyType string               `json:"propertyType" bson:"propertyType"` // entire_place, private_room, shared_room
	Address      Address              `json:"address" bson:"address"`
	NightlyPrice float64              `json:"nightlyPrice" bson:"nightlyPrice"`
	MaxGuests    int                  `json:"maxGuests" bson:"maxGuests"`
	Amenities    []string             `json:"amenities" bson:"amenities"`
	Images       []string             `json:"images" bson:"images"`
	Availability []AvailabilityWindow `json:"availability" bson:"availability"`
	Discounts    []Discount           `json:"discounts" bson:"discounts"`
	Active       bool                 `json:"active" bson:"active"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}
