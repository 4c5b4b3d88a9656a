package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ranking tags assigned by the periodic earnings-percentile job.
const (
	TagGold   = "gold"
	TagSilver = "silver"
	TagBronze = "bronze"
)

// Host extends a User with role "host", one document per host user.
type Host struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"userID" bson:"userId"`
	GovernmentIDURL string            `json:"governmentIDURL,omitempty" bson:"governmentIdUrl,omitempty"`
	Verified       bool               `json:"verified" bson:"verified"`
	Earnings       float64            `json:"earnings" bson:"earnings"`
	TotalBookings  int64              `json:"totalBookings" bson:"totalBookings"`
	Tag            string             `json:"tag,omitempty" bson:"tag,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}
