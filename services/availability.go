package services

import (
	"context"
	"time"

	"github.com/themrgeek/AbodeX/models"
	"github.com/themrgeek/AbodeX/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HasOverlappingBooking reports whether another pending or confirmed booking
// on the property overlaps [checkIn, checkOut). excludeID skips the booking
// being confirmed so it does not collide with itself.
func HasOverlappingBooking(ctx context.Context, propertyID primitive.ObjectID, checkIn, checkOut time.Time, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"propertyId": propertyID,
		"status":     bson.M{"$in": []string{models.BookingPending, models.BookingConfirmed}},
		"checkIn":    bson.M{"$lt": checkOut},
		"checkOut":   bson.M{"$gt": checkIn},
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	n, err := storage.Bookings.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendBookedWindow marks the booking's stay unavailable on its property.
// The write is conditional on the window not existing yet, so replays after
// a crashed confirmation are harmless.
func AppendBookedWindow(ctx context.Context, booking models.Booking) error {
	window := models.AvailabilityWindow{
		Start:     booking.CheckIn,
		End:       booking.CheckOut,
		Available: false,
		BookingID: booking.ID,
	}

	_, err := storage.Properties.UpdateOne(ctx,
		bson.M{
			"_id":                    booking.PropertyID,
			"availability.bookingId": bson.M{"$ne": booking.ID},
		},
		bson.M{
			"$push": bson.M{"availability": window},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}

// ReconcileBookedWindows re-derives missing unavailable windows from
// confirmed and completed bookings. Booking status is the source of truth;
// the availability list is a derived, append-only log, so a crash between
// the confirmation's two writes heals on the next pass.
func ReconcileBookedWindows(ctx context.Context) error {
	cur, err := storage.Bookings.Find(ctx, bson.M{
		"status": bson.M{"$in": []string{models.BookingConfirmed, models.BookingCompleted}},
	})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var booking models.Booking
		if err := cur.Decode(&booking); err != nil {
			return err
		}
		if err := AppendBookedWindow(ctx, booking); err != nil {
			return err
		}
	}
	return cur.Err()
}
