package routes

import (
	"fmt"
	"time"

	"github.com/themrgeek/AbodeX/models"
	"github.com/themrgeek/AbodeX/storage"
	"github.com/themrgeek/AbodeX/utils"

	"github.com/kataras/iris/v12"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// currentHost resolves the caller's Host document. Property and booking
// ownership hangs off the host ID, not the user ID.
func currentHost(ctx iris.Context) (*models.Host, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	var host models.Host
	if err := storage.Hosts.FindOne(ctx.Request().Context(), bson.M{"userId": userID}).Decode(&host); err != nil {
		return nil, err
	}
	return &host, nil
}

func GetHostDashboard(ctx iris.Context) {
	host, err := currentHost(ctx)
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	propertyCount, err := storage.Properties.CountDocuments(ctx.Request().Context(), bson.M{"hostId": host.ID})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	pendingCount, err := storage.Bookings.CountDocuments(ctx.Request().Context(),
		bson.M{"hostId": host.ID, "status": models.BookingPending})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	upcomingCount, err := storage.Bookings.CountDocuments(ctx.Request().Context(), bson.M{
		"hostId":  host.ID,
		"status":  models.BookingConfirmed,
		"checkIn": bson.M{"$gte": time.Now()},
	})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	recentCur, err := storage.Bookings.Find(ctx.Request().Context(), bson.M{"hostId": host.ID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(5))
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}
	recent := []models.Booking{}
	if err := recentCur.All(ctx.Request().Context(), &recent); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{
		"host":             host,
		"propertyCount":    propertyCount,
		"pendingBookings":  pendingCount,
		"upcomingBookings": upcomingCount,
		"recentBookings":   recent,
	})
}

type AddressInput struct {
	Line1   string  `json:"line1" validate:"required,max=256"`
	City    string  `json:"city" validate:"required,max=128"`
	State   string  `json:"state" validate:"max=128"`
	Country string  `json:"country" validate:"required,max=128"`
	Zip     string  `json:"zip" validate:"max=16"`
	Lat     float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng     float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

type CreatePropertyInput struct {
	Title        string       `json:"title" validate:"required,max=256"`
	Description  string       `json:"description" validate:"required,max=4000"`
	PropertyType string       `json:"propertyType" validate:"required,oneof=entire_place private_room shared_room"`
	Address      AddressInput `json:"address" validate:"required"`
	NightlyPrice float64      `json:"nightlyPrice" validate:"required,gt=0"`
	MaxGuests    int          `json:"maxGuests" validate:"required,gte=1,lte=16"`
	Amenities    []string     `json:"amenities" validate:"dive,max=64"`
	Images       []string     `json:"images" validate:"max=10"`
}

func CreateProperty(ctx iris.Context) {
	host, err := currentHost(ctx)
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !host.Verified {
		utils.CreateError(iris.StatusForbidden, "Host Error", "Host account is not verified yet.", ctx)
		return
	}

	var input CreatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	imageURLs, uploadErr := uploadPropertyImages(ctx, input.Images)
	if uploadErr != nil {
		utils.InternalError(ctx, uploadErr)
		return
	}

	now := time.Now()
	property := models.Property{
		HostID:       host.ID,
		Title:        input.Title,
		Description:  input.Description,
		PropertyType: input.PropertyType,
		Address: models.Address{
			Line1:    input.Address.Line1,
			City:     input.Address.City,
			State:    input.Address.State,
			Country:  input.Address.Country,
			Zip:      input.Address.Zip,
			Location: models.NewGeoPoint(input.Address.Lat, input.Address.Lng),
		},
		NightlyPrice: input.NightlyPrice,
		MaxGuests:    input.MaxGuests,
		Amenities:    input.Amenities,
		Images:       imageURLs,
		Availability: []models.AvailabilityWindow{},
		Discounts:    []models.Discount{},
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, insertErr := storage.Properties.InsertOne(ctx.Request().Context(), property)
	if insertErr != nil {
		utils.InternalError(ctx, insertErr)
		return
	}
	property.ID = res.InsertedID.(primitive.ObjectID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(property)
}

func uploadPropertyImages(ctx iris.Context, images []string) ([]string, error) {
	urls := []string{}
	for _, img := range images {
		url, err := storage.UploadBase64Image(ctx.Request().Context(), img,
			"properties/"+utils.GenerateShortToken(12))
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func GetHostProperties(ctx iris.Context) {
	host, err := currentHost(ctx)
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	cur, err := storage.Properties.Find(ctx.Request().Context(), bson.M{"hostId": host.ID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	properties := []models.Property{}
	if err := cur.All(ctx.Request().Context(), &properties); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(properties)
}

// hostProperty loads a property and enforces that the caller's host owns it.
func hostProperty(ctx iris.Context) (*models.Host, *models.Property, bool) {
	host, err := currentHost(ctx)
	if err != nil {
		utils.CreateNotFound(ctx)
		return nil, nil, false
	}

	propertyID, idErr := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if idErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid property ID.", ctx)
		return nil, nil, false
	}

	var property models.Property
	if err := storage.Properties.FindOne(ctx.Request().Context(),
		bson.M{"_id": propertyID, "hostId": host.ID}).Decode(&property); err != nil {
		utils.CreateNotFound(ctx)
		return nil, nil, false
	}

	return host, &property, true
}

type UpdatePropertyInput struct {
	Title        string   `json:"title" validate:"omitempty,max=256"`
	Description  string   `json:"description" validate:"omitempty,max=4000"`
	NightlyPrice float64  `json:"nightlyPrice" validate:"omitempty,gt=0"`
	MaxGuests    int      `json:"maxGuests" validate:"omitempty,gte=1,lte=16"`
	Amenities    []string `json:"amenities" validate:"omitempty,dive,max=64"`
	Images       []string `json:"images" validate:"omitempty,max=10"`
	Active       *bool    `json:"active"`
}

func UpdateProperty(ctx iris.Context) {
	_, property, ok := hostProperty(ctx)
	if !ok {
		return
	}

	var input UpdatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Title != "" {
		set["title"] = input.Title
	}
	if input.Description != "" {
		set["description"] = input.Description
	}
	if input.NightlyPrice > 0 {
		set["nightlyPrice"] = input.NightlyPrice
	}
	if input.MaxGuests > 0 {
		set["maxGuests"] = input.MaxGuests
	}
	if input.Amenities != nil {
		set["amenities"] = input.Amenities
	}
	if input.Active != nil {
		set["active"] = *input.Active
	}
	if len(input.Images) > 0 {
		imageURLs, uploadErr := uploadPropertyImages(ctx, input.Images)
		if uploadErr != nil {
			utils.InternalError(ctx, uploadErr)
			return
		}
		set["images"] = imageURLs
	}

	if _, err := storage.Properties.UpdateByID(ctx.Request().Context(), property.ID, bson.M{"$set": set}); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"message": "Property updated."})
}

// DeleteProperty removes a listing outright. Listings with open bookings
// cannot be deleted, only deactivated.
func DeleteProperty(ctx iris.Context) {
	_, property, ok := hostProperty(ctx)
	if !ok {
		return
	}

	openBookings, err := storage.Bookings.CountDocuments(ctx.Request().Context(), bson.M{
		"propertyId": property.ID,
		"status":     bson.M{"$in": []string{models.BookingPending, models.BookingConfirmed}},
	})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}
	if openBookings > 0 {
		utils.CreateError(iris.StatusConflict, "Property Error",
			"Property has open bookings; deactivate it instead.", ctx)
		return
	}

	if _, err := storage.Properties.DeleteOne(ctx.Request().Context(), bson.M{"_id": property.ID}); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"message": "Property deleted."})
}

type AvailabilityWindowInput struct {
	Start     time.Time `json:"start" validate:"required"`
	End       time.Time `json:"end" validate:"required"`
	Available bool      `json:"available"`
}

type SetAvailabilityInput struct {
	Windows []AvailabilityWindowInput `json:"windows" validate:"required,dive"`
}

// SetAvailability replaces the host-declared windows. Windows that were
// appended by confirmed bookings carry a booking ID and survive the rewrite;
// hosts cannot free dates a guest has paid for.
func SetAvailability(ctx iris.Context) {
	_, property, ok := hostProperty(ctx)
	if !ok {
		return
	}

	var input SetAvailabilityInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	windows := []models.AvailabilityWindow{}
	for _, w := range input.Windows {
		if !w.End.After(w.Start) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Window end must be after start.", ctx)
			return
		}
		windows = append(windows, models.AvailabilityWindow{
			Start:     w.Start,
			End:       w.End,
			Available: w.Available,
		})
	}
	for _, w := range property.Availability {
		if !w.BookingID.IsZero() {
			windows = append(windows, w)
		}
	}

	if _, err := storage.Properties.UpdateByID(ctx.Request().Context(), property.ID, bson.M{
		"$set": bson.M{"availability": windows, "updatedAt": time.Now()},
	}); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"message": "Availability updated."})
}

type AddDiscountInput struct {
	Name       string    `json:"name" validate:"required,max=128"`
	Type       string    `json:"type" validate:"required,oneof=percentage fixed"`
	Value      float64   `json:"value" validate:"required,gt=0"`
	MinNights  int       `json:"minNights" validate:"omitempty,gte=1"`
	ValidFrom  time.Time `json:"validFrom" validate:"required"`
	ValidUntil time.Time `json:"validUntil" validate:"required"`
}

func AddDiscount(ctx iris.Context) {
	_, property, ok := hostProperty(ctx)
	if !ok {
		return
	}

	var input AddDiscountInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !input.ValidUntil.After(input.ValidFrom) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "validUntil must be after validFrom.", ctx)
		return
	}
	if input.Type == models.DiscountPercentage && input.Value > 100 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Percentage discounts cannot exceed 100.", ctx)
		return
	}

	discount := models.Discount{
		Name:       input.Name,
		Type:       input.Type,
		Value:      input.Value,
		MinNights:  input.MinNights,
		ValidFrom:  input.ValidFrom,
		ValidUntil: input.ValidUntil,
	}

	if _, err := storage.Properties.UpdateByID(ctx.Request().Context(), property.ID, bson.M{
		"$push": bson.M{"discounts": discount},
		"$set":  bson.M{"updatedAt": time.Now()},
	}); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(discount)
}

func GetHostBookings(ctx iris.Context) {
	host, err := currentHost(ctx)
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	filter := bson.M{"hostId": host.ID}
	if status := ctx.URLParam("status"); status != "" {
		filter["status"] = status
	}

	cur, err := storage.Bookings.Find(ctx.Request().Context(), filter,
		options.Find().SetSort(bson.D{{Key: "checkIn", Value: -1}}))
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	bookings := []models.Booking{}
	if err := cur.All(ctx.Request().Context(), &bookings); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(bookings)
}

type UpdateBookingStatusInput struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}

// UpdateBookingStatus lets a host complete or cancel a confirmed booking.
// Completion credits the host's earnings, which feed the ranking job.
func UpdateBookingStatus(ctx iris.Context) {
	host, err := currentHost(ctx)
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	bookingID, idErr := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if idErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid booking ID.", ctx)
		return
	}

	var input UpdateBookingStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	if err := storage.Bookings.FindOne(ctx.Request().Context(),
		bson.M{"_id": bookingID, "hostId": host.ID}).Decode(&booking); err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	// Confirmed bookings may complete or cancel; pending ones may only be
	// declined.
	allowed := booking.Status == models.BookingConfirmed ||
		(booking.Status == models.BookingPending && input.Status == models.BookingCancelled)
	if !allowed {
		utils.CreateError(iris.StatusBadRequest, "Booking Error",
			fmt.Sprintf("Cannot move a %s booking to %s.", booking.Status, input.Status), ctx)
		return
	}

	set := bson.M{"status": input.Status, "updatedAt": time.Now()}
	if input.Status == models.BookingCancelled && booking.PaymentStatus == models.PaymentPaid {
		set["paymentStatus"] = models.PaymentRefunded
	}

	if _, err := storage.Bookings.UpdateByID(ctx.Request().Context(), booking.ID, bson.M{"$set": set}); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	if input.Status == models.BookingCompleted {
		if _, err := storage.Hosts.UpdateByID(ctx.Request().Context(), host.ID, bson.M{
			"$inc": bson.M{"earnings": booking.Total, "totalBookings": 1},
			"$set": bson.M{"updatedAt": time.Now()},
		}); err != nil {
			utils.InternalError(ctx, err)
			return
		}
	}

	ctx.JSON(iris.Map{"message": "Booking " + input.Status + "."})
}

type ReplyToReviewInput struct {
	Reply string `json:"reply" validate:"required,max=1000"`
}

func ReplyToReview(ctx iris.Context) {
	host, err := currentHost(ctx)
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	reviewID, idErr := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if idErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid review ID.", ctx)
		return
	}

	var input ReplyToReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var review models.Review
	if err := storage.Reviews.FindOne(ctx.Request().Context(), bson.M{"_id": reviewID}).Decode(&review); err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	// The reviewed property must belong to the replying host.
	count, countErr := storage.Properties.CountDocuments(ctx.Request().Context(),
		bson.M{"_id": review.PropertyID, "hostId": host.ID})
	if countErr != nil {
		utils.InternalError(ctx, countErr)
		return
	}
	if count == 0 {
		utils.CreateError(iris.StatusForbidden, "Review Error", "You can only reply to reviews of your own properties.", ctx)
		return
	}

	if _, err := storage.Reviews.UpdateByID(ctx.Request().Context(), review.ID, bson.M{
		"$set": bson.M{"hostReply": input.Reply, "updatedAt": time.Now()},
	}); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"message": "Reply posted."})
}
