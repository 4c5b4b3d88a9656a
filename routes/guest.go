package routes

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/themrgeek/AbodeX/models"
	"github.com/themrgeek/AbodeX/services"
	"github.com/themrgeek/AbodeX/storage"
	"github.com/themrgeek/AbodeX/utils"

	"github.com/kataras/iris/v12"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var paymentClient = services.NewPaymentClient()

// searchRadiusKm is the fixed geo-proximity radius applied when coordinates
// are provided.
const searchRadiusKm = 10.0

// earthRadiusKm converts the radius to radians for $centerSphere.
const earthRadiusKm = 6378.1

// SearchParams holds the optional property search filters. Absent fields
// impose no constraint; all present clauses are ANDed.
type SearchParams struct {
	City      string
	Lat, Lng  *float64
	MinPrice  *float64
	MaxPrice  *float64
	Type      string
	Amenities []string
	CheckIn   *time.Time
	CheckOut  *time.Time
	Guests    *int
}

// BuildSearchFilter turns the parameters into a conjunctive document filter.
func BuildSearchFilter(p SearchParams) bson.M {
	filter := bson.M{"active": true}

	if p.City != "" {
		filter["address.city"] = primitive.Regex{Pattern: regexp.QuoteMeta(p.City), Options: "i"}
	}
	if p.Lat != nil && p.Lng != nil {
		filter["address.location"] = bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{*p.Lng, *p.Lat},
					searchRadiusKm / earthRadiusKm,
				},
			},
		}
	}

	price := bson.M{}
	if p.MinPrice != nil {
		price["$gte"] = *p.MinPrice
	}
	if p.MaxPrice != nil {
		price["$lte"] = *p.MaxPrice
	}
	if len(price) > 0 {
		filter["nightlyPrice"] = price
	}

	if p.Type != "" {
		filter["propertyType"] = p.Type
	}
	if len(p.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": p.Amenities}
	}
	if p.CheckIn != nil && p.CheckOut != nil {
		filter["availability"] = bson.M{
			"$elemMatch": bson.M{
				"available": true,
				"start":     bson.M{"$lte": *p.CheckIn},
				"end":       bson.M{"$gte": *p.CheckOut},
			},
		}
	}
	if p.Guests != nil {
		filter["maxGuests"] = bson.M{"$gte": *p.Guests}
	}

	return filter
}

func parsePagination(ctx iris.Context) (page, limit int) {
	page = ctx.URLParamIntDefault("page", 1)
	limit = ctx.URLParamIntDefault("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func SearchProperties(ctx iris.Context) {
	var params SearchParams

	params.City = strings.TrimSpace(ctx.URLParam("city"))
	params.Type = strings.TrimSpace(ctx.URLParam("propertyType"))

	if lat, err := ctx.URLParamFloat64("lat"); err == nil {
		if lng, lngErr := ctx.URLParamFloat64("lng"); lngErr == nil {
			params.Lat, params.Lng = &lat, &lng
		}
	}
	if minPrice, err := ctx.URLParamFloat64("minPrice"); err == nil {
		params.MinPrice = &minPrice
	}
	if maxPrice, err := ctx.URLParamFloat64("maxPrice"); err == nil {
		params.MaxPrice = &maxPrice
	}
	if amenities := strings.TrimSpace(ctx.URLParam("amenities")); amenities != "" {
		params.Amenities = strings.Split(amenities, ",")
	}
	if guests, err := ctx.URLParamInt("guests"); err == nil && guests > 0 {
		params.Guests = &guests
	}

	checkInStr := ctx.URLParam("checkIn")
	checkOutStr := ctx.URLParam("checkOut")
	if checkInStr != "" && checkOutStr != "" {
		checkIn, inErr := time.Parse("2006-01-02", checkInStr)
		checkOut, outErr := time.Parse("2006-01-02", checkOutStr)
		if inErr != nil || outErr != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Dates must be YYYY-MM-DD.", ctx)
			return
		}
		params.CheckIn, params.CheckOut = &checkIn, &checkOut
	}

	filter := BuildSearchFilter(params)
	page, limit := parsePagination(ctx)

	total, err := storage.Properties.CountDocuments(ctx.Request().Context(), filter)
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	findOpts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := storage.Properties.Find(ctx.Request().Context(), filter, findOpts)
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	properties := []models.Property{}
	if err := cur.All(ctx.Request().Context(), &properties); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	utils.JSONPage(ctx, properties, page, limit, total)
}

func GetProperty(ctx iris.Context) {
	propertyID, err := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid property ID.", ctx)
		return
	}

	var property models.Property
	if err := storage.Properties.FindOne(ctx.Request().Context(),
		bson.M{"_id": propertyID, "active": true}).Decode(&property); err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(property)
}

type CreateBookingInput struct {
	PropertyID string    `json:"propertyID" validate:"required"`
	CheckIn    time.Time `json:"checkIn" validate:"required"`
	CheckOut   time.Time `json:"checkOut" validate:"required"`
	Guests     int       `json:"guests" validate:"required,gte=1,lte=16"`
}

// CreateBooking prices the stay, opens a payment intent and records the
// booking as pending. Money is only considered collected at confirmation.
func CreateBooking(ctx iris.Context) {
	userID, err := currentUserID(ctx)
	if err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Token Error", "Invalid token subject.", ctx)
		return
	}

	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	propertyID, idErr := primitive.ObjectIDFromHex(input.PropertyID)
	if idErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid property ID.", ctx)
		return
	}

	var property models.Property
	if err := storage.Properties.FindOne(ctx.Request().Context(),
		bson.M{"_id": propertyID, "active": true}).Decode(&property); err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Property not found.", ctx)
		return
	}

	if input.Guests > property.MaxGuests {
		utils.CreateError(iris.StatusBadRequest, "Validation Error",
			fmt.Sprintf("Property sleeps at most %d guests.", property.MaxGuests), ctx)
		return
	}

	quote, quoteErr := services.PriceBooking(property.NightlyPrice, input.CheckIn, input.CheckOut, property.Discounts)
	if quoteErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", quoteErr.Error(), ctx)
		return
	}

	overlap, overlapErr := services.HasOverlappingBooking(ctx.Request().Context(),
		propertyID, input.CheckIn, input.CheckOut, primitive.NilObjectID)
	if overlapErr != nil {
		utils.InternalError(ctx, overlapErr)
		return
	}
	if overlap {
		utils.CreateError(iris.StatusConflict, "Booking Conflict", "Those dates are no longer available.", ctx)
		return
	}

	now := time.Now()
	booking := models.Booking{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		PropertyID:     property.ID,
		HostID:         property.HostID,
		CheckIn:        input.CheckIn,
		CheckOut:       input.CheckOut,
		Guests:         input.Guests,
		Nights:         quote.Nights,
		Total:          quote.Total,
		DiscountAmount: quote.DiscountAmount,
		Status:         models.BookingPending,
		PaymentStatus:  models.PaymentUnpaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	intent, intentErr := paymentClient.CreateIntent(ctx.Request().Context(), quote.Total, "usd", booking.ID.Hex())
	if intentErr != nil {
		utils.InternalError(ctx, intentErr)
		return
	}
	booking.PaymentIntentID = intent.ID

	if _, err := storage.Bookings.InsertOne(ctx.Request().Context(), booking); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{
		"booking":      booking,
		"quote":        quote,
		"clientSecret": intent.ClientSecret,
	})
}

// ConfirmBooking settles the payment intent and flips the booking to
// confirmed/paid. The unavailable window append that follows is idempotent
// and re-derivable from booking status, so a crash in between heals on the
// next reconciliation pass.
func ConfirmBooking(ctx iris.Context) {
	userID, err := currentUserID(ctx)
	if err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Token Error", "Invalid token subject.", ctx)
		return
	}

	bookingID, idErr := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if idErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid booking ID.", ctx)
		return
	}

	var booking models.Booking
	if err := storage.Bookings.FindOne(ctx.Request().Context(),
		bson.M{"_id": bookingID, "userId": userID}).Decode(&booking); err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if booking.Status != models.BookingPending {
		utils.CreateError(iris.StatusBadRequest, "Booking Error", "Booking is not pending.", ctx)
		return
	}

	overlap, overlapErr := services.HasOverlappingBooking(ctx.Request().Context(),
		booking.PropertyID, booking.CheckIn, booking.CheckOut, booking.ID)
	if overlapErr != nil {
		utils.InternalError(ctx, overlapErr)
		return
	}
	if overlap {
		utils.CreateError(iris.StatusConflict, "Booking Conflict", "Those dates have been taken.", ctx)
		return
	}

	intent, intentErr := paymentClient.ConfirmIntent(ctx.Request().Context(), booking.PaymentIntentID)
	if intentErr != nil {
		utils.InternalError(ctx, intentErr)
		return
	}
	if intent.Status != "succeeded" {
		utils.CreateError(iris.StatusBadRequest, "Payment Error", "Payment was not confirmed.", ctx)
		return
	}

	now := time.Now()
	if _, err := storage.Bookings.UpdateByID(ctx.Request().Context(), booking.ID, bson.M{
		"$set": bson.M{
			"status":        models.BookingConfirmed,
			"paymentStatus": models.PaymentPaid,
			"updatedAt":     now,
		},
	}); err != nil {
		utils.InternalError(ctx, err)
		return
	}
	booking.Status = models.BookingConfirmed
	booking.PaymentStatus = models.PaymentPaid

	if err := services.AppendBookedWindow(ctx.Request().Context(), booking); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	var property models.Property
	storage.Properties.FindOne(ctx.Request().Context(), bson.M{"_id": booking.PropertyID}).Decode(&property)

	var guest models.User
	if err := storage.Users.FindOne(ctx.Request().Context(), bson.M{"_id": userID}).Decode(&guest); err == nil {
		emailErr := services.SendBookingConfirmationEmail(guest.Email, guest.FirstName, property.Title,
			booking.CheckIn.Format("Jan 2, 2006"), booking.CheckOut.Format("Jan 2, 2006"), booking.Total)
		if emailErr != nil {
			utils.InternalError(ctx, emailErr)
			return
		}

		// A failed SMS must not fail the confirmation.
		if guest.Phone != "" {
			if smsErr := services.SendSMS(ctx.Request().Context(), guest.Phone,
				fmt.Sprintf("Your stay at %s is confirmed for %s.", property.Title,
					booking.CheckIn.Format("Jan 2"))); smsErr != nil {
				utils.Logger().Warnw("confirmation sms failed", "bookingID", booking.ID.Hex(), "error", smsErr)
			}
		}
	}

	ctx.JSON(booking)
}

func GetMyBookings(ctx iris.Context) {
	userID, err := currentUserID(ctx)
	if err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Token Error", "Invalid token subject.", ctx)
		return
	}

	cur, err := storage.Bookings.Find(ctx.Request().Context(), bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
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

func CancelBooking(ctx iris.Context) {
	userID, err := currentUserID(ctx)
	if err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Token Error", "Invalid token subject.", ctx)
		return
	}

	bookingID, idErr := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if idErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid booking ID.", ctx)
		return
	}

	var booking models.Booking
	if err := storage.Bookings.FindOne(ctx.Request().Context(),
		bson.M{"_id": bookingID, "userId": userID}).Decode(&booking); err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
		utils.CreateError(iris.StatusBadRequest, "Booking Error", "Only pending or confirmed bookings can be cancelled.", ctx)
		return
	}

	update := bson.M{"status": models.BookingCancelled, "updatedAt": time.Now()}
	if booking.PaymentStatus == models.PaymentPaid {
		update["paymentStatus"] = models.PaymentRefunded
	}

	if _, err := storage.Bookings.UpdateByID(ctx.Request().Context(), booking.ID, bson.M{"$set": update}); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"message": "Booking cancelled."})
}

type CreateReviewInput struct {
	BookingID string `json:"bookingID" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Body      string `json:"body" validate:"max=1000"`
}

// CreateReview accepts one review per completed booking owned by the caller.
func CreateReview(ctx iris.Context) {
	userID, err := currentUserID(ctx)
	if err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Token Error", "Invalid token subject.", ctx)
		return
	}

	var input CreateReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	bookingID, idErr := primitive.ObjectIDFromHex(input.BookingID)
	if idErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid booking ID.", ctx)
		return
	}

	var booking models.Booking
	if err := storage.Bookings.FindOne(ctx.Request().Context(),
		bson.M{"_id": bookingID, "userId": userID}).Decode(&booking); err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if booking.Status != models.BookingCompleted {
		utils.CreateError(iris.StatusBadRequest, "Review Error", "Only completed stays can be reviewed.", ctx)
		return
	}

	count, countErr := storage.Reviews.CountDocuments(ctx.Request().Context(), bson.M{"bookingId": booking.ID})
	if countErr != nil {
		utils.InternalError(ctx, countErr)
		return
	}
	if count > 0 {
		utils.CreateError(iris.StatusConflict, "Review Error", "This stay has already been reviewed.", ctx)
		return
	}

	now := time.Now()
	review := models.Review{
		BookingID:  booking.ID,
		PropertyID: booking.PropertyID,
		UserID:     userID,
		Rating:     input.Rating,
		Body:       input.Body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	res, insertErr := storage.Reviews.InsertOne(ctx.Request().Context(), review)
	if insertErr != nil {
		// The unique index on bookingId backs the pre-check under races.
		if mongo.IsDuplicateKeyError(insertErr) {
			utils.CreateError(iris.StatusConflict, "Review Error", "This stay has already been reviewed.", ctx)
			return
		}
		utils.InternalError(ctx, insertErr)
		return
	}
	review.ID = res.InsertedID.(primitive.ObjectID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(review)
}

func ListPropertyReviews(ctx iris.Context) {
	propertyID, err := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid property ID.", ctx)
		return
	}

	cur, err := storage.Reviews.Find(ctx.Request().Context(), bson.M{"propertyId": propertyID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	reviews := []models.Review{}
	if err := cur.All(ctx.Request().Context(), &reviews); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	var totalStars float64
	for _, review := range reviews {
		totalStars += float64(review.Rating)
	}
	avgRating := 0.0
	if len(reviews) > 0 {
		avgRating = totalStars / float64(len(reviews))
	}

	ctx.JSON(iris.Map{"reviews": reviews, "averageRating": avgRating})
}
