package routes

import (
	"time"

	"github.com/themrgeek/AbodeX/models"
	"github.com/themrgeek/AbodeX/services"
	"github.com/themrgeek/AbodeX/storage"
	"github.com/themrgeek/AbodeX/utils"

	"github.com/kataras/iris/v12"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var rankingService = services.NewRankingService()

func GetAdminStats(ctx iris.Context) {
	reqCtx := ctx.Request().Context()

	userCount, err := storage.Users.CountDocuments(reqCtx, bson.M{})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}
	hostCount, err := storage.Hosts.CountDocuments(reqCtx, bson.M{})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}
	propertyCount, err := storage.Properties.CountDocuments(reqCtx, bson.M{})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	// Revenue counts money actually collected.
	revenueCur, err := storage.Bookings.Aggregate(reqCtx, bson.A{
		bson.M{"$match": bson.M{"paymentStatus": models.PaymentPaid}},
		bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}},
	})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}
	var revenueRows []struct {
		Total float64 `bson:"total"`
	}
	if err := revenueCur.All(reqCtx, &revenueRows); err != nil {
		utils.InternalError(ctx, err)
		return
	}
	revenue := 0.0
	if len(revenueRows) > 0 {
		revenue = revenueRows[0].Total
	}

	statusCur, err := storage.Bookings.Aggregate(reqCtx, bson.A{
		bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}
	var statusRows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := statusCur.All(reqCtx, &statusRows); err != nil {
		utils.InternalError(ctx, err)
		return
	}
	bookingsByStatus := map[string]int64{}
	for _, row := range statusRows {
		bookingsByStatus[row.Status] = row.Count
	}

	ctx.JSON(iris.Map{
		"users":            userCount,
		"hosts":            hostCount,
		"properties":       propertyCount,
		"revenue":          revenue,
		"bookingsByStatus": bookingsByStatus,
	})
}

func ListUsers(ctx iris.Context) {
	page, limit := parsePagination(ctx)

	total, err := storage.Users.CountDocuments(ctx.Request().Context(), bson.M{})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	cur, err := storage.Users.Find(ctx.Request().Context(), bson.M{},
		options.Find().
			SetSkip(int64((page-1)*limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	users := []models.User{}
	if err := cur.All(ctx.Request().Context(), &users); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	utils.JSONPage(ctx, users, page, limit, total)
}

// ListHosts returns hosts with whatever tag the last ranking pass persisted.
// Tags are never recomputed here.
func ListHosts(ctx iris.Context) {
	page, limit := parsePagination(ctx)

	total, err := storage.Hosts.CountDocuments(ctx.Request().Context(), bson.M{})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	cur, err := storage.Hosts.Find(ctx.Request().Context(), bson.M{},
		options.Find().
			SetSkip(int64((page-1)*limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "earnings", Value: -1}}))
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	hosts := []models.Host{}
	if err := cur.All(ctx.Request().Context(), &hosts); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	utils.JSONPage(ctx, hosts, page, limit, total)
}

func ListAllProperties(ctx iris.Context) {
	page, limit := parsePagination(ctx)

	total, err := storage.Properties.CountDocuments(ctx.Request().Context(), bson.M{})
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	cur, err := storage.Properties.Find(ctx.Request().Context(), bson.M{},
		options.Find().
			SetSkip(int64((page-1)*limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "createdAt", Value: -1}}))
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

func ListAllBookings(ctx iris.Context) {
	page, limit := parsePagination(ctx)

	filter := bson.M{}
	if status := ctx.URLParam("status"); status != "" {
		filter["status"] = status
	}

	total, err := storage.Bookings.CountDocuments(ctx.Request().Context(), filter)
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	cur, err := storage.Bookings.Find(ctx.Request().Context(), filter,
		options.Find().
			SetSkip(int64((page-1)*limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	bookings := []models.Booking{}
	if err := cur.All(ctx.Request().Context(), &bookings); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	utils.JSONPage(ctx, bookings, page, limit, total)
}

func VerifyHost(ctx iris.Context) {
	hostID, err := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid host ID.", ctx)
		return
	}

	res, updateErr := storage.Hosts.UpdateByID(ctx.Request().Context(), hostID, bson.M{
		"$set": bson.M{"verified": true, "updatedAt": time.Now()},
	})
	if updateErr != nil {
		utils.InternalError(ctx, updateErr)
		return
	}
	if res.MatchedCount == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Host verified."})
}

type SetPropertyStatusInput struct {
	Active *bool `json:"active" validate:"required"`
}

func SetPropertyStatus(ctx iris.Context) {
	propertyID, err := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid property ID.", ctx)
		return
	}

	var input SetPropertyStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, updateErr := storage.Properties.UpdateByID(ctx.Request().Context(), propertyID, bson.M{
		"$set": bson.M{"active": *input.Active, "updatedAt": time.Now()},
	})
	if updateErr != nil {
		utils.InternalError(ctx, updateErr)
		return
	}
	if res.MatchedCount == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Property status updated."})
}

// RetagHosts runs the ranking pass on demand instead of waiting for the
// next scheduled tick.
func RetagHosts(ctx iris.Context) {
	if err := rankingService.AssignTags(ctx.Request().Context()); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"message": "Host tags recomputed."})
}
