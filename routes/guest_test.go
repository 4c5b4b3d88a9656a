package routes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestBuildSearchFilterEmpty(t *testing.T) {
	filter := BuildSearchFilter(SearchParams{})

	assert.Equal(t, bson.M{"active": true}, filter)
}

func TestBuildSearchFilterCity(t *testing.T) {
	filter := BuildSearchFilter(SearchParams{City: "Lisbon"})

	require.Contains(t, filter, "address.city")
	assert.Equal(t, true, filter["active"])
}

func TestBuildSearchFilterGeo(t *testing.T) {
	filter := BuildSearchFilter(SearchParams{Lat: floatPtr(38.72), Lng: floatPtr(-9.14)})

	require.Contains(t, filter, "address.location")
	geo := filter["address.location"].(bson.M)
	within := geo["$geoWithin"].(bson.M)
	sphere := within["$centerSphere"].(bson.A)

	assert.Equal(t, bson.A{-9.14, 38.72}, sphere[0])
	assert.InDelta(t, 10.0/6378.1, sphere[1].(float64), 1e-9)
}

func TestBuildSearchFilterPriceRange(t *testing.T) {
	filter := BuildSearchFilter(SearchParams{MinPrice: floatPtr(50), MaxPrice: floatPtr(200)})

	assert.Equal(t, bson.M{"$gte": 50.0, "$lte": 200.0}, filter["nightlyPrice"])

	// One-sided ranges only carry the bound that was set.
	filter = BuildSearchFilter(SearchParams{MaxPrice: floatPtr(200)})
	assert.Equal(t, bson.M{"$lte": 200.0}, filter["nightlyPrice"])
}

func TestBuildSearchFilterAmenitiesRequireAll(t *testing.T) {
	filter := BuildSearchFilter(SearchParams{Amenities: []string{"wifi", "pool"}})

	assert.Equal(t, bson.M{"$all": []string{"wifi", "pool"}}, filter["amenities"])
}

func TestBuildSearchFilterAvailabilityWindow(t *testing.T) {
	checkIn := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, time.July, 14, 0, 0, 0, 0, time.UTC)

	filter := BuildSearchFilter(SearchParams{CheckIn: &checkIn, CheckOut: &checkOut})

	require.Contains(t, filter, "availability")
	elem := filter["availability"].(bson.M)["$elemMatch"].(bson.M)
	assert.Equal(t, true, elem["available"])
	assert.Equal(t, bson.M{"$lte": checkIn}, elem["start"])
	assert.Equal(t, bson.M{"$gte": checkOut}, elem["end"])
}

func TestBuildSearchFilterGuestsAndType(t *testing.T) {
	filter := BuildSearchFilter(SearchParams{Type: "entire_place", Guests: intPtr(4)})

	assert.Equal(t, "entire_place", filter["propertyType"])
	assert.Equal(t, bson.M{"$gte": 4}, filter["maxGuests"])
}
