package services

import (
	"testing"
	"time"

	"github.com/themrgeek/AbodeX/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, time.June, d, 15, 0, 0, 0, time.UTC)
}

func TestNights(t *testing.T) {
	assert.Equal(t, 1, Nights(day(1), day(2)))
	assert.Equal(t, 4, Nights(day(1), day(5)))

	// A late checkout still counts the started night.
	checkIn := time.Date(2026, time.June, 1, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, time.June, 2, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, Nights(checkIn, checkOut))
}

func TestPriceBookingNoDiscounts(t *testing.T) {
	quote, err := PriceBooking(100, day(1), day(4), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, quote.Nights)
	assert.Equal(t, 300.0, quote.RawTotal)
	assert.Equal(t, 0.0, quote.DiscountAmount)
	assert.Equal(t, 300.0, quote.Total)
	assert.Nil(t, quote.AppliedDiscount)
}

func TestPriceBookingPercentageDiscount(t *testing.T) {
	discounts := []models.Discount{{
		Name:       "Summer deal",
		Type:       models.DiscountPercentage,
		Value:      20,
		MinNights:  3,
		ValidFrom:  day(1),
		ValidUntil: day(30),
	}}

	quote, err := PriceBooking(100, day(1), day(5), discounts)
	require.NoError(t, err)

	assert.Equal(t, 4, quote.Nights)
	assert.Equal(t, 400.0, quote.RawTotal)
	assert.Equal(t, 80.0, quote.DiscountAmount)
	assert.Equal(t, 320.0, quote.Total)
	require.NotNil(t, quote.AppliedDiscount)
	assert.Equal(t, "Summer deal", quote.AppliedDiscount.Name)
}

func TestPriceBookingMinNightsNotMet(t *testing.T) {
	discounts := []models.Discount{{
		Type:       models.DiscountPercentage,
		Value:      20,
		MinNights:  5,
		ValidFrom:  day(1),
		ValidUntil: day(30),
	}}

	quote, err := PriceBooking(100, day(1), day(5), discounts)
	require.NoError(t, err)

	assert.Equal(t, 0.0, quote.DiscountAmount)
	assert.Equal(t, 400.0, quote.Total)
	assert.Nil(t, quote.AppliedDiscount)
}

func TestPriceBookingStayOutsideWindow(t *testing.T) {
	discounts := []models.Discount{{
		Type:       models.DiscountPercentage,
		Value:      50,
		ValidFrom:  day(1),
		ValidUntil: day(4),
	}}

	// Checkout extends one day past the discount window.
	quote, err := PriceBooking(100, day(2), day(5), discounts)
	require.NoError(t, err)

	assert.Equal(t, 0.0, quote.DiscountAmount)
	assert.Nil(t, quote.AppliedDiscount)
}

func TestPriceBookingPicksLargestAbsoluteDiscount(t *testing.T) {
	discounts := []models.Discount{
		{
			Name:       "Flat fifty",
			Type:       models.DiscountFixed,
			Value:      50,
			ValidFrom:  day(1),
			ValidUntil: day(30),
		},
		{
			Name:       "Quarter off",
			Type:       models.DiscountPercentage,
			Value:      25,
			ValidFrom:  day(1),
			ValidUntil: day(30),
		},
	}

	// 4 nights * 100 = 400; 25% = 100 beats the fixed 50.
	quote, err := PriceBooking(100, day(1), day(5), discounts)
	require.NoError(t, err)

	assert.Equal(t, 100.0, quote.DiscountAmount)
	require.NotNil(t, quote.AppliedDiscount)
	assert.Equal(t, "Quarter off", quote.AppliedDiscount.Name)
}

func TestPriceBookingTieKeepsFirst(t *testing.T) {
	discounts := []models.Discount{
		{
			Name:       "First",
			Type:       models.DiscountFixed,
			Value:      100,
			ValidFrom:  day(1),
			ValidUntil: day(30),
		},
		{
			Name:       "Second",
			Type:       models.DiscountPercentage,
			Value:      25, // also 100 on a 400 stay
			ValidFrom:  day(1),
			ValidUntil: day(30),
		},
	}

	quote, err := PriceBooking(100, day(1), day(5), discounts)
	require.NoError(t, err)

	assert.Equal(t, 100.0, quote.DiscountAmount)
	require.NotNil(t, quote.AppliedDiscount)
	assert.Equal(t, "First", quote.AppliedDiscount.Name)
}

func TestPriceBookingDiscountClampedToRawTotal(t *testing.T) {
	discounts := []models.Discount{{
		Type:       models.DiscountFixed,
		Value:      10000,
		ValidFrom:  day(1),
		ValidUntil: day(30),
	}}

	quote, err := PriceBooking(100, day(1), day(3), discounts)
	require.NoError(t, err)

	assert.Equal(t, 200.0, quote.DiscountAmount)
	assert.Equal(t, 0.0, quote.Total)
}

func TestPriceBookingInvalidRange(t *testing.T) {
	_, err := PriceBooking(100, day(5), day(5), nil)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = PriceBooking(100, day(5), day(2), nil)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}
