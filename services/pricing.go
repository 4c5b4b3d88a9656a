package services

import (
	"errors"
	"math"
	"time"

	"github.com/themrgeek/AbodeX/models"
)

var ErrInvalidDateRange = errors.New("check-out must be after check-in")

// Nights returns the calendar-day ceiling of the stay length; a checkout
// exactly 24h after checkin is one night.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

type Quote struct {
	Nights          int              `json:"nights"`
	RawTotal        float64          `json:"rawTotal"`
	DiscountAmount  float64          `json:"discountAmount"`
	Total           float64          `json:"total"`
	AppliedDiscount *models.Discount `json:"appliedDiscount,omitempty"`
}

// PriceBooking computes the total for a stay. Among eligible discounts the
// one with the largest absolute amount wins; ties go to the first in list
// order. The discount never exceeds the raw total.
func PriceBooking(nightlyRate float64, checkIn, checkOut time.Time, discounts []models.Discount) (Quote, error) {
	nights := Nights(checkIn, checkOut)
	if nights <= 0 {
		return Quote{}, ErrInvalidDateRange
	}

	rawTotal := float64(nights) * nightlyRate

	var best float64
	var applied *models.Discount
	for i := range discounts {
		d := discounts[i]
		if !discountEligible(d, checkIn, checkOut, nights) {
			continue
		}

		var amount float64
		switch d.Type {
		case models.DiscountPercentage:
			amount = rawTotal * d.Value / 100
		case models.DiscountFixed:
			amount = d.Value
		default:
			continue
		}

		// Strictly greater keeps the first maximum on ties.
		if amount > best {
			best = amount
			applied = &discounts[i]
		}
	}

	if best > rawTotal {
		best = rawTotal
	}
	if best < 0 {
		best = 0
	}

	return Quote{
		Nights:          nights,
		RawTotal:        rawTotal,
		DiscountAmount:  best,
		Total:           rawTotal - best,
		AppliedDiscount: applied,
	}, nil
}

// discountEligible requires the validity window to fully contain the stay
// and the stay to meet minNights when one is set.
func discountEligible(d models.Discount, checkIn, checkOut time.Time, nights int) bool {
	if checkIn.Before(d.ValidFrom) || checkOut.After(d.ValidUntil) {
		return false
	}
	if d.MinNights > 0 && nights < d.MinNights {
		return false
	}
	return true
}
