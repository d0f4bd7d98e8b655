package utils

import (
	"errors"
	"math"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/shopspring/decimal"
)

// KgCO2PerTree is the approximate CO2 one tree absorbs in a year
var KgCO2PerTree = decimal.RequireFromString("21.77")

// ErrInvalidQuantity is returned for quantities that are not positive finite numbers
var ErrInvalidQuantity = errors.New("quantity must be a positive number")

// ValidateQuantity rejects zero, negative, NaN and infinite quantities
func ValidateQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// CalculatePoints returns quantity × pointsPerUnit rounded half-up to an integer.
// The product is taken in decimal so that e.g. 0.15 × 10 rounds to 2, not 1.
func CalculatePoints(quantity float64, activityType *models.ActivityType) int64 {
	if activityType == nil || ValidateQuantity(quantity) != nil {
		return 0
	}
	product := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(activityType.PointsPerUnit))
	return product.Round(0).IntPart()
}

// CalculateCarbon returns quantity × carbonFactor in kg, unrounded
func CalculateCarbon(quantity float64, activityType *models.ActivityType) float64 {
	if activityType == nil || ValidateQuantity(quantity) != nil {
		return 0
	}
	return quantity * activityType.CarbonFactor
}

// DisplayCarbon truncates a kg value to 2 decimals
func DisplayCarbon(kg float64) float64 {
	f, _ := decimal.NewFromFloat(kg).Truncate(2).Float64()
	return f
}

// TreesEquivalent is floor(kg / 21.77)
func TreesEquivalent(kg float64) int64 {
	if !(kg > 0) {
		return 0
	}
	return decimal.NewFromFloat(kg).Div(KgCO2PerTree).Floor().IntPart()
}
