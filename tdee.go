package main

import (
	"math"
	"time"
)

// activityMultipliers maps activity level strings to their TDEE multiplier.
// Also the set of valid activity levels accepted by patchProfile and the
// preview endpoint.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

const (
	lbsPerKG = 2.20462

	// bmrPerKGFallback is the rough 1 kcal/kg/hour resting estimate used when
	// height, age or sex are unknown.
	bmrPerKGFallback = 24.0

	// minBMR bounds the resting estimate from below. Mifflin-St Jeor goes
	// negative for very small, very old profiles.
	minBMR = 800.0

	maxAgeYears = 130
)

// userProfile is the body snapshot fed to the diet plan calculator. Height, age
// and sex are optional; without all three the BMR falls back to a weight-only
// estimate.
type userProfile struct {
	WeightKG      float64  `json:"weight_kg"`
	HeightCM      *float64 `json:"height_cm"`
	Age           *int     `json:"age"`
	Sex           *string  `json:"sex"`
	ActivityLevel string   `json:"activity_level"`
	WeightUnit    string   `json:"weight_unit"`
}

// estimateBMR returns Mifflin-St Jeor BMR when height, age and sex are all
// present, otherwise bodyweight x 24. Never below minBMR.
func estimateBMR(p userProfile) float64 {
	if p.HeightCM == nil || p.Age == nil || p.Sex == nil {
		return math.Max(p.WeightKG*bmrPerKGFallback, minBMR)
	}
	bmr := 10*p.WeightKG + 6.25**p.HeightCM - 5*float64(*p.Age)
	if *p.Sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	return math.Max(bmr, minBMR)
}

// estimateTDEE multiplies the BMR by the activity multiplier. Unknown activity
// levels count as sedentary.
func estimateTDEE(p userProfile) float64 {
	mult, ok := activityMultipliers[p.ActivityLevel]
	if !ok {
		mult = activityMultipliers["sedentary"]
	}
	return estimateBMR(p) * mult
}

// ageOn returns the age in whole years on the given day. ok=false for a DOB in
// the future or more than 130 years back.
func ageOn(dob, day time.Time) (int, bool) {
	age := day.Year() - dob.Year()
	if day.Before(dob.AddDate(age, 0, 0)) {
		age--
	}
	if age < 0 || age > maxAgeYears {
		return 0, false
	}
	return age, true
}

func kgToLbs(kg float64) float64 { return kg * lbsPerKG }

func lbsToKG(lbs float64) float64 { return lbs / lbsPerKG }

// roundTo rounds v to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// currentMonday returns the Monday of the current week at midnight UTC.
// Uses AddDate so month/year boundaries are handled without day=0 values.
func currentMonday() time.Time {
	return mondayOf(time.Now().UTC())
}

// mondayOf returns the Monday of t's week at midnight UTC.
func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	return t.AddDate(0, 0, -weekdayIndex(t)).Truncate(24 * time.Hour)
}

// weekdayIndex maps a date to 0=Monday..6=Sunday, the index used by
// trainingSchedule and diet plan days.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
