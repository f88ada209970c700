package main

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

var validSexes = map[string]bool{"male": true, "female": true}

var validWeightUnits = map[string]bool{"kg": true, "lbs": true}

// snapshot builds the calculator inputs from a stored profile as of today.
// ok=false when weight or activity level is still missing. Age is left nil
// when the date of birth is unusable, which drops the BMR to the weight-only
// estimate.
func (r profileRow) snapshot(today time.Time) (userProfile, weightGoal, bool) {
	if r.WeightKG == nil || r.ActivityLevel == nil {
		return userProfile{}, weightGoal{}, false
	}

	p := userProfile{
		WeightKG:      *r.WeightKG,
		HeightCM:      r.HeightCM,
		Sex:           r.Sex,
		ActivityLevel: *r.ActivityLevel,
		WeightUnit:    r.WeightUnit,
	}
	if r.DateOfBirth != nil {
		if age, ok := ageOn(r.DateOfBirth.Time, today); ok {
			p.Age = &age
		}
	}

	g := weightGoal{Objective: objectiveMaintain}
	if r.Objective != nil {
		g.Objective = *r.Objective
	}
	if r.StartingWeightKG != nil {
		g.StartingWeightKG = *r.StartingWeightKG
	}
	if r.TargetWeightKG != nil {
		g.TargetWeightKG = *r.TargetWeightKG
	}
	if r.WeeklyRateKG != nil {
		g.WeeklyRateKG = *r.WeeklyRateKG
	}
	return p, g, true
}

// populateComputedProfile fills the computed-only fields on r. Leaves them nil
// when the profile is incomplete.
func populateComputedProfile(r *profileRow) {
	p, g, ok := r.snapshot(time.Now())
	if !ok {
		return
	}
	tdee := int(math.Round(estimateTDEE(p)))
	weeks := estimateWeeksToGoal(g, p.WeightKG)
	display := roundTo(toDisplayWeight(p.WeightKG, r.WeightUnit), 1)
	r.EstimatedTDEE = &tdee
	r.WeeksToGoal = &weeks
	r.DisplayWeight = &display
}

func toDisplayWeight(kg float64, unit string) float64 {
	if unit == "lbs" {
		return kgToLbs(kg)
	}
	return kg
}

func fromDisplayWeight(v float64, unit string) float64 {
	if unit == "lbs" {
		return lbsToKG(v)
	}
	return v
}

// getProfile returns the body profile and weight goal for the authenticated user.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	r, err := h.loadProfile(c, userID)
	if err != nil {
		queryError(c, err, "profile not found", "failed to fetch profile")
		return
	}

	populateComputedProfile(&r)
	c.JSON(http.StatusOK, r)
}

func (h *Handler) loadProfile(c *gin.Context, userID int) (profileRow, error) {
	return queryOne[profileRow](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

// validateProfilePatch checks every enum and range in the request without
// touching the database. Returns "" when the body is acceptable.
func validateProfilePatch(body patchProfileRequest) string {
	if body.Sex != nil && !validSexes[*body.Sex] {
		return "sex must be one of: " + keysOf(validSexes)
	}
	if body.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *body.DateOfBirth)
		if err != nil {
			return "invalid date_of_birth, expected YYYY-MM-DD"
		}
		if _, ok := ageOn(dob, time.Now()); !ok {
			return "date_of_birth is out of range"
		}
	}
	if body.ActivityLevel != nil {
		if _, ok := activityMultipliers[*body.ActivityLevel]; !ok {
			return "activity_level must be one of: " + keysOf(activityMultipliers)
		}
	}
	if body.WeightUnit != nil && !validWeightUnits[*body.WeightUnit] {
		return "weight_unit must be one of: kg, lbs"
	}
	if body.Objective != nil && !validObjectives[*body.Objective] {
		return "objective must be one of: " + keysOf(validObjectives)
	}
	if body.HeightCM != nil && !validHeightCM(*body.HeightCM) {
		return "height_cm must be between 50 and 275"
	}
	if body.WeeklyRate != nil && *body.WeeklyRate < 0 {
		return "weekly_rate must not be negative"
	}
	return ""
}

func validHeightCM(h float64) bool {
	return h >= 50 && h <= 275
}

// validateProfileWeights checks the body weights once the unit they are
// written in is known, using the same bound as the weight log.
func validateProfileWeights(body patchProfileRequest, unit string) string {
	weights := []struct {
		name  string
		value *float64
	}{
		{"weight", body.Weight},
		{"starting_weight", body.StartingWeight},
		{"target_weight", body.TargetWeight},
	}
	for _, w := range weights {
		if w.value != nil && !validWeightKG(fromDisplayWeight(*w.value, unit)) {
			return fmt.Sprintf("%s must be between 0 and %.0f kg (%.0f lbs)", w.name, maxBodyWeightKG, kgToLbs(maxBodyWeightKG))
		}
	}
	return ""
}

// patchProfile updates only the provided profile and goal fields.
// PATCH /api/profile. Weights in the body are read in weight_unit (or the
// stored preference) and stored in kg.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateProfilePatch(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	unit := ""
	if body.WeightUnit != nil {
		unit = *body.WeightUnit
	} else if body.Weight != nil || body.StartingWeight != nil || body.TargetWeight != nil || body.WeeklyRate != nil {
		current, err := h.loadProfile(c, userID)
		if err != nil {
			queryError(c, err, "profile not found", "failed to fetch profile")
			return
		}
		unit = current.WeightUnit
	}

	if msg := validateProfileWeights(body, unit); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	if body.WeeklyRate != nil {
		if rateKG := fromDisplayWeight(*body.WeeklyRate, unit); rateKG > maxWeeklyRateKG+1e-9 {
			apiError(c, http.StatusBadRequest,
				fmt.Sprintf("weekly_rate must be at most %.1f kg (%.1f lbs) per week", maxWeeklyRateKG, kgToLbs(maxWeeklyRateKG)))
			return
		}
	}

	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}
	set := func(column, arg string, value any) {
		setClauses = append(setClauses, column+" = @"+arg)
		args[arg] = value
	}

	if body.Sex != nil {
		set("sex", "sex", *body.Sex)
	}
	if body.DateOfBirth != nil {
		set("date_of_birth", "dateOfBirth", *body.DateOfBirth)
	}
	if body.HeightCM != nil {
		set("height_cm", "heightCM", *body.HeightCM)
	}
	if body.Weight != nil {
		set("weight_kg", "weightKG", fromDisplayWeight(*body.Weight, unit))
	}
	if body.ActivityLevel != nil {
		set("activity_level", "activityLevel", *body.ActivityLevel)
	}
	if body.WeightUnit != nil {
		set("weight_unit", "weightUnit", *body.WeightUnit)
	}
	if body.Objective != nil {
		set("objective", "objective", *body.Objective)
		// Maintaining has no rate; clear any stale one unless the client sent it.
		if *body.Objective == objectiveMaintain && body.WeeklyRate == nil {
			set("weekly_rate_kg", "weeklyRateKG", 0.0)
		}
	}
	if body.StartingWeight != nil {
		set("starting_weight_kg", "startingWeightKG", fromDisplayWeight(*body.StartingWeight, unit))
	}
	if body.TargetWeight != nil {
		set("target_weight_kg", "targetWeightKG", fromDisplayWeight(*body.TargetWeight, unit))
	}
	if body.WeeklyRate != nil {
		set("weekly_rate_kg", "weeklyRateKG", fromDisplayWeight(*body.WeeklyRate, unit))
	}

	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	query := "UPDATE user_profiles SET " +
		strings.Join(setClauses, ", ") +
		", updated_at = now() WHERE user_id = @userID RETURNING *"

	r, err := queryOne[profileRow](h.db, c, query, args)
	if err != nil {
		queryError(c, err, "profile not found", "failed to update profile")
		return
	}

	populateComputedProfile(&r)
	c.JSON(http.StatusOK, r)
}
