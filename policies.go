package main

import (
	"sort"
	"strings"
)

/* ─── Weight goal ────────────────────────────────────────────────────── */

const (
	objectiveLose     = "lose"
	objectiveGain     = "gain"
	objectiveMaintain = "maintain"
)

var validObjectives = map[string]bool{
	objectiveLose:     true,
	objectiveGain:     true,
	objectiveMaintain: true,
}

const (
	// kcalPerKG is the energy density of one kilogram of body-mass change
	// (≈3500 kcal per pound).
	kcalPerKG = 7700.0

	// maxWeeklyRateKG is the safe upper bound on the weekly rate of change.
	maxWeeklyRateKG = 1.0
)

/* ─── Diet plan builder policies ─────────────────────────────────────── */

// calorieFloors is the minimum daily intake per calorie-floor policy.
var calorieFloors = map[string]float64{
	"standard": 1500,
	"low":      1200,
}

// proteinPerKG is grams of protein per kg of bodyweight per protein policy.
var proteinPerKG = map[string]float64{
	"low":       1.2,
	"moderate":  1.6,
	"high":      2.0,
	"very_high": 2.4,
}

// dietFatShare is the fraction of daily calories taken from fat per preferred
// diet type.
var dietFatShare = map[string]float64{
	"balanced": 0.30,
	"low_fat":  0.20,
	"low_carb": 0.40,
	"keto":     0.70,
}

// trainingDayShift is the calorie bump given to training days under the
// training_day_shift distribution, as a fraction of the base target.
var trainingDayShift = map[string]float64{
	"none":     0,
	"strength": 0.15,
	"cardio":   0.10,
	"mixed":    0.125,
}

const (
	distributionEven             = "even"
	distributionTrainingDayShift = "training_day_shift"
)

var validDistributions = map[string]bool{
	distributionEven:             true,
	distributionTrainingDayShift: true,
}

// dietPlanBuilder is the configuration collected across the onboarding
// screens. It is passed by value and never mutated by the calculator.
type dietPlanBuilder struct {
	PreferredDiet       string `json:"preferred_diet"`
	CalorieFloor        string `json:"calorie_floor"`
	TrainingType        string `json:"training_type"`
	CalorieDistribution string `json:"calorie_distribution"`
	ProteinIntake       string `json:"protein_intake"`
}

// withDefaults fills empty fields with the default policy for each.
func (b dietPlanBuilder) withDefaults() dietPlanBuilder {
	if b.PreferredDiet == "" {
		b.PreferredDiet = "balanced"
	}
	if b.CalorieFloor == "" {
		b.CalorieFloor = "standard"
	}
	if b.TrainingType == "" {
		b.TrainingType = "none"
	}
	if b.CalorieDistribution == "" {
		b.CalorieDistribution = distributionEven
	}
	if b.ProteinIntake == "" {
		b.ProteinIntake = "moderate"
	}
	return b
}

// validate returns a client-facing message naming the first unknown policy
// value, or "" when every field is known.
func (b dietPlanBuilder) validate() string {
	if _, ok := dietFatShare[b.PreferredDiet]; !ok {
		return "preferred_diet must be one of: " + keysOf(dietFatShare)
	}
	if _, ok := calorieFloors[b.CalorieFloor]; !ok {
		return "calorie_floor must be one of: " + keysOf(calorieFloors)
	}
	if _, ok := trainingDayShift[b.TrainingType]; !ok {
		return "training_type must be one of: " + keysOf(trainingDayShift)
	}
	if !validDistributions[b.CalorieDistribution] {
		return "calorie_distribution must be one of: " + keysOf(validDistributions)
	}
	if _, ok := proteinPerKG[b.ProteinIntake]; !ok {
		return "protein_intake must be one of: " + keysOf(proteinPerKG)
	}
	return ""
}

// keysOf returns the sorted keys of a policy table joined for error messages.
func keysOf[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
