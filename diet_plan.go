package main

import (
	"math"
	"time"
)

// minWeightKG keeps the per-kg protein and fallback BMR math away from zero
// and negative weights.
const minWeightKG = 20.0

var weekdayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// weightGoal is the objective chosen during onboarding. WeeklyRateKG is the
// magnitude of change; the objective supplies the direction.
type weightGoal struct {
	Objective        string  `json:"objective"`
	StartingWeightKG float64 `json:"starting_weight_kg"`
	TargetWeightKG   float64 `json:"target_weight_kg"`
	WeeklyRateKG     float64 `json:"weekly_rate_kg"`
}

// trainingSchedule flags the training days of a week, index 0 = Monday.
type trainingSchedule [7]bool

func (s trainingSchedule) trainingDays() int {
	n := 0
	for _, training := range s {
		if training {
			n++
		}
	}
	return n
}

// dayTarget is one day's calorie and macro goal.
type dayTarget struct {
	DayIndex      int    `json:"day_index"`
	Weekday       string `json:"weekday"`
	IsTrainingDay bool   `json:"is_training_day"`
	Calories      int    `json:"calories"`
	ProteinG      int    `json:"protein_g"`
	CarbsG        int    `json:"carbs_g"`
	FatG          int    `json:"fat_g"`
}

// dietPlan is the calculator output. ID and CreatedAt are only set once the
// plan has been saved.
type dietPlan struct {
	ID            string     `json:"id,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	EstimatedTDEE int        `json:"estimated_tdee"`
	BaseCalories  int        `json:"base_calories"`
	FloorApplied  bool       `json:"floor_applied"`
	Objective     string     `json:"objective"`
	WeeklyRateKG  float64    `json:"weekly_rate_kg"`
	WeeksToGoal   int        `json:"weeks_to_goal"`
	dietPlanBuilder
	Days []dayTarget `json:"days"`
}

// computeDietPlan turns a body profile, a weight goal and the builder policies
// into a 7-day diet plan. Pure and total: unknown policy values fall back to
// the defaults and out-of-range numbers are clamped.
func computeDietPlan(profile userProfile, goal weightGoal, builder dietPlanBuilder, schedule trainingSchedule) dietPlan {
	b := builder.withDefaults()
	if b.validate() != "" {
		b = sanitizeBuilder(b)
	}
	profile.WeightKG = math.Max(profile.WeightKG, minWeightKG)

	objective := goal.Objective
	if !validObjectives[objective] {
		objective = objectiveMaintain
	}
	rate := clampWeeklyRate(objective, goal.WeeklyRateKG)

	tdee := estimateTDEE(profile)
	target, floorApplied := dailyCalorieTarget(tdee, objective, rate, calorieFloors[b.CalorieFloor])
	base := int(math.Round(target))

	proteinG := math.Round(proteinPerKG[b.ProteinIntake] * profile.WeightKG)
	fatG := math.Round(dietFatShare[b.PreferredDiet] * float64(base) / 9)

	calories := distributeCalories(base, b, schedule, calorieFloors[b.CalorieFloor], proteinG*4+fatG*9)

	days := make([]dayTarget, 7)
	for i := range days {
		p, c, f := allocateMacros(calories[i], proteinG, fatG)
		days[i] = dayTarget{
			DayIndex:      i,
			Weekday:       weekdayNames[i],
			IsTrainingDay: schedule[i],
			Calories:      calories[i],
			ProteinG:      p,
			CarbsG:        c,
			FatG:          f,
		}
	}

	return dietPlan{
		EstimatedTDEE:   int(math.Round(tdee)),
		BaseCalories:    base,
		FloorApplied:    floorApplied,
		Objective:       objective,
		WeeklyRateKG:    rate,
		WeeksToGoal:     estimateWeeksToGoal(goal, profile.WeightKG),
		dietPlanBuilder: b,
		Days:            days,
	}
}

// sanitizeBuilder replaces each unknown policy value with its default.
func sanitizeBuilder(b dietPlanBuilder) dietPlanBuilder {
	d := dietPlanBuilder{}.withDefaults()
	if _, ok := dietFatShare[b.PreferredDiet]; !ok {
		b.PreferredDiet = d.PreferredDiet
	}
	if _, ok := calorieFloors[b.CalorieFloor]; !ok {
		b.CalorieFloor = d.CalorieFloor
	}
	if _, ok := trainingDayShift[b.TrainingType]; !ok {
		b.TrainingType = d.TrainingType
	}
	if !validDistributions[b.CalorieDistribution] {
		b.CalorieDistribution = d.CalorieDistribution
	}
	if _, ok := proteinPerKG[b.ProteinIntake]; !ok {
		b.ProteinIntake = d.ProteinIntake
	}
	return b
}

// clampWeeklyRate bounds the rate to [0, maxWeeklyRateKG]; maintain is always 0.
func clampWeeklyRate(objective string, rate float64) float64 {
	if objective == objectiveMaintain || math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return math.Min(rate, maxWeeklyRateKG)
}

// dailyCalorieTarget applies the signed daily delta to the TDEE. Losing weight
// never goes below the floor, even when the TDEE itself is under it. The clamp
// is silent apart from the returned flag.
func dailyCalorieTarget(tdee float64, objective string, rate, floor float64) (float64, bool) {
	delta := rate * kcalPerKG / 7
	switch objective {
	case objectiveLose:
		target := tdee - delta
		if target < floor {
			return floor, true
		}
		return target, false
	case objectiveGain:
		return tdee + delta, false
	default:
		return tdee, false
	}
}

// distributeCalories returns the calorie target for each day of the week.
// Under training_day_shift, training days gain calories that rest days give
// up, keeping the weekly total. Rest days stay at or above both the floor and
// the protein+fat calories so that the shift only ever moves carbohydrate.
func distributeCalories(base int, b dietPlanBuilder, schedule trainingSchedule, floor, fixedKcal float64) [7]int {
	var out [7]int
	for i := range out {
		out[i] = base
	}

	n := schedule.trainingDays()
	share := trainingDayShift[b.TrainingType]
	if b.CalorieDistribution != distributionTrainingDayShift || share == 0 || n == 0 || n == 7 {
		return out
	}

	baseF := float64(base)
	bump := share * baseF
	cut := bump * float64(n) / float64(7-n)

	restMin := math.Max(math.Min(floor, baseF), fixedKcal)
	if maxCut := baseF - restMin; cut > maxCut {
		cut = math.Max(maxCut, 0)
		bump = cut * float64(7-n) / float64(n)
	}

	for i, training := range schedule {
		if training {
			out[i] = int(math.Round(baseF + bump))
		} else {
			out[i] = int(math.Round(baseF - cut))
		}
	}
	return out
}

// allocateMacros splits a day's calories into whole grams. Protein and fat are
// capped so they fit inside the calories, and carbohydrate takes the rest,
// keeping 4p+4c+9f within 2 kcal of the target.
func allocateMacros(calories int, proteinG, fatG float64) (protein, carbs, fat int) {
	if calories <= 0 {
		return 0, 0, 0
	}
	protein = int(proteinG)
	if protein*4 > calories {
		protein = calories / 4
	}
	fat = int(fatG)
	if protein*4+fat*9 > calories {
		fat = (calories - protein*4) / 9
	}
	remaining := calories - protein*4 - fat*9
	carbs = int(math.Round(float64(remaining) / 4))
	return protein, carbs, fat
}

// estimateWeeksToGoal returns how many whole weeks the goal takes at its
// (clamped) rate, rounded up. Zero for maintain, a zero rate, or a goal that
// is already reached.
func estimateWeeksToGoal(goal weightGoal, currentKG float64) int {
	rate := clampWeeklyRate(goal.Objective, goal.WeeklyRateKG)
	if rate == 0 || goal.TargetWeightKG <= 0 {
		return 0
	}
	var remaining float64
	switch goal.Objective {
	case objectiveLose:
		remaining = currentKG - goal.TargetWeightKG
	case objectiveGain:
		remaining = goal.TargetWeightKG - currentKG
	default:
		return 0
	}
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining / rate))
}
