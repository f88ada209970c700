package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. NULL zeroes the time.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profileRow maps to user_profiles: body metrics plus the weight goal, one row
// per user. Everything but the unit preference is nullable until onboarding
// fills it in.
type profileRow struct {
	UserID           int        `json:"user_id"            db:"user_id"`
	Sex              *string    `json:"sex"                db:"sex"`
	DateOfBirth      *DateOnly  `json:"date_of_birth"      db:"date_of_birth"`
	HeightCM         *float64   `json:"height_cm"          db:"height_cm"`
	WeightKG         *float64   `json:"weight_kg"          db:"weight_kg"`
	ActivityLevel    *string    `json:"activity_level"     db:"activity_level"`
	WeightUnit       string     `json:"weight_unit"        db:"weight_unit"`
	Objective        *string    `json:"objective"          db:"objective"`
	StartingWeightKG *float64   `json:"starting_weight_kg" db:"starting_weight_kg"`
	TargetWeightKG   *float64   `json:"target_weight_kg"   db:"target_weight_kg"`
	WeeklyRateKG     *float64   `json:"weekly_rate_kg"     db:"weekly_rate_kg"`
	UpdatedAt        *time.Time `json:"updated_at"         db:"updated_at"`

	// Computed fields, not stored. db:"-" keeps RowToStructByName from
	// looking for matching columns.
	EstimatedTDEE *int     `json:"estimated_tdee,omitempty"  db:"-"`
	DisplayWeight *float64 `json:"display_weight,omitempty"  db:"-"`
	WeeksToGoal   *int     `json:"weeks_to_goal,omitempty"   db:"-"`
}

// weightEntry maps to weight_log: one body-weight reading per user per day.
type weightEntry struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	WeightKG  float64    `json:"weight_kg"  db:"weight_kg"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// trainingDayRow maps to training_schedule: 7 rows per user, day_index 0 = Monday.
type trainingDayRow struct {
	DayIndex   int  `db:"day_index"`
	IsTraining bool `db:"is_training"`
}

// dietPlanRow maps to diet_plans. Days are loaded separately from diet_plan_days.
type dietPlanRow struct {
	ID                  string    `db:"id"`
	UserID              int       `db:"user_id"`
	EstimatedTDEE       int       `db:"estimated_tdee"`
	BaseCalories        int       `db:"base_calories"`
	FloorApplied        bool      `db:"floor_applied"`
	Objective           string    `db:"objective"`
	WeeklyRateKG        float64   `db:"weekly_rate_kg"`
	WeeksToGoal         int       `db:"weeks_to_goal"`
	PreferredDiet       string    `db:"preferred_diet"`
	CalorieFloor        string    `db:"calorie_floor"`
	TrainingType        string    `db:"training_type"`
	CalorieDistribution string    `db:"calorie_distribution"`
	ProteinIntake       string    `db:"protein_intake"`
	CreatedAt           time.Time `db:"created_at"`
}

// dietPlanDayRow maps to diet_plan_days.
type dietPlanDayRow struct {
	DayIndex      int  `db:"day_index"`
	IsTrainingDay bool `db:"is_training_day"`
	Calories      int  `db:"calories"`
	ProteinG      int  `db:"protein_g"`
	CarbsG        int  `db:"carbs_g"`
	FatG          int  `db:"fat_g"`
}

// nutritionLogItem maps to nutrition_log_items. Macro grams are nullable so
// calorie-only entries work.
type nutritionLogItem struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	ItemName  string     `json:"item_name"  db:"item_name"`
	Meal      string     `json:"meal"       db:"meal"`
	Calories  int        `json:"calories"   db:"calories"`
	ProteinG  *float64   `json:"protein_g"  db:"protein_g"`
	CarbsG    *float64   `json:"carbs_g"    db:"carbs_g"`
	FatG      *float64   `json:"fat_g"      db:"fat_g"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// dailyNutritionSummary is the response shape for GET /nutrition-log/daily.
// Target is nil when the user has no saved diet plan.
type dailyNutritionSummary struct {
	Date         string             `json:"date"`
	Target       *dayTarget         `json:"target"`
	Calories     int                `json:"calories"`
	ProteinG     float64            `json:"protein_g"`
	CarbsG       float64            `json:"carbs_g"`
	FatG         float64            `json:"fat_g"`
	CaloriesLeft *int               `json:"calories_left"`
	Items        []nutritionLogItem `json:"items"`
}

/* ─── Requests ───────────────────────────────────────────────────────── */

// patchProfileRequest is the request body for PATCH /api/profile. Pointer
// fields distinguish "not provided" from zero. Weights are in the unit given
// by WeightUnit, or the stored preference when WeightUnit is omitted.
type patchProfileRequest struct {
	Sex            *string  `json:"sex"`
	DateOfBirth    *string  `json:"date_of_birth"` // YYYY-MM-DD
	HeightCM       *float64 `json:"height_cm"`
	Weight         *float64 `json:"weight"`
	ActivityLevel  *string  `json:"activity_level"`
	WeightUnit     *string  `json:"weight_unit"`
	Objective      *string  `json:"objective"`
	StartingWeight *float64 `json:"starting_weight"`
	TargetWeight   *float64 `json:"target_weight"`
	WeeklyRate     *float64 `json:"weekly_rate"` // per week, in the same unit
}

// previewDietPlanRequest is the request body for POST /api/diet-plan/preview.
type previewDietPlanRequest struct {
	Profile  userProfile      `json:"profile"`
	Goal     weightGoal       `json:"goal"`
	Builder  dietPlanBuilder  `json:"builder"`
	Schedule trainingSchedule `json:"schedule"`
}

// createNutritionLogItemRequest is the request body for POST /api/nutrition-log/items.
type createNutritionLogItemRequest struct {
	Date     string   `json:"date"`
	ItemName string   `json:"item_name"`
	Meal     string   `json:"meal"`
	Calories int      `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}
