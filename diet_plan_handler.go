package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// validatePreview checks the inputs a preview request supplies directly.
func validatePreview(req previewDietPlanRequest) string {
	if !validWeightKG(req.Profile.WeightKG) {
		return "profile.weight_kg must be between 0 and 635"
	}
	if req.Profile.HeightCM != nil && !validHeightCM(*req.Profile.HeightCM) {
		return "profile.height_cm must be between 50 and 275"
	}
	if req.Profile.Age != nil && (*req.Profile.Age < 0 || *req.Profile.Age > maxAgeYears) {
		return "profile.age must be between 0 and 130"
	}
	if _, ok := activityMultipliers[req.Profile.ActivityLevel]; !ok {
		return "profile.activity_level must be one of: " + keysOf(activityMultipliers)
	}
	if req.Profile.Sex != nil && !validSexes[*req.Profile.Sex] {
		return "profile.sex must be one of: " + keysOf(validSexes)
	}
	if !validObjectives[req.Goal.Objective] {
		return "goal.objective must be one of: " + keysOf(validObjectives)
	}
	if req.Goal.WeeklyRateKG < 0 {
		return "goal.weekly_rate_kg must not be negative"
	}
	return req.Builder.validate()
}

// previewDietPlan computes a plan from inputs supplied in the body without
// reading or writing the database. Used by onboarding before anything is saved.
// POST /api/diet-plan/preview.
func (h *Handler) previewDietPlan(c *gin.Context) {
	var req previewDietPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Builder = req.Builder.withDefaults()
	if msg := validatePreview(req); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	c.JSON(http.StatusOK, computeDietPlan(req.Profile, req.Goal, req.Builder, req.Schedule))
}

// createDietPlan computes a plan from the stored profile, goal, latest
// weight and training schedule plus the builder in the body, then saves it.
// POST /api/diet-plan.
func (h *Handler) createDietPlan(c *gin.Context) {
	userID := c.GetInt("user_id")

	var builder dietPlanBuilder
	if err := c.ShouldBindJSON(&builder); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	builder = builder.withDefaults()
	if msg := builder.validate(); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	row, err := h.loadProfile(c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "profile not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		}
		return
	}
	profile, goal, ok := row.snapshot(time.Now())
	if !ok {
		apiError(c, http.StatusUnprocessableEntity, "profile needs weight and activity_level before a diet plan can be built")
		return
	}
	profile.WeightKG = h.latestWeightKG(c, userID, profile.WeightKG)

	schedule, err := h.loadTrainingSchedule(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch training schedule")
		return
	}

	plan := computeDietPlan(profile, goal, builder, schedule)
	saved, err := saveDietPlan(c, h.db, userID, plan)
	if err != nil {
		log.Printf("[createDietPlan] save failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to save diet plan")
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// getCurrentDietPlan returns the user's most recently saved plan.
// GET /api/diet-plan/current. 404 when none has been saved yet.
func (h *Handler) getCurrentDietPlan(c *gin.Context) {
	userID := c.GetInt("user_id")

	plan, err := loadCurrentDietPlan(c, h.db, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "no diet plan yet")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch diet plan")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

/* ─── Persistence ────────────────────────────────────────────────────── */

// saveDietPlan stores the plan and its 7 days in one transaction and returns
// it with ID and CreatedAt set.
func saveDietPlan(ctx context.Context, pool *pgxpool.Pool, userID int, plan dietPlan) (dietPlan, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return plan, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.New().String()
	var createdAt time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO diet_plans (id, user_id, estimated_tdee, base_calories, floor_applied,
			objective, weekly_rate_kg, weeks_to_goal, preferred_diet, calorie_floor,
			training_type, calorie_distribution, protein_intake)
		 VALUES (@id, @userID, @tdee, @base, @floorApplied, @objective, @rate, @weeks,
			@diet, @floor, @training, @distribution, @protein)
		 RETURNING created_at`,
		pgx.NamedArgs{
			"id": id, "userID": userID, "tdee": plan.EstimatedTDEE,
			"base": plan.BaseCalories, "floorApplied": plan.FloorApplied,
			"objective": plan.Objective, "rate": plan.WeeklyRateKG, "weeks": plan.WeeksToGoal,
			"diet": plan.PreferredDiet, "floor": plan.CalorieFloor, "training": plan.TrainingType,
			"distribution": plan.CalorieDistribution, "protein": plan.ProteinIntake,
		}).Scan(&createdAt)
	if err != nil {
		return plan, fmt.Errorf("insert plan: %w", err)
	}

	batch := &pgx.Batch{}
	for _, d := range plan.Days {
		batch.Queue(
			`INSERT INTO diet_plan_days (plan_id, day_index, is_training_day, calories, protein_g, carbs_g, fat_g)
			 VALUES (@planID, @dayIndex, @training, @calories, @protein, @carbs, @fat)`,
			pgx.NamedArgs{
				"planID": id, "dayIndex": d.DayIndex, "training": d.IsTrainingDay,
				"calories": d.Calories, "protein": d.ProteinG, "carbs": d.CarbsG, "fat": d.FatG,
			})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return plan, fmt.Errorf("insert days: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return plan, fmt.Errorf("commit: %w", err)
	}

	plan.ID = id
	plan.CreatedAt = &createdAt
	return plan, nil
}

// loadCurrentDietPlan returns the newest saved plan for the user. Returns
// pgx.ErrNoRows when there is none.
func loadCurrentDietPlan(ctx context.Context, pool *pgxpool.Pool, userID int) (dietPlan, error) {
	row, err := queryOne[dietPlanRow](pool, ctx,
		`SELECT * FROM diet_plans WHERE user_id = @userID
		 ORDER BY created_at DESC LIMIT 1`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return dietPlan{}, err
	}

	days, err := queryMany[dietPlanDayRow](pool, ctx,
		`SELECT day_index, is_training_day, calories, protein_g, carbs_g, fat_g
		 FROM diet_plan_days WHERE plan_id = @planID ORDER BY day_index`,
		pgx.NamedArgs{"planID": row.ID})
	if err != nil {
		return dietPlan{}, fmt.Errorf("load days: %w", err)
	}

	return row.toDietPlan(days), nil
}

func (r dietPlanRow) toDietPlan(days []dietPlanDayRow) dietPlan {
	createdAt := r.CreatedAt
	plan := dietPlan{
		ID:            r.ID,
		CreatedAt:     &createdAt,
		EstimatedTDEE: r.EstimatedTDEE,
		BaseCalories:  r.BaseCalories,
		FloorApplied:  r.FloorApplied,
		Objective:     r.Objective,
		WeeklyRateKG:  r.WeeklyRateKG,
		WeeksToGoal:   r.WeeksToGoal,
		dietPlanBuilder: dietPlanBuilder{
			PreferredDiet:       r.PreferredDiet,
			CalorieFloor:        r.CalorieFloor,
			TrainingType:        r.TrainingType,
			CalorieDistribution: r.CalorieDistribution,
			ProteinIntake:       r.ProteinIntake,
		},
		Days: make([]dayTarget, 0, len(days)),
	}
	for _, d := range days {
		plan.Days = append(plan.Days, dayTarget{
			DayIndex:      d.DayIndex,
			Weekday:       weekdayNames[d.DayIndex%7],
			IsTrainingDay: d.IsTrainingDay,
			Calories:      d.Calories,
			ProteinG:      d.ProteinG,
			CarbsG:        d.CarbsG,
			FatG:          d.FatG,
		})
	}
	return plan
}
