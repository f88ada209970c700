package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// validMeals is the set of allowed values for nutrition_log_items.meal.
// Unknown values get a 400 rather than a constraint error from the DB.
var validMeals = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// summarizeNutrition totals the day's items and compares them to the plan's
// target for that weekday. target may be nil.
func summarizeNutrition(date string, items []nutritionLogItem, target *dayTarget) dailyNutritionSummary {
	s := dailyNutritionSummary{Date: date, Target: target, Items: items}
	for _, item := range items {
		s.Calories += item.Calories
		if item.ProteinG != nil {
			s.ProteinG += *item.ProteinG
		}
		if item.CarbsG != nil {
			s.CarbsG += *item.CarbsG
		}
		if item.FatG != nil {
			s.FatG += *item.FatG
		}
	}
	if target != nil {
		left := target.Calories - s.Calories
		s.CaloriesLeft = &left
	}
	return s
}

// getDailyNutrition returns the logged items for a date next to that
// weekday's target from the current diet plan.
// GET /api/nutrition-log/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailyNutrition(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	items, err := queryMany[nutritionLogItem](h.db, c,
		`SELECT * FROM nutrition_log_items
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch items")
		return
	}
	if items == nil {
		items = []nutritionLogItem{}
	}

	var target *dayTarget
	plan, err := loadCurrentDietPlan(c, h.db, userID)
	switch {
	case err == nil:
		idx := weekdayIndex(day)
		for i := range plan.Days {
			if plan.Days[i].DayIndex == idx {
				target = &plan.Days[i]
				break
			}
		}
	case !errors.Is(err, pgx.ErrNoRows):
		apiError(c, http.StatusInternalServerError, "failed to fetch diet plan")
		return
	}

	c.JSON(http.StatusOK, summarizeNutrition(date, items, target))
}

// createNutritionLogItem inserts a food entry.
// POST /api/nutrition-log/items. Defaults date to today if omitted.
func (h *Handler) createNutritionLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createNutritionLogItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ItemName == "" {
		apiError(c, http.StatusBadRequest, "item_name is required")
		return
	}
	if !validMeals[body.Meal] {
		apiError(c, http.StatusBadRequest, "meal must be one of: "+keysOf(validMeals))
		return
	}
	if body.Calories < 0 {
		apiError(c, http.StatusBadRequest, "calories must not be negative")
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	item, err := queryOne[nutritionLogItem](h.db, c,
		`INSERT INTO nutrition_log_items (user_id, date, item_name, meal, calories, protein_g, carbs_g, fat_g)
		 VALUES (@userID, @date, @itemName, @meal, @calories, @proteinG, @carbsG, @fatG)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "itemName": body.ItemName,
			"meal": body.Meal, "calories": body.Calories, "proteinG": body.ProteinG,
			"carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// deleteNutritionLogItem removes a food entry. Returns 204 on success.
// DELETE /api/nutrition-log/items/:id.
func (h *Handler) deleteNutritionLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM nutrition_log_items WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "item not found")
		return
	}

	c.Status(http.StatusNoContent)
}
