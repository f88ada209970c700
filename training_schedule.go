package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// loadTrainingSchedule reads the user's weekly day plans. Days without a row
// count as rest days.
func (h *Handler) loadTrainingSchedule(c *gin.Context, userID int) (trainingSchedule, error) {
	var s trainingSchedule
	rows, err := queryMany[trainingDayRow](h.db, c,
		`SELECT day_index, is_training FROM training_schedule
		 WHERE user_id = @userID ORDER BY day_index`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return s, err
	}
	for _, r := range rows {
		if r.DayIndex >= 0 && r.DayIndex < len(s) {
			s[r.DayIndex] = r.IsTraining
		}
	}
	return s, nil
}

// getTrainingSchedule returns 7 booleans, Monday first, along with the
// current week's Monday and today's index into the week.
// GET /api/training-schedule.
func (h *Handler) getTrainingSchedule(c *gin.Context) {
	userID := c.GetInt("user_id")

	s, err := h.loadTrainingSchedule(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch training schedule")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days":          s,
		"training_days": s.trainingDays(),
		"week_start":    DateOnly{currentMonday()},
		"today_index":   weekdayIndex(time.Now().UTC()),
	})
}

// putTrainingSchedule replaces the whole week.
// PUT /api/training-schedule. Body: { "days": [true, false, ...] } with exactly 7 entries.
func (h *Handler) putTrainingSchedule(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Days []bool `json:"days"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.Days) != 7 {
		apiError(c, http.StatusBadRequest, "days must have exactly 7 entries, Monday first")
		return
	}

	var s trainingSchedule
	copy(s[:], body.Days)

	batch := &pgx.Batch{}
	for i, training := range s {
		batch.Queue(
			`INSERT INTO training_schedule (user_id, day_index, is_training)
			 VALUES (@userID, @dayIndex, @isTraining)
			 ON CONFLICT (user_id, day_index) DO UPDATE SET is_training = EXCLUDED.is_training`,
			pgx.NamedArgs{"userID": userID, "dayIndex": i, "isTraining": training})
	}
	if err := h.db.SendBatch(c, batch).Close(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save training schedule")
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": s, "training_days": s.trainingDays()})
}
