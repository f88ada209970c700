package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// setupHandlerTest creates a Gin engine with no database behind it. Only
// routes that answer before touching the pool can be exercised this way.
func setupHandlerTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := Handler{}
	router := gin.New()
	// Skip auth middleware for tests — set a dummy user_id
	api := router.Group("/api", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	})
	router.POST("/api/login", h.login)
	api.POST("/diet-plan/preview", h.previewDietPlan)
	api.POST("/diet-plan", h.createDietPlan)
	api.PATCH("/profile", h.patchProfile)
	api.PUT("/training-schedule", h.putTrainingSchedule)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.POST("/nutrition-log/items", h.createNutritionLogItem)
	api.GET("/nutrition-log/daily", h.getDailyNutrition)
	return router
}

// doRequest sends a request with an optional JSON body.
func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// errorMessage decodes the {"error": "..."} body.
func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Error
}

const previewBody = `{
	"profile": {"weight_kg": 80, "height_cm": 180, "age": 30, "sex": "male", "activity_level": "moderate"},
	"goal": {"objective": "lose", "starting_weight_kg": 80, "target_weight_kg": 75, "weekly_rate_kg": 0.5},
	"builder": {"preferred_diet": "balanced", "training_type": "strength", "calorie_distribution": "training_day_shift", "protein_intake": "high"},
	"schedule": [true, false, true, false, true, false, false]
}`

/* ─── Preview ────────────────────────────────────────────────────────── */

func TestPreviewDietPlan_Success(t *testing.T) {
	router := setupHandlerTest()

	w := doRequest(router, "POST", "/api/diet-plan/preview", previewBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var plan dietPlan
	if err := json.Unmarshal(w.Body.Bytes(), &plan); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(plan.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(plan.Days))
	}
	if plan.EstimatedTDEE != 2759 || plan.BaseCalories != 2209 {
		t.Errorf("tdee/base = %d/%d, want 2759/2209", plan.EstimatedTDEE, plan.BaseCalories)
	}
	if plan.WeeksToGoal != 10 {
		t.Errorf("WeeksToGoal = %d, want 10", plan.WeeksToGoal)
	}
	if plan.CalorieFloor != "standard" {
		t.Errorf("CalorieFloor = %q, want default standard", plan.CalorieFloor)
	}
	if plan.ID != "" || plan.CreatedAt != nil {
		t.Errorf("preview should not carry persistence fields, got id=%q created_at=%v", plan.ID, plan.CreatedAt)
	}
	if !plan.Days[0].IsTrainingDay || plan.Days[1].IsTrainingDay {
		t.Errorf("schedule not applied: %+v", plan.Days[:2])
	}
	if plan.Days[0].Calories <= plan.Days[1].Calories {
		t.Errorf("training day %d kcal not above rest day %d kcal", plan.Days[0].Calories, plan.Days[1].Calories)
	}
}

func TestPreviewDietPlan_Validation(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"malformed json", `{"profile":`, "invalid request body"},
		{"zero weight", `{"profile":{"weight_kg":0,"activity_level":"light"},"goal":{"objective":"maintain"}}`, "profile.weight_kg must be between 0 and 635"},
		{"unknown activity", `{"profile":{"weight_kg":70,"activity_level":"couch"},"goal":{"objective":"maintain"}}`, "profile.activity_level must be one of: active, light, moderate, sedentary, very_active"},
		{"unknown objective", `{"profile":{"weight_kg":70,"activity_level":"light"},"goal":{"objective":"bulk"}}`, "goal.objective must be one of: gain, lose, maintain"},
		{"negative rate", `{"profile":{"weight_kg":70,"activity_level":"light"},"goal":{"objective":"lose","weekly_rate_kg":-0.5}}`, "goal.weekly_rate_kg must not be negative"},
		{"unknown diet", `{"profile":{"weight_kg":70,"activity_level":"light"},"goal":{"objective":"maintain"},"builder":{"preferred_diet":"carnivore"}}`, "preferred_diet must be one of: balanced, keto, low_carb, low_fat"},
		{"unknown floor", `{"profile":{"weight_kg":70,"activity_level":"light"},"goal":{"objective":"maintain"},"builder":{"calorie_floor":"none"}}`, "calorie_floor must be one of: low, standard"},
		{"height too short", `{"profile":{"weight_kg":60,"height_cm":20,"age":30,"sex":"female","activity_level":"light"},"goal":{"objective":"maintain"}}`, "profile.height_cm must be between 50 and 275"},
		{"height too tall", `{"profile":{"weight_kg":60,"height_cm":300,"age":30,"sex":"female","activity_level":"light"},"goal":{"objective":"maintain"}}`, "profile.height_cm must be between 50 and 275"},
		{"age over 130", `{"profile":{"weight_kg":60,"height_cm":150,"age":300,"sex":"female","activity_level":"sedentary"},"goal":{"objective":"lose","weekly_rate_kg":0.5}}`, "profile.age must be between 0 and 130"},
		{"negative age", `{"profile":{"weight_kg":60,"height_cm":150,"age":-1,"sex":"female","activity_level":"sedentary"},"goal":{"objective":"maintain"}}`, "profile.age must be between 0 and 130"},
	}
	router := setupHandlerTest()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, "POST", "/api/diet-plan/preview", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := errorMessage(t, w); got != tc.wantMsg {
				t.Errorf("error = %q, want %q", got, tc.wantMsg)
			}
		})
	}
}

// TestPreviewDietPlan_SmallestOldestProfile checks the edge of the accepted
// ranges still yields a positive plan sitting on the calorie floor.
func TestPreviewDietPlan_SmallestOldestProfile(t *testing.T) {
	router := setupHandlerTest()
	body := `{
		"profile": {"weight_kg": 20, "height_cm": 50, "age": 130, "sex": "female", "activity_level": "sedentary"},
		"goal": {"objective": "lose", "weekly_rate_kg": 0.5}
	}`

	w := doRequest(router, "POST", "/api/diet-plan/preview", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var plan dietPlan
	if err := json.Unmarshal(w.Body.Bytes(), &plan); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if plan.EstimatedTDEE != 960 || plan.BaseCalories != 1500 || !plan.FloorApplied {
		t.Errorf("tdee/base/floor = %d/%d/%v, want 960/1500/true", plan.EstimatedTDEE, plan.BaseCalories, plan.FloorApplied)
	}
	for _, d := range plan.Days {
		if d.Calories <= 0 {
			t.Errorf("%s calories = %d", d.Weekday, d.Calories)
		}
		if diff := macroKcal(d) - d.Calories; diff < -5 || diff > 5 {
			t.Errorf("%s: macros %d kcal vs target %d", d.Weekday, macroKcal(d), d.Calories)
		}
	}
}

// TestCreateDietPlan_RejectsUnknownPolicy verifies builder validation runs
// before the profile is loaded.
func TestCreateDietPlan_RejectsUnknownPolicy(t *testing.T) {
	router := setupHandlerTest()
	w := doRequest(router, "POST", "/api/diet-plan", `{"protein_intake":"extreme"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if got := errorMessage(t, w); got != "protein_intake must be one of: high, low, moderate, very_high" {
		t.Errorf("unexpected error %q", got)
	}
}

/* ─── Other request validation ───────────────────────────────────────── */

func TestRequestValidation(t *testing.T) {
	cases := []struct {
		name    string
		method  string
		path    string
		body    string
		wantMsg string
	}{
		{"login missing password", "POST", "/api/login", `{"username":"lg"}`, "username and password are required"},
		{"profile no fields", "PATCH", "/api/profile", `{}`, "no fields to update"},
		{"profile bad activity", "PATCH", "/api/profile", `{"activity_level":"couch"}`, "activity_level must be one of: active, light, moderate, sedentary, very_active"},
		{"profile bad unit", "PATCH", "/api/profile", `{"weight_unit":"stone"}`, "weight_unit must be one of: kg, lbs"},
		{"profile rate too fast", "PATCH", "/api/profile", `{"weight_unit":"lbs","weekly_rate":3}`, "weekly_rate must be at most 1.0 kg (2.2 lbs) per week"},
		{"schedule short", "PUT", "/api/training-schedule", `{"days":[true,false]}`, "days must have exactly 7 entries, Monday first"},
		{"weight log no range", "GET", "/api/weight-log?start=2026-01-01", ``, "start and end query params are required"},
		{"weight log inverted range", "GET", "/api/weight-log?start=2026-02-01&end=2026-01-01", ``, "start must not be after end"},
		{"weight entry zero", "POST", "/api/weight-log", `{"date":"2026-01-01","weight_kg":0}`, "weight_kg must be between 0 and 635"},
		{"weight entry update too heavy", "PUT", "/api/weight-log/1", `{"weight_kg":700}`, "weight_kg must be between 0 and 635"},
		{"profile weight over bound", "PATCH", "/api/profile", `{"weight_unit":"kg","weight":700}`, "weight must be between 0 and 635 kg (1400 lbs)"},
		{"profile target over bound in lbs", "PATCH", "/api/profile", `{"weight_unit":"lbs","target_weight":1500}`, "target_weight must be between 0 and 635 kg (1400 lbs)"},
		{"profile starting weight zero", "PATCH", "/api/profile", `{"weight_unit":"kg","starting_weight":0}`, "starting_weight must be between 0 and 635 kg (1400 lbs)"},
		{"nutrition bad meal", "POST", "/api/nutrition-log/items", `{"item_name":"Oats","meal":"brunch","calories":300}`, "meal must be one of: breakfast, dinner, lunch, snack"},
		{"nutrition missing name", "POST", "/api/nutrition-log/items", `{"meal":"lunch","calories":300}`, "item_name is required"},
		{"nutrition bad date", "GET", "/api/nutrition-log/daily?date=01-02-2026", ``, "invalid date, expected YYYY-MM-DD"},
	}
	router := setupHandlerTest()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, tc.method, tc.path, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := errorMessage(t, w); got != tc.wantMsg {
				t.Errorf("error = %q, want %q", got, tc.wantMsg)
			}
		})
	}
}

/* ─── Pure helpers ───────────────────────────────────────────────────── */

// TestValidateProfileWeights verifies profile weights share the weight log's
// bound after conversion from the display unit.
func TestValidateProfileWeights(t *testing.T) {
	heavy := 1300.0 // lbs, about 590 kg
	if msg := validateProfileWeights(patchProfileRequest{Weight: &heavy}, "lbs"); msg != "" {
		t.Errorf("1300 lbs rejected: %q", msg)
	}
	if msg := validateProfileWeights(patchProfileRequest{Weight: &heavy}, "kg"); msg == "" {
		t.Error("1300 kg accepted")
	}
}

// TestQueryError verifies only a missing row maps to 404; any other database
// failure is a 500.
func TestQueryError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, "profile not found"},
		{"wrapped no rows", fmt.Errorf("queryOne: %w", pgx.ErrNoRows), http.StatusNotFound, "profile not found"},
		{"connection failure", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "failed to fetch profile"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			queryError(c, tc.err, "profile not found", "failed to fetch profile")
			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if got := errorMessage(t, w); got != tc.wantMsg {
				t.Errorf("error = %q, want %q", got, tc.wantMsg)
			}
		})
	}
}

func TestSummarizeNutrition(t *testing.T) {
	p, c, f := 30.0, 50.0, 10.0
	items := []nutritionLogItem{
		{ItemName: "Oats", Meal: "breakfast", Calories: 400, ProteinG: &p, CarbsG: &c, FatG: &f},
		{ItemName: "Coffee", Meal: "breakfast", Calories: 5},
	}

	s := summarizeNutrition("2026-10-19", items, nil)
	if s.Calories != 405 || s.ProteinG != 30 || s.CarbsG != 50 || s.FatG != 10 {
		t.Errorf("totals = %+v", s)
	}
	if s.CaloriesLeft != nil {
		t.Errorf("CaloriesLeft = %d, want nil without a plan", *s.CaloriesLeft)
	}

	target := &dayTarget{Weekday: "monday", Calories: 2000}
	s = summarizeNutrition("2026-10-19", items, target)
	if s.CaloriesLeft == nil || *s.CaloriesLeft != 1595 {
		t.Errorf("CaloriesLeft = %v, want 1595", s.CaloriesLeft)
	}
}

// TestProfileSnapshot verifies the stored profile maps onto calculator inputs,
// with an unusable date of birth dropping the age.
func TestProfileSnapshot(t *testing.T) {
	weight := 82.5
	activity := "light"
	objective := objectiveLose
	rate := 0.5
	target := 75.0
	r := profileRow{WeightKG: &weight, ActivityLevel: &activity, WeightUnit: "lbs", Objective: &objective, WeeklyRateKG: &rate, TargetWeightKG: &target}

	p, g, ok := r.snapshot(mondayOf(currentMonday()))
	if !ok {
		t.Fatal("expected ok=true")
	}
	if p.WeightKG != 82.5 || p.ActivityLevel != "light" || p.Age != nil {
		t.Errorf("profile = %+v", p)
	}
	if g.Objective != objectiveLose || g.WeeklyRateKG != 0.5 || g.TargetWeightKG != 75 {
		t.Errorf("goal = %+v", g)
	}

	r.ActivityLevel = nil
	if _, _, ok := r.snapshot(currentMonday()); ok {
		t.Error("expected ok=false without activity level")
	}
}

func TestPopulateComputedProfile_DisplayWeightInLbs(t *testing.T) {
	weight := 100.0
	activity := "sedentary"
	r := profileRow{WeightKG: &weight, ActivityLevel: &activity, WeightUnit: "lbs"}

	populateComputedProfile(&r)
	if r.DisplayWeight == nil || *r.DisplayWeight != 220.5 {
		t.Errorf("DisplayWeight = %v, want 220.5", r.DisplayWeight)
	}
	// Weight-only BMR: 100*24 = 2400, sedentary x1.2 = 2880.
	if r.EstimatedTDEE == nil || *r.EstimatedTDEE != 2880 {
		t.Errorf("EstimatedTDEE = %v, want 2880", r.EstimatedTDEE)
	}
	if r.WeeksToGoal == nil || *r.WeeksToGoal != 0 {
		t.Errorf("WeeksToGoal = %v, want 0", r.WeeksToGoal)
	}
}
