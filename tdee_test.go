package main

import (
	"math"
	"testing"
	"time"
)

/* ─── BMR / TDEE tests ───────────────────────────────────────────────── */

// TestEstimateBMR_MaleFemale verifies the Mifflin-St Jeor constants for each sex.
//
// Inputs: 80kg, 180cm, 30 years. Male: 800+1125-150+5 = 1780. Female: 1614.
func TestEstimateBMR_MaleFemale(t *testing.T) {
	male := maleProfile()
	if got := estimateBMR(male); math.Abs(got-1780) > 1e-9 {
		t.Errorf("male BMR = %f, want 1780", got)
	}

	female := maleProfile()
	sex := "female"
	female.Sex = &sex
	if got := estimateBMR(female); math.Abs(got-1614) > 1e-9 {
		t.Errorf("female BMR = %f, want 1614", got)
	}
}

// TestEstimateBMR_WeightOnlyFallback verifies that a profile missing any of
// height, age or sex uses bodyweight x 24.
func TestEstimateBMR_WeightOnlyFallback(t *testing.T) {
	cases := []struct {
		name  string
		mutFn func(p *userProfile)
	}{
		{"nil HeightCM", func(p *userProfile) { p.HeightCM = nil }},
		{"nil Age", func(p *userProfile) { p.Age = nil }},
		{"nil Sex", func(p *userProfile) { p.Sex = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := maleProfile()
			tc.mutFn(&p)
			if got := estimateBMR(p); got != 80*24 {
				t.Errorf("BMR = %f, want %d", got, 80*24)
			}
		})
	}
}

// TestEstimateBMR_NeverBelowMinimum verifies the lower bound on profiles where
// Mifflin-St Jeor would go negative (20kg, 50cm, 130 years: -298.5) or the
// weight-only estimate is tiny (20kg: 480).
func TestEstimateBMR_NeverBelowMinimum(t *testing.T) {
	height := 50.0
	age := 130
	sex := "female"
	p := userProfile{WeightKG: 20, HeightCM: &height, Age: &age, Sex: &sex, ActivityLevel: "sedentary"}
	if got := estimateBMR(p); got != minBMR {
		t.Errorf("BMR = %f, want %f", got, minBMR)
	}
	if got := estimateTDEE(p); math.Abs(got-minBMR*1.2) > 1e-9 {
		t.Errorf("TDEE = %f, want %f", got, minBMR*1.2)
	}

	p.HeightCM = nil
	if got := estimateBMR(p); got != minBMR {
		t.Errorf("weight-only BMR = %f, want %f", got, minBMR)
	}
}

// TestEstimateTDEE_UnknownActivityIsSedentary verifies that an unrecognised
// activity level gets the sedentary multiplier.
func TestEstimateTDEE_UnknownActivityIsSedentary(t *testing.T) {
	p := maleProfile()
	p.ActivityLevel = "couch"
	if got := estimateTDEE(p); math.Abs(got-1780*1.2) > 1e-9 {
		t.Errorf("TDEE = %f, want %f", got, 1780*1.2)
	}
}

/* ─── Age tests ──────────────────────────────────────────────────────── */

func TestAgeOn(t *testing.T) {
	day := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		dob    time.Time
		want   int
		wantOK bool
	}{
		{"birthday passed", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 36, true},
		{"birthday upcoming", time.Date(1990, 12, 1, 0, 0, 0, 0, time.UTC), 35, true},
		{"birthday today", time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC), 26, true},
		{"future dob", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 0, false},
		{"over 130", time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ageOn(tc.dob, day)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("ageOn = (%d, %v), want (%d, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

/* ─── Unit conversion ────────────────────────────────────────────────── */

func TestKgLbsRoundTrip(t *testing.T) {
	if got := roundTo(kgToLbs(100), 1); got != 220.5 {
		t.Errorf("kgToLbs(100) = %f, want 220.5", got)
	}
	if got := roundTo(lbsToKG(kgToLbs(72.3)), 2); got != 72.3 {
		t.Errorf("round trip = %f, want 72.3", got)
	}
}

/* ─── Week helpers ───────────────────────────────────────────────────── */

// TestCurrentMonday_ReturnsMonday verifies that the returned time's weekday is Monday.
func TestCurrentMonday_ReturnsMonday(t *testing.T) {
	monday := currentMonday()
	if monday.Weekday() != time.Monday {
		t.Errorf("currentMonday() returned %s, want Monday", monday.Weekday())
	}
	if monday.Hour() != 0 || monday.Minute() != 0 || monday.Second() != 0 || monday.Nanosecond() != 0 {
		t.Errorf("currentMonday() returned non-midnight time: %v", monday)
	}
}

// TestWeekdayIndex verifies the Monday=0..Sunday=6 mapping, including across
// a year boundary for mondayOf.
func TestWeekdayIndex(t *testing.T) {
	// 2026-01-04 is a Sunday.
	sunday := time.Date(2026, 1, 4, 15, 30, 0, 0, time.UTC)
	if got := weekdayIndex(sunday); got != 6 {
		t.Errorf("weekdayIndex(Sunday) = %d, want 6", got)
	}
	if got := weekdayIndex(sunday.AddDate(0, 0, 1)); got != 0 {
		t.Errorf("weekdayIndex(Monday) = %d, want 0", got)
	}
	want := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)
	if got := mondayOf(sunday); !got.Equal(want) {
		t.Errorf("mondayOf(%v) = %v, want %v", sunday, got, want)
	}
}
