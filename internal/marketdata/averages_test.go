package marketdata

import (
	"math"
	"testing"
	"time"

	"dividend-screener/internal/models"
)

func bars(closes ...float64) []models.PriceBar {
	out := make([]models.PriceBar, len(closes))
	start := models.NewDate(2026, time.August, 1)
	for i, c := range closes {
		out[i] = models.PriceBar{Date: start.AddDays(i), Close: c}
	}
	return out
}

func TestWithMovingAverages(t *testing.T) {
	input := bars(1, 2, 3, 4, 5, 6, 7)
	got := WithMovingAverages(input)

	if got[3].MA5 != 0 {
		t.Errorf("MA5 before full window = %v, want 0", got[3].MA5)
	}
	if got[4].MA5 != 3 { // mean(1..5)
		t.Errorf("MA5 at first full window = %v, want 3", got[4].MA5)
	}
	if got[6].MA5 != 5 { // mean(3..7)
		t.Errorf("MA5 at end = %v, want 5", got[6].MA5)
	}
	if got[6].MA20 != 0 {
		t.Errorf("MA20 with short history = %v, want 0", got[6].MA20)
	}

	// Input is not mutated.
	if input[4].MA5 != 0 {
		t.Error("WithMovingAverages mutated its input")
	}
}

func TestWithMovingAveragesFullWindow(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	got := WithMovingAverages(bars(closes...))

	// mean(1..20) = 10.5 at index 19.
	if math.Abs(got[19].MA20-10.5) > 1e-9 {
		t.Errorf("MA20 at first full window = %v, want 10.5", got[19].MA20)
	}

	latest, ok := LatestComplete(got)
	if !ok {
		t.Fatal("LatestComplete() = false, want true")
	}
	// mean(6..25) = 15.5 at the last bar.
	if math.Abs(latest.MA20-15.5) > 1e-9 {
		t.Errorf("latest MA20 = %v, want 15.5", latest.MA20)
	}
}

func TestLatestCompleteShortHistory(t *testing.T) {
	if _, ok := LatestComplete(WithMovingAverages(bars(1, 2, 3))); ok {
		t.Error("LatestComplete() = true for short history")
	}
}
