package screener

import (
	"testing"

	"dividend-screener/internal/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		in        models.ScoreInputs
		wantScore float64
		wantGrade models.Grade
	}{
		{
			// Yield component caps at 40, recovery ratio (100-99)/100
			// adds 1 point, flat price earns the stability bonus.
			name:      "capped yield with stability bonus",
			in:        models.ScoreInputs{YieldPct: 20, CurrentPrice: 100, MovingAvg20: 100, DividendAmount: 1},
			wantScore: 51,
			wantGrade: models.GradeD,
		},
		{
			name:      "missing yield",
			in:        models.ScoreInputs{CurrentPrice: 100, MovingAvg20: 100, DividendAmount: 1},
			wantScore: 0,
			wantGrade: models.GradeF,
		},
		{
			name:      "missing price",
			in:        models.ScoreInputs{YieldPct: 5, MovingAvg20: 100, DividendAmount: 1},
			wantScore: 0,
			wantGrade: models.GradeF,
		},
		{
			name:      "missing moving average",
			in:        models.ScoreInputs{YieldPct: 5, CurrentPrice: 100, DividendAmount: 1},
			wantScore: 0,
			wantGrade: models.GradeF,
		},
		{
			name:      "missing dividend amount",
			in:        models.ScoreInputs{YieldPct: 5, CurrentPrice: 100, MovingAvg20: 100},
			wantScore: 0,
			wantGrade: models.GradeF,
		},
		{
			// Price far above trend: recovery ratio is negative and
			// floors at 0, price outside the 2% stability window.
			name:      "price well above trend",
			in:        models.ScoreInputs{YieldPct: 2, CurrentPrice: 130, MovingAvg20: 100, DividendAmount: 1},
			wantScore: 4,
			wantGrade: models.GradeF,
		},
		{
			// Deep discount to trend: recovery capped at 40, yield 10
			// gives 20, price outside stability window. 60 -> C.
			name:      "deep discount to trend",
			in:        models.ScoreInputs{YieldPct: 10, CurrentPrice: 50, MovingAvg20: 100, DividendAmount: 1},
			wantScore: 60,
			wantGrade: models.GradeC,
		},
		{
			// Max everything: 40 + 40 + 10 = 90 -> A+.
			name:      "all components maxed",
			in:        models.ScoreInputs{YieldPct: 25, CurrentPrice: 100, MovingAvg20: 100, DividendAmount: 41},
			wantScore: 90,
			wantGrade: models.GradeAPlus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, grade := Score(tt.in)
			if score != tt.wantScore {
				t.Errorf("Score() score = %v, want %v", score, tt.wantScore)
			}
			if grade != tt.wantGrade {
				t.Errorf("Score() grade = %v, want %v", grade, tt.wantGrade)
			}
		})
	}
}

func TestGradeThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  models.Grade
	}{
		{100, models.GradeAPlus},
		{90, models.GradeAPlus},
		{89.99, models.GradeA},
		{80, models.GradeA},
		{79.99, models.GradeB},
		{70, models.GradeB},
		{69.99, models.GradeC},
		{60, models.GradeC},
		{59.99, models.GradeD},
		{50, models.GradeD},
		{49.99, models.GradeF},
		{0, models.GradeF},
	}

	for _, tt := range tests {
		if got := gradeFor(tt.score); got != tt.want {
			t.Errorf("gradeFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
