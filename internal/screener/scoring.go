// Package screener implements the dividend screening pipeline: risk
// filtering, investability scoring and the orchestration loop.
package screener

import (
	"math"

	"dividend-screener/internal/models"
)

// Score component caps. Yield and recovery each contribute up to 40
// points, the stability bonus adds 10.
const (
	yieldCap        = 40.0
	recoveryCap     = 40.0
	stabilityBonus  = 10.0
	stabilityWindow = 0.02
)

// Score converts price, moving-average and dividend inputs into a 0-100
// investability score and a letter grade. A missing (zero) input forces
// score 0, grade F.
//
// The recovery component models the expected post-ex-dividend price as
// currentPrice - dividendAmount and rewards candidates whose adjusted
// price sits below the 20-day moving average, i.e. room to recover back
// to trend.
func Score(in models.ScoreInputs) (float64, models.Grade) {
	if in.YieldPct == 0 || in.CurrentPrice == 0 || in.MovingAvg20 == 0 || in.DividendAmount == 0 {
		return 0, models.GradeF
	}

	score := math.Min(in.YieldPct*2, yieldCap)

	recoveryRatio := (in.MovingAvg20 - (in.CurrentPrice - in.DividendAmount)) / in.MovingAvg20
	score += math.Max(0, math.Min(recoveryRatio*100, recoveryCap))

	if math.Abs(in.CurrentPrice-in.MovingAvg20) <= stabilityWindow*in.CurrentPrice {
		score += stabilityBonus
	}

	score = math.Round(math.Min(score, 100)*100) / 100

	return score, gradeFor(score)
}

func gradeFor(score float64) models.Grade {
	switch {
	case score >= 90:
		return models.GradeAPlus
	case score >= 80:
		return models.GradeA
	case score >= 70:
		return models.GradeB
	case score >= 60:
		return models.GradeC
	case score >= 50:
		return models.GradeD
	default:
		return models.GradeF
	}
}
