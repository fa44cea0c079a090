package marketdata

import (
	"dividend-screener/internal/models"
)

// WithMovingAverages returns a copy of bars with 5- and 20-day simple
// moving averages filled in. Bars earlier than a full window keep a zero
// average. Input must be ordered oldest first.
func WithMovingAverages(bars []models.PriceBar) []models.PriceBar {
	out := make([]models.PriceBar, len(bars))
	copy(out, bars)

	for i := range out {
		out[i].MA5 = rollingMean(out, i, 5)
		out[i].MA20 = rollingMean(out, i, 20)
	}
	return out
}

func rollingMean(bars []models.PriceBar, i, window int) float64 {
	if i+1 < window {
		return 0
	}
	var sum float64
	for j := i - window + 1; j <= i; j++ {
		sum += bars[j].Close
	}
	return sum / float64(window)
}

// LatestComplete returns the most recent bar that has a full 20-day
// average, or false when the history is too short.
func LatestComplete(bars []models.PriceBar) (models.PriceBar, bool) {
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].MA20 > 0 {
			return bars[i], true
		}
	}
	return models.PriceBar{}, false
}
