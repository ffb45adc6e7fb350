package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ForecastConfig holds the tunable constants of the forecast engine.
// the default values are part of the output contract: renderers and
// downstream consumers depend on these exact thresholds.
type ForecastConfig struct {
	// MomentumLookbackHours is the recent-activity window ending at now.
	MomentumLookbackHours int

	// TrendUp and TrendDown classify the trend factor. both boundaries are
	// open: a factor sitting exactly on a threshold reads as stable.
	TrendUp   float64
	TrendDown float64

	// MomentumWeight and TrendWeight blend the two signals in the
	// pattern-based hourly prediction.
	MomentumWeight float64
	TrendWeight    float64

	// ConfidencePct is the flat fraction of a prediction used as the
	// standard-deviation stand-in. a heuristic, not a variance estimate.
	ConfidencePct float64

	// MarginMultiplier widens the confidence margin.
	MarginMultiplier float64
}

// DefaultForecastConfig returns the contract defaults.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		MomentumLookbackHours: 12,
		TrendUp:               1.15,
		TrendDown:             0.85,
		MomentumWeight:        0.3,
		TrendWeight:           0.7,
		ConfidencePct:         0.15,
		MarginMultiplier:      1.5,
	}
}

// Forecast is the full prediction bundle for one window.
// a pure function of (grid, average, now); recomputed on every refresh.
type Forecast struct {
	Pace          string
	Next24h       int
	Next24hMin    int
	Next24hMax    int
	EndOfRange    int
	EndOfRangeMin int
	EndOfRangeMax int
	TrendFactor   float64
	TrendLabel    string
	Momentum      float64
	MomentumLabel string
	DailyAvg      string
}

// CalculateForecast derives the forecast bundle from the current grid, the
// historical average, and the current instant. avg may be nil (no
// historical data), in which case every ratio defaults to neutral and
// projections fall back to the window's own pace. the engine never returns
// NaN or Inf and never panics on data-quality problems.
func CalculateForecast(grid *Grid, avg *AverageGrid, now time.Time, zone *Zone, cfg ForecastConfig) *Forecast {
	w := grid.Window
	totalHours := w.TotalHours()

	elapsed := now.Sub(w.Start).Hours()
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > totalHours {
		elapsed = totalHours
	}

	projected := paceProjection(grid.Total, elapsed, totalHours)

	f := &Forecast{
		Pace:        strconv.Itoa(projected),
		TrendFactor: 1,
		Momentum:    1,
		DailyAvg:    dailyAverage(grid.Total, elapsed),
	}

	if avg == nil {
		// no historical pattern: neutral ratios, flat-rate projections
		f.TrendLabel = trendLabel(1, cfg)
		f.MomentumLabel = momentumLabel(1)
		flatRateForecast(f, grid, now, elapsed, cfg)
		return f
	}

	lastDay := len(grid.Totals) - 1

	f.TrendFactor = trendFactor(grid.Total, comparableAverageTotal(avg, elapsed, lastDay))
	f.TrendLabel = trendLabel(f.TrendFactor, cfg)

	f.Momentum = momentum(grid, avg, now, zone, cfg.MomentumLookbackHours, lastDay)
	f.MomentumLabel = momentumLabel(f.Momentum)

	blend := f.Momentum*cfg.MomentumWeight + f.TrendFactor*cfg.TrendWeight

	next24 := next24Prediction(avg, w, now, zone, blend, f.TrendFactor, totalHours, lastDay)
	f.Next24h = round(next24)
	f.Next24hMin, f.Next24hMax = confidenceBounds(next24, next24, 1, cfg, 0)

	hoursRemaining := remainingHours(w.End, now)
	endSum := endOfRangePrediction(avg, w, now, zone, blend, hoursRemaining, lastDay)
	endPrediction := float64(grid.Total) + endSum
	f.EndOfRange = round(endPrediction)

	scale := math.Sqrt(float64(hoursRemaining) / 24)
	f.EndOfRangeMin, f.EndOfRangeMax = confidenceBounds(endPrediction, next24, scale, cfg, grid.Total)

	return f
}

// paceProjection extrapolates the current total linearly over the rest of
// the window. a window that has not begun projects its total as-is.
func paceProjection(total int, elapsed, totalHours float64) int {
	if elapsed <= 0 {
		return total
	}
	rate := float64(total) / elapsed
	return round(float64(total) + rate*(totalHours-elapsed))
}

// comparableAverageTotal sums the average grid over only the cells that
// have elapsed so far, giving an apples-to-apples baseline for the same
// amount of elapsed time. the cell at (h, d) begins d*24+h-12 nominal
// hours after the opening noon.
func comparableAverageTotal(avg *AverageGrid, elapsed float64, lastDay int) float64 {
	var sum float64
	for h := 0; h < hoursPerDay; h++ {
		for d := 0; d <= lastDay; d++ {
			if IsDisabled(h, d, lastDay) {
				continue
			}
			hoursFromStart := float64(d*hoursPerDay + h - 12)
			if hoursFromStart < elapsed {
				sum += avg.Cell(h, d)
			}
		}
	}
	return sum
}

// trendFactor compares current activity against the comparable baseline.
// neutral when there is no baseline to compare against.
func trendFactor(total int, comparable float64) float64 {
	if comparable == 0 {
		return 1
	}
	return float64(total) / comparable
}

// trendLabel classifies the factor and always carries the signed
// percentage, stable included.
func trendLabel(factor float64, cfg ForecastConfig) string {
	pct := round((factor - 1) * 100)

	var direction string
	switch {
	case factor > cfg.TrendUp:
		direction = "up"
	case factor < cfg.TrendDown:
		direction = "down"
	default:
		direction = "stable"
	}

	if pct > 0 {
		return fmt.Sprintf("%s +%d%%", direction, pct)
	}
	return fmt.Sprintf("%s %d%%", direction, pct)
}

// momentum is the ratio of very-recent actual activity to very-recent
// expected activity, over the lookback hours ending at now. hours that
// fall outside the window are skipped; no valid hours or a zero
// expectation default to neutral.
func momentum(grid *Grid, avg *AverageGrid, now time.Time, zone *Zone, lookback, lastDay int) float64 {
	var actual, expected float64
	valid := 0

	// completed hours only: the hour in progress would bias the ratio low
	for i := 1; i <= lookback; i++ {
		t := now.Add(-time.Duration(i) * time.Hour)
		d := zone.DaysBetween(grid.Window.Start, t)
		if d < 0 || d > lastDay {
			continue
		}
		h := zone.Components(t).Hour
		actual += float64(grid.Cells[h][d])
		expected += avg.Cell(h, d)
		valid++
	}

	if valid == 0 || expected == 0 {
		return 1
	}
	return actual / expected
}

func momentumLabel(m float64) string {
	return fmt.Sprintf("%.2fx", m)
}

// next24Prediction sums pattern-based hourly contributions over the next
// 24 hours. hours at or past the window end contribute nothing; hours
// before the end but outside the grid fall back to the average flat rate.
func next24Prediction(avg *AverageGrid, w Window, now time.Time, zone *Zone, blend, trend, totalHours float64, lastDay int) float64 {
	var sum float64
	for i := 0; i < 24; i++ {
		t := now.Add(time.Duration(i) * time.Hour)
		if !t.Before(w.End) {
			continue // don't count past the window
		}

		d := zone.DaysBetween(w.Start, t)
		if d >= 0 && d <= lastDay {
			h := zone.Components(t).Hour
			sum += avg.Cell(h, d) * blend
			continue
		}

		// inside the window's time span but off the grid: flat rate
		if totalHours > 0 {
			sum += avg.Total / totalHours * trend
		}
	}
	return sum
}

// endOfRangePrediction sums the pattern-based contributions for every
// whole hour remaining in the window.
func endOfRangePrediction(avg *AverageGrid, w Window, now time.Time, zone *Zone, blend float64, hoursRemaining, lastDay int) float64 {
	var sum float64
	for i := 0; i < hoursRemaining; i++ {
		t := now.Add(time.Duration(i) * time.Hour)
		d := zone.DaysBetween(w.Start, t)
		if d < 0 || d > lastDay {
			continue
		}
		h := zone.Components(t).Hour
		sum += avg.Cell(h, d) * blend
	}
	return sum
}

// confidenceBounds derives the heuristic interval around a prediction.
// the std-dev stand-in comes from the next-24h prediction, scaled for
// longer horizons; floorAt keeps the lower bound from dipping below what
// has already happened.
func confidenceBounds(prediction, next24 float64, scale float64, cfg ForecastConfig, floorAt int) (int, int) {
	stdDev := next24 * cfg.ConfidencePct * scale
	margin := stdDev * cfg.MarginMultiplier

	min := round(prediction - margin)
	if min < floorAt {
		min = floorAt
	}
	if min < 0 {
		min = 0
	}
	return min, round(prediction + margin)
}

// remainingHours is the whole-hour count left before the window ends,
// fractional remainder truncated, never negative.
func remainingHours(end, now time.Time) int {
	h := end.Sub(now).Hours()
	if h < 0 {
		return 0
	}
	return int(h)
}

// flatRateForecast fills predictions from the window's own observed rate
// when no historical average exists. degraded but well-formed output beats
// no output.
func flatRateForecast(f *Forecast, grid *Grid, now time.Time, elapsed float64, cfg ForecastConfig) {
	w := grid.Window

	var rate float64
	if elapsed > 0 {
		rate = float64(grid.Total) / elapsed
	}

	hoursRemaining := remainingHours(w.End, now)
	horizon := hoursRemaining
	if horizon > 24 {
		horizon = 24
	}

	next24 := rate * float64(horizon)
	f.Next24h = round(next24)
	f.Next24hMin, f.Next24hMax = confidenceBounds(next24, next24, 1, cfg, 0)

	endPrediction := float64(grid.Total) + rate*float64(hoursRemaining)
	f.EndOfRange = round(endPrediction)

	scale := math.Sqrt(float64(hoursRemaining) / 24)
	f.EndOfRangeMin, f.EndOfRangeMax = confidenceBounds(endPrediction, next24, scale, cfg, grid.Total)
}

// dailyAverage is the per-day run rate over the elapsed portion.
func dailyAverage(total int, elapsed float64) string {
	daysElapsed := elapsed / 24
	if daysElapsed < 1 {
		daysElapsed = 1
	}
	return strconv.Itoa(round(float64(total) / daysElapsed))
}

// round converts to the nearest integer, halves away from zero.
func round(v float64) int {
	return int(math.Round(v))
}
