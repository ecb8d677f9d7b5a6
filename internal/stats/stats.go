// Package stats contains statistics calculations and reporting.
package stats

import (
	"strings"

	"github.com/verte-zerg/quizstat/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Percentage returns floor(right/total*100), or 0 when total is not positive.
func Percentage(right, total int) int {
	if total <= 0 {
		return 0
	}
	return right * 100 / total
}

// CalculateRightAnswers counts the correct records.
func CalculateRightAnswers(records []model.AnswerRecord) int {
	right := 0
	for _, rec := range records {
		if rec.Correct {
			right++
		}
	}
	return right
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders percentages on a fixed 0-100 scale, one char per value.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	var b strings.Builder
	top := len(sparkChars) - 1
	for _, v := range values {
		idx := int(v / 100 * float64(top))
		if idx < 0 {
			idx = 0
		}
		if idx > top {
			idx = top
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample shrinks values to at most width points by averaging neighbours.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
