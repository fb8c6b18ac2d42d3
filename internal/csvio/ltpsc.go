package csvio

import (
	"math"
	"strconv"
	"strings"

	"github.com/limaJavier/timegrid/pkg/model"
)

// Hours of practice covered by a single lab session
const labHoursPerSession = 2

// Credits assumed by the weekly defaults when the credit column is empty or unreadable
const defaultLTPSCCredits = 3.0

// ParseLTPSC converts an L-T-P-S-C value into weekly lecture, tutorial and lab sessions.
// It reports false when the value was missing or malformed and defaults derived from credits were used instead.
func ParseLTPSC(value string, credits float64, minor bool) (model.Counts, bool) {
	if minor {
		// Minors are placed in the shared minor block, never as regular components
		return model.Counts{}, true
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return defaultCounts(credits), false
	}

	parts := strings.Split(value, "-")
	if len(parts) < 3 {
		return malformedCounts(credits), false
	}

	numbers := make([]int, 3)
	for i := range numbers {
		number, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || number < 0 {
			return malformedCounts(credits), false
		}
		numbers[i] = int(number)
	}

	return model.Counts{
		Lectures:  numbers[0],
		Tutorials: numbers[1],
		Labs:      int(math.RoundToEven(float64(numbers[2]) / labHoursPerSession)),
	}, true
}

func defaultCounts(credits float64) model.Counts {
	switch {
	case credits >= 4:
		return model.Counts{Lectures: 3, Labs: 1}
	case credits >= 3:
		return model.Counts{Lectures: 3}
	case credits >= 2:
		return model.Counts{Lectures: 2}
	}
	return model.Counts{Lectures: 1}
}

func malformedCounts(credits float64) model.Counts {
	if credits >= 3 {
		return model.Counts{Lectures: 3}
	}
	return model.Counts{Lectures: 2}
}
