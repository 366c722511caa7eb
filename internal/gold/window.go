package gold

import (
	"fmt"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

// TimeWindows buckets collision times into the four named windows using
// three ascending hour boundaries.
type TimeWindows struct {
	morning   int
	afternoon int
	evening   int
}

// NewTimeWindows builds the bucketing from boundaries [h1, h2, h3]:
// Night [0,h1), Morning [h1,h2), Afternoon [h2,h3), Evening [h3,24).
// Exactly three strictly ascending hours in [1,23] are required.
func NewTimeWindows(boundaries []int) (TimeWindows, error) {
	if len(boundaries) != 3 {
		return TimeWindows{}, &domain.ConfigurationError{
			Option: "time_window_boundaries",
			Reason: fmt.Sprintf("expected exactly 3 hour boundaries, got %d", len(boundaries)),
		}
	}
	h1, h2, h3 := boundaries[0], boundaries[1], boundaries[2]
	if h1 < 1 || h3 > 23 || h1 >= h2 || h2 >= h3 {
		return TimeWindows{}, &domain.ConfigurationError{
			Option: "time_window_boundaries",
			Reason: fmt.Sprintf("boundaries %v must be strictly ascending hours in [1,23]", boundaries),
		}
	}
	return TimeWindows{morning: h1, afternoon: h2, evening: h3}, nil
}

// Window assigns a time of day to its window. A nil time is Unknown.
func (w TimeWindows) Window(t *domain.TimeOfDay) domain.TimeWindow {
	if t == nil {
		return domain.WindowUnknown
	}
	switch {
	case t.Hour < w.morning:
		return domain.WindowNight
	case t.Hour < w.afternoon:
		return domain.WindowMorning
	case t.Hour < w.evening:
		return domain.WindowAfternoon
	}
	return domain.WindowEvening
}
