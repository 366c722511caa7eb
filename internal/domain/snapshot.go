package domain

import (
	"time"
)

// dateKey normalizes a timestamp to its UTC calendar day for map keying.
func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// HolidayCalendar is an immutable by-date snapshot of one jurisdiction's
// holidays, built once per run and shared by reference.
type HolidayCalendar struct {
	jurisdiction string
	byDate       map[time.Time]HolidayRecord
}

// NewHolidayCalendar builds a calendar for the given jurisdiction, ignoring
// records from other jurisdictions. Two records on the same date are a
// JoinAmbiguityError: the Silver dedup should have collapsed them.
func NewHolidayCalendar(records []HolidayRecord, jurisdiction string) (*HolidayCalendar, error) {
	cal := &HolidayCalendar{
		jurisdiction: jurisdiction,
		byDate:       make(map[time.Time]HolidayRecord, len(records)),
	}
	for _, rec := range records {
		if rec.Jurisdiction != jurisdiction {
			continue
		}
		key := dateKey(rec.Date)
		if _, exists := cal.byDate[key]; exists {
			return nil, &JoinAmbiguityError{
				Dataset: "holiday calendar",
				Key:     key.Format(time.DateOnly) + "/" + jurisdiction,
			}
		}
		cal.byDate[key] = rec
	}
	return cal, nil
}

// Jurisdiction returns the country code the calendar was built for.
func (c *HolidayCalendar) Jurisdiction() string { return c.jurisdiction }

// Lookup returns the holiday on the given date, if any.
func (c *HolidayCalendar) Lookup(date time.Time) (HolidayRecord, bool) {
	rec, ok := c.byDate[dateKey(date)]
	return rec, ok
}

// Len returns the number of holidays in the calendar.
func (c *HolidayCalendar) Len() int { return len(c.byDate) }

// WeatherTable is an immutable by-date snapshot of daily weather
// observations. One observation per date: the Silver station filter and
// dedup guarantee that, and a violation surfaces here as a
// JoinAmbiguityError rather than a silently arbitrary join.
type WeatherTable struct {
	byDate map[time.Time]WeatherObservation
}

// NewWeatherTable builds the by-date snapshot.
func NewWeatherTable(observations []WeatherObservation) (*WeatherTable, error) {
	table := &WeatherTable{
		byDate: make(map[time.Time]WeatherObservation, len(observations)),
	}
	for _, obs := range observations {
		key := dateKey(obs.Date)
		if prev, exists := table.byDate[key]; exists {
			return nil, &JoinAmbiguityError{
				Dataset: "weather table",
				Key:     key.Format(time.DateOnly) + " (stations " + prev.StationID + ", " + obs.StationID + ")",
			}
		}
		table.byDate[key] = obs
	}
	return table, nil
}

// Lookup returns the observation for the given date, if any.
func (t *WeatherTable) Lookup(date time.Time) (WeatherObservation, bool) {
	obs, ok := t.byDate[dateKey(date)]
	return obs, ok
}

// Len returns the number of dates with an observation.
func (t *WeatherTable) Len() int { return len(t.byDate) }
