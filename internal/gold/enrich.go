// Package gold computes the business-ready layer: the day-type and
// weather-impact enrichment joins against the per-run reference snapshots,
// time-window bucketing, and the final aggregate table.
package gold

import (
	"time"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

// Rules holds the configurable weather classification thresholds.
type Rules struct {
	RainThresholdMM float64
	SeverePrecipMM  float64
	SevereWindMPS   float64
}

// ClassifyDayType classifies a collision date against the holiday
// calendar, returning the matched holiday's name when there is one.
// Holiday takes precedence over Weekend: a Saturday holiday is a holiday.
func ClassifyDayType(calendar *domain.HolidayCalendar, date time.Time) (domain.DayType, string) {
	if rec, ok := calendar.Lookup(date); ok {
		return domain.DayTypeHoliday, rec.Name
	}
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return domain.DayTypeWeekend, ""
	}
	return domain.DayTypeWeekday, ""
}

// ClassifyWeather classifies driving conditions on a collision date. The
// checks are ordered and the first match wins:
//
//  1. no observation for the date → Unknown, never Clear
//  2. wind ≥ SevereWindMPS or precipitation ≥ SeverePrecipMM → Severe
//  3. snowfall recorded → Snow
//  4. precipitation > RainThresholdMM → Rain
//  5. otherwise → Clear
//
// Snow outranks Rain, so a snowy day with heavy precipitation classifies
// as Snow. A station that never reports wind can still classify Severe on
// precipitation alone.
func ClassifyWeather(table *domain.WeatherTable, rules Rules, date time.Time) domain.WeatherImpact {
	obs, ok := table.Lookup(date)
	if !ok {
		return domain.WeatherUnknown
	}
	if obs.WindAvgMPS != nil && *obs.WindAvgMPS >= rules.SevereWindMPS {
		return domain.WeatherSevere
	}
	if obs.PrecipitationMM >= rules.SeverePrecipMM {
		return domain.WeatherSevere
	}
	if obs.SnowFlag {
		return domain.WeatherSnow
	}
	if obs.PrecipitationMM > rules.RainThresholdMM {
		return domain.WeatherRain
	}
	return domain.WeatherClear
}

// Enrich applies both enrichment joins to every record. The joins are
// independent left joins keyed on the crash date and write disjoint
// fields, so their order cannot affect the result and no record is ever
// dropped. All records in a batch share one ProcessedAt stamp.
func Enrich(records []domain.CollisionRecord, calendar *domain.HolidayCalendar, weather *domain.WeatherTable, rules Rules) []domain.EnrichedCollisionRecord {
	processedAt := clock.Now().UTC()

	enriched := make([]domain.EnrichedCollisionRecord, 0, len(records))
	for _, rec := range records {
		dayType, holidayName := ClassifyDayType(calendar, rec.Date)
		enriched = append(enriched, domain.EnrichedCollisionRecord{
			CollisionRecord: rec,
			DayType:         dayType,
			HolidayName:     holidayName,
			Weather:         ClassifyWeather(weather, rules, rec.Date),
			ProcessedAt:     processedAt,
		})
	}
	return enriched
}
