package silver

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

// CleanWeather converts validated GHCN-Daily rows into observations:
// tenths-unit columns become whole units, blank precipitation and snowfall
// become zero, blank temperatures and wind stay nil. When station is
// non-empty, rows from other stations are filtered out; when minYear > 0,
// older years are filtered. Dedup key is (date, station), first wins.
func CleanWeather(batch domain.RawBatch, station string, minYear int) ([]domain.WeatherObservation, Stats) {
	var stats Stats
	observations := make([]domain.WeatherObservation, 0, len(batch.Rows))
	seen := make(map[string]struct{}, len(batch.Rows))

	for _, row := range batch.Rows {
		stationID := strings.TrimSpace(row.Str("STATION"))
		if station != "" && stationID != station {
			stats.Filtered++
			continue
		}

		rawDate := strings.TrimSpace(row.Str("DATE"))
		key := rawDate + "|" + stationID
		if _, dup := seen[key]; dup {
			stats.Deduplicated++
			continue
		}
		seen[key] = struct{}{}

		date, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			// Dates passed schema validation already; count the drop so
			// extracted rows still reconcile if that gate ever regresses.
			stats.Filtered++
			continue
		}
		if minYear > 0 && date.Year() < minYear {
			stats.Filtered++
			continue
		}

		snowMM := floatOrZero(row.Str("SNOW"))
		observations = append(observations, domain.WeatherObservation{
			Date:      date,
			StationID: stationID,

			PrecipitationMM: tenthsOrZero(row.Str("PRCP")),
			SnowMM:          snowMM,
			SnowFlag:        snowMM > 0,
			TempMaxC:        tenthsOrNil(row.Str("TMAX")),
			TempMinC:        tenthsOrNil(row.Str("TMIN")),
			WindAvgMPS:      tenthsOrNil(row.Str("AWND")),
			Foggy:           wtFlag(row.Str("WT01")) || wtFlag(row.Str("WT02")),
		})
	}
	return observations, stats
}

// floatOrZero parses a numeric column, treating blank as zero.
func floatOrZero(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// tenthsOrZero converts a tenths-encoded column to whole units, one
// decimal, treating blank as zero.
func tenthsOrZero(raw string) float64 {
	return math.Round(floatOrZero(raw)) / 10
}

// tenthsOrNil converts a tenths-encoded column to whole units, one
// decimal, keeping blank and unparseable values as nil. Zero is a real
// reading for temperatures, so it cannot double as the missing marker.
func tenthsOrNil(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	converted := math.Round(v) / 10
	return &converted
}

// wtFlag reports whether a GHCN weather-type column is set. The flags are
// "1" when present, sometimes exported as "1.0".
func wtFlag(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false
	}
	return v == 1
}
