// Package silver turns validated raw rows into canonical records: date and
// time parsing, GHCN unit conversion, null normalization, deduplication,
// and year-month partitioning. Input is assumed to have passed schema
// validation; nothing here rejects rows, it only deduplicates and applies
// configured filters.
package silver

import (
	"strconv"
	"strings"
	"time"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

// Stats counts rows a cleaner dropped without rejecting them.
type Stats struct {
	Deduplicated int
	Filtered     int
}

const collisionDateLayout = "01/02/2006"

var factorColumns = []string{
	"CONTRIBUTING FACTOR VEHICLE 1",
	"CONTRIBUTING FACTOR VEHICLE 2",
	"CONTRIBUTING FACTOR VEHICLE 3",
	"CONTRIBUTING FACTOR VEHICLE 4",
	"CONTRIBUTING FACTOR VEHICLE 5",
}

// CleanCollisions maps validated collision rows to canonical records.
// Rows are deduplicated by COLLISION_ID, first occurrence wins. When
// minYear > 0, records from earlier years are filtered out after dedup,
// matching the order a distinct-then-filter query would apply.
func CleanCollisions(batch domain.RawBatch, minYear int) ([]domain.CollisionRecord, Stats) {
	var stats Stats
	records := make([]domain.CollisionRecord, 0, len(batch.Rows))
	seen := make(map[string]struct{}, len(batch.Rows))

	for _, row := range batch.Rows {
		id := strings.TrimSpace(row.Str("COLLISION_ID"))
		if _, dup := seen[id]; dup {
			stats.Deduplicated++
			continue
		}
		seen[id] = struct{}{}

		date, err := time.Parse(collisionDateLayout, strings.TrimSpace(row.Str("CRASH DATE")))
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

		records = append(records, domain.CollisionRecord{
			ID:      id,
			Date:    date,
			Time:    parseTimeOfDay(row.Str("CRASH TIME")),
			Borough: domain.ParseBorough(row.Str("BOROUGH")),
			ZipCode: strings.TrimSpace(row.Str("ZIP CODE")),
			Point:   parsePoint(row.Str("LATITUDE"), row.Str("LONGITUDE")),

			PersonsInjured:     countOrZero(row.Str("NUMBER OF PERSONS INJURED")),
			PersonsKilled:      countOrZero(row.Str("NUMBER OF PERSONS KILLED")),
			PedestriansInjured: countOrZero(row.Str("NUMBER OF PEDESTRIANS INJURED")),
			PedestriansKilled:  countOrZero(row.Str("NUMBER OF PEDESTRIANS KILLED")),
			CyclistsInjured:    countOrZero(row.Str("NUMBER OF CYCLIST INJURED")),
			CyclistsKilled:     countOrZero(row.Str("NUMBER OF CYCLIST KILLED")),
			MotoristsInjured:   countOrZero(row.Str("NUMBER OF MOTORIST INJURED")),
			MotoristsKilled:    countOrZero(row.Str("NUMBER OF MOTORIST KILLED")),

			ContributingFactors: contributingFactors(row),
		})
	}
	return records, stats
}

// parseTimeOfDay parses "H:MM" / "HH:MM" collision times. Blank or
// malformed values return nil; a bad time field must not drop a collision
// the casualty totals depend on.
func parseTimeOfDay(raw string) *domain.TimeOfDay {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return nil
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil
	}

	return &domain.TimeOfDay{Hour: hour, Minute: minute}
}

// parsePoint parses coordinate columns. Blank or unparseable values and the
// (0,0) pair the export uses for unknown locations all return nil.
func parsePoint(rawLat, rawLon string) *domain.LatLon {
	rawLat = strings.TrimSpace(rawLat)
	rawLon = strings.TrimSpace(rawLon)
	if rawLat == "" || rawLon == "" {
		return nil
	}

	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lon, errLon := strconv.ParseFloat(rawLon, 64)
	if errLat != nil || errLon != nil {
		return nil
	}
	if lat == 0 && lon == 0 {
		return nil
	}

	return &domain.LatLon{Lat: lat, Lon: lon}
}

// countOrZero parses a casualty counter, treating blank as zero.
func countOrZero(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// contributingFactors collects the non-empty factor columns in vehicle
// order. "Unspecified" is a legitimate source value and is kept.
func contributingFactors(row domain.RawRow) []string {
	var factors []string
	for _, col := range factorColumns {
		if v := strings.TrimSpace(row.Str(col)); v != "" {
			factors = append(factors, v)
		}
	}
	return factors
}
