package silver

import (
	"strings"
	"time"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

// CleanHolidays maps validated holiday rows to records, deduplicating by
// (date, country code) with first occurrence winning. The API returns each
// year's holidays independently, so overlapping fetches produce exact
// duplicates rather than conflicts.
func CleanHolidays(batch domain.RawBatch) ([]domain.HolidayRecord, Stats) {
	var stats Stats
	records := make([]domain.HolidayRecord, 0, len(batch.Rows))
	seen := make(map[string]struct{}, len(batch.Rows))

	for _, row := range batch.Rows {
		rawDate := strings.TrimSpace(row.Str("date"))
		country := strings.TrimSpace(row.Str("countryCode"))

		key := rawDate + "/" + country
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

		records = append(records, domain.HolidayRecord{
			Date:         date,
			Name:         strings.TrimSpace(row.Str("name")),
			LocalName:    strings.TrimSpace(row.Str("localName")),
			Jurisdiction: country,
			Types:        row.StrList("types"),
		})
	}
	return records, stats
}
