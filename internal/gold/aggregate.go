package gold

import (
	"sort"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

type groupKey struct {
	dayType domain.DayType
	weather domain.WeatherImpact
	borough string
	window  domain.TimeWindow
}

// Aggregate groups enriched records by (day-type, weather-impact, borough,
// time-window) and computes per-group collision counts, casualty totals,
// and each group's share of all collisions. Records without a borough or
// time are counted under explicit UNKNOWN buckets rather than dropped, so
// the Collisions column always sums back to len(records). Output rows are
// ordered by descending collision count with ties broken by the grouping
// key, making the table reproducible across runs.
func Aggregate(records []domain.EnrichedCollisionRecord, windows TimeWindows) []domain.AggregateRow {
	if len(records) == 0 {
		return nil
	}

	groups := make(map[groupKey]*domain.AggregateRow)
	for _, rec := range records {
		key := groupKey{
			dayType: rec.DayType,
			weather: rec.Weather,
			borough: rec.Borough.BucketLabel(),
			window:  windows.Window(rec.Time),
		}

		row, ok := groups[key]
		if !ok {
			row = &domain.AggregateRow{
				DayType:    key.dayType,
				Weather:    key.weather,
				Borough:    key.borough,
				TimeWindow: key.window,
			}
			groups[key] = row
		}
		row.Collisions++
		row.Injured += rec.PersonsInjured
		row.Killed += rec.PersonsKilled
	}

	total := float64(len(records))
	rows := make([]domain.AggregateRow, 0, len(groups))
	for _, row := range groups {
		row.Share = float64(row.Collisions) / total
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Collisions != rows[j].Collisions {
			return rows[i].Collisions > rows[j].Collisions
		}
		return rows[i].GroupKey() < rows[j].GroupKey()
	})
	return rows
}
