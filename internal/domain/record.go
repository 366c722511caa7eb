package domain

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time without a date. Collision times are minute
// resolution in the source export.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns the time as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// LatLon is a WGS-84 coordinate pair.
type LatLon struct {
	Lat float64
	Lon float64
}

// PartitionKey identifies the {year, month} bucket a collision record is
// stored under. Derived from the crash date alone, so it is stable across
// runs.
type PartitionKey struct {
	Year  int
	Month time.Month
}

// PartitionKeyFor derives the partition key from a date.
func PartitionKeyFor(date time.Time) PartitionKey {
	return PartitionKey{Year: date.Year(), Month: date.Month()}
}

func (k PartitionKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Before reports whether k sorts before other in chronological order.
func (k PartitionKey) Before(other PartitionKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// CollisionRecord is a cleaned, standardized collision. Produced by the
// Silver cleaner; Date is midnight UTC and never zero, ID is never empty,
// counters are never negative.
type CollisionRecord struct {
	ID      string
	Date    time.Time
	Time    *TimeOfDay // nil when unreported or malformed in the source
	Borough Borough    // empty when the source row had no usable borough
	ZipCode string
	Point   *LatLon // nil when coordinates are missing or (0,0)

	PersonsInjured     int
	PersonsKilled      int
	PedestriansInjured int
	PedestriansKilled  int
	CyclistsInjured    int
	CyclistsKilled     int
	MotoristsInjured   int
	MotoristsKilled    int

	// ContributingFactors holds the non-empty CONTRIBUTING FACTOR VEHICLE
	// values in vehicle order. "Unspecified" is kept as-is.
	ContributingFactors []string
}

// HolidayRecord is one public holiday for one jurisdiction.
type HolidayRecord struct {
	Date         time.Time
	Name         string
	LocalName    string
	Jurisdiction string // ISO 3166-1 alpha-2 country code
	Types        []string
}

// WeatherObservation is one station's daily summary after unit conversion.
type WeatherObservation struct {
	Date      time.Time
	StationID string

	PrecipitationMM float64 // ≥ 0; blank source value means 0
	SnowMM          float64
	SnowFlag        bool
	TempMaxC        *float64 // nil when the station did not report
	TempMinC        *float64
	WindAvgMPS      *float64
	Foggy           bool
}

// EnrichedCollisionRecord is a collision after the Gold enrichment joins.
// DayType and Weather are always set; HolidayName is empty unless DayType
// is DayTypeHoliday.
type EnrichedCollisionRecord struct {
	CollisionRecord

	DayType     DayType
	HolidayName string
	Weather     WeatherImpact
	ProcessedAt time.Time
}

// AggregateRow is one group of the final aggregate table. Borough holds the
// bucket label, which is BoroughUnknownLabel for records without a mapped
// borough. The Collisions sum over all rows of a run equals the number of
// enriched records.
type AggregateRow struct {
	DayType    DayType
	Weather    WeatherImpact
	Borough    string
	TimeWindow TimeWindow

	Collisions int
	Injured    int
	Killed     int
	Share      float64
}

// GroupKey returns the row's grouping key in the tie-break comparison order
// used for output sorting.
func (r AggregateRow) GroupKey() string {
	return string(r.DayType) + "|" + string(r.Weather) + "|" + r.Borough + "|" + string(r.TimeWindow)
}
