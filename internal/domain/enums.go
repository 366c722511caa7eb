package domain

import "strings"

// Borough is one of the five NYC boroughs, or empty when the source row had
// no usable value.
type Borough string

const (
	BoroughBronx         Borough = "BRONX"
	BoroughBrooklyn      Borough = "BROOKLYN"
	BoroughManhattan     Borough = "MANHATTAN"
	BoroughQueens        Borough = "QUEENS"
	BoroughStatenIsland  Borough = "STATEN ISLAND"
	BoroughUnknownLabel          = "UNKNOWN" // aggregate bucket label for empty Borough
)

var boroughs = map[string]Borough{
	"BRONX":         BoroughBronx,
	"BROOKLYN":      BoroughBrooklyn,
	"MANHATTAN":     BoroughManhattan,
	"QUEENS":        BoroughQueens,
	"STATEN ISLAND": BoroughStatenIsland,
}

// ParseBorough maps a raw borough string onto the five-borough enum.
// Matching is case-insensitive and whitespace-tolerant; anything else
// (including blank) returns the empty Borough.
func ParseBorough(raw string) Borough {
	key := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	return boroughs[key]
}

// BucketLabel returns the borough's aggregation bucket label: the borough
// name, or BoroughUnknownLabel for the empty value.
func (b Borough) BucketLabel() string {
	if b == "" {
		return BoroughUnknownLabel
	}
	return string(b)
}

// DayType classifies a calendar date. Holiday takes precedence over
// Weekend.
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
	DayTypeHoliday DayType = "holiday"
)

// WeatherImpact classifies driving conditions for a date. Unknown means no
// observation existed for the date; it is deliberately distinct from Clear.
type WeatherImpact string

const (
	WeatherClear   WeatherImpact = "clear"
	WeatherRain    WeatherImpact = "rain"
	WeatherSnow    WeatherImpact = "snow"
	WeatherSevere  WeatherImpact = "severe"
	WeatherUnknown WeatherImpact = "unknown"
)

// TimeWindow buckets a collision's time of day. Unknown covers records with
// a nil time.
type TimeWindow string

const (
	WindowNight     TimeWindow = "night"
	WindowMorning   TimeWindow = "morning"
	WindowAfternoon TimeWindow = "afternoon"
	WindowEvening   TimeWindow = "evening"
	WindowUnknown   TimeWindow = "unknown"
)
