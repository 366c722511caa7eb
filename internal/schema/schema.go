// Package schema is the one-time validation gate between the Bronze
// adapters and the Silver cleaners. Structural problems (a required column
// missing from the file) abort the run; bad values in present columns
// reject individual rows with a stable reason code and the run continues.
// Downstream stages assume validated input and do not re-check.
package schema

import (
	"strconv"
	"strings"
	"time"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

// Rejection reason codes, used in summary counts and metric labels.
const (
	ReasonMissingValue  = "missing_value"
	ReasonBadDate       = "bad_date"
	ReasonBadNumber     = "bad_number"
	ReasonNegativeValue = "negative_value"
)

// FieldType is the declared type of a raw column.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeDate   FieldType = "date"
	TypeTime   FieldType = "time"
	TypeList   FieldType = "list"
)

// Column declares one raw column. Required columns must exist in the
// batch's column set. NotBlank rejects rows with an empty value. Lenient
// columns skip value checks entirely: the cleaner nulls unparseable values
// instead of dropping the row (times, coordinates, nullable temperatures).
type Column struct {
	Name        string
	Type        FieldType
	Required    bool
	NotBlank    bool
	NonNegative bool
	Lenient     bool
}

// Schema declares one source's columns and date layout.
type Schema struct {
	Source     domain.Source
	DateLayout string
	Columns    []Column
}

// ForSource returns the declared schema for a source.
func ForSource(src domain.Source) (Schema, bool) {
	switch src {
	case domain.SourceCollisions:
		return collisionSchema, true
	case domain.SourceHolidays:
		return holidaySchema, true
	case domain.SourceWeather:
		return weatherSchema, true
	}
	return Schema{}, false
}

var collisionSchema = Schema{
	Source:     domain.SourceCollisions,
	DateLayout: "01/02/2006",
	Columns: []Column{
		{Name: "CRASH DATE", Type: TypeDate, Required: true, NotBlank: true},
		{Name: "CRASH TIME", Type: TypeTime, Required: true, Lenient: true},
		{Name: "BOROUGH", Type: TypeString, Required: true},
		{Name: "ZIP CODE", Type: TypeString, Required: true},
		{Name: "LATITUDE", Type: TypeFloat, Lenient: true},
		{Name: "LONGITUDE", Type: TypeFloat, Lenient: true},
		{Name: "COLLISION_ID", Type: TypeString, Required: true, NotBlank: true},
		{Name: "NUMBER OF PERSONS INJURED", Type: TypeInt, Required: true, NonNegative: true},
		{Name: "NUMBER OF PERSONS KILLED", Type: TypeInt, Required: true, NonNegative: true},
		{Name: "NUMBER OF PEDESTRIANS INJURED", Type: TypeInt, Required: true, NonNegative: true},
		{Name: "NUMBER OF PEDESTRIANS KILLED", Type: TypeInt, Required: true, NonNegative: true},
		{Name: "NUMBER OF CYCLIST INJURED", Type: TypeInt, Required: true, NonNegative: true},
		{Name: "NUMBER OF CYCLIST KILLED", Type: TypeInt, Required: true, NonNegative: true},
		{Name: "NUMBER OF MOTORIST INJURED", Type: TypeInt, Required: true, NonNegative: true},
		{Name: "NUMBER OF MOTORIST KILLED", Type: TypeInt, Required: true, NonNegative: true},
		{Name: "CONTRIBUTING FACTOR VEHICLE 1", Type: TypeString, Required: true},
		{Name: "CONTRIBUTING FACTOR VEHICLE 2", Type: TypeString},
		{Name: "CONTRIBUTING FACTOR VEHICLE 3", Type: TypeString},
		{Name: "CONTRIBUTING FACTOR VEHICLE 4", Type: TypeString},
		{Name: "CONTRIBUTING FACTOR VEHICLE 5", Type: TypeString},
	},
}

var holidaySchema = Schema{
	Source:     domain.SourceHolidays,
	DateLayout: time.DateOnly,
	Columns: []Column{
		{Name: "date", Type: TypeDate, Required: true, NotBlank: true},
		{Name: "name", Type: TypeString, Required: true, NotBlank: true},
		{Name: "localName", Type: TypeString},
		{Name: "countryCode", Type: TypeString, Required: true, NotBlank: true},
		{Name: "types", Type: TypeList},
	},
}

var weatherSchema = Schema{
	Source:     domain.SourceWeather,
	DateLayout: time.DateOnly,
	Columns: []Column{
		{Name: "STATION", Type: TypeString},
		{Name: "DATE", Type: TypeDate, Required: true, NotBlank: true},
		{Name: "PRCP", Type: TypeFloat, Required: true, NonNegative: true},
		{Name: "SNOW", Type: TypeFloat, Required: true, NonNegative: true},
		{Name: "TMAX", Type: TypeFloat, Required: true, Lenient: true},
		{Name: "TMIN", Type: TypeFloat, Required: true, Lenient: true},
		{Name: "AWND", Type: TypeFloat, Lenient: true},
		{Name: "WT01", Type: TypeString},
		{Name: "WT02", Type: TypeString},
	},
}

// Validate checks a raw batch against its declared schema. Missing required
// columns return a StructuralSchemaError and no rows. Otherwise every row
// is checked value-by-value; failing rows are returned in the rejected set
// with the first failing reason, passing rows in a new batch.
func (s Schema) Validate(batch domain.RawBatch) (domain.RawBatch, []domain.RejectedRow, error) {
	var missing []string
	for _, col := range s.Columns {
		if col.Required && !batch.HasColumn(col.Name) {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return domain.RawBatch{}, nil, &domain.StructuralSchemaError{Source: batch.Source, Missing: missing}
	}

	valid := domain.RawBatch{
		Source:  batch.Source,
		Columns: batch.Columns,
		Rows:    make([]domain.RawRow, 0, len(batch.Rows)),
	}
	var rejected []domain.RejectedRow

	for _, row := range batch.Rows {
		if reason := s.checkRow(batch, row); reason != "" {
			rejected = append(rejected, domain.RejectedRow{Row: row, Reason: reason})
			continue
		}
		valid.Rows = append(valid.Rows, row)
	}
	return valid, rejected, nil
}

// checkRow returns the first failing reason code, or "" when the row is
// valid.
func (s Schema) checkRow(batch domain.RawBatch, row domain.RawRow) string {
	for _, col := range s.Columns {
		if !batch.HasColumn(col.Name) {
			continue
		}

		value := strings.TrimSpace(row.Str(col.Name))
		if value == "" {
			if col.NotBlank {
				return ReasonMissingValue
			}
			continue
		}
		if col.Lenient {
			continue
		}

		switch col.Type {
		case TypeDate:
			if _, err := time.Parse(s.DateLayout, value); err != nil {
				return ReasonBadDate
			}
		case TypeInt:
			n, err := strconv.Atoi(value)
			if err != nil {
				return ReasonBadNumber
			}
			if col.NonNegative && n < 0 {
				return ReasonNegativeValue
			}
		case TypeFloat:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return ReasonBadNumber
			}
			if col.NonNegative && f < 0 {
				return ReasonNegativeValue
			}
		}
	}
	return ""
}
