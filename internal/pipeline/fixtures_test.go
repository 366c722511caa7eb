package pipeline_test

import (
	"github.com/Rabbins/nyc-use-case/internal/domain"
	"github.com/Rabbins/nyc-use-case/internal/pipeline"
)

const centralPark = "USW00094728"

var collisionColumns = []string{
	"CRASH DATE", "CRASH TIME", "BOROUGH", "ZIP CODE", "LATITUDE", "LONGITUDE",
	"COLLISION_ID", "NUMBER OF PERSONS INJURED", "NUMBER OF PERSONS KILLED",
	"NUMBER OF PEDESTRIANS INJURED", "NUMBER OF PEDESTRIANS KILLED",
	"NUMBER OF CYCLIST INJURED", "NUMBER OF CYCLIST KILLED",
	"NUMBER OF MOTORIST INJURED", "NUMBER OF MOTORIST KILLED",
	"CONTRIBUTING FACTOR VEHICLE 1", "CONTRIBUTING FACTOR VEHICLE 2",
	"CONTRIBUTING FACTOR VEHICLE 3", "CONTRIBUTING FACTOR VEHICLE 4",
	"CONTRIBUTING FACTOR VEHICLE 5",
}

func collisionRow(id, date, tm, borough, injured, killed string) domain.RawRow {
	return domain.RawRow{
		"CRASH DATE":                    date,
		"CRASH TIME":                    tm,
		"BOROUGH":                       borough,
		"ZIP CODE":                      "11201",
		"LATITUDE":                      "40.7128",
		"LONGITUDE":                     "-74.0060",
		"COLLISION_ID":                  id,
		"NUMBER OF PERSONS INJURED":     injured,
		"NUMBER OF PERSONS KILLED":      killed,
		"NUMBER OF PEDESTRIANS INJURED": "0",
		"NUMBER OF PEDESTRIANS KILLED":  "0",
		"NUMBER OF CYCLIST INJURED":     "0",
		"NUMBER OF CYCLIST KILLED":      "0",
		"NUMBER OF MOTORIST INJURED":    "0",
		"NUMBER OF MOTORIST KILLED":     "0",
		"CONTRIBUTING FACTOR VEHICLE 1": "Driver Inattention/Distraction",
		"CONTRIBUTING FACTOR VEHICLE 2": "",
		"CONTRIBUTING FACTOR VEHICLE 3": "",
		"CONTRIBUTING FACTOR VEHICLE 4": "",
		"CONTRIBUTING FACTOR VEHICLE 5": "",
	}
}

func weatherRow(station, date, prcp, snow, awnd string) domain.RawRow {
	return domain.RawRow{
		"STATION": station,
		"DATE":    date,
		"PRCP":    prcp,
		"SNOW":    snow,
		"TMAX":    "72",
		"TMIN":    "28",
		"AWND":    awnd,
		"WT01":    "",
		"WT02":    "",
	}
}

// fixtureBatches is one January of raw data exercising every cleaning and
// classification path: a duplicate collision, a malformed date, a pre-2013
// row, a collision without a time or borough, a holiday and a weekend, and
// rain, snow, and missing weather observations.
func fixtureBatches() pipeline.Batches {
	collisions := domain.RawBatch{
		Source:  domain.SourceCollisions,
		Columns: collisionColumns,
		Rows: []domain.RawRow{
			collisionRow("1001", "01/01/2024", "9:15", "Bronx", "1", "0"),
			collisionRow("1002", "01/01/2024", "9:40", "BRONX", "0", "0"),
			collisionRow("1003", "01/16/2024", "8:30", "BROOKLYN", "2", "1"),
			collisionRow("1003", "01/16/2024", "11:00", "BROOKLYN", "0", "0"), // duplicate ID
			collisionRow("1004", "01/16/2024", "", "QUEENS", "0", "0"),
			collisionRow("1005", "06/30/2012", "12:00", "MANHATTAN", "0", "0"), // below min_year
			collisionRow("1006", "2024-01-16", "10:00", "BROOKLYN", "0", "0"),  // wrong date layout
			collisionRow("1007", "01/20/2024", "23:50", "", "0", "0"),
		},
	}

	holidays := domain.RawBatch{
		Source:  domain.SourceHolidays,
		Columns: []string{"date", "localName", "name", "countryCode", "types"},
		Rows: []domain.RawRow{
			{"date": "2024-01-01", "localName": "New Year's Day", "name": "New Year's Day", "countryCode": "US", "types": []string{"Public"}},
			{"date": "2024-01-15", "localName": "Martin Luther King, Jr. Day", "name": "Martin Luther King, Jr. Day", "countryCode": "US", "types": []string{"Public"}},
			{"date": "2024-01-01", "localName": "Jour de l'An", "name": "New Year's Day", "countryCode": "CA", "types": []string{"Public"}},
		},
	}

	weather := domain.RawBatch{
		Source:  domain.SourceWeather,
		Columns: []string{"STATION", "DATE", "PRCP", "SNOW", "TMAX", "TMIN", "AWND", "WT01", "WT02"},
		Rows: []domain.RawRow{
			weatherRow(centralPark, "2024-01-15", "0", "0", "44"),
			weatherRow(centralPark, "2024-01-16", "50", "0", "43"),
			weatherRow(centralPark, "2024-01-20", "80", "30", "52"),
			weatherRow("USW00014732", "2024-01-16", "61", "0", "48"), // LaGuardia, filtered out
		},
	}

	return pipeline.Batches{Collisions: collisions, Holidays: holidays, Weather: weather}
}
