package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

// collisionRow is the Parquet layout of one Silver collision record. Dates
// are YYYY-MM-DD strings and times HH:MM, so the files stay readable from
// any query engine without timezone guessing.
type collisionRow struct {
	CollisionID         string   `parquet:"collision_id"`
	CrashDate           string   `parquet:"crash_date"`
	CrashTime           *string  `parquet:"crash_time,optional"`
	Borough             string   `parquet:"borough"`
	ZipCode             string   `parquet:"zip_code"`
	Latitude            *float64 `parquet:"latitude,optional"`
	Longitude           *float64 `parquet:"longitude,optional"`
	PersonsInjured      int32    `parquet:"persons_injured"`
	PersonsKilled       int32    `parquet:"persons_killed"`
	PedestriansInjured  int32    `parquet:"pedestrians_injured"`
	PedestriansKilled   int32    `parquet:"pedestrians_killed"`
	CyclistsInjured     int32    `parquet:"cyclists_injured"`
	CyclistsKilled      int32    `parquet:"cyclists_killed"`
	MotoristsInjured    int32    `parquet:"motorists_injured"`
	MotoristsKilled     int32    `parquet:"motorists_killed"`
	ContributingFactors []string `parquet:"contributing_factors,list"`
}

// holidayRow is the Parquet layout of one Silver holiday record.
type holidayRow struct {
	Date        string   `parquet:"date"`
	Name        string   `parquet:"holiday_name"`
	LocalName   string   `parquet:"local_name"`
	CountryCode string   `parquet:"country_code"`
	Types       []string `parquet:"types,list"`
}

// weatherRow is the Parquet layout of one Silver weather observation.
type weatherRow struct {
	Date            string   `parquet:"date"`
	Station         string   `parquet:"station"`
	PrecipitationMM float64  `parquet:"precipitation_mm"`
	SnowMM          float64  `parquet:"snow_mm"`
	HasSnow         bool     `parquet:"has_snow"`
	TempMaxC        *float64 `parquet:"temp_max_c,optional"`
	TempMinC        *float64 `parquet:"temp_min_c,optional"`
	WindAvgMPS      *float64 `parquet:"wind_avg_mps,optional"`
	IsFoggy         bool     `parquet:"is_foggy"`
}

// aggregateRow is the Parquet layout of one Gold aggregate group.
type aggregateRow struct {
	DayType    string  `parquet:"day_type"`
	Weather    string  `parquet:"weather"`
	Borough    string  `parquet:"borough"`
	TimeWindow string  `parquet:"time_window"`
	Collisions int64   `parquet:"collisions"`
	Injured    int64   `parquet:"injured"`
	Killed     int64   `parquet:"killed"`
	Share      float64 `parquet:"share"`
}

func toCollisionRow(r domain.CollisionRecord) collisionRow {
	row := collisionRow{
		CollisionID:         r.ID,
		CrashDate:           r.Date.Format(time.DateOnly),
		Borough:             string(r.Borough),
		ZipCode:             r.ZipCode,
		PersonsInjured:      int32(r.PersonsInjured),
		PersonsKilled:       int32(r.PersonsKilled),
		PedestriansInjured:  int32(r.PedestriansInjured),
		PedestriansKilled:   int32(r.PedestriansKilled),
		CyclistsInjured:     int32(r.CyclistsInjured),
		CyclistsKilled:      int32(r.CyclistsKilled),
		MotoristsInjured:    int32(r.MotoristsInjured),
		MotoristsKilled:     int32(r.MotoristsKilled),
		ContributingFactors: r.ContributingFactors,
	}
	if r.Time != nil {
		s := r.Time.String()
		row.CrashTime = &s
	}
	if r.Point != nil {
		lat, lon := r.Point.Lat, r.Point.Lon
		row.Latitude = &lat
		row.Longitude = &lon
	}
	return row
}

func fromCollisionRow(row collisionRow) (domain.CollisionRecord, error) {
	date, err := time.Parse(time.DateOnly, row.CrashDate)
	if err != nil {
		return domain.CollisionRecord{}, fmt.Errorf("parse crash_date %q: %w", row.CrashDate, err)
	}

	r := domain.CollisionRecord{
		ID:                  row.CollisionID,
		Date:                date,
		Borough:             domain.Borough(row.Borough),
		ZipCode:             row.ZipCode,
		PersonsInjured:      int(row.PersonsInjured),
		PersonsKilled:       int(row.PersonsKilled),
		PedestriansInjured:  int(row.PedestriansInjured),
		PedestriansKilled:   int(row.PedestriansKilled),
		CyclistsInjured:     int(row.CyclistsInjured),
		CyclistsKilled:      int(row.CyclistsKilled),
		MotoristsInjured:    int(row.MotoristsInjured),
		MotoristsKilled:     int(row.MotoristsKilled),
		ContributingFactors: row.ContributingFactors,
	}
	if row.CrashTime != nil {
		t, err := time.Parse("15:04", *row.CrashTime)
		if err != nil {
			return domain.CollisionRecord{}, fmt.Errorf("parse crash_time %q: %w", *row.CrashTime, err)
		}
		r.Time = &domain.TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
	}
	if row.Latitude != nil && row.Longitude != nil {
		r.Point = &domain.LatLon{Lat: *row.Latitude, Lon: *row.Longitude}
	}
	return r, nil
}

func toHolidayRow(r domain.HolidayRecord) holidayRow {
	return holidayRow{
		Date:        r.Date.Format(time.DateOnly),
		Name:        r.Name,
		LocalName:   r.LocalName,
		CountryCode: r.Jurisdiction,
		Types:       r.Types,
	}
}

func fromHolidayRow(row holidayRow) (domain.HolidayRecord, error) {
	date, err := time.Parse(time.DateOnly, row.Date)
	if err != nil {
		return domain.HolidayRecord{}, fmt.Errorf("parse date %q: %w", row.Date, err)
	}
	return domain.HolidayRecord{
		Date:         date,
		Name:         row.Name,
		LocalName:    row.LocalName,
		Jurisdiction: row.CountryCode,
		Types:        row.Types,
	}, nil
}

func toWeatherRow(obs domain.WeatherObservation) weatherRow {
	return weatherRow{
		Date:            obs.Date.Format(time.DateOnly),
		Station:         obs.StationID,
		PrecipitationMM: obs.PrecipitationMM,
		SnowMM:          obs.SnowMM,
		HasSnow:         obs.SnowFlag,
		TempMaxC:        obs.TempMaxC,
		TempMinC:        obs.TempMinC,
		WindAvgMPS:      obs.WindAvgMPS,
		IsFoggy:         obs.Foggy,
	}
}

func fromWeatherRow(row weatherRow) (domain.WeatherObservation, error) {
	date, err := time.Parse(time.DateOnly, row.Date)
	if err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("parse date %q: %w", row.Date, err)
	}
	return domain.WeatherObservation{
		Date:            date,
		StationID:       row.Station,
		PrecipitationMM: row.PrecipitationMM,
		SnowMM:          row.SnowMM,
		SnowFlag:        row.HasSnow,
		TempMaxC:        row.TempMaxC,
		TempMinC:        row.TempMinC,
		WindAvgMPS:      row.WindAvgMPS,
		Foggy:           row.IsFoggy,
	}, nil
}

func toAggregateRow(r domain.AggregateRow) aggregateRow {
	return aggregateRow{
		DayType:    string(r.DayType),
		Weather:    string(r.Weather),
		Borough:    r.Borough,
		TimeWindow: string(r.TimeWindow),
		Collisions: int64(r.Collisions),
		Injured:    int64(r.Injured),
		Killed:     int64(r.Killed),
		Share:      r.Share,
	}
}

func fromAggregateRow(row aggregateRow) domain.AggregateRow {
	return domain.AggregateRow{
		DayType:    domain.DayType(row.DayType),
		Weather:    domain.WeatherImpact(row.Weather),
		Borough:    row.Borough,
		TimeWindow: domain.TimeWindow(row.TimeWindow),
		Collisions: int(row.Collisions),
		Injured:    int(row.Injured),
		Killed:     int(row.Killed),
		Share:      row.Share,
	}
}

// writeParquet writes rows to a temp file and renames it into place, so an
// aborted run leaves no partial output behind.
func writeParquet[T any](path string, rows []T) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := parquet.NewGenericWriter[T](tmp, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}
