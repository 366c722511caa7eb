// Package storage persists the Silver and Gold tiers under the configured
// data directories: partitioned Parquet for cleaned collisions (by year and
// month), holidays (by year), and weather observations (by year and month),
// plus Parquet and a CSV rendition for the final aggregate. Implements
// pipeline.Loader.
package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

const (
	collisionsSubdir = "collisions"
	holidaysSubdir   = "holidays"
	weatherSubdir    = "weather"
	partFilename     = "part-0.parquet"
	aggregateParquet = "aggregate.parquet"
	aggregateCSV     = "aggregate.csv"
)

// Store writes and reads the Silver and Gold data directories.
type Store struct {
	silverDir string
	goldDir   string
	logger    *slog.Logger
}

// NewStore creates a Store over the two tier directories.
func NewStore(silverDir, goldDir string, logger *slog.Logger) *Store {
	return &Store{silverDir: silverDir, goldDir: goldDir, logger: logger}
}

// partitionDir returns the Hive-style year=/month= directory for a key.
func (s *Store) partitionDir(key domain.PartitionKey) string {
	return filepath.Join(s.silverDir, collisionsSubdir,
		fmt.Sprintf("year=%04d", key.Year),
		fmt.Sprintf("month=%02d", int(key.Month)))
}

// holidayDir returns the Hive-style year= directory for one holiday year.
func (s *Store) holidayDir(year int) string {
	return filepath.Join(s.silverDir, holidaysSubdir, fmt.Sprintf("year=%04d", year))
}

// weatherDir returns the Hive-style year=/month= directory for a key.
func (s *Store) weatherDir(key domain.PartitionKey) string {
	return filepath.Join(s.silverDir, weatherSubdir,
		fmt.Sprintf("year=%04d", key.Year),
		fmt.Sprintf("month=%02d", int(key.Month)))
}

// LoadCollisions writes one Parquet file per partition.
func (s *Store) LoadCollisions(ctx context.Context, partitions map[domain.PartitionKey][]domain.CollisionRecord, keys []domain.PartitionKey) error {
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := s.partitionDir(key)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create partition dir %s: %w", key, err)
		}

		records := partitions[key]
		rows := make([]collisionRow, len(records))
		for i, r := range records {
			rows[i] = toCollisionRow(r)
		}

		if err := writeParquet(filepath.Join(dir, partFilename), rows); err != nil {
			return fmt.Errorf("write partition %s: %w", key, err)
		}
		s.logger.Debug("silver partition written", "partition", key.String(), "records", len(rows))
	}
	s.logger.Info("silver tier written", "dir", s.silverDir, "partitions", len(keys))
	return nil
}

// LoadHolidays writes the cleaned holiday set as one Parquet file per year.
func (s *Store) LoadHolidays(ctx context.Context, records []domain.HolidayRecord) error {
	byYear := make(map[int][]holidayRow)
	for _, r := range records {
		byYear[r.Date.Year()] = append(byYear[r.Date.Year()], toHolidayRow(r))
	}
	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := s.holidayDir(year)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create holiday dir %d: %w", year, err)
		}
		if err := writeParquet(filepath.Join(dir, partFilename), byYear[year]); err != nil {
			return fmt.Errorf("write holidays %d: %w", year, err)
		}
		s.logger.Debug("silver holidays written", "year", year, "records", len(byYear[year]))
	}
	s.logger.Info("silver holidays written", "dir", s.silverDir, "years", len(years), "records", len(records))
	return nil
}

// LoadWeather writes the cleaned observations as one Parquet file per
// year-month partition.
func (s *Store) LoadWeather(ctx context.Context, observations []domain.WeatherObservation) error {
	byKey := make(map[domain.PartitionKey][]weatherRow)
	for _, obs := range observations {
		key := domain.PartitionKeyFor(obs.Date)
		byKey[key] = append(byKey[key], toWeatherRow(obs))
	}
	keys := make([]domain.PartitionKey, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := s.weatherDir(key)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create weather dir %s: %w", key, err)
		}
		if err := writeParquet(filepath.Join(dir, partFilename), byKey[key]); err != nil {
			return fmt.Errorf("write weather %s: %w", key, err)
		}
		s.logger.Debug("silver weather written", "partition", key.String(), "records", len(byKey[key]))
	}
	s.logger.Info("silver weather written", "dir", s.silverDir, "partitions", len(keys), "records", len(observations))
	return nil
}

// LoadAggregates writes the Gold aggregate as Parquet and CSV.
func (s *Store) LoadAggregates(ctx context.Context, rows []domain.AggregateRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.goldDir, 0o755); err != nil {
		return fmt.Errorf("create gold dir: %w", err)
	}

	parquetRows := make([]aggregateRow, len(rows))
	for i, r := range rows {
		parquetRows[i] = toAggregateRow(r)
	}
	if err := writeParquet(filepath.Join(s.goldDir, aggregateParquet), parquetRows); err != nil {
		return fmt.Errorf("write aggregate parquet: %w", err)
	}
	if err := writeAggregateCSV(filepath.Join(s.goldDir, aggregateCSV), rows); err != nil {
		return fmt.Errorf("write aggregate csv: %w", err)
	}

	s.logger.Info("gold tier written", "dir", s.goldDir, "groups", len(rows))
	return nil
}

// ReadCollisions loads one Silver partition back into records.
func (s *Store) ReadCollisions(key domain.PartitionKey) ([]domain.CollisionRecord, error) {
	rows, err := parquet.ReadFile[collisionRow](filepath.Join(s.partitionDir(key), partFilename))
	if err != nil {
		return nil, fmt.Errorf("read partition %s: %w", key, err)
	}

	records := make([]domain.CollisionRecord, len(rows))
	for i, row := range rows {
		r, err := fromCollisionRow(row)
		if err != nil {
			return nil, fmt.Errorf("partition %s: %w", key, err)
		}
		records[i] = r
	}
	return records, nil
}

// ReadHolidays loads one year of Silver holidays back into records.
func (s *Store) ReadHolidays(year int) ([]domain.HolidayRecord, error) {
	rows, err := parquet.ReadFile[holidayRow](filepath.Join(s.holidayDir(year), partFilename))
	if err != nil {
		return nil, fmt.Errorf("read holidays %d: %w", year, err)
	}

	records := make([]domain.HolidayRecord, len(rows))
	for i, row := range rows {
		r, err := fromHolidayRow(row)
		if err != nil {
			return nil, fmt.Errorf("holidays %d: %w", year, err)
		}
		records[i] = r
	}
	return records, nil
}

// ReadWeather loads one Silver weather partition back into observations.
func (s *Store) ReadWeather(key domain.PartitionKey) ([]domain.WeatherObservation, error) {
	rows, err := parquet.ReadFile[weatherRow](filepath.Join(s.weatherDir(key), partFilename))
	if err != nil {
		return nil, fmt.Errorf("read weather %s: %w", key, err)
	}

	observations := make([]domain.WeatherObservation, len(rows))
	for i, row := range rows {
		obs, err := fromWeatherRow(row)
		if err != nil {
			return nil, fmt.Errorf("weather %s: %w", key, err)
		}
		observations[i] = obs
	}
	return observations, nil
}

// ListPartitions discovers the Silver partition keys on disk in
// chronological order. A missing Silver directory is an empty list, not an
// error.
func (s *Store) ListPartitions() ([]domain.PartitionKey, error) {
	root := filepath.Join(s.silverDir, collisionsSubdir)
	years, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	var keys []domain.PartitionKey
	for _, yearEntry := range years {
		if !yearEntry.IsDir() {
			continue
		}
		var year int
		if _, err := fmt.Sscanf(yearEntry.Name(), "year=%d", &year); err != nil {
			continue
		}

		months, err := os.ReadDir(filepath.Join(root, yearEntry.Name()))
		if err != nil {
			return nil, fmt.Errorf("list partitions: %w", err)
		}
		for _, monthEntry := range months {
			if !monthEntry.IsDir() {
				continue
			}
			var month int
			if _, err := fmt.Sscanf(monthEntry.Name(), "month=%d", &month); err != nil {
				continue
			}
			keys = append(keys, domain.PartitionKey{Year: year, Month: time.Month(month)})
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys, nil
}

// ReadAggregates loads the Gold aggregate back from Parquet.
func (s *Store) ReadAggregates() ([]domain.AggregateRow, error) {
	rows, err := parquet.ReadFile[aggregateRow](filepath.Join(s.goldDir, aggregateParquet))
	if err != nil {
		return nil, fmt.Errorf("read aggregates: %w", err)
	}

	out := make([]domain.AggregateRow, len(rows))
	for i, row := range rows {
		out[i] = fromAggregateRow(row)
	}
	return out, nil
}

func writeAggregateCSV(path string, rows []domain.AggregateRow) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	header := []string{"day_type", "weather", "borough", "time_window", "collisions", "injured", "killed", "share"}
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			string(r.DayType),
			string(r.Weather),
			r.Borough,
			string(r.TimeWindow),
			strconv.Itoa(r.Collisions),
			strconv.Itoa(r.Injured),
			strconv.Itoa(r.Killed),
			strconv.FormatFloat(r.Share, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}
