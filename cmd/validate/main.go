// Command validate re-reads the Silver and Gold outputs of a pipeline run
// and checks the invariants the pipeline promises: partition keys match the
// records stored under them, collision IDs are unique, the aggregate table
// is ordered and reconciles exactly against the stored collision set, and
// the CSV rendition agrees with the Parquet one.
//
// Usage:
//
//	go run ./cmd/validate -config config/config.yaml
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Rabbins/nyc-use-case/internal/adapter/storage"
	"github.com/Rabbins/nyc-use-case/internal/config"
	"github.com/Rabbins/nyc-use-case/internal/domain"
	"github.com/Rabbins/nyc-use-case/internal/observability"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	flag.Parse()

	os.Exit(run(*configPath))
}

func run(configPath string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}

	logger := observability.NewLogger("error", "text")
	store := storage.NewStore(cfg.Paths.Silver, cfg.Paths.Gold, logger)

	fmt.Println("=== Collision ETL Output Validation ===")
	fmt.Println()

	collisions, silverPhase := validateSilver(store)
	aggregates, goldPhase := validateGold(store)
	phases := []*phase{
		silverPhase,
		goldPhase,
		validateReconciliation(collisions, aggregates),
		validateCSVParity(filepath.Join(cfg.Paths.Gold, "aggregate.csv"), aggregates),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-40s %s\n", p.name, status)
		for _, e := range p.errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("validation FAILED")
		return 1
	}
	fmt.Println("validation passed")
	return 0
}

// validateSilver walks every partition and checks record-level invariants:
// the record belongs under its partition key, dates are set, counters are
// non-negative, boroughs are canonical, and collision IDs are globally
// unique. Returns all records for the reconciliation phase.
func validateSilver(store *storage.Store) ([]domain.CollisionRecord, *phase) {
	p := &phase{name: "silver partition integrity"}

	keys, err := store.ListPartitions()
	if err != nil {
		p.errorf("list partitions: %v", err)
		return nil, p
	}
	if len(keys) == 0 {
		p.errorf("no silver partitions found")
		return nil, p
	}

	var all []domain.CollisionRecord
	seen := make(map[string]domain.PartitionKey)

	for _, key := range keys {
		records, err := store.ReadCollisions(key)
		if err != nil {
			p.errorf("read partition %s: %v", key, err)
			continue
		}
		fmt.Printf("  partition %s: %d records\n", key, len(records))

		for _, rec := range records {
			if got := domain.PartitionKeyFor(rec.Date); got != key {
				p.errorf("record %s dated %s stored under partition %s", rec.ID, rec.Date.Format("2006-01-02"), key)
			}
			if rec.ID == "" {
				p.errorf("partition %s holds a record without an ID", key)
			}
			if rec.Date.IsZero() {
				p.errorf("record %s has a zero date", rec.ID)
			}
			if prev, dup := seen[rec.ID]; dup {
				p.errorf("collision ID %s appears in partitions %s and %s", rec.ID, prev, key)
			}
			seen[rec.ID] = key

			for name, n := range map[string]int{
				"persons_injured": rec.PersonsInjured, "persons_killed": rec.PersonsKilled,
				"pedestrians_injured": rec.PedestriansInjured, "pedestrians_killed": rec.PedestriansKilled,
				"cyclists_injured": rec.CyclistsInjured, "cyclists_killed": rec.CyclistsKilled,
				"motorists_injured": rec.MotoristsInjured, "motorists_killed": rec.MotoristsKilled,
			} {
				if n < 0 {
					p.errorf("record %s has negative %s %d", rec.ID, name, n)
				}
			}
			if rec.Borough != "" && domain.ParseBorough(string(rec.Borough)) != rec.Borough {
				p.errorf("record %s has non-canonical borough %q", rec.ID, rec.Borough)
			}
		}
		all = append(all, records...)
	}
	return all, p
}

// validateGold checks the aggregate table's own invariants: valid bucket
// values, unique group keys, the promised ordering, and shares that sum
// to one.
func validateGold(store *storage.Store) ([]domain.AggregateRow, *phase) {
	p := &phase{name: "gold aggregate integrity"}

	rows, err := store.ReadAggregates()
	if err != nil {
		p.errorf("read aggregates: %v", err)
		return nil, p
	}
	fmt.Printf("  aggregate: %d groups\n", len(rows))

	dayTypes := map[domain.DayType]bool{domain.DayTypeWeekday: true, domain.DayTypeWeekend: true, domain.DayTypeHoliday: true}
	weathers := map[domain.WeatherImpact]bool{
		domain.WeatherClear: true, domain.WeatherRain: true, domain.WeatherSnow: true,
		domain.WeatherSevere: true, domain.WeatherUnknown: true,
	}
	windows := map[domain.TimeWindow]bool{
		domain.WindowNight: true, domain.WindowMorning: true, domain.WindowAfternoon: true,
		domain.WindowEvening: true, domain.WindowUnknown: true,
	}

	keys := make(map[string]bool, len(rows))
	shareSum := 0.0
	for i, row := range rows {
		if !dayTypes[row.DayType] {
			p.errorf("row %d: unknown day type %q", i, row.DayType)
		}
		if !weathers[row.Weather] {
			p.errorf("row %d: unknown weather impact %q", i, row.Weather)
		}
		if !windows[row.TimeWindow] {
			p.errorf("row %d: unknown time window %q", i, row.TimeWindow)
		}
		if row.Borough == "" {
			p.errorf("row %d: empty borough bucket, expected %q", i, domain.BoroughUnknownLabel)
		}
		if row.Collisions <= 0 || row.Injured < 0 || row.Killed < 0 {
			p.errorf("row %d: implausible metrics (collisions=%d injured=%d killed=%d)", i, row.Collisions, row.Injured, row.Killed)
		}
		if row.Share <= 0 || row.Share > 1 {
			p.errorf("row %d: share %g outside (0,1]", i, row.Share)
		}
		shareSum += row.Share

		key := row.GroupKey()
		if keys[key] {
			p.errorf("duplicate group key %q", key)
		}
		keys[key] = true

		if i > 0 {
			prev := rows[i-1]
			if row.Collisions > prev.Collisions {
				p.errorf("row %d: count %d out of descending order after %d", i, row.Collisions, prev.Collisions)
			}
			if row.Collisions == prev.Collisions && key < prev.GroupKey() {
				p.errorf("row %d: tie on %d broken out of key order (%q after %q)", i, row.Collisions, key, prev.GroupKey())
			}
		}
	}

	if len(rows) > 0 && math.Abs(shareSum-1) > 1e-9 {
		p.errorf("shares sum to %g, expected 1", shareSum)
	}
	return rows, p
}

// validateReconciliation checks that the aggregate table accounts for every
// stored collision record exactly once: counts, injured, and killed totals
// must match the Silver tier.
func validateReconciliation(collisions []domain.CollisionRecord, aggregates []domain.AggregateRow) *phase {
	p := &phase{name: "silver/gold reconciliation"}
	if collisions == nil || aggregates == nil {
		p.errorf("skipped: earlier phase failed to load data")
		return p
	}

	var wantInjured, wantKilled int
	for _, rec := range collisions {
		wantInjured += rec.PersonsInjured
		wantKilled += rec.PersonsKilled
	}

	var gotCollisions, gotInjured, gotKilled int
	for _, row := range aggregates {
		gotCollisions += row.Collisions
		gotInjured += row.Injured
		gotKilled += row.Killed
	}

	if gotCollisions != len(collisions) {
		p.errorf("aggregate counts sum to %d, silver holds %d records", gotCollisions, len(collisions))
	}
	if gotInjured != wantInjured {
		p.errorf("aggregate injured sums to %d, silver holds %d", gotInjured, wantInjured)
	}
	if gotKilled != wantKilled {
		p.errorf("aggregate killed sums to %d, silver holds %d", gotKilled, wantKilled)
	}
	return p
}

// validateCSVParity checks the spreadsheet rendition of the aggregate
// against the Parquet rows.
func validateCSVParity(path string, aggregates []domain.AggregateRow) *phase {
	p := &phase{name: "aggregate csv parity"}
	if aggregates == nil {
		p.errorf("skipped: gold phase failed to load data")
		return p
	}

	f, err := os.Open(path)
	if err != nil {
		p.errorf("open csv: %v", err)
		return p
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		p.errorf("read csv: %v", err)
		return p
	}
	if len(rows) == 0 {
		p.errorf("csv is empty, expected a header")
		return p
	}
	if got := len(rows) - 1; got != len(aggregates) {
		p.errorf("csv has %d data rows, parquet has %d", got, len(aggregates))
		return p
	}

	for i, want := range aggregates {
		row := rows[i+1]
		if len(row) != 8 {
			p.errorf("csv row %d has %d fields, expected 8", i+1, len(row))
			continue
		}
		if row[0] != string(want.DayType) || row[1] != string(want.Weather) ||
			row[2] != want.Borough || row[3] != string(want.TimeWindow) {
			p.errorf("csv row %d keys %v disagree with parquet %q", i+1, row[:4], want.GroupKey())
		}
		if n, err := strconv.Atoi(row[4]); err != nil || n != want.Collisions {
			p.errorf("csv row %d count %q disagrees with parquet %d", i+1, row[4], want.Collisions)
		}
	}
	return p
}
