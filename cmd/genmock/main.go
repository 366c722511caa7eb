// Command genmock writes deterministic synthetic Bronze files — a collision
// CSV, a GHCN-Daily weather CSV, and a holiday JSON — so the pipeline can be
// run and demoed without network access. The same seed always produces the
// same files. Filenames match the config defaults, so pointing the ETL's
// bronze path at the output directory is enough to skip the downloads.
//
// Usage:
//
//	go run ./cmd/genmock -out data/bronze -year 2024 -seed 1
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Rabbins/nyc-use-case/internal/adapter/nager"
)

const weatherStation = "USW00094728" // NY Central Park

var boroughSpellings = []string{
	"BRONX", "BROOKLYN", "MANHATTAN", "QUEENS", "STATEN ISLAND",
	"Brooklyn", "queens", "", // real exports mix case and leave blanks
}

var contributingFactors = []string{
	"Driver Inattention/Distraction",
	"Failure to Yield Right-of-Way",
	"Following Too Closely",
	"Unsafe Speed",
	"Traffic Control Disregarded",
	"Unspecified",
	"",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/bronze", "output directory for the synthetic bronze files")
	year := flag.Int("year", 2024, "calendar year to generate")
	seed := flag.Int64("seed", 1, "PRNG seed; the same seed reproduces the same files")
	maxPerDay := flag.Int("max-per-day", 8, "maximum collisions generated per day")
	flag.Parse()

	if *year < 1900 || *year > 2100 {
		return fmt.Errorf("implausible year %d", *year)
	}
	if *maxPerDay < 1 {
		return fmt.Errorf("max-per-day must be at least 1")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rng := rand.New(rand.NewSource(*seed))

	holidays := federalHolidays(*year)
	if err := writeHolidayJSON(filepath.Join(*out, "holidays_raw.json"), holidays); err != nil {
		return fmt.Errorf("writing holidays: %w", err)
	}
	log.Printf("holidays: %d entries", len(holidays))

	weatherRows, err := writeWeatherCSV(filepath.Join(*out, "weather_raw.csv"), *year, rng)
	if err != nil {
		return fmt.Errorf("writing weather: %w", err)
	}
	log.Printf("weather: %d rows", weatherRows)

	collisionRows, err := writeCollisionCSV(filepath.Join(*out, "collisions_raw.csv"), *year, *maxPerDay, rng)
	if err != nil {
		return fmt.Errorf("writing collisions: %w", err)
	}
	log.Printf("collisions: %d rows", collisionRows)

	log.Printf("wrote bronze fixtures to %s", *out)
	return nil
}

// federalHolidays returns the US federal holidays of a year in the shape of
// a Nager.Date PublicHolidays response.
func federalHolidays(year int) []nager.Holiday {
	entry := func(date time.Time, name string) nager.Holiday {
		return nager.Holiday{
			Date:        date.Format(time.DateOnly),
			LocalName:   name,
			Name:        name,
			CountryCode: "US",
			Global:      true,
			Types:       []string{"Public"},
		}
	}

	return []nager.Holiday{
		entry(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), "New Year's Day"),
		entry(nthWeekday(year, time.January, time.Monday, 3), "Martin Luther King, Jr. Day"),
		entry(nthWeekday(year, time.February, time.Monday, 3), "Washington's Birthday"),
		entry(lastWeekday(year, time.May, time.Monday), "Memorial Day"),
		entry(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC), "Juneteenth National Independence Day"),
		entry(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC), "Independence Day"),
		entry(nthWeekday(year, time.September, time.Monday, 1), "Labor Day"),
		entry(nthWeekday(year, time.October, time.Monday, 2), "Columbus Day"),
		entry(time.Date(year, time.November, 11, 0, 0, 0, 0, time.UTC), "Veterans Day"),
		entry(nthWeekday(year, time.November, time.Thursday, 4), "Thanksgiving Day"),
		entry(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC), "Christmas Day"),
	}
}

// nthWeekday returns the nth occurrence of a weekday within a month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != weekday {
		t = t.AddDate(0, 0, 1)
	}
	return t.AddDate(0, 0, (n-1)*7)
}

// lastWeekday returns the last occurrence of a weekday within a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	for t.Weekday() != weekday {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

func writeHolidayJSON(path string, holidays []nager.Holiday) error {
	data, err := json.MarshalIndent(holidays, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writeWeatherCSV generates one GHCN-Daily row per day for the Central Park
// station, in the source's tenths encodings. About one day in twenty has no
// observation, keeping the Unknown weather bucket exercised, and the file
// carries the dirt real exports have: a duplicate (date, station) row and a
// second station's rows for the filter to drop.
func writeWeatherCSV(path string, year int, rng *rand.Rand) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"STATION", "DATE", "PRCP", "SNOW", "TMAX", "TMIN", "AWND", "WT01", "WT02"}); err != nil {
		return 0, err
	}

	rows := 0
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day := start; day.Year() == year; day = day.AddDate(0, 0, 1) {
		if rng.Intn(20) == 0 {
			continue // no observation that day
		}

		if err := w.Write(weatherRecord(weatherStation, day, rng)); err != nil {
			return rows, err
		}
		rows++

		// Occasional duplicate of the same (date, station) with different
		// values; the cleaner must keep the first deterministically.
		if rng.Intn(60) == 0 {
			if err := w.Write(weatherRecord(weatherStation, day, rng)); err != nil {
				return rows, err
			}
			rows++
		}
		// A LaGuardia row now and then, dropped by the station filter.
		if rng.Intn(30) == 0 {
			if err := w.Write(weatherRecord("USW00014732", day, rng)); err != nil {
				return rows, err
			}
			rows++
		}
	}

	w.Flush()
	return rows, w.Error()
}

// weatherRecord rolls one day's observation. Winter days snow sometimes,
// any day can rain, and wind occasionally reaches gale force.
func weatherRecord(station string, day time.Time, rng *rand.Rand) []string {
	month := day.Month()
	winter := month == time.December || month <= time.February

	prcpTenths := 0
	if rng.Intn(3) == 0 { // wet day
		prcpTenths = rng.Intn(600)
	}
	snowMM := 0
	if winter && prcpTenths > 0 && rng.Intn(2) == 0 {
		snowMM = rng.Intn(150) + 1
	}

	seasonalHigh := 60 + 220*seasonOffset(month)/11 // tenths °C
	tmax := seasonalHigh + rng.Intn(80) - 40
	tmin := tmax - 50 - rng.Intn(60)
	awnd := rng.Intn(120)
	if rng.Intn(40) == 0 {
		awnd = 172 + rng.Intn(80) // gale
	}

	wt01 := ""
	if rng.Intn(15) == 0 {
		wt01 = "1"
	}

	return []string{
		station,
		day.Format(time.DateOnly),
		strconv.Itoa(prcpTenths),
		strconv.Itoa(snowMM),
		strconv.Itoa(tmax),
		strconv.Itoa(tmin),
		strconv.Itoa(awnd),
		wt01,
		"",
	}
}

// seasonOffset folds the month onto a 0..11 closeness to July, so summer
// months land near the top of the seasonal temperature ramp.
func seasonOffset(month time.Month) int {
	d := int(month) - int(time.July)
	if d < 0 {
		d = -d
	}
	return 11 - d
}

// writeCollisionCSV generates collision rows in the open-data export layout,
// including the defects the pipeline has to survive: a duplicated
// COLLISION_ID, a row with an unparseable date, a negative casualty count,
// and rows with blank boroughs, times, and coordinates.
func writeCollisionCSV(path string, year, maxPerDay int, rng *rand.Rand) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"CRASH DATE", "CRASH TIME", "BOROUGH", "ZIP CODE", "LATITUDE", "LONGITUDE",
		"COLLISION_ID",
		"NUMBER OF PERSONS INJURED", "NUMBER OF PERSONS KILLED",
		"NUMBER OF PEDESTRIANS INJURED", "NUMBER OF PEDESTRIANS KILLED",
		"NUMBER OF CYCLIST INJURED", "NUMBER OF CYCLIST KILLED",
		"NUMBER OF MOTORIST INJURED", "NUMBER OF MOTORIST KILLED",
		"CONTRIBUTING FACTOR VEHICLE 1", "CONTRIBUTING FACTOR VEHICLE 2",
		"CONTRIBUTING FACTOR VEHICLE 3", "CONTRIBUTING FACTOR VEHICLE 4",
		"CONTRIBUTING FACTOR VEHICLE 5",
	}
	if err := w.Write(header); err != nil {
		return 0, err
	}

	rows := 0
	nextID := 4000000
	var lastRecord []string

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day := start; day.Year() == year; day = day.AddDate(0, 0, 1) {
		for i := rng.Intn(maxPerDay) + 1; i > 0; i-- {
			nextID++
			record := collisionRecord(day, nextID, rng)
			if err := w.Write(record); err != nil {
				return rows, err
			}
			rows++
			lastRecord = record
		}

		switch rng.Intn(120) {
		case 0: // duplicate ID, the dedup path
			if err := w.Write(lastRecord); err != nil {
				return rows, err
			}
			rows++
		case 1: // unparseable date, the bad_date rejection path
			bad := collisionRecord(day, nextID+100000, rng)
			bad[0] = day.Format(time.DateOnly)
			if err := w.Write(bad); err != nil {
				return rows, err
			}
			rows++
		case 2: // negative counter, the negative_value rejection path
			bad := collisionRecord(day, nextID+200000, rng)
			bad[7] = "-1"
			if err := w.Write(bad); err != nil {
				return rows, err
			}
			rows++
		}
	}

	w.Flush()
	return rows, w.Error()
}

func collisionRecord(day time.Time, id int, rng *rand.Rand) []string {
	crashTime := fmt.Sprintf("%d:%02d", rng.Intn(24), rng.Intn(60))
	if rng.Intn(25) == 0 {
		crashTime = "" // unreported time
	}

	lat, lon := "", ""
	if rng.Intn(10) != 0 {
		lat = strconv.FormatFloat(40.50+rng.Float64()*0.42, 'f', 5, 64)
		lon = strconv.FormatFloat(-74.25+rng.Float64()*0.50, 'f', 5, 64)
	}

	injured := 0
	if rng.Intn(4) == 0 {
		injured = rng.Intn(3) + 1
	}
	killed := 0
	if rng.Intn(200) == 0 {
		killed = 1
	}

	factor1 := contributingFactors[rng.Intn(len(contributingFactors)-1)] // never blank in slot 1
	factor2 := contributingFactors[rng.Intn(len(contributingFactors))]

	return []string{
		day.Format("01/02/2006"),
		crashTime,
		boroughSpellings[rng.Intn(len(boroughSpellings))],
		strconv.Itoa(10001 + rng.Intn(1400)),
		lat, lon,
		strconv.Itoa(id),
		strconv.Itoa(injured), strconv.Itoa(killed),
		"0", "0",
		"0", "0",
		strconv.Itoa(injured), "0",
		factor1, factor2,
		"", "", "",
	}
}
