package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rabbins/nyc-use-case/internal/adapter/bronze"
	"github.com/Rabbins/nyc-use-case/internal/adapter/nager"
	"github.com/Rabbins/nyc-use-case/internal/adapter/storage"
	"github.com/Rabbins/nyc-use-case/internal/domain"
	"github.com/Rabbins/nyc-use-case/internal/gold"
	"github.com/Rabbins/nyc-use-case/internal/observability"
	"github.com/Rabbins/nyc-use-case/internal/pipeline"
	"github.com/Rabbins/nyc-use-case/internal/schema"
)

const centralPark = "USW00094728"

// collisionCSV is one January of raw collisions covering the paths the run
// summary accounts for: a duplicate COLLISION_ID, an unparseable date, a
// pre-min-year row, a mixed-case borough, a missing borough, and a missing
// time. 2024-01-01 is New Year's Day, a Monday; 2024-01-06 is a Saturday.
const collisionCSV = `CRASH DATE,CRASH TIME,BOROUGH,ZIP CODE,LATITUDE,LONGITUDE,COLLISION_ID,NUMBER OF PERSONS INJURED,NUMBER OF PERSONS KILLED,NUMBER OF PEDESTRIANS INJURED,NUMBER OF PEDESTRIANS KILLED,NUMBER OF CYCLIST INJURED,NUMBER OF CYCLIST KILLED,NUMBER OF MOTORIST INJURED,NUMBER OF MOTORIST KILLED,CONTRIBUTING FACTOR VEHICLE 1,CONTRIBUTING FACTOR VEHICLE 2,CONTRIBUTING FACTOR VEHICLE 3,CONTRIBUTING FACTOR VEHICLE 4,CONTRIBUTING FACTOR VEHICLE 5
01/01/2024,,BRONX,10451,40.8201,-73.9203,1001,1,0,0,0,0,0,1,0,Driver Inattention/Distraction,,,,
01/06/2024,14:30,BROOKLYN,11201,40.6936,-73.9891,1002,2,0,1,0,0,0,1,0,Failure to Yield Right-of-Way,Unspecified,,,
01/16/2024,8:30,QUEENS,11354,40.7685,-73.8296,1003,0,1,0,1,0,0,0,0,Unsafe Speed,,,,
01/16/2024,11:00,QUEENS,11354,40.7685,-73.8296,1003,0,0,0,0,0,0,0,0,Unsafe Speed,,,,
2024-01-16,10:00,BROOKLYN,11201,,,1004,0,0,0,0,0,0,0,0,Unspecified,,,,
06/30/2012,12:00,MANHATTAN,10001,40.7506,-73.9972,1005,0,0,0,0,0,0,0,0,Unspecified,,,,
01/16/2024,18:45,bronx,10455,40.8150,-73.9082,1006,0,0,0,0,0,0,0,0,Following Too Closely,,,,
01/17/2024,10:00,,0,0,0,1007,0,0,0,0,0,0,0,0,Unspecified,,,,
`

// weatherCSV carries a rainy Saturday, a snowy Tuesday with a duplicate
// (date, station) row, a clear Wednesday, and a LaGuardia row the station
// filter drops. There is no observation for 2024-01-01.
const weatherCSV = `STATION,DATE,PRCP,SNOW,TMAX,TMIN,AWND,WT01,WT02
USW00094728,2024-01-06,120,0,83,22,41,,
USW00094728,2024-01-16,100,100,11,-40,52,1,
USW00094728,2024-01-16,999,0,11,-40,52,,
USW00094728,2024-01-17,0,0,44,-11,30,,
USW00014732,2024-01-16,61,0,17,-28,60,,
`

const holidayJSON = `[
  {"date": "2024-01-01", "localName": "New Year's Day", "name": "New Year's Day", "countryCode": "US", "global": true, "types": ["Public"]},
  {"date": "2024-01-15", "localName": "Martin Luther King, Jr. Day", "name": "Martin Luther King, Jr. Day", "countryCode": "US", "global": true, "types": ["Public"]}
]`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bronzeServer serves the three sources over HTTP the way the real ones
// look: CSV downloads plus a Nager.Date-style per-year holiday endpoint.
// requests counts every hit so cache behavior is observable.
func bronzeServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/collisions.csv", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = io.WriteString(w, collisionCSV)
	})
	mux.HandleFunc("/weather.csv", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = io.WriteString(w, weatherCSV)
	})
	mux.HandleFunc("/api/v3/PublicHolidays/2024/US", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, holidayJSON)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newPipeline(t *testing.T, srv *httptest.Server, bronzeDir string, store *storage.Store) *pipeline.Pipeline {
	t.Helper()

	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()

	downloader := bronze.NewDownloader(bronzeDir, logger, metrics)
	holidayClient := nager.NewClient(srv.URL+"/api/v3/PublicHolidays", 10*time.Second, logger)
	extractor := bronze.NewExtractor(downloader, holidayClient, bronze.Sources{
		CollisionsURL:      srv.URL + "/collisions.csv",
		CollisionsFilename: "collisions_raw.csv",
		HolidayYears:       []int{2024},
		HolidayCountry:     "US",
		HolidaysFilename:   "holidays_raw.json",
		WeatherURL:         srv.URL + "/weather.csv",
		WeatherFilename:    "weather_raw.csv",
	}, logger, metrics)

	windows, err := gold.NewTimeWindows([]int{6, 12, 18})
	require.NoError(t, err)

	return pipeline.New(extractor, store, logger, metrics, pipeline.Options{
		Jurisdiction: "US",
		Station:      centralPark,
		MinYear:      2013,
		Rules: gold.Rules{
			RainThresholdMM: 0.25,
			SeverePrecipMM:  50.0,
			SevereWindMPS:   17.2,
		},
		Windows: windows,
	})
}

// TestPipelineEndToEnd runs the full ETL against an httptest Bronze tier and
// verifies the run summary, the persisted Silver partitions, and the Gold
// aggregate, then re-runs against the cached files and expects identical
// output without any new downloads.
func TestPipelineEndToEnd(t *testing.T) {
	gold.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.February, 1, 6, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { gold.SetClock(nil) })

	var requests atomic.Int64
	srv := bronzeServer(t, &requests)

	dataDir := t.TempDir()
	bronzeDir := dataDir + "/bronze"
	store := storage.NewStore(dataDir+"/silver", dataDir+"/gold", discardLogger())

	summary, err := newPipeline(t, srv, bronzeDir, store).Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, requests.Load(), "one download per source")

	// Collisions: 8 raw, 1 bad date rejected, 1 duplicate ID, 1 pre-2013.
	assert.Equal(t, 8, summary.Collisions.Extracted)
	assert.Equal(t, 1, summary.Collisions.Rejected)
	assert.Equal(t, map[string]int{schema.ReasonBadDate: 1}, summary.Collisions.Reasons)
	assert.Equal(t, 1, summary.Collisions.Deduplicated)
	assert.Equal(t, 1, summary.Collisions.Filtered)
	assert.Equal(t, 5, summary.Collisions.Clean)

	// Weather: 5 raw, 1 other-station row filtered, 1 duplicate date.
	assert.Equal(t, 5, summary.Weather.Extracted)
	assert.Equal(t, 1, summary.Weather.Filtered)
	assert.Equal(t, 1, summary.Weather.Deduplicated)
	assert.Equal(t, 3, summary.Weather.Clean)

	assert.Equal(t, 2, summary.Holidays.Clean)
	assert.Equal(t, 1, summary.Partitions)
	assert.Equal(t, 5, summary.Enriched)

	// Silver tier: one 2024-01 partition holding the five clean records.
	keys, err := store.ListPartitions()
	require.NoError(t, err)
	require.Equal(t, []domain.PartitionKey{{Year: 2024, Month: time.January}}, keys)

	records, err := store.ReadCollisions(keys[0])
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "1001", records[0].ID)
	assert.Nil(t, records[0].Time, "blank crash time survives the round trip as nil")

	byID := make(map[string]domain.CollisionRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	assert.Equal(t, domain.BoroughBronx, byID["1006"].Borough, "borough case-folded")
	assert.Equal(t, domain.Borough(""), byID["1007"].Borough, "unmapped borough kept as null")
	assert.Nil(t, byID["1007"].Point, "(0,0) coordinates become nil")

	// Silver holidays: one year=2024 partition with both US holidays.
	holidays, err := store.ReadHolidays(2024)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "New Year's Day", holidays[0].Name)
	assert.Equal(t, []string{"Public"}, holidays[0].Types)

	// Silver weather: the 2024-01 partition with converted units and flags.
	observations, err := store.ReadWeather(keys[0])
	require.NoError(t, err)
	require.Len(t, observations, 3)
	snowy := observations[1]
	assert.Equal(t, time.Date(2024, time.January, 16, 0, 0, 0, 0, time.UTC), snowy.Date)
	assert.Equal(t, 10.0, snowy.PrecipitationMM, "PRCP tenths become mm")
	assert.True(t, snowy.SnowFlag)
	assert.True(t, snowy.Foggy, "WT01 flag carried through")
	require.NotNil(t, snowy.TempMaxC)
	assert.Equal(t, 1.1, *snowy.TempMaxC)
	require.NotNil(t, snowy.TempMinC)
	assert.Equal(t, -4.0, *snowy.TempMinC)

	// Gold tier: five singleton groups, deterministically ordered.
	rows, err := store.ReadAggregates()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	total, shares := 0, 0.0
	for _, row := range rows {
		total += row.Collisions
		shares += row.Share
	}
	assert.Equal(t, summary.Enriched, total, "aggregate counts reconcile")
	assert.InDelta(t, 1.0, shares, 1e-9)

	want := []domain.AggregateRow{
		{DayType: domain.DayTypeHoliday, Weather: domain.WeatherUnknown, Borough: "BRONX", TimeWindow: domain.WindowUnknown, Collisions: 1, Injured: 1, Killed: 0, Share: 0.2},
		{DayType: domain.DayTypeWeekday, Weather: domain.WeatherClear, Borough: "UNKNOWN", TimeWindow: domain.WindowMorning, Collisions: 1, Injured: 0, Killed: 0, Share: 0.2},
		{DayType: domain.DayTypeWeekday, Weather: domain.WeatherSnow, Borough: "BRONX", TimeWindow: domain.WindowEvening, Collisions: 1, Injured: 0, Killed: 0, Share: 0.2},
		{DayType: domain.DayTypeWeekday, Weather: domain.WeatherSnow, Borough: "QUEENS", TimeWindow: domain.WindowMorning, Collisions: 1, Injured: 0, Killed: 1, Share: 0.2},
		{DayType: domain.DayTypeWeekend, Weather: domain.WeatherRain, Borough: "BROOKLYN", TimeWindow: domain.WindowAfternoon, Collisions: 1, Injured: 2, Killed: 0, Share: 0.2},
	}
	assert.Equal(t, want, rows)

	// Second run: the bronze files are cached, so no new downloads, and the
	// output is byte-for-byte reproducible.
	summary2, err := newPipeline(t, srv, bronzeDir, store).Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, requests.Load(), "cached sources are not re-downloaded")
	assert.NotEqual(t, summary.RunID, summary2.RunID)
	assert.Equal(t, summary.Enriched, summary2.Enriched)

	rows2, err := store.ReadAggregates()
	require.NoError(t, err)
	assert.Equal(t, rows, rows2)
}

// TestPipelineStructuralFailure drops a required column from the collision
// export and expects the run to abort with a StructuralSchemaError before
// anything is written.
func TestPipelineStructuralFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/collisions.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "CRASH DATE,CRASH TIME,BOROUGH\n01/01/2024,9:00,BRONX\n")
	})
	mux.HandleFunc("/weather.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, weatherCSV)
	})
	mux.HandleFunc("/api/v3/PublicHolidays/2024/US", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, holidayJSON)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dataDir := t.TempDir()
	store := storage.NewStore(dataDir+"/silver", dataDir+"/gold", discardLogger())

	_, err := newPipeline(t, srv, dataDir+"/bronze", store).Run(context.Background())
	require.Error(t, err)

	var schemaErr *domain.StructuralSchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, domain.SourceCollisions, schemaErr.Source)
	assert.Contains(t, schemaErr.Missing, "COLLISION_ID")

	keys, err := store.ListPartitions()
	require.NoError(t, err)
	assert.Empty(t, keys, "no partial silver output after a fatal validation error")
}
