// Package domain models New York City motor vehicle collision data and the
// reference datasets used to enrich it.
//
// # Data Sources
//
// Collision records originate from the NYC Open Data "Motor Vehicle
// Collisions - Crashes" export (NYPD form MV-104AN), one CSV row per
// reported collision. Daily weather comes from a NOAA GHCN-Daily station
// summary CSV. Public holidays come from a Nager.Date-style JSON API,
// fetched per year for the configured country. The Bronze adapters download
// these files once per run; everything downstream is file-local.
//
// # Collision CSV Conventions
//
// Date and time:
//
//	CRASH DATE is "MM/DD/YYYY", e.g. "01/15/2024". Dates are normalized to
//	midnight UTC; no collision carries a zone.
//	CRASH TIME is 24-hour "H:MM" or "HH:MM", e.g. "0:05", "14:30". The field
//	is frequently blank or malformed in the source export; such records keep
//	a nil time and land in the Unknown time window during aggregation.
//
// Borough:
//
//	One of BRONX, BROOKLYN, MANHATTAN, QUEENS, STATEN ISLAND, in varying
//	case. Roughly a third of rows (highway collisions in particular) have no
//	borough; those keep an empty Borough and are reported under the UNKNOWN
//	bucket rather than dropped, since dropping them would understate
//	citywide totals.
//
// Casualty counters:
//
//	Eight integer columns count injured/killed for persons, pedestrians,
//	cyclists, and motorists. Blank means zero. Negative values do not occur
//	in well-formed exports and are rejected during validation.
//
// Identity:
//
//	COLLISION_ID is the source system's unique key and is required: it is
//	the deduplication key, so a row without one is rejected. First
//	occurrence wins when the export contains duplicates.
//
// # GHCN-Daily Conventions
//
// GHCN-Daily encodes several elements in tenths of their unit:
//
//	TMAX, TMIN  tenths of °C      254  → 25.4 °C
//	PRCP        tenths of mm      117  → 11.7 mm
//	AWND        tenths of m/s     172  → 17.2 m/s
//	SNOW        whole mm          30   → 30 mm
//
// WT01 and WT02 are weather-type flags for fog; a value of "1" marks the
// day as foggy. Blank element values mean "not reported", which is distinct
// from zero for temperatures and wind but treated as zero for
// precipitation and snowfall.
//
// # Holiday API Conventions
//
// One JSON object per holiday: date ("YYYY-MM-DD"), name (English),
// localName, countryCode, and a types list ("Public", "Bank", ...). The
// calendar is keyed by (date, countryCode).
//
// # Classification
//
// Day-type: Holiday when the collision date appears in the holiday
// calendar, else Weekend for Saturday/Sunday, else Weekday. Holiday takes
// precedence, so a Saturday holiday is Holiday.
//
// Weather-impact, first match wins:
//
//	Unknown  no observation for the date (never silently Clear)
//	Severe   wind ≥ severe_wind_mps or precipitation ≥ severe_precip_mm
//	Snow     snowfall recorded
//	Rain     precipitation > rain_threshold_mm
//	Clear    otherwise
//
// # Partitioning
//
// Cleaned collision records are partitioned by {year, month} of the crash
// date. The key is derived from the date alone, so partitioning is stable
// across runs and reorderings.
package domain
