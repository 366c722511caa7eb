package pipeline

import "time"

// SourceCounts tracks what happened to one source's rows on the way from
// Bronze to Silver. Reasons breaks Rejected down by reason code; it is nil
// when nothing was rejected.
type SourceCounts struct {
	Extracted    int
	Rejected     int
	Reasons      map[string]int
	Deduplicated int
	Filtered     int
	Clean        int
}

// Summary reports the outcome of a single pipeline run.
type Summary struct {
	RunID      string
	Collisions SourceCounts
	Holidays   SourceCounts
	Weather    SourceCounts
	Partitions int
	Enriched   int
	Groups     int
	Duration   time.Duration
}
