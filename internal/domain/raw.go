package domain

// Source names one of the three raw datasets flowing through the pipeline.
type Source string

const (
	SourceCollisions Source = "collisions"
	SourceHolidays   Source = "holidays"
	SourceWeather    Source = "weather"
)

// RawRow is one loosely-typed row from a Bronze file. Adapters normalize
// values to two shapes: scalar fields are strings (CSV cells, JSON scalars)
// and list fields are []string. Missing columns are simply absent.
type RawRow map[string]any

// Str returns the row's value for a column as a string, or "" when the
// column is absent, nil, or not a scalar.
func (r RawRow) Str(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// StrList returns the row's value for a list column, or nil when the column
// is absent or not a list.
func (r RawRow) StrList(col string) []string {
	v, ok := r[col]
	if !ok || v == nil {
		return nil
	}
	l, ok := v.([]string)
	if !ok {
		return nil
	}
	return l
}

// RawBatch is the unit of exchange between the Bronze adapters and the
// pipeline: one source's rows plus the column set the file declared (CSV
// header or JSON keys). The declared columns drive structural validation.
type RawBatch struct {
	Source  Source
	Columns []string
	Rows    []RawRow
}

// HasColumn reports whether the batch declared the column.
func (b RawBatch) HasColumn(name string) bool {
	for _, c := range b.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RejectedRow is a raw row dropped during validation, with the stable
// reason code used in summary counts and metrics.
type RejectedRow struct {
	Row    RawRow
	Reason string
}
