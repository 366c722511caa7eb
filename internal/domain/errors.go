package domain

import (
	"fmt"
	"strings"
)

// StructuralSchemaError reports required columns missing from a raw batch.
// This is a configuration or upstream-export problem, not a data-quality
// problem: the run aborts with no partial output.
type StructuralSchemaError struct {
	Source  Source
	Missing []string
}

func (e *StructuralSchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column(s): %s", e.Source, strings.Join(e.Missing, ", "))
}

// JoinAmbiguityError reports a duplicate key in a reference snapshot.
// Upstream deduplication should make this impossible; hitting it means an
// enrichment join would be non-deterministic, so the run aborts.
type JoinAmbiguityError struct {
	Dataset string
	Key     string
}

func (e *JoinAmbiguityError) Error() string {
	return fmt.Sprintf("%s: duplicate join key %q", e.Dataset, e.Key)
}

// ConfigurationError reports a missing or out-of-range configuration value.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Option, e.Reason)
}
