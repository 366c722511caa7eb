package bronze

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Rabbins/nyc-use-case/internal/adapter/nager"
	"github.com/Rabbins/nyc-use-case/internal/domain"
)

// holidayColumns is the column set of a cached holiday file, matching the
// Nager.Date response fields the pipeline consumes.
var holidayColumns = []string{"date", "localName", "name", "countryCode", "types"}

// LoadCSV reads a CSV file with a header row into a raw batch. Rows shorter
// than the header are padded with blanks; extra cells are dropped.
func LoadCSV(path string, source domain.Source) (domain.RawBatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawBatch{}, fmt.Errorf("open %s: %w", source, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return domain.RawBatch{}, fmt.Errorf("read %s header: empty file", source)
	}
	if err != nil {
		return domain.RawBatch{}, fmt.Errorf("read %s header: %w", source, err)
	}

	batch := domain.RawBatch{Source: source, Columns: header}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.RawBatch{}, fmt.Errorf("read %s row: %w", source, err)
		}

		row := make(domain.RawRow, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch, nil
}

// LoadHolidayJSON reads a cached holiday API response into a raw batch.
func LoadHolidayJSON(path string) (domain.RawBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RawBatch{}, fmt.Errorf("open holidays: %w", err)
	}

	var holidays []nager.Holiday
	if err := json.Unmarshal(data, &holidays); err != nil {
		return domain.RawBatch{}, fmt.Errorf("parse holidays %s: %w", path, err)
	}

	batch := domain.RawBatch{Source: domain.SourceHolidays, Columns: holidayColumns}
	for _, h := range holidays {
		batch.Rows = append(batch.Rows, domain.RawRow{
			"date":        h.Date,
			"localName":   h.LocalName,
			"name":        h.Name,
			"countryCode": h.CountryCode,
			"types":       h.Types,
		})
	}
	return batch, nil
}
