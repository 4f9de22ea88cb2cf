package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
)

// RatingsTeamColumn is the header of the team name column in ratings exports.
const RatingsTeamColumn = "Team Name"

// Summary rows appended to ratings exports; they are not teams.
var ratingsSummaryRows = map[string]bool{
	"VERIFICATION (FBS AVERAGES):": true,
	"New FBS Averages:":            true,
}

// ReadRatingsCSV parses a power ratings export into raw records keyed by the
// header row. Blank and summary rows are skipped; numeric parsing is left to
// the adapter.
func ReadRatingsCSV(r io.Reader) ([]adapter.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ratings header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var out []adapter.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ratings line %d: %w", line, err)
		}

		rec := make(adapter.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = strings.TrimSpace(row[i])
			}
		}
		name, _ := rec[RatingsTeamColumn].(string)
		if name == "" || ratingsSummaryRows[name] {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadRatingsFile reads a ratings export. A "{season}" placeholder in path is
// replaced with the season.
func LoadRatingsFile(path string, season int) ([]adapter.Record, error) {
	path = RatingsPath(path, season)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ratings file: %w", err)
	}
	defer f.Close()
	return ReadRatingsCSV(f)
}

// RatingsPath expands the season placeholder.
func RatingsPath(path string, season int) string {
	return strings.ReplaceAll(path, "{season}", strconv.Itoa(season))
}
