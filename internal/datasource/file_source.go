package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
)

// FileSourceName identifies snapshot directories on disk.
const FileSourceName = "file"

// FileSource reads API-shaped JSON snapshots laid out as
// <root>/<season>/{teams,games,lines,stats}.json. Only games.json is required.
type FileSource struct {
	root    string
	enabled bool
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string, enabled bool) *FileSource {
	return &FileSource{root: dir, enabled: enabled}
}

// Name returns the name of the data source
func (s *FileSource) Name() string {
	return FileSourceName
}

// IsEnabled returns whether this data source is currently enabled
func (s *FileSource) IsEnabled() bool {
	return s.enabled
}

// FetchRaw reads the season's snapshot files.
func (s *FileSource) FetchRaw(_ context.Context, season int) (adapter.RawDataset, error) {
	var raw adapter.RawDataset
	if !s.enabled {
		return raw, NewDataSourceError(FileSourceName, ErrCodeDisabled, "source disabled in configuration", ErrDisabled)
	}

	dir := filepath.Join(s.root, strconv.Itoa(season))
	var err error
	if raw.Games, err = s.read(dir, "games.json", true); err != nil {
		return raw, err
	}
	if raw.Teams, err = s.read(dir, "teams.json", false); err != nil {
		return raw, err
	}
	if raw.Lines, err = s.read(dir, "lines.json", false); err != nil {
		return raw, err
	}
	if raw.Stats, err = s.read(dir, "stats.json", false); err != nil {
		return raw, err
	}
	return raw, nil
}

func (s *FileSource) read(dir, name string, required bool) ([]adapter.Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil, nil
	}
	if err != nil {
		return nil, NewDataSourceError(FileSourceName, ErrCodeNotFound, "failed to read "+name, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, NewDataSourceError(FileSourceName, ErrCodeInvalidData, fmt.Sprintf("failed to parse %s", name), err)
	}
	return adapter.Records(rows), nil
}
