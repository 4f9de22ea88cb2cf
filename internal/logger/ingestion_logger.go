package logger

import (
	"github.com/sirupsen/logrus"
)

// IngestionLogger logs upstream fetches and record normalization.
type IngestionLogger struct {
	*logrus.Entry
}

// NewIngestionLogger creates a new ingestion logger.
func NewIngestionLogger(baseLogger *logrus.Logger) *IngestionLogger {
	return &IngestionLogger{
		Entry: baseLogger.WithField("component", "ingestion"),
	}
}

// LogFetch logs a successful upstream request.
func (il *IngestionLogger) LogFetch(source, endpoint string, season, records int, latencyMs float64) {
	il.WithFields(logrus.Fields{
		"source":     source,
		"endpoint":   endpoint,
		"season":     season,
		"records":    records,
		"latency_ms": latencyMs,
	}).Info("Fetched upstream records")
}

// LogFetchError logs a failed upstream request.
func (il *IngestionLogger) LogFetchError(source, endpoint string, err error) {
	il.WithFields(logrus.Fields{
		"source":   source,
		"endpoint": endpoint,
	}).WithError(err).Error("Upstream fetch failed")
}

// LogMalformedInput logs a value that could not be coerced. The record is
// still processed with the field treated as missing.
func (il *IngestionLogger) LogMalformedInput(entity, field string, value interface{}, err error) {
	il.WithFields(logrus.Fields{
		"entity": entity,
		"field":  field,
		"value":  value,
	}).WithError(err).Warn("Malformed input coerced to missing")
}

// LogRecordRejected logs a record dropped at the boundary.
func (il *IngestionLogger) LogRecordRejected(entity, key string, err error) {
	il.WithFields(logrus.Fields{
		"entity": entity,
		"key":    key,
	}).WithError(err).Warn("Record rejected")
}

// LogRecordsLoaded logs the size of a normalized dataset.
func (il *IngestionLogger) LogRecordsLoaded(season, teams, games, lines, ratings, stats int) {
	il.WithFields(logrus.Fields{
		"season":  season,
		"teams":   teams,
		"games":   games,
		"lines":   lines,
		"ratings": ratings,
		"stats":   stats,
	}).Info("Dataset loaded")
}
