// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger records data refreshes and operational events.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogDataRefresh logs a completed season refresh.
func (al *AuditLogger) LogDataRefresh(season int, source string, games, lines int, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"season":    season,
		"source":    source,
		"games":     games,
		"lines":     lines,
		"timestamp": timestamp.Unix(),
	}).Info("Season data refreshed")
}

// LogCacheInvalidation logs dropped cached reports.
func (al *AuditLogger) LogCacheInvalidation(season, entries int, reason string) {
	al.WithFields(logrus.Fields{
		"season":  season,
		"entries": entries,
		"reason":  reason,
	}).Info("Report cache invalidated")
}

// LogCircuitBreakerEvent logs a data source circuit breaker transition.
func (al *AuditLogger) LogCircuitBreakerEvent(source, state string, consecutiveErrors int) {
	al.WithFields(logrus.Fields{
		"source":             source,
		"state":              state,
		"consecutive_errors": consecutiveErrors,
	}).Warn("Circuit breaker state changed")
}
