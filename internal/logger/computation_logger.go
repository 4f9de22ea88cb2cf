package logger

import (
	"github.com/sirupsen/logrus"
)

// ComputationLogger logs metric computation passes.
type ComputationLogger struct {
	*logrus.Entry
}

// NewComputationLogger creates a new computation logger.
func NewComputationLogger(baseLogger *logrus.Logger) *ComputationLogger {
	return &ComputationLogger{
		Entry: baseLogger.WithField("component", "computation"),
	}
}

// LogPassStarted logs the start of a computation pass.
func (cl *ComputationLogger) LogPassStarted(runID, report string, season int, filterKey string, teams int) {
	cl.WithFields(logrus.Fields{
		"run_id":     runID,
		"report":     report,
		"season":     season,
		"filter":     filterKey,
		"candidates": teams,
	}).Info("Computation pass started")
}

// LogPassCompleted logs the result of a computation pass.
func (cl *ComputationLogger) LogPassCompleted(runID, report string, season, computed, excluded int, durationMs float64) {
	cl.WithFields(logrus.Fields{
		"run_id":      runID,
		"report":      report,
		"season":      season,
		"computed":    computed,
		"excluded":    excluded,
		"duration_ms": durationMs,
	}).Info("Computation pass completed")
}

// LogTeamExcluded logs a team dropped from a report for structural reasons.
func (cl *ComputationLogger) LogTeamExcluded(report, team, reason string) {
	cl.WithFields(logrus.Fields{
		"report": report,
		"team":   team,
		"reason": reason,
	}).Debug("Team excluded from report")
}

// LogIncompleteScore logs a game flagged completed that carries no final score.
func (cl *ComputationLogger) LogIncompleteScore(team string, gameID int64, week int) {
	cl.WithFields(logrus.Fields{
		"team":    team,
		"game_id": gameID,
		"week":    week,
	}).Warn("Completed game has no final score, excluded from record")
}

// LogCacheHit logs a report served from cache.
func (cl *ComputationLogger) LogCacheHit(report, filterKey string) {
	cl.WithFields(logrus.Fields{
		"report": report,
		"filter": filterKey,
	}).Debug("Report served from cache")
}
