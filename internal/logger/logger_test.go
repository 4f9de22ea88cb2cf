package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("chatty", buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")

	log = NewLoggerWithOutput("debug", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestComputationLoggerPass(t *testing.T) {
	log, buf := setupTestLogger()
	cl := NewComputationLogger(log)

	cl.LogPassCompleted("run-1", "sos", 2024, 133, 1, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "computation", logEntry["component"])
	assert.Equal(t, "sos", logEntry["report"])
	assert.Equal(t, float64(133), logEntry["computed"])
}

func TestComputationLoggerIncompleteScore(t *testing.T) {
	log, buf := setupTestLogger()
	cl := NewComputationLogger(log)

	cl.LogIncompleteScore("Army", 401628374, 7)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "Army", logEntry["team"])
}

func TestIngestionLoggerMalformedInput(t *testing.T) {
	log, buf := setupTestLogger()
	il := NewIngestionLogger(log)

	il.LogMalformedInput("game", "home_points", "N/A", errors.New("unable to cast"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "ingestion", logEntry["component"])
	assert.Equal(t, "home_points", logEntry["field"])
	assert.Equal(t, "N/A", logEntry["value"])
	assert.Equal(t, "unable to cast", logEntry["error"])
}

func TestAuditLoggerRefresh(t *testing.T) {
	log, buf := setupTestLogger()
	al := NewAuditLogger(log)

	al.LogDataRefresh(2024, "cfbd", 850, 1400, time.Unix(1700000000, 0))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, float64(1700000000), logEntry["timestamp"])
}
