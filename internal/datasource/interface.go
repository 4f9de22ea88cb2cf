package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
)

// DataSource fetches one season of raw records from an upstream provider.
type DataSource interface {
	// FetchRaw retrieves teams, games, betting lines and box score stats for
	// the season. Ratings are not published upstream and come from a file.
	FetchRaw(ctx context.Context, season int) (adapter.RawDataset, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "disabled"
)

// ErrDisabled is returned by a source switched off in configuration.
var ErrDisabled = errors.New("data source is disabled")

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode extracts the code of a DataSourceError, or "" for other errors.
func ErrorCode(err error) string {
	var dse DataSourceError
	if errors.As(err, &dse) {
		return dse.Code
	}
	return ""
}
