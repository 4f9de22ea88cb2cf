package api

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/yourusername/gridiron-metrics/internal/models"
	"github.com/yourusername/gridiron-metrics/internal/percentile"
)

// Leaderboards is the read surface the handlers need.
type Leaderboards interface {
	StrengthOfSchedule(ctx context.Context, f models.Filter) (*models.Report[models.ScheduleStrength], error)
	Luck(ctx context.Context, f models.Filter) (*models.Report[models.LuckBreakdown], error)
	Metrics(ctx context.Context, f models.Filter) (*models.Report[models.MetricRecord], error)
}

// Entry is one leaderboard row with its display color.
type Entry[T any] struct {
	Team       T       `json:"team"`
	Percentile float64 `json:"percentile"`
	Background string  `json:"background"`
	Text       string  `json:"text"`
}

// LeaderboardResponse is the JSON body of a leaderboard endpoint.
type LeaderboardResponse[T any] struct {
	RunID      uuid.UUID     `json:"run_id"`
	Season     int           `json:"season"`
	Filter     models.Filter `json:"filter"`
	ComputedAt time.Time     `json:"computed_at"`
	Teams      []Entry[T]    `json:"teams"`
	Excluded   []string      `json:"excluded,omitempty"`
}

// PercentileResponse is the JSON body of the percentile endpoint.
type PercentileResponse struct {
	Rank       int               `json:"rank"`
	N          int               `json:"n"`
	Percentile float64           `json:"percentile"`
	Bucket     percentile.Bucket `json:"bucket"`
}

// ErrorResponse is returned for every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handlers contains HTTP handlers for the leaderboard API
type Handlers struct {
	boards            Leaderboards
	includePostseason bool
	validate          *validator.Validate
	logger            *logrus.Entry
}

// NewHandlers creates a new handlers instance
func NewHandlers(boards Leaderboards, includePostseason bool, log *logrus.Logger) *Handlers {
	return &Handlers{
		boards:            boards,
		includePostseason: includePostseason,
		validate:          validator.New(),
		logger:            log.WithField("component", "api"),
	}
}

// HandleStrengthOfSchedule returns the SOS leaderboard
// GET /api/leaderboards/strength-of-schedule/{season}
func (h *Handlers) HandleStrengthOfSchedule(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	report, err := h.boards.StrengthOfSchedule(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked(report, true, func(s models.ScheduleStrength) int { return s.Rank }))
}

// HandleLuck returns the luck leaderboard
// GET /api/leaderboards/luck/{season}
func (h *Handlers) HandleLuck(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	report, err := h.boards.Luck(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// Rank 1 is the unluckiest team, which is the low end of the color scale.
	writeJSON(w, http.StatusOK, ranked(report, false, func(l models.LuckBreakdown) int { return l.Rank }))
}

// HandleMetrics returns the flat per-team records
// GET /api/metrics/{season}
func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	report, err := h.boards.Metrics(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandlePercentile converts a rank into a percentile and color band
// GET /api/percentile?rank=N&n=M&higherIsBetter=true
func (h *Handlers) HandlePercentile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rank, err := strconv.Atoi(q.Get("rank"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "rank must be an integer"})
		return
	}
	n, err := strconv.Atoi(q.Get("n"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "n must be an integer"})
		return
	}
	higherIsBetter := true
	if v := q.Get("higherIsBetter"); v != "" {
		if higherIsBetter, err = cast.ToBoolE(v); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "higherIsBetter must be a boolean"})
			return
		}
	}
	if n <= 0 || rank < 1 || rank > n {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: models.ErrInvalidRank.Error()})
		return
	}

	p, bucket := percentile.Colorize(rank, n, higherIsBetter)
	writeJSON(w, http.StatusOK, PercentileResponse{Rank: rank, N: n, Percentile: p, Bucket: bucket})
}

// filter builds the filter set from the path season and query flags.
func (h *Handlers) filter(w http.ResponseWriter, r *http.Request) (models.Filter, bool) {
	season, err := strconv.Atoi(chi.URLParam(r, "season"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid season"})
		return models.Filter{}, false
	}

	q := r.URL.Query()
	f := models.Filter{
		Season:         season,
		Classification: strings.ToLower(strings.TrimSpace(q.Get("classification"))),
		Conference:     strings.TrimSpace(q.Get("conference")),
	}

	conferenceOnly, err := boolParam(q.Get("conferenceOnly"), false)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "conferenceOnly must be a boolean"})
		return f, false
	}
	includePostseason, err := boolParam(q.Get("includePostseason"), h.includePostseason)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "includePostseason must be a boolean"})
		return f, false
	}
	f.ConferenceOnly = conferenceOnly
	f.RegularSeasonOnly = !includePostseason

	if err := h.validate.Struct(f); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return f, false
	}
	return f, true
}

func boolParam(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return cast.ToBoolE(v)
}

// ranked attaches percentile colors using each row's leaderboard rank.
func ranked[T any](r *models.Report[T], higherIsBetter bool, rank func(T) int) LeaderboardResponse[T] {
	out := LeaderboardResponse[T]{
		RunID:      r.RunID,
		Season:     r.Season,
		Filter:     r.Filter,
		ComputedAt: r.ComputedAt,
		Teams:      make([]Entry[T], len(r.Teams)),
		Excluded:   r.Excluded,
	}
	n := len(r.Teams)
	for i, t := range r.Teams {
		if rk := rank(t); rk < 1 || rk > n {
			out.Teams[i] = Entry[T]{Team: t}
			continue
		}
		p, b := percentile.Colorize(rank(t), n, higherIsBetter)
		out.Teams[i] = Entry[T]{Team: t, Percentile: p, Background: b.Background, Text: b.Text}
	}
	return out
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNoGames), errors.Is(err, models.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "request cancelled"})
	default:
		h.logger.WithError(err).Error("Failed to compute report")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to compute report"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
