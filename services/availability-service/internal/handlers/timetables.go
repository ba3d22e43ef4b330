package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/md-rashed-zaman/apptslots/libs/httpx"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
)

// Timetabler is the operation behind the HTTP surface.
type Timetabler interface {
	Timetables(ctx context.Context, req availability.Request) ([]availability.DayTimetable, error)
}

type Handler struct {
	svc      Timetabler
	logger   *slog.Logger
	validate *validator.Validate
}

func New(svc Timetabler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{svc: svc, logger: logger, validate: newValidator()}
}

// timetableRequest is the wire shape shared by GET (query string) and POST (JSON body).
type timetableRequest struct {
	TimezoneIdentifier string `json:"timezone_identifier" validate:"required"`
	StartDayIdentifier string `json:"start_day_identifier" validate:"required,len=8,numeric"`
	ServiceDuration    int64  `json:"service_duration" validate:"gt=0"`
	Days               *int   `json:"days" validate:"omitempty,min=1,max=366"`
	TimeslotInterval   *int64 `json:"timeslot_interval" validate:"omitempty,min=1"`
	IsIgnoreSchedule   bool   `json:"is_ignore_schedule"`
	IsIgnoreWorkhour   bool   `json:"is_ignore_workhour"`
}

func (r timetableRequest) toCore() availability.Request {
	req := availability.Request{
		StartDayIdentifier: strings.TrimSpace(r.StartDayIdentifier),
		TimezoneIdentifier: strings.TrimSpace(r.TimezoneIdentifier),
		ServiceDuration:    r.ServiceDuration,
		Days:               availability.DefaultDays,
		TimeslotInterval:   availability.DefaultTimeslotInterval,
		IgnoreSchedule:     r.IsIgnoreSchedule,
		IgnoreWorkhour:     r.IsIgnoreWorkhour,
	}
	if r.Days != nil {
		req.Days = *r.Days
	}
	if r.TimeslotInterval != nil {
		req.TimeslotInterval = *r.TimeslotInterval
	}
	return req
}

// Timetables serves GET (query parameters) and POST (JSON body).
func (h *Handler) Timetables(w http.ResponseWriter, r *http.Request) {
	var req timetableRequest
	switch r.Method {
	case http.MethodGet:
		parsed, msg := parseQuery(r.URL.Query())
		if msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		req = parsed
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, firstValidationError(err), http.StatusBadRequest)
		return
	}

	logger := httpx.RequestLogger(r.Context(), h.logger)
	ctx := availability.ContextWithLogger(r.Context(), logger)
	days, err := h.svc.Timetables(ctx, req.toCore())
	if err != nil {
		if availability.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("timetable computation failed", "err", err)
		http.Error(w, "failed to compute timetables", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(days)
}

func parseQuery(q url.Values) (timetableRequest, string) {
	req := timetableRequest{
		StartDayIdentifier: q.Get("start_day_identifier"),
		TimezoneIdentifier: q.Get("timezone_identifier"),
	}
	if raw := q.Get("service_duration"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, "service_duration must be an integer"
		}
		req.ServiceDuration = v
	}
	if raw := q.Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, "days must be an integer"
		}
		req.Days = &v
	}
	if raw := q.Get("timeslot_interval"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, "timeslot_interval must be an integer"
		}
		req.TimeslotInterval = &v
	}
	var err error
	if req.IsIgnoreSchedule, err = parseFlag(q.Get("is_ignore_schedule")); err != nil {
		return req, "is_ignore_schedule must be a boolean"
	}
	if req.IsIgnoreWorkhour, err = parseFlag(q.Get("is_ignore_workhour")); err != nil {
		return req, "is_ignore_workhour must be a boolean"
	}
	return req, ""
}

func parseFlag(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
