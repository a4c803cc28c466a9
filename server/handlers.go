package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-json-experiment/json"

	"github.com/viant/launchsync/internal/logger"
	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launchsync"
	"github.com/viant/launchsync/remote"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type launchResponse struct {
	ID          string         `json:"id"`
	Partition   string         `json:"partition"`
	Name        string         `json:"name"`
	Net         time.Time      `json:"net"`
	Details     launch.Details `json:"details"`
	LastUpdated time.Time      `json:"last_updated"`
}

type listResponse struct {
	Partition string           `json:"partition"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	Launches  []launchResponse `json:"launches"`
}

type loadResponse struct {
	Partition              string `json:"partition"`
	Direction              string `json:"direction"`
	Status                 string `json:"status"`
	EndOfPaginationReached bool   `json:"end_of_pagination_reached"`
	Retryable              bool   `json:"retryable,omitzero"`
	Error                  string `json:"error,omitempty"`
}

type sweepResponse struct {
	Threshold time.Time `json:"threshold"`
	StaleRows int       `json:"stale_rows"`
	Wiped     []string  `json:"wiped"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := partitionParam(w, r)
	if !ok {
		return
	}
	limit, err := intParam(r, "limit", defaultListLimit)
	if err != nil || limit < 1 || limit > maxListLimit {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxListLimit))
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	rows, err := h.Store.GetOrdered(r.Context(), p, limit, offset)
	if err != nil {
		logger.ErrorCtx(r.Context(), "list launches failed", logger.KeyPartition, p.String(), logger.KeyError, logger.Err(err))
		writeError(w, http.StatusInternalServerError, "failed to read launches")
		return
	}
	resp := listResponse{Partition: p.String(), Limit: limit, Offset: offset, Launches: make([]launchResponse, 0, len(rows))}
	for _, l := range rows {
		resp.Launches = append(resp.Launches, launchResponse{
			ID:          l.ID,
			Partition:   l.Partition.String(),
			Name:        l.Name,
			Net:         l.Net,
			Details:     l.Details,
			LastUpdated: l.LastUpdated,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) {
	p, ok := partitionParam(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("direction")
	if name == "" {
		name = launchsync.Refresh.String()
	}
	d, err := launchsync.ParseDirection(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	window, err := h.Store.GetOrdered(r.Context(), p, 0, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read launches")
		return
	}

	resp := loadResponse{Partition: p.String(), Direction: d.String()}
	status := http.StatusOK
	switch res := h.Coordinator.Load(r.Context(), p, d, window).(type) {
	case launchsync.Success:
		resp.Status = "success"
		resp.EndOfPaginationReached = res.EndOfPaginationReached
	case launchsync.Error:
		resp.Status = "error"
		resp.Error = res.Error()
		resp.Retryable = res.Retryable()
		status = loadErrorStatus(res)
	}
	writeJSON(w, status, resp)
}

func loadErrorStatus(e launchsync.Error) int {
	switch {
	case errors.Is(e, launchsync.ErrTransientFetch):
		if errors.Is(e, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.Is(e, remote.ErrMapping):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) sweep(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	report, err := h.Coordinator.Sweep(r.Context(), now())
	if err != nil {
		logger.ErrorCtx(r.Context(), "sweep failed", logger.KeyError, logger.Err(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := sweepResponse{Threshold: report.Threshold, StaleRows: report.StaleRows, Wiped: make([]string, 0, len(report.Wiped))}
	for _, p := range report.Wiped {
		resp.Wiped = append(resp.Wiped, p.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

func partitionParam(w http.ResponseWriter, r *http.Request) (launch.Partition, bool) {
	p, err := launch.ParsePartition(chi.URLParam(r, "partition"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return p, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, v); err != nil {
		logger.Warn("write response failed", logger.KeyError, logger.Err(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
