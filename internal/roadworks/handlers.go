package roadworks

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/httputil"
	"github.com/EmpoweredVote/roadgeo/internal/nearest"
)

type Handler struct {
	svc *Service
}

// NearestHandler serves GET /nearest?lat=&lon=[&within=meters]. With a
// radius it returns the closest worksite inside it.
func (h *Handler) NearestHandler(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := httputil.ParsePoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	began := time.Now()
	var m *Match
	if raw := r.URL.Query().Get("within"); raw != "" {
		meters, perr := strconv.ParseFloat(raw, 64)
		if perr != nil || meters <= 0 {
			http.Error(w, "within must be a positive number of meters", http.StatusBadRequest)
			return
		}
		var matches []Match
		matches, err = h.svc.Within(r.Context(), lat, lon, meters)
		if len(matches) > 0 {
			m = &matches[0]
		}
	} else {
		m, err = h.svc.Nearest(r.Context(), lat, lon)
	}
	httputil.AddServerTiming(w, "nearest", began)

	if err != nil {
		writeError(w, err)
		return
	}
	if m == nil {
		http.Error(w, "No roadworks found", http.StatusNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

// WithinHandler serves GET /within?lat=&lon=[&meters=], listing every
// worksite inside the radius.
func (h *Handler) WithinHandler(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := httputil.ParsePoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	meters := h.svc.DefaultRadius()
	if raw := r.URL.Query().Get("meters"); raw != "" {
		meters, err = strconv.ParseFloat(raw, 64)
		if err != nil || meters <= 0 {
			http.Error(w, "meters must be a positive number", http.StatusBadRequest)
			return
		}
	}
	if meters <= 0 {
		http.Error(w, "meters is required", http.StatusBadRequest)
		return
	}

	began := time.Now()
	matches, err := h.svc.Within(r.Context(), lat, lon, meters)
	httputil.AddServerTiming(w, "within", began)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, matches)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, nearest.ErrWithinUnsupported) {
		http.Error(w, err.Error(), http.StatusNotImplemented)
		return
	}
	httputil.WriteQueryError(w, err)
}
