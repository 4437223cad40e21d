package roads

import (
	"net/http"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/httputil"
)

type Handler struct {
	svc *Service
}

// NearestHandler serves GET /nearest?lat=&lon=.
func (h *Handler) NearestHandler(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := httputil.ParsePoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	began := time.Now()
	m, err := h.svc.Nearest(r.Context(), lat, lon)
	httputil.AddServerTiming(w, "nearest", began)
	if err != nil {
		httputil.WriteQueryError(w, err)
		return
	}
	if m == nil {
		http.Error(w, "No roads found", http.StatusNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}
