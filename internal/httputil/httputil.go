package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/logging"
)

// ParsePoint reads the lat and lon query parameters.
func ParsePoint(r *http.Request) (lat, lon float64, err error) {
	q := r.URL.Query()
	lat, err = strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("lat must be a number between -90 and 90")
	}
	lon, err = strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("lon must be a number between -180 and 180")
	}
	return lat, lon, nil
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.For("http").WithError(err).Warn("failed to encode response")
	}
}

// WriteQueryError maps a failed lookup to a status: 503 when the store is
// unreachable, 500 for anything else.
func WriteQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrConnectivity) {
		http.Error(w, "Store unavailable", http.StatusServiceUnavailable)
		return
	}
	logging.For("http").WithError(err).Error("query failed")
	http.Error(w, "Query failed", http.StatusInternalServerError)
}

// AddServerTiming appends a Server-Timing metric for the elapsed time since
// began.
func AddServerTiming(w http.ResponseWriter, name string, began time.Time) {
	ms := float64(time.Since(began).Microseconds()) / 1000
	w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%.1f", name, ms))
}
