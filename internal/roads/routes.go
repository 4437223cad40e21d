package roads

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(svc *Service) http.Handler {
	r := chi.NewRouter()
	h := &Handler{svc: svc}

	r.Get("/nearest", h.NearestHandler)

	return r
}
