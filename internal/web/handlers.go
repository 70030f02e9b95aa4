package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/pable/zeratul/internal/model"
	"github.com/pable/zeratul/internal/stats"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeLookupError maps not-found errors to 404 and everything else to 500.
// A 500 body carries the request id so it can be matched to the log line.
func writeLookupError(w http.ResponseWriter, req *http.Request, err error, what string) {
	if errors.Is(err, stats.ErrNotFound) {
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}
	zerolog.Ctx(req.Context()).Error().Err(err).Msg("lookup failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":      "internal error",
		"request_id": GetRequestID(req.Context()),
	})
}

// parseInt reads a positive integer query parameter, falling back to def
// when missing or invalid and capping at maxVal when maxVal > 0.
func parseInt(req *http.Request, key string, def, maxVal int) int {
	v, err := strconv.Atoi(req.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) {
	metrics, err := model.ParseMetrics(req.URL.Query()["metric"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := r.stats.Dashboard(req.Context(), metrics...)
	if err != nil {
		writeLookupError(w, req, err, "dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (r *Router) handleGetMaps(w http.ResponseWriter, req *http.Request) {
	maps, err := r.stats.Maps(req.Context())
	if err != nil {
		writeLookupError(w, req, err, "maps")
		return
	}
	writeJSON(w, http.StatusOK, maps)
}

func (r *Router) handleGetMap(w http.ResponseWriter, req *http.Request) {
	d, err := r.stats.MapDetail(req.Context(), req.PathValue("slug"))
	if err != nil {
		writeLookupError(w, req, err, "map")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (r *Router) handleGetGames(w http.ResponseWriter, req *http.Request) {
	page := parseInt(req, "page", 1, 0)
	perPage := parseInt(req, "per_page", r.opts.PageSize, 100)
	p, err := r.stats.Games(req.Context(), page, perPage)
	if err != nil {
		writeLookupError(w, req, err, "games")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (r *Router) handleGetGame(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(req.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	d, err := r.stats.GameDetail(req.Context(), id)
	if err != nil {
		writeLookupError(w, req, err, "game")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (r *Router) handleGetPlayer(w http.ResponseWriter, req *http.Request) {
	rec, err := r.stats.PlayerRecord(req.Context(), req.PathValue("name"))
	if err != nil {
		writeLookupError(w, req, err, "player")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
