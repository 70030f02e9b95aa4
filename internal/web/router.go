// Package web exposes the statistics views as a read-only JSON API and
// serves stored map thumbnails.
package web

import (
	"context"
	"io/fs"
	"net/http"
	"strings"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/pable/zeratul/internal/model"
)

// Stats is the view surface the handlers render.
type Stats interface {
	Dashboard(ctx context.Context, metrics ...model.Metric) (*model.Dashboard, error)
	Maps(ctx context.Context) ([]model.MapListing, error)
	MapDetail(ctx context.Context, slug string) (*model.MapDetail, error)
	Games(ctx context.Context, page, perPage int) (*model.GamePage, error)
	GameDetail(ctx context.Context, id int64) (*model.GameDetail, error)
	PlayerRecord(ctx context.Context, name string) (*model.PlayerRecord, error)
}

// Options configures the router.
type Options struct {
	MediaRoot   string // directory served under MediaPrefix; empty disables media
	MediaPrefix string // e.g. "/media/"
	PageSize    int
}

// Router holds the HTTP routes and dependencies
type Router struct {
	mux     *http.ServeMux
	stats   Stats
	opts    Options
	log     zerolog.Logger
	handler http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(stats Stats, opts Options, log zerolog.Logger) *Router {
	r := &Router{
		mux:   http.NewServeMux(),
		stats: stats,
		opts:  opts,
		log:   log,
	}

	r.mux.HandleFunc("GET /api/dashboard", r.handleDashboard)
	r.mux.HandleFunc("GET /api/maps", r.handleGetMaps)
	r.mux.HandleFunc("GET /api/maps/{slug}", r.handleGetMap)
	r.mux.HandleFunc("GET /api/games", r.handleGetGames)
	r.mux.HandleFunc("GET /api/games/{id}", r.handleGetGame)
	r.mux.HandleFunc("GET /api/players/{name}", r.handleGetPlayer)

	r.mux.HandleFunc("GET /health", r.handleHealth)

	if opts.MediaRoot != "" && opts.MediaPrefix != "" {
		prefix := "/" + strings.Trim(opts.MediaPrefix, "/") + "/"
		r.mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(mediaDir(opts.MediaRoot))))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	r.handler = RequestID(log)(c.Handler(r.mux))
	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// mediaDir is an http.Dir that refuses directory listings.
type mediaDir string

func (d mediaDir) Open(name string) (http.File, error) {
	f, err := http.Dir(d).Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
