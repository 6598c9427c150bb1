// Package server serves the site over HTTP, rendering pages on each request.
//
// Everything is mounted under the configured base URL, so the server answers
// on the same paths as the published static site.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/trr266/bitesized/internal/livereload"
	"github.com/trr266/bitesized/internal/logging"
	"github.com/trr266/bitesized/internal/render"
	"github.com/trr266/bitesized/internal/site"
)

const (
	// HealthPath answers with 200 while the server is up. It's mounted at
	// the root, outside the base URL.
	HealthPath = "/healthz"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server routes requests to the pages and static files of a Site.
type Server struct {
	site   *site.Site
	static fs.FS
	hub    *livereload.Hub
	router chi.Router
}

// New returns a Server for s, serving the files in static. When hub is not
// nil, it's mounted at livereload.Path for the pages' live reload client.
func New(s *site.Site, static fs.FS, hub *livereload.Hub) (*Server, error) {
	srv := &Server{
		site:   s,
		static: static,
		hub:    hub,
	}
	router, err := srv.routes()
	if err != nil {
		return nil, err
	}
	srv.router = router
	return srv, nil
}

func (srv *Server) routes() (chi.Router, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(instrument)
	r.Use(middleware.Recoverer)

	r.Get(HealthPath, health)

	pages := chi.NewRouter()
	pages.Use(middleware.StripSlashes)
	for _, route := range srv.site.Routes() {
		pattern := strings.TrimSuffix(route.Path, "/")
		if pattern == "" {
			pattern = "/"
		}
		pages.Get(pattern, srv.page(route.Page, http.StatusOK))
	}
	if err := srv.mountStatic(pages); err != nil {
		return nil, err
	}
	if srv.hub != nil {
		pages.Handle("/"+livereload.Path, srv.hub)
	}
	notFound := srv.page(srv.site.NotFoundPage(), http.StatusNotFound)
	pages.NotFound(notFound)

	base := strings.TrimSuffix(srv.site.Config.BaseURL, "/")
	if base == "" {
		r.Mount("/", pages)
		return r, nil
	}
	r.Mount(base, pages)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, srv.site.Config.BaseURL, http.StatusFound)
	})
	r.NotFound(notFound)
	return r, nil
}

// mountStatic serves every top level directory and file of the static
// files at the same path.
func (srv *Server) mountStatic(r chi.Router) error {
	entries, err := fs.ReadDir(srv.static, ".")
	if err != nil {
		return fmt.Errorf("error listing static files: %w", err)
	}
	files := http.StripPrefix(strings.TrimSuffix(srv.site.Config.BaseURL, "/"), http.FileServerFS(srv.static))
	notFound := srv.page(srv.site.NotFoundPage(), http.StatusNotFound)
	static := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// no directory listings
		if strings.HasSuffix(r.URL.Path, "/") {
			notFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
	for _, entry := range entries {
		if entry.IsDir() {
			r.Handle("/"+entry.Name()+"/*", static)
			continue
		}
		r.Handle("/"+entry.Name(), static)
	}
	return nil
}

// page renders page with status. If it fails, the server error page is
// rendered with a 500 instead.
func (srv *Server) page(page render.Page, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		var buf bytes.Buffer
		if err := render.RenderPage(ctx, &buf, srv.site, page); err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "error rendering page", "path", r.URL.Path, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			render.Render(ctx, w, srv.site, srv.site.ServerErrorPage(ctx))
			return
		}
		w.WriteHeader(status)
		if _, err := buf.WriteTo(w); err != nil {
			logging.FromContext(ctx).DebugContext(ctx, "error writing response", "path", r.URL.Path, "error", err)
		}
	}
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		logging.FromContext(r.Context()).DebugContext(r.Context(), "error writing health check", "error", err)
	}
}

func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. Requests get a context carrying the logger in ctx.
func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}
	if srv.hub != nil {
		httpServer.RegisterOnShutdown(srv.hub.Close)
	}

	errs := make(chan error, 1)
	go func() {
		errs <- httpServer.ListenAndServe()
	}()
	log.InfoContext(ctx, "serving site", "url", "http://"+addr+srv.site.Config.BaseURL, "environment", srv.site.Config.Environment)

	select {
	case err := <-errs:
		return fmt.Errorf("error serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down: %w", err)
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error serving on %s: %w", addr, err)
	}
	return nil
}
