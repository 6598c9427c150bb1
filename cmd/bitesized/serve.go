package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trr266/bitesized/internal/livereload"
	"github.com/trr266/bitesized/internal/logging"
	"github.com/trr266/bitesized/internal/server"
	"github.com/trr266/bitesized/internal/site"
	"github.com/trr266/bitesized/internal/watch"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		dev    bool
		webDir string
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the site over HTTP",
		Long: `Serve the site over HTTP, rendering pages on each request.

With --dev, templates and static files are read from --web-dir instead of
the binary, the template cache is dropped whenever they change, and open
pages reload themselves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return traced(ctx, func(ctx context.Context) error {
				return a.serve(ctx, dev, webDir)
			})
		},
	}
	cmd.Flags().String("host", "127.0.0.1", "host to listen on")
	cmd.Flags().Int("port", 3000, "port to listen on")
	cmd.Flags().BoolVar(&dev, "dev", false, "reload templates from disk and live reload open pages")
	cmd.Flags().StringVar(&webDir, "web-dir", "web", "directory holding templates/ and static/, used with --dev")
	mustBind(a.v, "server.host", cmd.Flags().Lookup("host"))
	mustBind(a.v, "server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func (a *app) serve(ctx context.Context, dev bool, webDir string) error {
	log := logging.FromContext(ctx)
	if !dev {
		webDir = ""
	}
	templates, static, err := webFiles(webDir)
	if err != nil {
		return err
	}

	var hub *livereload.Hub
	if dev {
		hub = livereload.NewHub()
	}
	s := site.New(a.cfg, templates, dev)
	srv, err := server.New(s, static, hub)
	if err != nil {
		return err
	}

	if dev {
		watcher, err := watch.New(watch.DefaultDelay, filepath.Join(webDir, "templates"), filepath.Join(webDir, "static"))
		if err != nil {
			return err
		}
		go func() {
			err := watcher.Run(ctx, func(ctx context.Context, paths []string) {
				s.Purge(ctx)
				clients := hub.Broadcast(ctx)
				log.InfoContext(ctx, "reloading", "changed", paths, "clients", clients)
			})
			if err != nil {
				log.WarnContext(ctx, "error stopping watcher", "error", err)
			}
		}()
	}

	return srv.ListenAndServe(ctx, a.cfg.Server.Addr())
}
