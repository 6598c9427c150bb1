package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trr266/bitesized/internal/build"
	"github.com/trr266/bitesized/internal/logging"
	"github.com/trr266/bitesized/internal/site"
	"github.com/trr266/bitesized/internal/watch"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		watching bool
		webDir   string
	)
	cmd := &cobra.Command{
		Use:     "build",
		Aliases: []string{"b"},
		Short:   "Write the site to a directory as static files",
		Long: `Write every page of the site, the not found page and the static files to
the output directory, emptying it first. Internal links are checked once the
site is written; on_broken_links decides whether broken ones fail the build.

With --watch, templates and static files are read from --web-dir and the
site is rebuilt whenever they change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if !watching {
				webDir = ""
			}
			return traced(ctx, func(ctx context.Context) error {
				return a.build(ctx, cmd, webDir, watching)
			})
		},
	}
	cmd.Flags().String("out", "build", "directory to write the site to")
	cmd.Flags().BoolVar(&watching, "watch", false, "rebuild when templates or static files change")
	cmd.Flags().StringVar(&webDir, "web-dir", "web", "directory holding templates/ and static/, used with --watch")
	mustBind(a.v, "build.out_dir", cmd.Flags().Lookup("out"))
	return cmd
}

func (a *app) build(ctx context.Context, cmd *cobra.Command, webDir string, watching bool) error {
	log := logging.FromContext(ctx)
	templates, static, err := webFiles(webDir)
	if err != nil {
		return err
	}
	s := site.New(a.cfg, templates, false)
	outDir := a.cfg.Build.OutDir

	result, err := build.Build(ctx, s, static, outDir)
	if err != nil && !watching {
		return err
	}
	if err != nil {
		log.ErrorContext(ctx, "error building site", "error", err)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages and %d assets to %s\n", len(result.Pages), result.Assets, outDir)
	}
	if !watching {
		return nil
	}

	watcher, err := watch.New(watch.DefaultDelay, filepath.Join(webDir, "templates"), filepath.Join(webDir, "static"))
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "watching for changes", "web_dir", webDir)
	return watcher.Run(ctx, func(ctx context.Context, paths []string) {
		s.Purge(ctx)
		result, err := build.Build(ctx, s, static, outDir)
		if err != nil {
			log.ErrorContext(ctx, "error rebuilding site", "changed", paths, "error", err)
			return
		}
		log.InfoContext(ctx, "rebuilt site", "changed", paths, "pages", len(result.Pages))
	})
}
