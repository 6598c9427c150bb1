// Package build writes the site to a directory as static files, ready to be
// published by any file server.
//
// Every route is rendered to an HTML file, the not found page to 404.html,
// and the static assets are copied alongside them. Once written, every
// internal link of every page is checked against the output, and broken
// links are handled according to the on_broken_links setting.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trr266/bitesized/internal/logging"
	"github.com/trr266/bitesized/internal/render"
	"github.com/trr266/bitesized/internal/site"
)

const tracerName = "github.com/trr266/bitesized/internal/build"

// NotFoundFile is the file the not found page is written to. Static hosts
// like GitHub Pages serve it for unknown paths.
const NotFoundFile = "404.html"

var (
	// ErrBrokenLink is returned, joined for every broken link found, when
	// on_broken_links is "throw".
	ErrBrokenLink = errors.New("broken link")

	// ErrUnsafeOutDir is returned when the output directory is one that
	// must not be emptied.
	ErrUnsafeOutDir = errors.New("refusing to use output directory")
)

// Result describes a finished build.
type Result struct {
	// Pages are the HTML files written, relative to the output
	// directory, in route order followed by NotFoundFile.
	Pages []string

	// Assets is the number of static files copied.
	Assets int

	// BrokenLinks holds every broken internal link found, whatever the
	// on_broken_links policy.
	BrokenLinks []BrokenLink
}

// Build empties outDir and writes the site to it. Static files are copied
// from static.
//
// Pages that fail to render fail the build. Broken links fail it too when
// on_broken_links is "throw", in which case the returned error wraps
// ErrBrokenLink and the Result is still returned.
func Build(ctx context.Context, s *site.Site, static fs.FS, outDir string) (result *Result, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "build.Site",
		trace.WithAttributes(
			attribute.String("build.out_dir", outDir),
			attribute.String("build.environment", s.Config.Environment),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	log := logging.FromContext(ctx)

	if err := clean(outDir); err != nil {
		return nil, err
	}

	result = &Result{}
	result.Assets, err = copyStatic(static, outDir)
	if err != nil {
		return nil, err
	}

	for _, route := range s.Routes() {
		file := OutputPath(route.Path, s.Config.TrailingSlash)
		if err := writePage(ctx, s, route.Page, filepath.Join(outDir, filepath.FromSlash(file))); err != nil {
			return nil, fmt.Errorf("error building %s: %w", route.Path, err)
		}
		result.Pages = append(result.Pages, file)
	}
	if err := writePage(ctx, s, s.NotFoundPage(), filepath.Join(outDir, NotFoundFile)); err != nil {
		return nil, fmt.Errorf("error building %s: %w", NotFoundFile, err)
	}
	result.Pages = append(result.Pages, NotFoundFile)

	result.BrokenLinks, err = CheckLinks(ctx, os.DirFS(outDir), s.Config.BaseURL, result.Pages)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("build.pages", len(result.Pages)),
		attribute.Int("build.assets", result.Assets),
		attribute.Int("build.broken_links", len(result.BrokenLinks)),
	)

	switch s.Config.OnBrokenLinks {
	case "throw":
		if len(result.BrokenLinks) > 0 {
			errs := make([]error, 0, len(result.BrokenLinks))
			for _, link := range result.BrokenLinks {
				errs = append(errs, fmt.Errorf("%w: %s", ErrBrokenLink, link))
			}
			return result, errors.Join(errs...)
		}
	case "warn":
		for _, link := range result.BrokenLinks {
			log.WarnContext(ctx, "broken link", "page", link.Page, "target", link.Target)
		}
	}

	log.InfoContext(ctx, "built site", "out_dir", outDir, "pages", len(result.Pages), "assets", result.Assets)
	return result, nil
}

// OutputPath returns the file, relative to the output directory, that the
// route at routePath is written to. With trailing slashes, /about/ is
// written to about/index.html so it's served at /about/; without them, it's
// written to about.html so it's served at /about.
func OutputPath(routePath string, trailingSlash bool) string {
	p := strings.Trim(routePath, "/")
	if p == "" {
		return "index.html"
	}
	if trailingSlash {
		return path.Join(p, "index.html")
	}
	return p + ".html"
}

func clean(outDir string) error {
	cleaned := filepath.Clean(outDir)
	if outDir == "" || cleaned == "." || cleaned == string(filepath.Separator) {
		return fmt.Errorf("%w %q", ErrUnsafeOutDir, outDir)
	}
	if err := os.RemoveAll(cleaned); err != nil {
		return fmt.Errorf("error emptying %s: %w", cleaned, err)
	}
	if err := os.MkdirAll(cleaned, 0o755); err != nil {
		return fmt.Errorf("error creating %s: %w", cleaned, err)
	}
	return nil
}

func copyStatic(static fs.FS, outDir string) (int, error) {
	var copied int
	err := fs.WalkDir(static, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dest := filepath.Join(outDir, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}
		contents, err := fs.ReadFile(static, p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dest, contents, 0o644); err != nil { //nolint:gosec
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("error copying static files: %w", err)
	}
	return copied, nil
}

func writePage(ctx context.Context, s *site.Site, page render.Page, dest string) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "build.Page",
		trace.WithAttributes(attribute.String("build.file", dest)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var buf bytes.Buffer
	if err := render.RenderPage(ctx, &buf, s, page); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", dest, err)
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("error writing %s: %w", dest, err)
	}
	logging.FromContext(ctx).DebugContext(ctx, "wrote page", "file", dest, "bytes", buf.Len())
	return nil
}
