package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	texttemplate "text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trr266/bitesized/internal/logging"
)

const tracerName = "github.com/trr266/bitesized/internal/render"

var (
	// ErrNoTemplatePath is returned when a template path is needed, but
	// none are supplied.
	ErrNoTemplatePath = errors.New("need at least one template path")

	// ErrTemplatePatternMatchesNoFiles is returned when a template path is
	// a pattern, but that pattern doesn't match any files.
	ErrTemplatePatternMatchesNoFiles = errors.New("pattern matches no files")
)

// Component is an interface for a UI component that can be rendered to HTML.
type Component interface {
	// Templates returns a list of paths, or fs.Glob patterns, to
	// html/template contents that need to be parsed before the component
	// can be rendered.
	Templates(context.Context) []string
}

// ComponentUser is an interface that a Component can optionally implement to
// list the Components that it relies upon. These Components will automatically
// have the appropriate methods called if they implement any of the optional
// interfaces.
type ComponentUser interface {
	// UseComponents returns the Components that this Component relies on.
	UseComponents(context.Context) []Component
}

// FuncMapExtender is an interface that Components and Sites can fulfill to
// add to the map of functions available to templates when rendering.
// Functions from Components override functions from the Site with the same
// name.
type FuncMapExtender interface {
	// FuncMap returns an html/template.FuncMap containing all the
	// functions that the Component is adding to the FuncMap.
	FuncMap(context.Context) template.FuncMap
}

// Page is an interface for something that can be passed to Render. It defines
// a single logical page of the site, composed of one or more Components. It
// should contain all the information needed to render the Components to HTML.
type Page interface {
	Component

	// Key is a unique key to use when caching this page so it doesn't need
	// to be re-parsed. A good key is consistent, but unique per Page type.
	Key(context.Context) string

	// ExecutedTemplate is the template that needs to actually be executed
	// when rendering the page.
	//
	// This is usually not the template for the Component defining the
	// page; it's usually the base layout template that the page fills
	// blocks in.
	ExecutedTemplate(context.Context) string
}

// RenderData is the data that is passed to a page when rendering it.
type RenderData[SiteType Site, PageType Page] struct {
	// Site is the Site the page is rendered for, holding everything
	// shared between pages.
	Site SiteType

	// Page is the Page being rendered.
	Page PageType

	// CSS holds the <link> and <style> elements for every CSS resource
	// the page's Components declare, in dependency order.
	CSS template.HTML

	// HeaderJS holds the <script> elements that belong in the document
	// head.
	HeaderJS template.HTML

	// FooterJS holds the <script> elements that belong at the end of the
	// document body.
	FooterJS template.HTML
}

// Render renders the passed Page to out. If it can't, a server error page is
// written instead. If the Site implements ServerErrorPager, that will be
// rendered; if not, a simple text page indicating a server error will be
// written. Errors are logged to the logger in ctx, never returned.
func Render[SiteType Site, PageType Page](ctx context.Context, out io.Writer, site SiteType, page PageType) {
	defer func() {
		if closer, ok := out.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logging.FromContext(ctx).ErrorContext(ctx, "error closing writer", "error", err)
			}
		}
	}()

	err := RenderPage(ctx, out, site, page)
	if err == nil {
		return
	}
	logging.FromContext(ctx).ErrorContext(ctx, "error rendering page", "page", fmt.Sprintf("%T", page), "error", err)

	if pager, ok := Site(site).(ServerErrorPager); ok {
		err = RenderPage(ctx, out, site, pager.ServerErrorPage(ctx))
		if err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "error rendering server error page", "error", err)
		}
		return
	}

	if _, err = out.Write([]byte("Server error.")); err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "error writing server error message", "error", err)
	}
}

// RenderPage renders the passed Page to out, returning any error instead of
// falling back to an error page. Nothing is written to out unless rendering
// succeeds.
func RenderPage[SiteType Site, PageType Page](ctx context.Context, out io.Writer, site SiteType, page PageType) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "render.Page",
		trace.WithAttributes(
			attribute.String("render.page.key", page.Key(ctx)),
			attribute.String("render.page.type", fmt.Sprintf("%T", page)),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tmpl, err := getTemplate(ctx, site, page)
	if err != nil {
		return err
	}

	data := RenderData[SiteType, PageType]{
		Site: site,
		Page: page,
	}
	graphs := buildGraphs(ctx, getRecursiveComponents(ctx, page))
	funcs := getComponentFuncMap(ctx, site, page)
	data.CSS, err = renderResources(ctx, site, graphs.css, funcs, data)
	if err != nil {
		return fmt.Errorf("error rendering CSS for %T: %w", page, err)
	}
	data.HeaderJS, err = renderResources(ctx, site, graphs.headJS, funcs, data)
	if err != nil {
		return fmt.Errorf("error rendering header JavaScript for %T: %w", page, err)
	}
	data.FooterJS, err = renderResources(ctx, site, graphs.footJS, funcs, data)
	if err != nil {
		return fmt.Errorf("error rendering footer JavaScript for %T: %w", page, err)
	}

	var buf bytes.Buffer
	executed := page.ExecutedTemplate(ctx)
	if err = tmpl.ExecuteTemplate(&buf, executed, data); err != nil {
		return fmt.Errorf("error executing template %q for %T: %w", executed, page, err)
	}
	if _, err = buf.WriteTo(out); err != nil {
		return fmt.Errorf("error writing %T: %w", page, err)
	}
	return nil
}

func getTemplate(ctx context.Context, site Site, page Page) (*template.Template, error) {
	key := page.Key(ctx)
	if cache, ok := site.(TemplateCacher); ok {
		if cached := cache.GetCachedTemplate(ctx, key); cached != nil {
			return cached, nil
		}
	}
	tmplPaths := getComponentTemplatePaths(ctx, page)
	if len(tmplPaths) < 1 {
		return nil, fmt.Errorf("error rendering %T: %w", page, ErrNoTemplatePath)
	}
	funcMap := getComponentFuncMap(ctx, site, page)
	parsed, err := parseTemplates(site.TemplateDir(ctx), funcMap, tmplPaths...)
	if err != nil {
		return nil, fmt.Errorf("error parsing templates %v for page %T: %w", tmplPaths, page, err)
	}
	if cache, ok := site.(TemplateCacher); ok {
		cache.SetCachedTemplate(ctx, key, parsed)
	}
	return parsed, nil
}

// renderResources walks a resource graph and renders every resource in it.
// Inline resources are executed as text/template templates with the page's
// RenderData.
func renderResources(ctx context.Context, site Site, resources *graph, funcs template.FuncMap, data any) (template.HTML, error) {
	ordered, err := resources.walk(ctx)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for _, res := range ordered {
		switch res := res.(type) {
		case CSSLink:
			out.WriteString(string(res.html()))
		case JSLink:
			out.WriteString(string(res.html()))
		case CSSInline:
			body, err := executeResource(ctx, site, res.TemplatePath, funcs, data)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&out, "<style>\n%s\n</style>\n", body)
		case JSInline:
			body, err := executeResource(ctx, site, res.TemplatePath, funcs, data)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&out, "<script>\n%s\n</script>\n", body)
		}
	}
	return template.HTML(out.String()), nil // #nosec G203
}

func executeResource(ctx context.Context, site Site, path string, funcs template.FuncMap, data any) (string, error) {
	var source string
	var found bool
	cache, cacheable := site.(ResourceCacher)
	if cacheable {
		if cached := cache.GetCachedResource(ctx, path); cached != nil {
			source, found = *cached, true
		}
	}
	if !found {
		contents, err := fs.ReadFile(site.TemplateDir(ctx), path)
		if err != nil {
			return "", fmt.Errorf("error reading %q: %w", path, err)
		}
		source = string(contents)
		if cacheable {
			cache.SetCachedResource(ctx, path, source)
		}
	}
	tmpl, err := texttemplate.New(path).Funcs(texttemplate.FuncMap(funcs)).Parse(source)
	if err != nil {
		return "", fmt.Errorf("error parsing %q: %w", path, err)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("error executing %q: %w", path, err)
	}
	return out.String(), nil
}

func getRecursiveComponents(ctx context.Context, component Component) []Component {
	results := []Component{component}

	if uses, ok := component.(ComponentUser); ok {
		for _, child := range uses.UseComponents(ctx) {
			results = append(results, getRecursiveComponents(ctx, child)...)
		}
	}
	return results
}

func getComponentTemplatePaths(ctx context.Context, component Component) []string {
	var results []string
	seen := map[string]struct{}{}
	for _, comp := range getRecursiveComponents(ctx, component) {
		for _, path := range comp.Templates(ctx) {
			if _, ok := seen[path]; !ok {
				results = append(results, path)
				seen[path] = struct{}{}
			}
		}
	}
	return results
}

func getComponentFuncMap(ctx context.Context, site Site, component Component) template.FuncMap {
	results := template.FuncMap{}
	if fm, ok := site.(FuncMapExtender); ok {
		results = mergeFuncMaps(results, fm.FuncMap(ctx))
	}
	for _, comp := range getRecursiveComponents(ctx, component) {
		fm, ok := comp.(FuncMapExtender)
		if !ok {
			continue
		}
		results = mergeFuncMaps(results, fm.FuncMap(ctx))
	}
	return results
}

func parseTemplates(fsys fs.FS, funcs template.FuncMap, patterns ...string) (*template.Template, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, pattern := range patterns {
		list, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("error listing files for %q: %w", pattern, err)
		}
		if len(list) < 1 {
			return nil, fmt.Errorf("error parsing %q: %w", pattern, ErrTemplatePatternMatchesNoFiles)
		}
		for _, file := range list {
			if _, ok := seen[file]; ok {
				continue
			}
			seen[file] = struct{}{}
			files = append(files, file)
		}
	}
	if len(files) < 1 {
		return nil, ErrNoTemplatePath
	}
	tmpl := template.New("").Funcs(funcs)
	for _, file := range files {
		contents, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("error reading %q: %w", file, err)
		}
		if _, err = tmpl.New(file).Parse(string(contents)); err != nil {
			return nil, fmt.Errorf("error parsing %q: %w", file, err)
		}
	}
	return tmpl, nil
}

// mergeFuncMaps flattens two FuncMaps into one, with the values in `page`
// overriding the values in `in` if they have the same keys.
func mergeFuncMaps(in template.FuncMap, page template.FuncMap) template.FuncMap {
	res := template.FuncMap{}
	for k, v := range in {
		res[k] = v
	}
	for k, v := range page {
		res[k] = v
	}
	return res
}
