package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"syscall"

	"golang.org/x/net/html"
)

// BrokenLink is an internal link whose target isn't in the output.
type BrokenLink struct {
	// Page is the file the link was found in.
	Page string

	// Target is the link as written in the page.
	Target string
}

func (l BrokenLink) String() string {
	return fmt.Sprintf("%s links to %s", l.Page, l.Target)
}

// linkAttrs are the attributes checked for each element.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
}

// CheckLinks parses each of pages in out and returns every link to a path
// under baseURL that doesn't resolve to a file in out. Links to other hosts,
// fragments, and non-HTTP schemes aren't checked.
//
// A path resolves if it names a file, or a directory containing an
// index.html, or if adding .html to it names a file.
func CheckLinks(_ context.Context, out fs.FS, baseURL string, pages []string) ([]BrokenLink, error) {
	var broken []BrokenLink
	for _, page := range pages {
		f, err := out.Open(page)
		if err != nil {
			return nil, fmt.Errorf("error opening %s: %w", page, err)
		}
		doc, err := html.Parse(f)
		closeErr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", page, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("error closing %s: %w", page, closeErr)
		}

		for _, target := range links(doc) {
			ok, err := resolves(out, baseURL, page, target)
			if err != nil {
				return nil, fmt.Errorf("error checking %s in %s: %w", target, page, err)
			}
			if !ok {
				broken = append(broken, BrokenLink{Page: page, Target: target})
			}
		}
	}
	return broken, nil
}

func links(doc *html.Node) []string {
	var found []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				for _, a := range n.Attr {
					if a.Key == attr && a.Val != "" {
						found = append(found, a.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// resolves reports whether target, found in page, points at a file in out.
func resolves(out fs.FS, baseURL, page, target string) (bool, error) {
	u, err := url.Parse(target)
	if err != nil {
		// an unparseable link can't resolve
		return false, nil //nolint:nilerr
	}
	if u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return true, nil
	}
	if u.Path == "" {
		// fragment or query on the page itself
		return true, nil
	}

	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = path.Join("/", baseURL, path.Dir(page), p)
		if strings.HasSuffix(u.Path, "/") {
			p += "/"
		}
	}
	rel, ok := strings.CutPrefix(p, baseURL)
	if !ok {
		if p+"/" == baseURL {
			rel = ""
		} else {
			return false, nil
		}
	}
	rel = strings.TrimSuffix(rel, "/")

	if rel == "" {
		return exists(out, "index.html")
	}
	if !fs.ValidPath(rel) {
		return false, nil
	}
	info, err := stat(out, rel)
	if err != nil {
		return false, err
	}
	if info != nil {
		if !info.IsDir() {
			return true, nil
		}
		return exists(out, path.Join(rel, "index.html"))
	}
	return exists(out, rel+".html")
}

// exists reports whether name is a regular file in out.
func exists(out fs.FS, name string) (bool, error) {
	info, err := stat(out, name)
	if err != nil || info == nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// stat returns a nil FileInfo when name, or one of its parents, is missing
// or isn't a directory.
func stat(out fs.FS, name string) (fs.FileInfo, error) {
	info, err := fs.Stat(out, name)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}
