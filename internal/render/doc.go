// Package render turns Components into HTML documents using html/template.
//
// The package is organized around Components and Pages. A Component is some
// piece of the HTML document that should be included in the page's output:
// the feature cards on the homepage, the navbar, the footer. A Page is a
// Component that gets rendered itself rather than being included in another
// Component. The homepage is a Page; the layout every page shares is a
// Component.
//
// Every server or generator run has a single Site, which provides the fs.FS
// holding the templates Components use. The Site is available at render time
// as .Site, so it can hold configuration used across all pages, and the Page
// being rendered is available as .Page.
//
// When a Component relies on another Component, the homepage including the
// feature section for example, it should hold an instance of that Component
// as a property and return it from UseComponents. Everything the child
// declares (templates, CSS, JavaScript, template functions, its own children)
// is then collected whenever the parent is rendered.
package render
