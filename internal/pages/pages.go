package pages

import (
	"context"

	"github.com/trr266/bitesized/internal/features"
	"github.com/trr266/bitesized/internal/render"
)

var (
	_ render.Page = HomePage{}
	_ render.Page = TutorialsPage{}
	_ render.Page = AboutPage{}
	_ render.Page = ContactPage{}
	_ render.Page = ContactThanksPage{}
	_ render.Page = NotFoundPage{}
	_ render.Page = ServerErrorPage{}
)

// HomePage introduces the site and highlights its features.
type HomePage struct {
	Layout   Layout
	Features features.Section
}

func (HomePage) Templates(_ context.Context) []string {
	return []string{"pages/home.html.tmpl"}
}

func (p HomePage) UseComponents(_ context.Context) []render.Component {
	return []render.Component{p.Layout, p.Features}
}

func (HomePage) EmbedCSS(_ context.Context) []render.CSSInline {
	return []render.CSSInline{{TemplatePath: "pages/home.css.tmpl"}}
}

func (HomePage) Key(_ context.Context) string { return "pages/home" }

func (HomePage) ExecutedTemplate(_ context.Context) string { return layoutTemplate }

func (HomePage) Title() string { return "Home" }

func (HomePage) Path() string { return "/" }

// TutorialsPage lists the configured tutorials.
type TutorialsPage struct {
	Layout Layout
}

func (TutorialsPage) Templates(_ context.Context) []string {
	return []string{"pages/tutorials.html.tmpl"}
}

func (p TutorialsPage) UseComponents(_ context.Context) []render.Component {
	return []render.Component{p.Layout}
}

func (TutorialsPage) Key(_ context.Context) string { return "pages/tutorials" }

func (TutorialsPage) ExecutedTemplate(_ context.Context) string { return layoutTemplate }

func (TutorialsPage) Title() string { return "Tutorials" }

func (TutorialsPage) Path() string { return "/tutorials/" }

type AboutPage struct {
	Layout Layout
}

func (AboutPage) Templates(_ context.Context) []string {
	return []string{"pages/about.html.tmpl"}
}

func (p AboutPage) UseComponents(_ context.Context) []render.Component {
	return []render.Component{p.Layout}
}

func (AboutPage) Key(_ context.Context) string { return "pages/about" }

func (AboutPage) ExecutedTemplate(_ context.Context) string { return layoutTemplate }

func (AboutPage) Title() string { return "About" }

func (AboutPage) Path() string { return "/about/" }

// ContactPage renders the contact form. The form is submitted to the
// configured external handler, which redirects to ContactThanksPage.
type ContactPage struct {
	Layout Layout
}

func (ContactPage) Templates(_ context.Context) []string {
	return []string{"pages/contact.html.tmpl"}
}

func (p ContactPage) UseComponents(_ context.Context) []render.Component {
	return []render.Component{p.Layout}
}

func (ContactPage) EmbedCSS(_ context.Context) []render.CSSInline {
	return []render.CSSInline{{TemplatePath: "pages/contact.css.tmpl"}}
}

func (ContactPage) Key(_ context.Context) string { return "pages/contact" }

func (ContactPage) ExecutedTemplate(_ context.Context) string { return layoutTemplate }

func (ContactPage) Title() string { return "Contact" }

func (ContactPage) Path() string { return "/contact/" }

// ThanksPath is where the contact form handler redirects after a
// submission.
func (ContactPage) ThanksPath() string { return ContactThanksPage{}.Path() }

// ContactThanksPage confirms a contact form submission and links back to the
// homepage.
type ContactThanksPage struct {
	Layout Layout
}

func (ContactThanksPage) Templates(_ context.Context) []string {
	return []string{"pages/contact-thanks.html.tmpl"}
}

func (p ContactThanksPage) UseComponents(_ context.Context) []render.Component {
	return []render.Component{p.Layout}
}

// EmbedCSS shares the contact page's styles.
func (ContactThanksPage) EmbedCSS(_ context.Context) []render.CSSInline {
	return []render.CSSInline{{TemplatePath: "pages/contact.css.tmpl"}}
}

func (ContactThanksPage) Key(_ context.Context) string { return "pages/contact-thanks" }

func (ContactThanksPage) ExecutedTemplate(_ context.Context) string { return layoutTemplate }

func (ContactThanksPage) Title() string { return "Thank You" }

func (ContactThanksPage) Path() string { return "/contact-thanks/" }

type NotFoundPage struct {
	Layout Layout
}

func (NotFoundPage) Templates(_ context.Context) []string {
	return []string{"pages/not-found.html.tmpl"}
}

func (p NotFoundPage) UseComponents(_ context.Context) []render.Component {
	return []render.Component{p.Layout}
}

func (NotFoundPage) Key(_ context.Context) string { return "pages/not-found" }

func (NotFoundPage) ExecutedTemplate(_ context.Context) string { return layoutTemplate }

func (NotFoundPage) Title() string { return "Page Not Found" }

func (NotFoundPage) Path() string { return "" }

// ServerErrorPage is rendered in place of a page that failed to render.
type ServerErrorPage struct {
	Layout Layout
}

func (ServerErrorPage) Templates(_ context.Context) []string {
	return []string{"pages/server-error.html.tmpl"}
}

func (p ServerErrorPage) UseComponents(_ context.Context) []render.Component {
	return []render.Component{p.Layout}
}

func (ServerErrorPage) Key(_ context.Context) string { return "pages/server-error" }

func (ServerErrorPage) ExecutedTemplate(_ context.Context) string { return layoutTemplate }

func (ServerErrorPage) Title() string { return "Server Error" }

func (ServerErrorPage) Path() string { return "" }
