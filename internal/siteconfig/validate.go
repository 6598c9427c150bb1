package siteconfig

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

var (
	brokenLinkPolicies = []string{"throw", "warn", "ignore"}
	colorModes         = []string{"dark", "light"}
)

// Validate checks the configuration, returning every problem found joined
// into a single error wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []error
	problemf := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.Title) == "" {
		problemf("title must be set")
	}
	if u, err := url.Parse(c.URL); err != nil {
		problemf("url %q: %w", c.URL, err)
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problemf("url %q must be an absolute http(s) URL", c.URL)
	} else if u.Path != "" && u.Path != "/" {
		problemf("url %q must not have a path, use base_url", c.URL)
	}
	if !strings.HasPrefix(c.BaseURL, "/") || !strings.HasSuffix(c.BaseURL, "/") {
		problemf("base_url %q must start and end with a slash", c.BaseURL)
	}
	if !slices.Contains(brokenLinkPolicies, c.OnBrokenLinks) {
		problemf("on_broken_links %q must be one of %s", c.OnBrokenLinks, strings.Join(brokenLinkPolicies, ", "))
	}
	if !slices.Contains(colorModes, c.ColorMode.DefaultMode) {
		problemf("color_mode.default_mode %q must be one of %s", c.ColorMode.DefaultMode, strings.Join(colorModes, ", "))
	}

	defaultLocale, err := language.Parse(c.I18n.DefaultLocale)
	if err != nil {
		problemf("i18n.default_locale %q: %w", c.I18n.DefaultLocale, err)
	}
	var defaultListed bool
	for _, locale := range c.I18n.Locales {
		tag, err := language.Parse(locale)
		if err != nil {
			problemf("i18n.locales %q: %w", locale, err)
			continue
		}
		if tag == defaultLocale {
			defaultListed = true
		}
	}
	if err == nil && !defaultListed {
		problemf("i18n.default_locale %q must be listed in i18n.locales", c.I18n.DefaultLocale)
	}

	for i, item := range c.Navbar.Items {
		if err := checkLink(item.Label, item.To, item.Href); err != nil {
			problemf("navbar.items[%d]: %w", i, err)
		}
	}
	for i, column := range c.Footer.Links {
		for j, item := range column.Items {
			if err := checkLink(item.Label, item.To, item.Href); err != nil {
				problemf("footer.links[%d].items[%d]: %w", i, j, err)
			}
		}
	}
	for i, meta := range c.Metadata {
		if (meta.Name == "") == (meta.Property == "") {
			problemf("metadata[%d]: exactly one of name and property must be set", i)
		}
	}
	if c.Contact.FormAction != "" {
		if u, err := url.Parse(c.Contact.FormAction); err != nil || u.Scheme != "https" {
			problemf("contact.form_action %q must be an https URL", c.Contact.FormAction)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problemf("server.port %d must be between 1 and 65535", c.Server.Port)
	}
	if strings.TrimSpace(c.Build.OutDir) == "" {
		problemf("build.out_dir must be set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
	}
	return nil
}

func checkLink(label, to, href string) error {
	if label == "" {
		return errors.New("label must be set")
	}
	if (to == "") == (href == "") {
		return fmt.Errorf("%q: exactly one of to and href must be set", label)
	}
	if to != "" && !strings.HasPrefix(to, "/") {
		return fmt.Errorf("%q: to %q must be a path starting with a slash", label, to)
	}
	return nil
}

// Lang is the value of the lang attribute of every page.
func (c *Config) Lang() string {
	tag, err := language.Parse(c.I18n.DefaultLocale)
	if err != nil {
		return "en"
	}
	return tag.String()
}
