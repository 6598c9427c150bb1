// Package siteconfig holds the declarative configuration of the site: its
// metadata, navigation, footer, SEO tags, the tutorials it lists, and the
// settings of the server and generator that publish it.
//
// Configuration is resolved with viper from, in increasing precedence:
//
//  1. the embedded defaults (defaults/site.yaml),
//  2. the overlay of the selected environment (defaults/site.<env>.yaml),
//  3. an optional configuration file (--config or BITESIZED_CONFIG_FILE),
//  4. BITESIZED_* environment variables, with dots in keys replaced by
//     underscores (BITESIZED_SERVER_PORT, BITESIZED_BASE_URL, ...).
//
// Deployments differ only in url and base_url, so they're modeled as
// environments: development (the default), staging, and production.
package siteconfig

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of environment variables overriding
	// configuration keys.
	EnvPrefix = "BITESIZED"

	// DefaultEnvironment is used when no environment is selected.
	DefaultEnvironment = "development"
)

var (
	// ErrInvalidConfig is returned when the resolved configuration fails
	// validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownEnvironment is returned when the selected environment has
	// no overlay.
	ErrUnknownEnvironment = errors.New("unknown environment")
)

//go:embed defaults/*.yaml
var defaults embed.FS

// Config is the resolved configuration of the site.
type Config struct {
	// Environment is the environment the configuration was resolved for.
	// It's not read from configuration files.
	Environment string `mapstructure:"-" yaml:"environment"`

	Title            string `mapstructure:"title" yaml:"title"`
	Tagline          string `mapstructure:"tagline" yaml:"tagline"`
	Favicon          string `mapstructure:"favicon" yaml:"favicon"`
	URL              string `mapstructure:"url" yaml:"url"`
	BaseURL          string `mapstructure:"base_url" yaml:"base_url"`
	OrganizationName string `mapstructure:"organization_name" yaml:"organization_name"`
	ProjectName      string `mapstructure:"project_name" yaml:"project_name"`
	DeploymentBranch string `mapstructure:"deployment_branch" yaml:"deployment_branch"`
	TrailingSlash    bool   `mapstructure:"trailing_slash" yaml:"trailing_slash"`
	OnBrokenLinks    string `mapstructure:"on_broken_links" yaml:"on_broken_links"`

	// Image is the social card shared by every page.
	Image string `mapstructure:"image" yaml:"image"`

	I18n      I18n       `mapstructure:"i18n" yaml:"i18n"`
	Navbar    Navbar     `mapstructure:"navbar" yaml:"navbar"`
	Footer    Footer     `mapstructure:"footer" yaml:"footer"`
	ColorMode ColorMode  `mapstructure:"color_mode" yaml:"color_mode"`
	Metadata  []Meta     `mapstructure:"metadata" yaml:"metadata"`
	Contact   Contact    `mapstructure:"contact" yaml:"contact"`
	Tutorials []Tutorial `mapstructure:"tutorials" yaml:"tutorials"`
	Server    Server     `mapstructure:"server" yaml:"server"`
	Build     Build      `mapstructure:"build" yaml:"build"`
}

type I18n struct {
	DefaultLocale string   `mapstructure:"default_locale" yaml:"default_locale"`
	Locales       []string `mapstructure:"locales" yaml:"locales"`
}

type Navbar struct {
	Title string    `mapstructure:"title" yaml:"title"`
	Logo  Logo      `mapstructure:"logo" yaml:"logo"`
	Items []NavItem `mapstructure:"items" yaml:"items"`
}

type Logo struct {
	Alt  string `mapstructure:"alt" yaml:"alt"`
	Src  string `mapstructure:"src" yaml:"src"`
	Href string `mapstructure:"href" yaml:"href"`
}

// NavItem is a navbar entry. To is a path within the site, Href an external
// URL; exactly one of them is set.
type NavItem struct {
	Label    string `mapstructure:"label" yaml:"label"`
	To       string `mapstructure:"to" yaml:"to,omitempty"`
	Href     string `mapstructure:"href" yaml:"href,omitempty"`
	Position string `mapstructure:"position" yaml:"position"`
}

type Footer struct {
	Style     string         `mapstructure:"style" yaml:"style"`
	Links     []FooterColumn `mapstructure:"links" yaml:"links"`
	Copyright string         `mapstructure:"copyright" yaml:"copyright"`
}

type FooterColumn struct {
	Title string       `mapstructure:"title" yaml:"title"`
	Items []FooterItem `mapstructure:"items" yaml:"items"`
}

// FooterItem is a footer link. Like NavItem, exactly one of To and Href is
// set. Icon is a site-relative image shown next to the label.
type FooterItem struct {
	Label   string `mapstructure:"label" yaml:"label"`
	To      string `mapstructure:"to" yaml:"to,omitempty"`
	Href    string `mapstructure:"href" yaml:"href,omitempty"`
	Icon    string `mapstructure:"icon" yaml:"icon,omitempty"`
	IconAlt string `mapstructure:"icon_alt" yaml:"icon_alt,omitempty"`
}

// External reports whether the item leaves the site.
func (item FooterItem) External() bool {
	return item.Href != ""
}

type ColorMode struct {
	DefaultMode               string `mapstructure:"default_mode" yaml:"default_mode"`
	DisableSwitch             bool   `mapstructure:"disable_switch" yaml:"disable_switch"`
	RespectPrefersColorScheme bool   `mapstructure:"respect_prefers_color_scheme" yaml:"respect_prefers_color_scheme"`
}

// Meta is a <meta> tag added to every page. Either Name or Property is set.
type Meta struct {
	Name     string `mapstructure:"name" yaml:"name,omitempty"`
	Property string `mapstructure:"property" yaml:"property,omitempty"`
	Content  string `mapstructure:"content" yaml:"content"`
}

// Contact configures the contact form. Submissions are handled by an
// external service at FormAction, which redirects to the thank-you page.
type Contact struct {
	FormAction string `mapstructure:"form_action" yaml:"form_action"`
	Email      string `mapstructure:"email" yaml:"email"`
}

type Tutorial struct {
	Title       string `mapstructure:"title" yaml:"title"`
	Description string `mapstructure:"description" yaml:"description"`
	VideoURL    string `mapstructure:"video_url" yaml:"video_url"`
}

type Server struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// Addr is the address the server listens on.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type Build struct {
	OutDir string `mapstructure:"out_dir" yaml:"out_dir"`
}

// Options select what Load resolves.
type Options struct {
	// Environment selects the overlay. DefaultEnvironment is used when
	// it's empty.
	Environment string

	// File is an optional configuration file merged over the defaults.
	File string
}

// Environments lists the environments that have an overlay.
func Environments() []string {
	matches, err := fs.Glob(defaults, "defaults/site.*.yaml")
	if err != nil {
		return nil
	}
	envs := make([]string, 0, len(matches))
	for _, match := range matches {
		envs = append(envs, strings.TrimSuffix(strings.TrimPrefix(match, "defaults/site."), ".yaml"))
	}
	return envs
}

// Load resolves the configuration into v and decodes it. Flags bound to v
// with BindPFlag take precedence over everything else.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	env := opts.Environment
	if env == "" {
		env = DefaultEnvironment
	}

	v.SetConfigType("yaml")
	base, err := defaults.ReadFile("defaults/site.yaml")
	if err != nil {
		return nil, fmt.Errorf("error reading default configuration: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, fmt.Errorf("error parsing default configuration: %w", err)
	}

	overlay, err := defaults.ReadFile("defaults/site." + env + ".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w %q, expected one of %s", ErrUnknownEnvironment, env, strings.Join(Environments(), ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s configuration: %w", env, err)
	}
	if err := v.MergeConfig(bytes.NewReader(overlay)); err != nil {
		return nil, fmt.Errorf("error parsing %s configuration: %w", env, err)
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %q: %w", opts.File, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	cfg.Environment = env

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
