package siteconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultEnvironment, cfg.Environment)
	assert.Equal(t, "Bite Sized", cfg.Title)
	assert.Equal(t, "Open Science Tutorials", cfg.Tagline)
	assert.Equal(t, "/", cfg.BaseURL)
	assert.True(t, cfg.TrailingSlash)
	assert.Equal(t, "throw", cfg.OnBrokenLinks)
	assert.Equal(t, "dark", cfg.ColorMode.DefaultMode)
	assert.Equal(t, "en", cfg.Lang())

	require.Len(t, cfg.Navbar.Items, 3)
	assert.Equal(t, "Tutorials", cfg.Navbar.Items[0].Label)
	assert.Equal(t, "/contact/", cfg.Navbar.Items[2].To)

	require.Len(t, cfg.Footer.Links, 3)
	assert.Equal(t, "Partner Websites", cfg.Footer.Links[1].Title)
	assert.True(t, cfg.Footer.Links[2].Items[0].External())
	assert.False(t, cfg.Footer.Links[0].Items[0].External())

	assert.NotEmpty(t, cfg.Metadata)
	assert.Len(t, cfg.Tutorials, 3)
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Addr())
}

func TestLoadEnvironments(t *testing.T) {
	cases := map[string]struct {
		url     string
		baseURL string
	}{
		"development": {url: "http://localhost:3000", baseURL: "/"},
		"staging":     {url: "https://timnahw.github.io", baseURL: "/bite-sized/"},
		"production":  {url: "https://trr266.github.io", baseURL: "/bite-sized-open-science/"},
	}
	for env, tc := range cases {
		t.Run(env, func(t *testing.T) {
			cfg, err := Load(viper.New(), Options{Environment: env})
			require.NoError(t, err)
			assert.Equal(t, env, cfg.Environment)
			assert.Equal(t, tc.url, cfg.URL)
			assert.Equal(t, tc.baseURL, cfg.BaseURL)
			// everything else comes from the shared defaults
			assert.Equal(t, "Bite Sized", cfg.Title)
		})
	}
	assert.ElementsMatch(t, []string{"development", "staging", "production"}, Environments())
}

func TestLoadUnknownEnvironment(t *testing.T) {
	_, err := Load(viper.New(), Options{Environment: "qa"})
	require.ErrorIs(t, err, ErrUnknownEnvironment)
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tagline: Reproducible research, one bite at a time\nserver:\n  port: 8080\n"), 0o600))

	cfg, err := Load(viper.New(), Options{Environment: "production", File: path})
	require.NoError(t, err)
	assert.Equal(t, "Reproducible research, one bite at a time", cfg.Tagline)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "/bite-sized-open-science/", cfg.BaseURL)
}

func TestLoadEnvVarOverrides(t *testing.T) {
	t.Setenv("BITESIZED_SERVER_PORT", "4002")
	t.Setenv("BITESIZED_ON_BROKEN_LINKS", "warn")

	cfg, err := Load(viper.New(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 4002, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.OnBrokenLinks)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("BITESIZED_BASE_URL", "docs")
	t.Setenv("BITESIZED_COLOR_MODE_DEFAULT_MODE", "sepia")

	_, err := Load(viper.New(), Options{})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "base_url")
	assert.ErrorContains(t, err, "color_mode.default_mode")
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := Load(viper.New(), Options{})
		require.NoError(t, err)
		return cfg
	}

	cases := map[string]struct {
		mutate  func(*Config)
		problem string
	}{
		"empty-title": {
			mutate:  func(c *Config) { c.Title = " " },
			problem: "title must be set",
		},
		"relative-url": {
			mutate:  func(c *Config) { c.URL = "trr266.github.io" },
			problem: "absolute http(s) URL",
		},
		"url-with-path": {
			mutate:  func(c *Config) { c.URL = "https://trr266.github.io/bite-sized" },
			problem: "use base_url",
		},
		"broken-link-policy": {
			mutate:  func(c *Config) { c.OnBrokenLinks = "explode" },
			problem: "on_broken_links",
		},
		"bad-locale": {
			mutate:  func(c *Config) { c.I18n.Locales = []string{"en", "not a locale"} },
			problem: "i18n.locales",
		},
		"default-locale-not-listed": {
			mutate:  func(c *Config) { c.I18n.DefaultLocale = "de" },
			problem: "must be listed in i18n.locales",
		},
		"nav-item-without-target": {
			mutate:  func(c *Config) { c.Navbar.Items[0].To = "" },
			problem: "navbar.items[0]",
		},
		"nav-item-relative": {
			mutate:  func(c *Config) { c.Navbar.Items[1].To = "about" },
			problem: "must be a path starting with a slash",
		},
		"footer-item-with-both-targets": {
			mutate:  func(c *Config) { c.Footer.Links[1].Items[0].To = "/partners/" },
			problem: "footer.links[1].items[0]",
		},
		"meta-without-name": {
			mutate:  func(c *Config) { c.Metadata[0].Name = "" },
			problem: "metadata[0]",
		},
		"insecure-form-action": {
			mutate:  func(c *Config) { c.Contact.FormAction = "http://formsubmit.co/x" },
			problem: "contact.form_action",
		},
		"port-out-of-range": {
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			problem: "server.port",
		},
		"no-out-dir": {
			mutate:  func(c *Config) { c.Build.OutDir = "" },
			problem: "build.out_dir",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tc.problem)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BITESIZED_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BITESIZED_TEST_DOTENV") })

	loaded, err := LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, loaded)
	assert.Equal(t, "loaded", os.Getenv("BITESIZED_TEST_DOTENV"))
}
