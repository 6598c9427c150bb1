package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/trr266/bitesized/internal/logging"
	"github.com/trr266/bitesized/internal/siteconfig"
	"github.com/trr266/bitesized/internal/telemetry"
	"github.com/trr266/bitesized/web"
)

// app is the state shared by every command: the resolved configuration and
// the flags that select it.
type app struct {
	v   *viper.Viper
	cfg *siteconfig.Config

	cfgFile string
	env     string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:   "bitesized",
		Short: "Serve and build the Bite Sized Open Science website",
		Long: `bitesized renders the Bite Sized Open Science website: concise video
tutorials that guide researchers through practical Open Science workflows.

Configuration is resolved from, in increasing precedence:
  the embedded defaults and the overlay of the selected environment,
  a configuration file (--config or BITESIZED_CONFIG_FILE),
  BITESIZED_* environment variables (BITESIZED_SERVER_PORT, ...),
  command line flags.

A .env file in the working directory is loaded first.

Examples:
  bitesized serve --dev               Serve with live reload
  bitesized build --env production    Write the production site to ./build
  bitesized config --env staging      Show the staging configuration`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "configuration file merged over the defaults (or BITESIZED_CONFIG_FILE)")
	flags.StringVar(&a.env, "env", "", "environment to configure for: development, staging or production (or BITESIZED_ENV)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	mustBind(a.v, "log_level", flags.Lookup("log-level"))
	mustBind(a.v, "log_format", flags.Lookup("log-format"))

	root.AddCommand(
		newServeCmd(a),
		newBuildCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the .env file and the configuration, and installs the logger
// in the command's context.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if _, err := siteconfig.LoadDotEnv(".env"); err != nil {
		return err
	}

	env := a.env
	if env == "" {
		env = os.Getenv(siteconfig.EnvPrefix + "_ENV")
	}
	file := a.cfgFile
	if file == "" {
		file = os.Getenv(siteconfig.EnvPrefix + "_CONFIG_FILE")
	}

	cfg, err := siteconfig.Load(a.v, siteconfig.Options{Environment: env, File: file})
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.New(cmd.ErrOrStderr(), a.v.GetString("log_level"), a.v.GetString("log_format"))
	if err != nil {
		return err
	}
	ctx := logging.WithLogger(cmd.Context(), log)
	if file != "" {
		log.DebugContext(ctx, "using config file", "path", file)
	}
	cmd.SetContext(ctx)
	return nil
}

// traced runs fn with the tracer provider installed, flushing spans before
// returning.
func traced(ctx context.Context, fn func(context.Context) error) (err error) {
	cfg, err := telemetry.ConfigFromEnv()
	if err != nil {
		return err
	}
	shutdown, err := telemetry.Setup(ctx, cfg, version)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := shutdown(context.WithoutCancel(ctx)); shutdownErr != nil && err == nil {
			err = fmt.Errorf("error flushing traces: %w", shutdownErr)
		}
	}()
	return fn(ctx)
}

// webFiles returns the templates and static files to use: the embedded ones
// when dir is empty, or the ones on disk under dir.
func webFiles(dir string) (templates, static fs.FS, err error) {
	if dir == "" {
		return web.Templates, web.Static, nil
	}
	for _, sub := range []string{"templates", "static"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil {
			return nil, nil, fmt.Errorf("error reading web directory: %w", err)
		}
		if !info.IsDir() {
			return nil, nil, fmt.Errorf("error reading web directory: %s is not a directory", filepath.Join(dir, sub))
		}
	}
	return os.DirFS(filepath.Join(dir, "templates")), os.DirFS(filepath.Join(dir, "static")), nil
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
