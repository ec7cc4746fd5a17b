package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quill/internal/app"
	"quill/internal/domain/config"
	"quill/internal/render"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "quill",
	Short:         "quill serves and exports an MDX blog",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "site.yaml", "config file")
	rootCmd.AddCommand(serveCmd, exportCmd, checkCmd)
}

func main() {
	// .env 可选，不存在不报错
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// newSite loads the theme and assembles the page builder shared by every
// command.
func newSite(cfg config.Config, log *logrus.Logger) (*app.Site, render.Theme, error) {
	theme, err := render.LoadTheme(cfg.Theme.Dir, cfg.Theme.Name)
	if err != nil {
		return nil, render.Theme{}, err
	}
	if theme.Embedded {
		log.Debug("using embedded theme")
	}
	tpl, err := render.NewTemplateRenderer(theme.Templates)
	if err != nil {
		return nil, render.Theme{}, fmt.Errorf("parse templates: %w", err)
	}
	return app.New(cfg, tpl, log), theme, nil
}
