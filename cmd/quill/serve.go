package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"quill/internal/comments"
	"quill/internal/notify"
	"quill/internal/serve"
)

var (
	serveAddr string
	serveDev  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the blog server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "watch content and reload browsers on change")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDev {
		cfg.Server.Dev = true
	}

	log := newLogger(cfg.Log)
	if !cfg.Server.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	site, theme, err := newSite(cfg, log)
	if err != nil {
		return err
	}

	store, err := comments.Open(cfg.Comments)
	if err != nil {
		return fmt.Errorf("open comment store: %w", err)
	}
	defer store.Close()

	disp := notify.NewDispatcher(notify.New(cfg.Comments.WebhookURL), cfg.Comments.WebhookTimeout, log)

	watch := []string{cfg.Content.PostsDir, cfg.Content.PagesDir}
	if !theme.Embedded {
		watch = append(watch, filepath.Join(cfg.Theme.Dir, cfg.Theme.Name))
	}

	srv, err := serve.New(serve.Options{
		Config:    cfg,
		Site:      site,
		Comments:  store,
		Notify:    disp,
		Static:    theme.Static,
		WatchDirs: watch,
		Log:       log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}
