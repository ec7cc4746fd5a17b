package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quill/internal/build"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the site as static files",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory (overrides build.public_dir)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if exportOut != "" {
		cfg.Build.PublicDir = exportOut
	}
	log := newLogger(cfg.Log)

	site, theme, err := newSite(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &build.Builder{Site: site, OutDir: cfg.Build.PublicDir, Static: theme.Static, Log: log}
	res, err := b.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d posts, %d files to %s\n", res.Posts, res.Files, cfg.Build.PublicDir)
	return nil
}
