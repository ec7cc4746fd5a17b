package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quill/internal/index"
	"quill/internal/ingest"
	"quill/internal/render"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Parse all content and report problems",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log)
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	theme, err := render.LoadTheme(cfg.Theme.Dir, cfg.Theme.Name)
	if err != nil {
		return err
	}
	if err := render.CheckThemeTemplates(theme.Templates); err != nil {
		return err
	}

	var warns []ingest.Warning
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, dir := range []string{cfg.Content.PostsDir, cfg.Content.PagesDir} {
		st := ingest.NewStore(dir, cfg.Content.Extensions, log)
		items, w, err := st.Ingest(ctx)
		if err != nil {
			return fmt.Errorf("read %s: %w", dir, err)
		}
		warns = append(warns, w...)
		for _, it := range index.Sorted(items) {
			state := ""
			if it.Draft {
				state = "draft"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", dir, it.Slug, it.Date, state)
		}
	}
	_ = tw.Flush()

	for _, w := range warns {
		fmt.Fprintf(out, "warn: %s: %s\n", w.Path, w.Msg)
	}
	if len(warns) > 0 {
		return fmt.Errorf("%d content warning(s)", len(warns))
	}
	return nil
}
