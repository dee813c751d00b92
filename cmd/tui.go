// ABOUTME: Launches the interactive dashboard
// ABOUTME: Wires the session controller, file watcher and Google sign-in into the TUI

package cmd

import (
	"context"
	"log/slog"

	"github.com/markalston/yt-summarizer/internal/store"
	"github.com/markalston/yt-summarizer/internal/tui"
)

func runTUI(ctx context.Context) error {
	d, err := newDeps(true)
	if err != nil {
		return err
	}
	defer d.Close()

	ctrl := d.Session()

	// another yts process may log in or out while the dashboard is open
	if fs, ok := d.store.(*store.FileStore); ok {
		if err := fs.Watch(ctx, ctrl.Reload); err != nil {
			slog.Warn("session file watch unavailable", "error", err)
		}
	}

	opts := tui.Options{DownloadDir: d.cfg.DownloadDir}
	if d.cfg.GoogleConfigured() || d.cfg.GoogleIDToken != "" {
		flow := googleFlow(d, func(url string) {
			slog.Info("google consent page", "url", url)
		})
		preset := d.cfg.GoogleIDToken
		opts.Google = func(ctx context.Context) (string, error) {
			return flow.Credential(ctx, preset)
		}
	}

	slog.Info("starting dashboard", "api", d.cfg.APIURL)
	return tui.Run(ctx, ctrl, d.api, opts)
}
