// ABOUTME: Audio command saving a video's soundtrack as MP3
// ABOUTME: Shares the download path with the dashboard's audio panel

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markalston/yt-summarizer/internal/format"
	"github.com/markalston/yt-summarizer/internal/tui/panels/audio"
	"github.com/markalston/yt-summarizer/internal/youtube"
)

var audioOutput string

var audioCmd = &cobra.Command{
	Use:   "audio URL",
	Short: "Download a video's audio as MP3",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, d *deps, w io.Writer) int {
			dir := audioOutput
			if dir == "" {
				dir = d.cfg.DownloadDir
			}
			return runAudio(ctx, d, w, args[0], dir)
		})
	},
}

func init() {
	audioCmd.Flags().StringVarP(&audioOutput, "output", "o", "", "Directory to save into (default: YTS_DOWNLOAD_DIR or current directory)")
	rootCmd.AddCommand(audioCmd)
}

// runAudio downloads the audio for url into dir
func runAudio(ctx context.Context, d *deps, w io.Writer, url, dir string) int {
	url = strings.TrimSpace(url)
	if err := youtube.ValidateURL(url); err != nil {
		return invalid(w, err)
	}

	path, n, err := audio.Save(ctx, d.api, url, dir)
	if err != nil {
		return report(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, map[string]any{"path": path, "bytes": n})
	}
	fmt.Fprintf(w, "Saved %s (%s)\n", path, format.Bytes(n))
	return exitOK
}
