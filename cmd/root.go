// ABOUTME: Root command for the yts CLI
// ABOUTME: Handles global flags and launches the TUI when run without a subcommand

package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	apiURL         string
	jsonOutput     bool
	configDir      string
	sessionBackend string
	ephemeral      bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "yts",
	Short: "Terminal client for the YouTube Summarizer",
	Long: `yts summarizes YouTube videos through the YouTube Summarizer backend.

Run without arguments to open the interactive dashboard, or use a subcommand
for scripting.

Environment Variables:
  YTS_API_URL          Backend API URL (default: http://localhost:8080/api)
  YTS_CONFIG_DIR       Where the session is kept (default: ~/.config/yts)
  YTS_SESSION_BACKEND  file, sqlite or memory (default: file)
  YTS_HTTP_TIMEOUT     Per-request timeout (default: 10m)
  YTS_DOWNLOAD_DIR     Where audio files are saved from the dashboard
  YTS_GOOGLE_CLIENT_ID, YTS_GOOGLE_CLIENT_SECRET
                       Enable Google sign-in through the browser
  YTS_GOOGLE_ID_TOKEN  Pre-obtained Google ID token
  YTS_NERD_FONTS       Set to 1 to use Nerd Font icons`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runTUI(ctx)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides YTS_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides YTS_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVar(&sessionBackend, "session-backend", "", "Session store: file, sqlite or memory (overrides YTS_SESSION_BACKEND)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory only; nothing is written to disk")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
