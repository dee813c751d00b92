// ABOUTME: Entry point for the yts CLI
// ABOUTME: Terminal client for the YouTube Summarizer backend

package main

import (
	"fmt"
	"os"

	"github.com/markalston/yt-summarizer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
