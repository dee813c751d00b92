// ABOUTME: Audio extraction endpoint returning a raw MP3 stream
// ABOUTME: Resolves the file name from Content-Disposition or the video id

package client

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/markalston/yt-summarizer/internal/youtube"
)

// AudioDownload is an open MP3 stream. The caller must close Body.
type AudioDownload struct {
	Body          io.ReadCloser
	ContentLength int64 // -1 when unknown
	FileName      string
}

// DownloadAudio calls POST /audio/download {videoUrl}
func (c *Client) DownloadAudio(ctx context.Context, videoURL string) (*AudioDownload, error) {
	body := struct {
		VideoURL string `json:"videoUrl"`
	}{VideoURL: videoURL}

	resp, err := c.send(ctx, http.MethodPost, "/audio/download", body, true, "audio/mpeg, application/json")
	if err != nil {
		return nil, err
	}

	return &AudioDownload{
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
		FileName:      audioFileName(resp, videoURL),
	}, nil
}

func audioFileName(resp *http.Response, videoURL string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := filepath.Base(params["filename"]); name != "." && name != "/" && name != "" {
				return name
			}
		}
	}
	return youtube.AudioFileName(videoURL)
}
