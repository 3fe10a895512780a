package domain

import (
	"path/filepath"
	"strings"
)

// AudioMediaType is the fixed media type of extracted audio payloads.
const AudioMediaType = "audio/mpeg"

// videoMediaTypes maps accepted video container extensions to media types.
var videoMediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
}

// VideoAsset is the raw user-selected video payload for one upload run.
// It is immutable once built and released after conversion or reset.
type VideoAsset struct {
	Name      string
	MediaType string
	Data      []byte
}

// AudioAsset is the extracted audio payload sent to the remote service.
// Produced only by the transcoder and never retained after upload.
type AudioAsset struct {
	MediaType string
	Data      []byte
}

// VideoMediaType resolves the media type for a video file name.
// The second result is false when the extension is not a recognized
// video container.
func VideoMediaType(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	mediaType, ok := videoMediaTypes[ext]
	return mediaType, ok
}
