package domain

// UploadStatus tracks each pipeline stage for a single upload run.
type UploadStatus string

const (
	UploadStatusIdle         UploadStatus = "idle"
	UploadStatusConverting   UploadStatus = "converting"
	UploadStatusUploading    UploadStatus = "uploading"
	UploadStatusTranscribing UploadStatus = "transcribing"
	UploadStatusSucceeded    UploadStatus = "succeeded"
	UploadStatusFailed       UploadStatus = "failed"
)

// IsTerminal reports whether the status ends a run.
func (s UploadStatus) IsTerminal() bool {
	return s == UploadStatusSucceeded || s == UploadStatusFailed
}

// Settings contains user-adjustable runtime configuration.
type Settings struct {
	APIBaseURL            string `json:"apiBaseUrl"`
	FFmpegPath            string `json:"ffmpegPath"`
	RequestTimeoutSeconds int    `json:"requestTimeoutSeconds"`
}

// Upload stores the current run identity, lifecycle status, and the
// server-assigned video id once the create call has succeeded.
type Upload struct {
	ID      string       `json:"id"`
	Status  UploadStatus `json:"status"`
	VideoID string       `json:"videoId,omitempty"`
}
