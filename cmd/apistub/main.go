// Command apistub runs a local stand-in for the upload service so the
// desktop app can be exercised without the real backend. It accepts the
// same two routes the app calls and fabricates ids and transcriptions.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guiibarros/nlw-ai/internal/logging"
)

const maxUploadBytes = 256 << 20

type video struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}

type createVideoResponse struct {
	Video video `json:"video"`
}

type transcriptionRequest struct {
	Prompt string `json:"prompt"`
}

type transcriptionResponse struct {
	Transcription string `json:"transcription"`
}

type stub struct {
	logger zerolog.Logger

	mu     sync.Mutex
	videos map[string]video
}

func newStub(logger zerolog.Logger) *stub {
	return &stub{
		logger: logger,
		videos: make(map[string]video),
	}
}

func (s *stub) createVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		http.Error(w, "read upload", http.StatusInternalServerError)
		return
	}

	v := video{
		ID:        uuid.NewString(),
		Name:      header.Filename,
		Path:      fmt.Sprintf("/tmp/%s-%s", uuid.NewString(), header.Filename),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.videos[v.ID] = v
	s.mu.Unlock()

	s.logger.Info().
		Str("videoId", v.ID).
		Str("filename", header.Filename).
		Int64("bytes", size).
		Msg("video stored")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createVideoResponse{Video: v})
}

func (s *stub) createTranscription(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")

	s.mu.Lock()
	_, known := s.videos[videoID]
	s.mu.Unlock()
	if !known {
		http.Error(w, "video not found", http.StatusNotFound)
		return
	}

	var req transcriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	s.logger.Info().
		Str("videoId", videoID).
		Str("prompt", req.Prompt).
		Msg("transcription requested")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(transcriptionResponse{
		Transcription: "This is a canned transcription produced by the local api stub.",
	})
}

func main() {
	addr := flag.String("addr", ":3333", "listen address")
	flag.Parse()

	logging.Init(logging.DefaultConfig())
	logger := logging.WithComponent("apistub")

	s := newStub(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /videos", s.createVideo)
	mux.HandleFunc("POST /videos/{id}/transcription", s.createTranscription)

	logger.Info().Str("addr", *addr).Msg("api stub listening")
	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("api stub stopped")
	}
}
