package bootstrap

import (
	"fmt"
	"strings"

	"github.com/guiibarros/nlw-ai/internal/domain"
)

// promptPresetCatalog holds the built-in transcription guidance presets
// the UI offers beside the free-text prompt. A preset is only a starting
// point; the pipeline sees whatever final string the user submits.
var promptPresetCatalog = []domain.PromptPreset{
	{
		ID:          "keywords",
		Name:        "Keywords",
		Prompt:      "keywords, product names, acronyms mentioned in the video",
		Description: "Comma-separated terms likely to appear in the audio.",
	},
	{
		ID:          "tech-talk",
		Name:        "Tech talk",
		Prompt:      "API, deploy, frontend, backend, TypeScript, React, Node.js",
		Description: "Vocabulary for programming screencasts and conference talks.",
	},
	{
		ID:          "meeting",
		Name:        "Meeting notes",
		Prompt:      "action items, deadline, follow-up, quarterly goals",
		Description: "Vocabulary for recorded meetings and planning sessions.",
	},
	{
		ID:          "interview",
		Name:        "Interview",
		Prompt:      "candidate, experience, role, previous company, salary expectations",
		Description: "Vocabulary for interview and podcast recordings.",
	},
}

// GetPromptPresets returns the built-in transcription guidance presets.
func (a *App) GetPromptPresets() []domain.PromptPreset {
	presets := make([]domain.PromptPreset, len(promptPresetCatalog))
	copy(presets, promptPresetCatalog)
	return presets
}

// ExpandPromptPreset returns the prompt text behind a catalog preset id.
func (a *App) ExpandPromptPreset(presetID string) (string, error) {
	id := strings.TrimSpace(presetID)
	if id == "" {
		return "", fmt.Errorf("preset id is required")
	}

	preset, found := promptPresetByID(id)
	if !found {
		return "", fmt.Errorf("unknown preset id: %s", id)
	}
	return preset.Prompt, nil
}

func promptPresetByID(id string) (domain.PromptPreset, bool) {
	for _, preset := range promptPresetCatalog {
		if preset.ID == id {
			return preset, true
		}
	}
	return domain.PromptPreset{}, false
}
