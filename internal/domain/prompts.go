package domain

// PromptPreset describes one built-in transcription guidance suggestion.
// The prompt text is sent verbatim with the transcription request when the
// user picks the preset instead of typing their own keywords.
type PromptPreset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Prompt      string `json:"prompt"`
	Description string `json:"description,omitempty"`
}
