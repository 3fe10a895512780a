package bootstrap

import "testing"

// TestGetPromptPresetsReturnsIndependentCopy verifies catalog isolation.
func TestGetPromptPresetsReturnsIndependentCopy(t *testing.T) {
	app := newTestApp(&fakePipeline{})

	presets := app.GetPromptPresets()
	if len(presets) == 0 {
		t.Fatal("expected built-in presets")
	}

	presets[0].Prompt = "mutated"
	fresh := app.GetPromptPresets()
	if fresh[0].Prompt == "mutated" {
		t.Fatal("catalog was mutated through the returned slice")
	}
}

// TestGetPromptPresetsHaveUniqueIDs verifies catalog integrity.
func TestGetPromptPresetsHaveUniqueIDs(t *testing.T) {
	app := newTestApp(&fakePipeline{})

	seen := map[string]bool{}
	for _, preset := range app.GetPromptPresets() {
		if preset.ID == "" || preset.Prompt == "" {
			t.Fatalf("preset %+v is missing id or prompt", preset)
		}
		if seen[preset.ID] {
			t.Fatalf("duplicate preset id: %s", preset.ID)
		}
		seen[preset.ID] = true
	}
}

// TestExpandPromptPreset verifies preset lookup by id.
func TestExpandPromptPreset(t *testing.T) {
	app := newTestApp(&fakePipeline{})

	prompt, err := app.ExpandPromptPreset("tech-talk")
	if err != nil {
		t.Fatalf("ExpandPromptPreset() error = %v", err)
	}
	if prompt == "" {
		t.Fatal("expected a non-empty prompt")
	}

	if _, err := app.ExpandPromptPreset("no-such-preset"); err == nil {
		t.Fatal("expected error for unknown preset id")
	}
	if _, err := app.ExpandPromptPreset("   "); err == nil {
		t.Fatal("expected error for blank preset id")
	}
}
