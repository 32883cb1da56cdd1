package claude

import (
	"strings"
	"testing"
)

func TestPromptEmbedsText(t *testing.T) {
	p := Prompt("A lone swordsman wanders the land.")

	if !strings.Contains(p, "A lone swordsman wanders the land.") {
		t.Error("Prompt() does not contain the text to translate")
	}
	if !strings.HasPrefix(p, "Translate the following text from English or Japanese to French.") {
		t.Errorf("Prompt() instruction header changed:\n%s", p)
	}
	if !strings.Contains(p, "If the text is already in French, simply return it unchanged") {
		t.Error("Prompt() lost the already-French passthrough instruction")
	}
}

func TestNewDefaultsModel(t *testing.T) {
	c := New(Config{APIKey: "k"}, nil, nil)
	if c.model != DefaultModel {
		t.Errorf("model = %q, want %q", c.model, DefaultModel)
	}

	c = New(Config{APIKey: "k", Model: "claude-sonnet-4-20250514"}, nil, nil)
	if c.model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q, want configured value", c.model)
	}
}
