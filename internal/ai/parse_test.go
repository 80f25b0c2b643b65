package ai

import "testing"

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare json",
			input:    `{"action": "broadcast"}`,
			expected: `{"action": "broadcast"}`,
		},
		{
			name:     "fenced",
			input:    "```\n{\"action\": \"broadcast\"}\n```",
			expected: `{"action": "broadcast"}`,
		},
		{
			name:     "fenced with language",
			input:    "```json\n{\"action\": \"broadcast\"}\n```",
			expected: `{"action": "broadcast"}`,
		},
		{
			name:     "leading whitespace",
			input:    "  ```json\n{}\n```  ",
			expected: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.input); got != tt.expected {
				t.Errorf("StripCodeFence() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractRegistrationIntent(t *testing.T) {
	reply := "Конечно, помогу с записью!\nЗАПИСЬ_ТРЕБУЕТСЯ: Библейская школа"

	intent := ExtractRegistrationIntent(reply)
	if !intent.Detected {
		t.Fatal("marker not detected")
	}
	if intent.EventHint != "Библейская школа" {
		t.Errorf("EventHint = %q", intent.EventHint)
	}
	if intent.CleanReply != "Конечно, помогу с записью!" {
		t.Errorf("CleanReply = %q", intent.CleanReply)
	}
}

func TestExtractRegistrationIntent_NoMarker(t *testing.T) {
	reply := "Служение проходит каждое воскресенье в 11:00."

	intent := ExtractRegistrationIntent(reply)
	if intent.Detected {
		t.Error("marker falsely detected")
	}
	if intent.CleanReply != reply {
		t.Errorf("CleanReply = %q, want unchanged", intent.CleanReply)
	}
}

func TestExtractRegistrationIntent_MarkerOnly(t *testing.T) {
	intent := ExtractRegistrationIntent("ЗАПИСЬ_ТРЕБУЕТСЯ: Молодёжная встреча")
	if !intent.Detected {
		t.Fatal("marker not detected")
	}
	if intent.EventHint != "Молодёжная встреча" {
		t.Errorf("EventHint = %q", intent.EventHint)
	}
	if intent.CleanReply != "" {
		t.Errorf("CleanReply = %q, want empty", intent.CleanReply)
	}
}
