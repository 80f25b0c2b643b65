package ai

import "strings"

// RegistrationMarker is the token the model embeds in a reply when the user
// expressed intent to sign up for an event.
const RegistrationMarker = "ЗАПИСЬ_ТРЕБУЕТСЯ"

// StripCodeFence removes a surrounding markdown code fence, if present, from
// model output that is supposed to be bare JSON.
func StripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	if idx := strings.IndexByte(raw, '\n'); idx >= 0 {
		raw = raw[idx+1:]
	} else {
		return strings.Trim(raw, "`")
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

// RegistrationIntent is the result of scanning a model reply for the
// registration marker.
type RegistrationIntent struct {
	// Detected is true when the marker was present.
	Detected bool
	// EventHint is the text after the marker, typically an event title.
	EventHint string
	// CleanReply is the reply with marker lines removed.
	CleanReply string
}

// ExtractRegistrationIntent scans a reply for RegistrationMarker. Marker
// lines are stripped from the reply; the trailing text of the last marker
// line becomes the event hint.
func ExtractRegistrationIntent(reply string) RegistrationIntent {
	if !strings.Contains(reply, RegistrationMarker) {
		return RegistrationIntent{CleanReply: reply}
	}

	var hint string
	var clean []string
	for _, line := range strings.Split(reply, "\n") {
		if strings.Contains(line, RegistrationMarker) {
			parts := strings.Split(line, RegistrationMarker)
			hint = strings.Trim(parts[len(parts)-1], ": ")
		} else {
			clean = append(clean, line)
		}
	}
	return RegistrationIntent{
		Detected:   true,
		EventHint:  hint,
		CleanReply: strings.TrimSpace(strings.Join(clean, "\n")),
	}
}
