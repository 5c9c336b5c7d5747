package consumer

import (
	"encoding/json"
	"strings"
)

// NormalizePayload turns raw event bytes into a field map without ever
// failing. Well-formed JSON objects pass through. Anything else falls back to
// the legacy comma-separated layout (user_id, email, extra fields), and
// payloads matching neither shape are wrapped whole under raw_data so the
// handler can decide what to do with them.
func NormalizePayload(payload []byte) map[string]interface{} {
	var data map[string]interface{}
	if err := json.Unmarshal(payload, &data); err == nil && data != nil {
		return data
	}

	text := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(text, "{") && strings.Contains(text, ",") {
		return parseLegacyCSV(text)
	}

	return map[string]interface{}{"raw_data": text}
}

func parseLegacyCSV(text string) map[string]interface{} {
	parts := strings.Split(text, ",")
	data := map[string]interface{}{
		"user_id": strings.TrimSpace(parts[0]),
	}
	if len(parts) > 1 {
		data["email"] = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		extra := make([]interface{}, 0, len(parts)-2)
		for _, p := range parts[2:] {
			extra = append(extra, strings.TrimSpace(p))
		}
		data["additional_data"] = extra
	}
	return data
}
