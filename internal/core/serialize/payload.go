package serialize

import "gopkg.in/yaml.v3"

// encodeComponentPayload renders a component payload as YAML, embedded
// as a length-prefixed chunk inside the otherwise binary-framed blob
// format — the same choice package prefab makes for its file format, so
// both binary encodings share one typed-value codec instead of each
// hand-rolling its own.
func encodeComponentPayload(payload map[string]any) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}
	return yaml.Marshal(payload)
}

func decodeComponentPayload(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var payload map[string]any
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return map[string]any{}
	}
	return payload
}
