// Package masking redacts personal data before it enters the audit
// trail.
package masking

import "strings"

const maskToken = "****"

// MaskEmail keeps the first character of the local part and the full
// domain: "dana@example.com" becomes "d****@example.com".
func MaskEmail(value string) string {
	trimmed := strings.TrimSpace(value)
	at := strings.LastIndex(trimmed, "@")
	if at <= 0 {
		return maskToken
	}
	return trimmed[:1] + maskToken + trimmed[at:]
}

// MaskJSON returns a copy of the input with email-bearing keys redacted.
func MaskJSON(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		masked[trimmedKey] = maskValue(trimmedKey, value)
	}

	if len(masked) == 0 {
		return nil
	}
	return masked
}

func maskValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if strings.Contains(strings.ToLower(key), "email") {
			return MaskEmail(cast)
		}
		return cast
	case map[string]any:
		return MaskJSON(cast)
	case []any:
		out := make([]any, 0, len(cast))
		for _, item := range cast {
			out = append(out, maskValue(key, item))
		}
		return out
	default:
		return value
	}
}
