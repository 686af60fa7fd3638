package analysis

import (
	"fmt"
	"strings"
)

// NormalizeTags parses raw model output for a tag-list task into a trimmed,
// case-insensitively deduplicated list. First-seen casing wins. Output that
// yields no tags is malformed and fails the task; it is never coerced to an
// empty result.
func NormalizeTags(raw string) ([]string, error) {
	cleaned := stripWrapping(raw)

	parts := strings.Split(cleaned, ",")
	seen := make(map[string]bool, len(parts))
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		tag = strings.Trim(tag, ".")
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}

	if len(tags) == 0 {
		return nil, fmt.Errorf("malformed output: expected a comma-separated tag list, got %q", raw)
	}
	return tags, nil
}

// NormalizeProse trims prose output and rejects empty results.
func NormalizeProse(raw string) (string, error) {
	text := stripWrapping(raw)
	if text == "" {
		return "", fmt.Errorf("malformed output: expected prose, got empty text")
	}
	return text, nil
}

// stripWrapping removes markdown code fences and surrounding whitespace.
// Models wrap output in ``` blocks even when told not to.
func stripWrapping(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := strings.TrimSpace(text[:idx])
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
