// Package transcript normalizes loosely-structured host conversation
// payloads into messages ready to store.
package transcript

import "strings"

// MaxContentLen is the per-message content cap. Longer content is cut and
// marked with TruncationMarker.
const MaxContentLen = 2000

// TruncationMarker is appended to content that was cut at MaxContentLen.
const TruncationMarker = "..."

// Message is a normalized transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FromPrompt wraps a single user prompt for storage.
func FromPrompt(prompt string) []Message {
	return []Message{{Role: "user", Content: prompt}}
}

// Normalize converts raw transcript entries into messages. Entries without a
// string role or usable content are dropped. When more than limit messages
// survive, only the most recent limit are kept, in original order.
func Normalize(entries []any, limit int) []Message {
	var msgs []Message
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		role, ok := entry["role"].(string)
		if !ok || role == "" {
			continue
		}
		content := flattenContent(entry["content"])
		if content == "" {
			continue
		}
		msgs = append(msgs, Message{Role: role, Content: Truncate(content)})
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs
}

// flattenContent derives a single string from a content value. A plain
// string passes through. A part list keeps string parts and text-typed
// object parts, space-joined; every other part kind is dropped.
func flattenContent(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, p := range c {
			switch part := p.(type) {
			case string:
				if part != "" {
					parts = append(parts, part)
				}
			case map[string]any:
				if part["type"] != "text" {
					continue
				}
				if text, ok := part["text"].(string); ok && text != "" {
					parts = append(parts, text)
				}
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// Truncate cuts content at MaxContentLen and appends the marker. Applying it
// to already-truncated content is a no-op.
func Truncate(s string) string {
	if len(s) <= MaxContentLen {
		return s
	}
	return s[:MaxContentLen] + TruncationMarker
}
