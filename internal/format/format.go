// Package format renders retrieved memories into the context block injected
// into the host's prompt.
package format

import (
	"fmt"
	"strings"

	"github.com/rcliao/mem0-hooks/internal/mem0"
)

const header = "Relevant memories from previous conversations:"

// Memories renders records as a bulleted block under a fixed header.
// Records with an empty memory field are skipped; if nothing survives, the
// result is the empty string and callers must omit the context field.
func Memories(records []mem0.Record) string {
	var lines []string
	for _, r := range records {
		if r.Memory == "" {
			continue
		}
		if len(r.Categories) > 0 {
			lines = append(lines, fmt.Sprintf("- [%s] %s", strings.Join(r.Categories, ", "), r.Memory))
		} else {
			lines = append(lines, "- "+r.Memory)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return header + "\n" + strings.Join(lines, "\n")
}
