package config

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// workspaceRoots parses the host's workspace-discovery document: either a
// bare JSON array of directories or {"workspace_roots": [...]}. The current
// directory is always the last candidate.
func workspaceRoots(raw string) []string {
	var roots []string
	raw = strings.TrimSpace(raw)
	if raw != "" {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			roots = append(roots, list...)
		} else {
			var doc struct {
				Roots []string `json:"workspace_roots"`
			}
			if err := json.Unmarshal([]byte(raw), &doc); err == nil {
				roots = append(roots, doc.Roots...)
			}
		}
	}
	return append(roots, ".")
}

// dotenvValues reads .env files under the candidate roots into a map.
// Earlier roots win when the same key appears more than once. The process
// environment is left untouched; unreadable files are skipped.
func dotenvValues(roots []string) map[string]string {
	merged := map[string]string{}
	for _, root := range roots {
		vals, err := godotenv.Read(filepath.Join(root, ".env"))
		if err != nil {
			continue
		}
		for k, v := range vals {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged
}
