// Package config resolves hook configuration from the process environment,
// with an optional .env file as the lowest-priority source.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults applied when an option is absent from both the environment and
// any discovered .env file.
const (
	DefaultUserID    = "cursor-user"
	DefaultTopK      = 5
	DefaultThreshold = 0.3
	DefaultSaveLimit = 10
)

// Config holds everything a hook invocation needs. Built fresh per
// invocation and never mutated afterwards.
type Config struct {
	APIKey    string  // empty disables all remote calls
	UserID    string  // partitions memories per caller
	BaseURL   string  // mem0 API base URL override, empty means default
	TopK      int     // max records returned by search
	Threshold float64 // minimum score to keep a search result
	AutoSave  bool    // store every incoming prompt
	SaveLimit int     // max transcript messages stored at session end
}

// Load resolves configuration. Lookup order per key: process environment
// first, then any .env file found under the declared workspace roots or the
// current directory. A variable present in the environment shadows the file
// even when set to the empty string, so an operator can disable the API key
// with MEM0_API_KEY="" regardless of what a workspace .env declares.
//
// A malformed numeric or boolean value is an error; callers are expected to
// treat it the same as a missing API key and skip remote work.
func Load() (Config, error) {
	file := dotenvValues(workspaceRoots(os.Getenv("CURSOR_WORKSPACE_ROOTS")))
	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return file[key]
	}

	cfg := Config{
		APIKey:  get("MEM0_API_KEY"),
		UserID:  get("MEM0_USER_ID"),
		BaseURL: get("MEM0_API_URL"),
	}
	if cfg.UserID == "" {
		cfg.UserID = DefaultUserID
	}

	var err error
	if cfg.TopK, err = positiveInt(get("MEM0_TOP_K"), DefaultTopK); err != nil {
		return Config{}, fmt.Errorf("MEM0_TOP_K: %w", err)
	}
	if cfg.Threshold, err = unitFloat(get("MEM0_THRESHOLD"), DefaultThreshold); err != nil {
		return Config{}, fmt.Errorf("MEM0_THRESHOLD: %w", err)
	}
	if cfg.SaveLimit, err = positiveInt(get("MEM0_SAVE_LIMIT"), DefaultSaveLimit); err != nil {
		return Config{}, fmt.Errorf("MEM0_SAVE_LIMIT: %w", err)
	}
	if cfg.AutoSave, err = boolOr(get("MEM0_AUTO_SAVE"), true); err != nil {
		return Config{}, fmt.Errorf("MEM0_AUTO_SAVE: %w", err)
	}

	return cfg, nil
}

func positiveInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

func unitFloat(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("must be in [0,1], got %g", f)
	}
	return f, nil
}

func boolOr(raw string, fallback bool) (bool, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseBool(raw)
}
