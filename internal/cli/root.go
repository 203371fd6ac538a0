// Package cli implements the mem0-hooks lifecycle hook commands.
package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// maxStdinBytes caps stdin reads. Hook payloads are small JSON documents;
// 1 MB is generous headroom that prevents unbounded allocation.
const maxStdinBytes = 1 << 20

// ActionContinue is the only action these hooks ever emit: the host proceeds
// normally, optionally with extra context.
const ActionContinue = "continue"

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "mem0-hooks",
	Short: "Cursor lifecycle hooks backed by mem0",
	Long: "Stateless stdin/stdout hooks that retrieve and save long-term memories " +
		"through the hosted mem0 API. Hooks never fail the host: every path emits " +
		"a continue action and exits 0.",
}

// Result is the hook response document written to stdout.
type Result struct {
	Action  string `json:"action"`
	Context string `json:"context,omitempty"`
}

func init() {
	// Diagnostics go to stderr only; stdout belongs to the host protocol.
	logrus.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(os.Getenv("MEM0_LOG_LEVEL"))
	if err != nil {
		level = logrus.WarnLevel
	}
	logrus.SetLevel(level)
}

// hookLogger tags every diagnostic line with the hook name and a fresh
// per-invocation id.
func hookLogger(hook string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"hook":       hook,
		"invocation": ulid.Make().String(),
	})
}

// readPayload reads one JSON document from the hook's stdin.
func readPayload(in io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(in, maxStdinBytes))
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// emit writes the single result document the host reads.
func emit(out io.Writer, res Result, log *logrus.Entry) {
	if err := json.NewEncoder(out).Encode(res); err != nil {
		log.WithError(err).Error("emit hook result")
	}
}
