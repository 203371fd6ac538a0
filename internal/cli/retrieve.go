package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rcliao/mem0-hooks/internal/config"
	"github.com/rcliao/mem0-hooks/internal/format"
	"github.com/rcliao/mem0-hooks/internal/mem0"
	"github.com/rcliao/mem0-hooks/internal/transcript"
	"github.com/spf13/cobra"
)

// saveWait bounds how long the retrieval hook waits for the background
// prompt auto-save before emitting its result.
const saveWait = 2 * time.Second

func init() {
	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Pre-prompt hook: inject relevant memories",
		Long: "Reads the host's prompt payload from stdin, searches mem0 for relevant " +
			"memories, and emits them as context on stdout. When auto-save is enabled " +
			"the prompt itself is also stored, without delaying the response.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runRetrieve(cmd.Context(), os.Stdin, os.Stdout)
			return nil
		},
	}
	RootCmd.AddCommand(cmd)
}

func runRetrieve(ctx context.Context, in io.Reader, out io.Writer) {
	log := hookLogger("retrieve")

	payload, err := readPayload(in)
	if err != nil {
		log.WithError(err).Warn("malformed hook payload")
		emit(out, Result{Action: ActionContinue}, log)
		return
	}

	prompt := promptField(payload)
	if prompt == "" {
		emit(out, Result{Action: ActionContinue}, log)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Warn("invalid configuration, skipping memory lookup")
		emit(out, Result{Action: ActionContinue}, log)
		return
	}
	if cfg.APIKey == "" {
		log.Debug("no API key configured")
		emit(out, Result{Action: ActionContinue}, log)
		return
	}

	client := newClient(cfg)

	// The auto-save runs concurrently with the search so save latency is
	// not added on top of search latency.
	var saveDone chan struct{}
	if cfg.AutoSave {
		saveDone = make(chan struct{})
		go func() {
			defer close(saveDone)
			if err := client.Add(ctx, transcript.FromPrompt(prompt)); err != nil {
				log.WithError(err).Warn("prompt auto-save failed")
			}
		}()
	}

	records, err := client.Search(ctx, prompt)
	if err != nil {
		log.WithError(err).Warn("memory search failed")
	}
	result := Result{Action: ActionContinue, Context: format.Memories(records)}

	if saveDone != nil {
		select {
		case <-saveDone:
		case <-time.After(saveWait):
			// Abandoned, not cancelled; it may still finish before exit.
			log.Debug("auto-save still in flight after wait")
		}
	}

	emit(out, result, log)
}

// promptField extracts the prompt, falling back to query.
func promptField(payload map[string]any) string {
	for _, key := range []string{"prompt", "query"} {
		if v, ok := payload[key].(string); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func newClient(cfg config.Config) *mem0.Client {
	return mem0.NewClient(mem0.Options{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		UserID:    cfg.UserID,
		TopK:      cfg.TopK,
		Threshold: cfg.Threshold,
	})
}
