package cli

import (
	"context"
	"io"
	"os"

	"github.com/rcliao/mem0-hooks/internal/config"
	"github.com/rcliao/mem0-hooks/internal/transcript"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Session-end hook: store the conversation transcript",
		Long: "Reads the host's transcript payload from stdin, normalizes the most " +
			"recent messages, and stores them in mem0.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runSave(cmd.Context(), os.Stdin, os.Stdout)
			return nil
		},
	}
	RootCmd.AddCommand(cmd)
}

func runSave(ctx context.Context, in io.Reader, out io.Writer) {
	log := hookLogger("save")

	payload, err := readPayload(in)
	if err != nil {
		log.WithError(err).Warn("malformed hook payload")
		emit(out, Result{Action: ActionContinue}, log)
		return
	}

	entries := transcriptField(payload)
	if len(entries) == 0 {
		emit(out, Result{Action: ActionContinue}, log)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Warn("invalid configuration, skipping transcript save")
		emit(out, Result{Action: ActionContinue}, log)
		return
	}
	if cfg.APIKey == "" {
		log.Debug("no API key configured")
		emit(out, Result{Action: ActionContinue}, log)
		return
	}

	messages := transcript.Normalize(entries, cfg.SaveLimit)
	if len(messages) == 0 {
		emit(out, Result{Action: ActionContinue}, log)
		return
	}

	if err := newClient(cfg).Add(ctx, messages); err != nil {
		log.WithError(err).Warn("transcript save failed")
	} else {
		log.WithField("messages", len(messages)).Info("saved transcript")
	}

	emit(out, Result{Action: ActionContinue}, log)
}

// transcriptField extracts the transcript, falling back to messages.
func transcriptField(payload map[string]any) []any {
	for _, key := range []string{"transcript", "messages"} {
		if v, ok := payload[key].([]any); ok && len(v) > 0 {
			return v
		}
	}
	return nil
}
