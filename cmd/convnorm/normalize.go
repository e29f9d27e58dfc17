package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
	"github.com/MikeSquared-Agency/convnorm/internal/normalize"
)

func newNormalizeCmd() *cobra.Command {
	var (
		formatTag  string
		transcript bool
	)

	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Normalize one export file and print the result",
		Long: `Normalize reads one exported chat archive and writes the canonical conversation
file as JSON to stdout. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := conversation.ParseFormat(formatTag)
			if err != nil {
				return userError(err)
			}

			name, data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			file, err := normalize.NewService(slog.Default()).Normalize(format, string(data), name)
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			if transcript {
				return writeTranscripts(out, file)
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(file)
		},
	}
	cmd.Flags().StringVarP(&formatTag, "format", "f", string(conversation.FormatClaude), "source format (Claude, Kura, OpenAI)")
	cmd.Flags().BoolVar(&transcript, "transcript", false, "print Human:/Assistant: transcripts instead of JSON")
	return cmd
}

func readInput(stdin io.Reader, path string) (string, []byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return "stdin", data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read file: %w", err)
	}
	return filepath.Base(path), data, nil
}

func writeTranscripts(w io.Writer, file conversation.File) error {
	for _, c := range file.Conversations {
		if _, err := fmt.Fprintf(w, "## %s (%s)\n\n%s", c.ChatID, c.CreatedAt, conversation.FormatTranscript(c)); err != nil {
			return err
		}
	}
	return nil
}

// userError replaces a core error with its user-facing message, keeping the detail.
func userError(err error) error {
	var e *conversation.Error
	if errors.As(err, &e) {
		return fmt.Errorf("%s (%w)", e.UserMessage(), err)
	}
	return err
}
