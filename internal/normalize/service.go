package normalize

import (
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
)

// Service is the logging front door used by the API and CLI.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// Normalize runs one normalization pass. See the package-level Normalize.
func (s *Service) Normalize(format conversation.Format, rawText, fileName string) (conversation.File, error) {
	start := time.Now()
	file, err := Normalize(format, rawText, fileName)
	if err != nil {
		s.logger.Warn("normalization failed",
			"format", format,
			"file_name", fileName,
			"kind", conversation.KindOf(err),
			"error", err,
		)
		return conversation.File{}, err
	}

	s.logger.Info("file normalized",
		"format", format,
		"file_name", fileName,
		"conversations", len(file.Conversations),
		"messages", file.MessageCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return file, nil
}
