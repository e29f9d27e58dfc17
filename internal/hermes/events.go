package hermes

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
)

const (
	// SubjectFileNormalized carries a FileNormalized for every accepted upload.
	SubjectFileNormalized = "convnorm.file.normalized"
	// SubjectFileRejected carries a FileRejected for every failed upload.
	SubjectFileRejected = "convnorm.file.rejected"
)

// FileNormalized summarises an accepted conversation file for downstream stores.
type FileNormalized struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	FileName      string `json:"file_name"`
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
	Timestamp     string `json:"timestamp"`
}

// FileRejected records why a file was not accepted.
type FileRejected struct {
	EventID   string `json:"event_id"`
	Type      string `json:"type"`
	FileName  string `json:"file_name"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func NewFileNormalized(f conversation.File) FileNormalized {
	return FileNormalized{
		EventID:       uuid.New().String(),
		Type:          string(f.Type),
		FileName:      f.FileName,
		Conversations: len(f.Conversations),
		Messages:      f.MessageCount(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}

func NewFileRejected(format conversation.Format, fileName string, kind conversation.Kind, err error) FileRejected {
	return FileRejected{
		EventID:   uuid.New().String(),
		Type:      string(format),
		FileName:  fileName,
		Kind:      string(kind),
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
