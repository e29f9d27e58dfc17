package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
	"github.com/MikeSquared-Agency/convnorm/internal/hermes"
)

// Caller-side rejection kinds. The core never returns these.
const (
	kindNotJSON   = "not_json"
	kindDuplicate = "duplicate_file"
	kindTooLarge  = "too_large"
	kindBadInput  = "bad_request"
)

// uploadConversations handles POST /api/v1/conversations/{format}.
//
// The body is either a multipart form with a "file" part, or the raw export with the
// name given in the file_name query parameter.
func (s *Server) uploadConversations(w http.ResponseWriter, r *http.Request) {
	format, err := conversation.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.reject(w, http.StatusBadRequest, conversation.Format(chi.URLParam(r, "format")), "", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	name, data, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, kindTooLarge, "The file is too large.", "")
			return
		}
		writeError(w, http.StatusBadRequest, kindBadInput, "Please select a file", err.Error())
		return
	}

	if !looksLikeJSON(data) {
		writeError(w, http.StatusUnsupportedMediaType, kindNotJSON, "Please upload a JSON file", "detected "+mimetype.Detect(data).String())
		return
	}
	if s.seen.Contains(name) {
		writeError(w, http.StatusConflict, kindDuplicate, duplicateMessage(format), "")
		return
	}

	file, err := s.svc.Normalize(format, string(data), name)
	if err != nil {
		s.reject(w, http.StatusBadRequest, format, name, err)
		return
	}
	if found, _ := s.seen.ContainsOrAdd(name, struct{}{}); found {
		writeError(w, http.StatusConflict, kindDuplicate, duplicateMessage(format), "")
		return
	}

	if err := s.events.Publish(hermes.SubjectFileNormalized, hermes.NewFileNormalized(file)); err != nil {
		s.logger.Warn("failed to publish file event", "file_name", name, "error", err)
	}
	writeJSON(w, http.StatusOK, file)
}

func (s *Server) reject(w http.ResponseWriter, status int, format conversation.Format, name string, err error) {
	kind := conversation.KindOf(err)
	msg := err.Error()
	var e *conversation.Error
	if errors.As(err, &e) {
		msg = e.UserMessage()
	}
	if pubErr := s.events.Publish(hermes.SubjectFileRejected, hermes.NewFileRejected(format, name, kind, err)); pubErr != nil {
		s.logger.Warn("failed to publish rejection event", "file_name", name, "error", pubErr)
	}
	writeError(w, status, string(kind), msg, err.Error())
}

func duplicateMessage(format conversation.Format) string {
	return "This " + string(format) + " conversations file has previously been added to the list of files."
}

func readUpload(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		f, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}
		return header.Filename, data, nil
	}

	name := r.URL.Query().Get("file_name")
	if name == "" {
		return "", nil, errors.New("file_name query parameter is required")
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

// looksLikeJSON accepts anything detected as JSON or plain text. Malformed JSON still
// sniffs as text and is left for the normalizer to reject.
func looksLikeJSON(data []byte) bool {
	if len(strings.TrimSpace(string(data))) == 0 {
		return true
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("application/json") || m.Is("text/plain") {
			return true
		}
	}
	return false
}
