package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/jdstudio/internal/backend"
	"github.com/jonathan/jdstudio/internal/jdtext"
	"github.com/jonathan/jdstudio/internal/server/middleware"
	"github.com/jonathan/jdstudio/internal/types"
)

// Upload limits for POST /jd/upload/stream.
const (
	maxUploadBytes  = 10 << 20
	maxUploadMemory = 1 << 20
)

// Sources named in the jd event.
const (
	SourceGenerate = "generate"
	SourceUpload   = "upload"
)

// FormatRequest represents the request body for /jd/format
type FormatRequest struct {
	Text string `json:"text" validate:"max=200000"`
	Role string `json:"role" validate:"max=200"`
}

// FormatResponse represents the response for /jd/format
type FormatResponse struct {
	Normalized string         `json:"normalized"`
	Blocks     []jdtext.Block `json:"blocks"`
}

// ExportRequest represents the request body for /jd/export
type ExportRequest struct {
	Text  string `json:"text" validate:"required,max=200000"`
	Title string `json:"title" validate:"max=200"`
}

// JDEvent is the first event of a reveal stream: the description as received and as it will be typed.
type JDEvent struct {
	ID         string                `json:"id"`
	Source     string                `json:"source"`
	Title      string                `json:"title"`
	Role       string                `json:"role"`
	Raw        string                `json:"raw"`
	Normalized string                `json:"normalized"`
	JD         *types.JobDescription `json:"jd"`
}

// handleFormat returns the normalized text and paragraph blocks for raw text
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		s.failure(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, FormatResponse{
		Normalized: jdtext.Normalize(req.Text),
		Blocks:     jdtext.Format(req.Text, req.Role),
	})
}

// handleGenerateStream asks the backend for a job description and streams its reveal via SSE
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.GetSession(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	form := types.NewJobForm()
	if err := json.NewDecoder(r.Body).Decode(form); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := form.Validate(); err != nil {
		s.failure(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[GENERATE] Generating %q for %s", form.Title, session.Key)

	jd, err := s.backend.Generate(r.Context(), session.Token, form)
	if err != nil {
		log.Printf("[GENERATE] Backend call failed: %v", err)
		sse.WriteError(HTTPStatus(err), publicMessage(err))
		return
	}

	s.streamReveal(r.Context(), sse, session, SourceGenerate, jd, form.Title)
}

// handleUploadStream sends an uploaded PDF to the backend and streams the reveal of the
// description it extracts
func (s *Server) handleUploadStream(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.GetSession(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile(backend.UploadField)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, backend.UploadField+" file is required")
		return
	}
	defer func() { _ = file.Close() }()

	if !backend.HasPDFExtension(header.Filename) {
		s.errorResponse(w, http.StatusUnsupportedMediaType, backend.ErrNotPDF.Error())
		return
	}

	path, err := spoolUpload(file)
	if err != nil {
		s.failure(w, err)
		return
	}
	defer func() { _ = os.Remove(path) }()

	pages, err := s.preflight(path)
	if err != nil {
		s.failure(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[UPLOAD] Parsing %s (%d pages) for %s", header.Filename, pages, session.Key)

	jd, err := s.uploadSpooled(r.Context(), session.Token, header.Filename, path)
	if err != nil {
		log.Printf("[UPLOAD] Backend call failed: %v", err)
		sse.WriteError(HTTPStatus(err), publicMessage(err))
		return
	}

	s.streamReveal(r.Context(), sse, session, SourceUpload, jd, "")
}

// spoolUpload copies an uploaded file to disk so it can be inspected before forwarding.
func spoolUpload(src io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "jdstudio-upload-*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (s *Server) uploadSpooled(ctx context.Context, token, filename, path string) (*types.JobDescription, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return s.backend.UploadPDF(ctx, token, filename, f)
}

// streamReveal sends the jd event, then reveals the description on the session's revealer
// and forwards its progress until it completes or is cancelled.
func (s *Server) streamReveal(ctx context.Context, sse *SSEWriter, session *middleware.Session, source string, jd *types.JobDescription, fallbackRole string) {
	role := strings.TrimSpace(jd.Title)
	if role == "" {
		role = strings.TrimSpace(fallbackRole)
	}
	normalized := jdtext.Normalize(jd.FullJD)
	text := jdtext.RevealText(jd.FullJD, role)

	id := uuid.New().String()
	if err := sse.WriteEvent(EventJD, JDEvent{
		ID:         id,
		Source:     source,
		Title:      jd.Title,
		Role:       role,
		Raw:        jd.FullJD,
		Normalized: normalized,
		JD:         jd,
	}); err != nil {
		log.Printf("[REVEAL] Error writing SSE event: %v", err)
		return
	}

	st, err := s.startReveal(session.Key, text)
	if err != nil {
		sse.WriteError(HTTPStatus(err), err.Error())
		return
	}

	if s.verbose {
		log.Printf("[REVEAL] %s started for %s (%d chars)", id, session.Key, utf8.RuneCountInString(text))
	}

	s.pumpReveal(ctx, sse, session.Key, st, func() {
		sse.WriteComplete(jdtext.Format(jd.FullJD, role), normalized)
		if s.verbose {
			log.Printf("[REVEAL] %s complete", id)
		}
	})
}

// handleExport renders the text to PDF and returns it as a download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "PDF export is not configured")
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		s.failure(w, err)
		return
	}

	pdf, err := s.exporter.Export(r.Context(), req.Text, req.Title)
	if err != nil {
		s.failure(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": types.ExportFilename(req.Title),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("[EXPORT] Error writing PDF: %v", err)
	}
}
